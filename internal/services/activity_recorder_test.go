package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/repository/memory"
	"github.com/fastygo/taskview/usecase"
)

func TestActivityRecorder(t *testing.T) {
	ctx := context.Background()
	activities := memory.NewStore().Activities()
	recorder := NewActivityRecorder(activities, nil)

	err := recorder.Record(ctx, usecase.ActivityEntry{
		Kind:      domain.ActivityTaskStatusChanged,
		InviteID:  "inv-1",
		ActorID:   "bob",
		SubjectID: "task-1",
		Payload:   map[string]string{"from": "todo", "to": "done"},
	})
	require.NoError(t, err)

	list, err := activities.List(ctx, repository.ActivityFilter{InviteID: "inv-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].ActorID)
	assert.NotEmpty(t, list[0].ID)
	assert.JSONEq(t, `{"from":"todo","to":"done"}`, string(list[0].Payload))
}

func TestActivityRecorderRejectsIncompleteEntries(t *testing.T) {
	recorder := NewActivityRecorder(memory.NewStore().Activities(), nil)
	err := recorder.Record(context.Background(), usecase.ActivityEntry{Kind: domain.ActivityTaskCreated})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	err = recorder.Record(context.Background(), usecase.ActivityEntry{
		Kind:     domain.ActivityTaskCreated,
		InviteID: "inv-1",
		Payload:  make(chan int),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
