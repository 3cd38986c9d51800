package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTaskTransitionIntoDone(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusTodo}

	assert.ErrorIs(t, task.Transition(TaskStatusDone, nil, at), ErrCompletionNeeded)
	assert.ErrorIs(t, task.Transition(TaskStatusDone, strPtr("  "), at), ErrCompletionNeeded)
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)

	require.NoError(t, task.Transition(TaskStatusDone, strPtr("shipped"), at))
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, "shipped", *task.CompletionDetails)
	assert.Equal(t, at, *task.CompletedAt)
}

func TestTaskLeavingDoneKeepsCompletion(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusTodo}
	require.NoError(t, task.Transition(TaskStatusDone, strPtr("shipped"), at))

	require.NoError(t, task.Transition(TaskStatusInProgress, nil, at.Add(time.Hour)))
	assert.Equal(t, TaskStatusInProgress, task.Status)
	assert.Equal(t, "shipped", *task.CompletionDetails)
	assert.Equal(t, at, *task.CompletedAt)

	later := at.Add(2 * time.Hour)
	require.NoError(t, task.Transition(TaskStatusDone, strPtr("again"), later))
	assert.Equal(t, later, *task.CompletedAt)
	assert.Equal(t, "again", *task.CompletionDetails)
}

func TestTaskDoneToDoneKeepsCompletion(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusTodo}
	require.NoError(t, task.Transition(TaskStatusDone, strPtr("shipped"), at))

	require.NoError(t, task.Transition(TaskStatusDone, nil, at.Add(time.Hour)))
	require.NoError(t, task.Transition(TaskStatusDone, strPtr(" "), at.Add(2*time.Hour)))
	assert.Equal(t, "shipped", *task.CompletionDetails)
	assert.Equal(t, at, *task.CompletedAt)

	later := at.Add(3 * time.Hour)
	require.NoError(t, task.Transition(TaskStatusDone, strPtr("amended"), later))
	assert.Equal(t, "amended", *task.CompletionDetails)
	assert.Equal(t, later, *task.CompletedAt)
}

func TestTaskTransitionAnyDirection(t *testing.T) {
	for _, from := range TaskStatuses {
		for _, to := range []TaskStatus{TaskStatusTodo, TaskStatusInProgress} {
			task := &Task{Status: from}
			assert.NoError(t, task.Transition(to, nil, time.Now()), "%s -> %s", from, to)
			assert.Equal(t, to, task.Status)
		}
	}
	assert.ErrorIs(t, (&Task{}).Transition("blocked", nil, time.Now()), ErrInvalidStatus)
}

func TestTaskAssign(t *testing.T) {
	pending := &Invite{Status: InviteStatusPending}
	used := &Invite{Status: InviteStatusUsed, ExecutorID: strPtr("bob")}
	task := &Task{InviteID: "i1"}

	err := task.Assign(strPtr("bob"), pending)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	err = task.Assign(strPtr("carol"), used)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.Nil(t, task.ExecutorID)

	require.NoError(t, task.Assign(strPtr("bob"), used))
	assert.Equal(t, "bob", *task.ExecutorID)

	require.NoError(t, task.Assign(nil, used))
	assert.Nil(t, task.ExecutorID)
}

func TestTaskSetTitle(t *testing.T) {
	task := &Task{Title: "old"}
	assert.ErrorIs(t, task.SetTitle(" \t"), ErrEmptyTitle)
	assert.Equal(t, "old", task.Title)
	require.NoError(t, task.SetTitle("new"))
	assert.Equal(t, "new", task.Title)
}

func TestNewBoard(t *testing.T) {
	board := NewBoard([]Task{
		{ID: "1", Status: TaskStatusTodo},
		{ID: "2", Status: TaskStatusDone},
		{ID: "3", Status: TaskStatusInProgress},
		{ID: "4", Status: TaskStatusTodo},
	})
	require.Len(t, board.Todo, 2)
	assert.Equal(t, "1", board.Todo[0].ID)
	assert.Equal(t, "4", board.Todo[1].ID)
	assert.Len(t, board.InProgress, 1)
	assert.Len(t, board.Done, 1)

	empty := NewBoard(nil)
	assert.NotNil(t, empty.Todo)
	assert.NotNil(t, empty.Done)
}

func TestErrorHelpers(t *testing.T) {
	wrapped := WrapError(ErrCodeInternal, "load", ErrTaskNotFound)
	assert.ErrorIs(t, wrapped, ErrTaskNotFound)
	assert.Equal(t, ErrCodeInternal, CodeOf(wrapped))
	assert.Equal(t, ErrCodeConflict, CodeOf(ErrInviteUsed))
	assert.Equal(t, ErrCodeInternal, CodeOf(assert.AnError))
	assert.NotErrorIs(t, ErrInviteNotFound, ErrTaskNotFound)
}
