// Package repotest holds behaviour checks shared by every storage driver.
package repotest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

// Repos is one freshly opened driver.
type Repos struct {
	Users      repository.UserRepository
	Invites    repository.InviteRepository
	Tasks      repository.TaskRepository
	Activities repository.ActivityRepository
}

// Run exercises open() against the repository contracts. open must return
// empty storage on every call.
func Run(t *testing.T, open func(t *testing.T) Repos) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("invite redeem", func(t *testing.T) { testInviteRedeem(t, open(t)) })
	t.Run("invite concurrent redeem", func(t *testing.T) { testConcurrentRedeem(t, open(t)) })
	t.Run("invite listing", func(t *testing.T) { testInviteListing(t, open(t)) })
	t.Run("invite duplicate code", func(t *testing.T) { testDuplicateCode(t, open(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, open(t)) })
	t.Run("activities", func(t *testing.T) { testActivities(t, open(t)) })
}

// NewUser stores a user with a unique email.
func NewUser(t *testing.T, users repository.UserRepository, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     string(role),
		Email:        uuid.NewString() + "@taskview.test",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, users.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func newInvite(t *testing.T, invites repository.InviteRepository, creatorID string) *domain.Invite {
	t.Helper()
	code, err := domain.NewInviteCode()
	require.NoError(t, err)
	invite := &domain.Invite{
		Code:      code,
		CreatorID: creatorID,
		Status:    domain.InviteStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, invites.Create(context.Background(), invite))
	require.NotEmpty(t, invite.ID)
	return invite
}

func testUsers(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)

	got, err := r.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, domain.RoleCreator, got.Role)

	byEmail, err := r.Users.GetByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	dup := &domain.User{Username: "x", Email: alice.Email, PasswordHash: "h", Role: domain.RoleExecutor}
	assert.ErrorIs(t, r.Users.Create(ctx, dup), domain.ErrEmailTaken)

	got.Username = "alice"
	require.NoError(t, r.Users.Update(ctx, got))
	again, err := r.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
	assert.Equal(t, domain.RoleCreator, again.Role)

	_, err = r.Users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func testInviteRedeem(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)
	bob := NewUser(t, r.Users, domain.RoleExecutor)
	invite := newInvite(t, r.Invites, alice.ID)

	at := time.Now().UTC().Truncate(time.Millisecond)
	redeemed, err := r.Invites.Redeem(ctx, invite.Code, bob.ID, at)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusUsed, redeemed.Status)
	assert.Equal(t, bob.ID, redeemed.BoundExecutor())
	require.NotNil(t, redeemed.UsedAt)
	assert.WithinDuration(t, at, *redeemed.UsedAt, time.Millisecond)
	require.NoError(t, redeemed.CheckConsistency())

	_, err = r.Invites.Redeem(ctx, invite.Code, bob.ID, at)
	assert.ErrorIs(t, err, domain.ErrInviteUsed)

	_, err = r.Invites.Redeem(ctx, "ZZZZZZZZ", bob.ID, at)
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)

	stored, err := r.Invites.GetByCode(ctx, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, stored.BoundExecutor())
}

func testConcurrentRedeem(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)
	invite := newInvite(t, r.Invites, alice.ID)

	const workers = 16
	executors := make([]*domain.User, workers)
	for i := range executors {
		executors[i] = NewUser(t, r.Users, domain.RoleExecutor)
	}

	var wins, conflicts int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(executorID string) {
			defer wg.Done()
			<-start
			_, err := r.Invites.Redeem(ctx, invite.Code, executorID, time.Now().UTC())
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case domain.IsDomainError(err, domain.ErrCodeConflict):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected redeem error: %v", err)
			}
		}(executors[i].ID)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	assert.EqualValues(t, workers-1, conflicts)

	stored, err := r.Invites.GetByID(ctx, invite.ID)
	require.NoError(t, err)
	require.NoError(t, stored.CheckConsistency())
	assert.True(t, stored.IsUsed())
}

func testInviteListing(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)
	other := NewUser(t, r.Users, domain.RoleCreator)
	bob := NewUser(t, r.Users, domain.RoleExecutor)

	first := newInvite(t, r.Invites, alice.ID)
	time.Sleep(2 * time.Millisecond)
	second := newInvite(t, r.Invites, alice.ID)
	newInvite(t, r.Invites, other.ID)

	list, err := r.Invites.List(ctx, repository.InviteFilter{CreatorID: alice.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = r.Invites.Redeem(ctx, first.Code, bob.ID, time.Now().UTC())
	require.NoError(t, err)
	byExecutor, err := r.Invites.List(ctx, repository.InviteFilter{ExecutorID: bob.ID})
	require.NoError(t, err)
	require.Len(t, byExecutor, 1)
	assert.Equal(t, first.ID, byExecutor[0].ID)

	none, err := r.Invites.List(ctx, repository.InviteFilter{CreatorID: uuid.NewString()})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testDuplicateCode(t *testing.T, r Repos) {
	alice := NewUser(t, r.Users, domain.RoleCreator)
	invite := newInvite(t, r.Invites, alice.ID)

	dup := &domain.Invite{
		Code:      invite.Code,
		CreatorID: alice.ID,
		Status:    domain.InviteStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	assert.ErrorIs(t, r.Invites.Create(context.Background(), dup), domain.ErrDuplicateCode)
}

func testTasks(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)
	invite := newInvite(t, r.Invites, alice.ID)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		created, err := r.Tasks.Create(ctx, &domain.Task{
			Title:     title,
			Status:    domain.TaskStatusTodo,
			CreatorID: alice.ID,
			InviteID:  invite.ID,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		ids = append(ids, created.ID)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := r.Tasks.List(ctx, repository.TaskFilter{InviteID: invite.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, task := range list {
		assert.Equal(t, ids[i], task.ID)
	}

	task, err := r.Tasks.GetByID(ctx, ids[1])
	require.NoError(t, err)
	details := "done and dusted"
	require.NoError(t, task.Transition(domain.TaskStatusDone, &details, time.Now().UTC()))
	require.NoError(t, r.Tasks.Update(ctx, task))

	stored, err := r.Tasks.GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)
	require.NotNil(t, stored.CompletionDetails)
	assert.Equal(t, details, *stored.CompletionDetails)
	assert.NotNil(t, stored.CompletedAt)

	done, err := r.Tasks.List(ctx, repository.TaskFilter{InviteID: invite.ID, Status: domain.TaskStatusDone})
	require.NoError(t, err)
	assert.Len(t, done, 1)

	require.NoError(t, r.Tasks.Delete(ctx, ids[0]))
	assert.ErrorIs(t, r.Tasks.Delete(ctx, ids[0]), domain.ErrTaskNotFound)
	_, err = r.Tasks.GetByID(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	missing := &domain.Task{ID: uuid.NewString(), Title: "x", Status: domain.TaskStatusTodo, CreatorID: alice.ID, InviteID: invite.ID}
	assert.ErrorIs(t, r.Tasks.Update(ctx, missing), domain.ErrTaskNotFound)
}

func testActivities(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := NewUser(t, r.Users, domain.RoleCreator)
	invite := newInvite(t, r.Invites, alice.ID)

	kinds := []domain.ActivityKind{domain.ActivityInviteCreated, domain.ActivityTaskCreated, domain.ActivityTaskDeleted}
	for _, kind := range kinds {
		require.NoError(t, r.Activities.Append(ctx, &domain.Activity{
			InviteID:  invite.ID,
			ActorID:   alice.ID,
			Kind:      kind,
			SubjectID: invite.ID,
			Payload:   []byte(`{"k":"v"}`),
			CreatedAt: time.Now().UTC(),
		}))
		time.Sleep(2 * time.Millisecond)
	}

	list, err := r.Activities.List(ctx, repository.ActivityFilter{InviteID: invite.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.ActivityTaskDeleted, list[0].Kind)
	assert.Equal(t, domain.ActivityInviteCreated, list[2].Kind)
	assert.JSONEq(t, `{"k":"v"}`, string(list[0].Payload))

	limited, err := r.Activities.List(ctx, repository.ActivityFilter{InviteID: invite.ID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
