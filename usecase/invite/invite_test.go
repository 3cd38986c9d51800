package invite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/internal/services"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/repository/memory"
)

type fixture struct {
	uc      *UseCase
	store   *memory.Store
	alice   *domain.User
	bob     *domain.User
	charlie *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:   store,
		alice:   addUser(t, store, "alice", domain.RoleCreator),
		bob:     addUser(t, store, "bob", domain.RoleExecutor),
		charlie: addUser(t, store, "charlie", domain.RoleExecutor),
	}
	recorder := services.NewActivityRecorder(store.Activities(), nil)
	f.uc = New(store.Invites(), store.Users(), store.Activities(), recorder, nil)
	return f
}

func addUser(t *testing.T, store *memory.Store, name string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Username: name, Email: name + "@taskview.test", PasswordHash: "x", Role: role}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestCreateAndRedeemScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	invite, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, invite.Code, domain.InviteCodeLength)
	assert.Equal(t, domain.InviteStatusPending, invite.Status)
	assert.Nil(t, invite.ExecutorID)
	assert.Nil(t, invite.UsedAt)

	redeemed, err := f.uc.RedeemInvite(ctx, "", " "+invite.Code+" ", f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusUsed, redeemed.Status)
	assert.Equal(t, f.bob.ID, redeemed.BoundExecutor())
	assert.NotNil(t, redeemed.UsedAt)

	_, err = f.uc.RedeemInvite(ctx, "", invite.Code, f.charlie.ID)
	assert.ErrorIs(t, err, domain.ErrInviteUsed)

	stored, err := f.uc.GetInvite(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, stored.BoundExecutor())

	byExecutor, err := f.uc.ListByExecutor(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, byExecutor, 1)
	assert.Equal(t, invite.ID, byExecutor[0].ID)

	activity, err := f.uc.Activity(ctx, invite.ID, 0)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	assert.Equal(t, domain.ActivityInviteRedeemed, activity[0].Kind)
	assert.Equal(t, domain.ActivityInviteCreated, activity[1].Kind)
}

func TestRedeemIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.newCode = func() (string, error) { return "ABCD2345", nil }

	_, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)
	_, err = f.uc.RedeemInvite(ctx, "", "abcd2345", f.bob.ID)
	assert.NoError(t, err)
}

func TestCreateInviteValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.uc.CreateInvite(ctx, "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateInvite(ctx, "", "nobody")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateInvite(ctx, "", f.bob.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "executors cannot create invites")

	_, err = f.uc.CreateInvite(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.CreateInvite(ctx, f.alice.ID, f.alice.ID)
	assert.NoError(t, err)
}

func TestRedeemValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invite, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)

	_, err = f.uc.RedeemInvite(ctx, "", "   ", f.bob.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.RedeemInvite(ctx, "", invite.Code, f.alice.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "creators cannot redeem")

	_, err = f.uc.RedeemInvite(ctx, "", "NOPE2345", f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)

	_, err = f.uc.RedeemInvite(ctx, f.charlie.ID, invite.Code, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.uc.GetInvite(ctx, invite.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed())
}

func TestCreateInviteRetriesCollisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	codes := []string{"AAAA2222", "AAAA2222", "AAAA2222", "BBBB3333"}
	calls := 0
	f.uc.newCode = func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}

	first, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAA2222", first.Code)

	second, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "BBBB3333", second.Code)
	assert.Equal(t, 4, calls)
}

func TestCreateInviteGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.newCode = func() (string, error) { return "SAME2222", nil }

	_, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)

	_, err = f.uc.CreateInvite(ctx, "", f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestListByCreatorNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		invite, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
		require.NoError(t, err)
		ids = append(ids, invite.ID)
	}

	list, err := f.uc.ListByCreator(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := f.uc.ListByCreator(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestConcurrentRedeemSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invite, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
	require.NoError(t, err)

	executors := []*domain.User{f.bob, f.charlie}
	for i := 0; i < 8; i++ {
		executors = append(executors, addUser(t, f.store, "exec"+string(rune('a'+i)), domain.RoleExecutor))
	}

	var mu sync.Mutex
	var winners []string
	var wg sync.WaitGroup
	for _, executor := range executors {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.uc.RedeemInvite(ctx, "", invite.Code, id); err == nil {
				mu.Lock()
				winners = append(winners, id)
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInviteUsed)
			}
		}(executor.ID)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	stored, err := f.uc.GetInvite(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.BoundExecutor())
}

func TestActivityOfUnknownInvite(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Activity(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)
}

// Any interleaving of creates and redeems keeps every invite consistent, and
// a redeem never rebinds an already used invite.
func TestInviteStatusInvariantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("status, executor and used_at always agree", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			f := newFixture(t)
			executors := []string{f.bob.ID, f.charlie.ID}
			var codes []string
			bound := make(map[string]string)

			for i, op := range ops {
				if op == 0 || len(codes) == 0 {
					invite, err := f.uc.CreateInvite(ctx, "", f.alice.ID)
					if err != nil {
						return false
					}
					codes = append(codes, invite.Code)
					continue
				}
				code := codes[op%len(codes)]
				executor := executors[i%len(executors)]
				redeemed, err := f.uc.RedeemInvite(ctx, "", code, executor)
				if prev, used := bound[code]; used {
					if err == nil {
						return false
					}
					stored, err := f.store.Invites().GetByCode(ctx, code)
					if err != nil || stored.BoundExecutor() != prev {
						return false
					}
					continue
				}
				if err != nil {
					return false
				}
				bound[code] = redeemed.BoundExecutor()
			}

			all, err := f.store.Invites().List(ctx, repository.InviteFilter{})
			if err != nil {
				return false
			}
			for _, invite := range all {
				if invite.CheckConsistency() != nil {
					return false
				}
				if _, used := bound[invite.Code]; used != invite.IsUsed() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
