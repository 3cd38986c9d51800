package invite

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/logger"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/usecase"
)

// maxCodeAttempts bounds regeneration after a unique-code collision.
const maxCodeAttempts = 5

// UseCase is the invite ledger: creation, one-time redemption and lookups.
type UseCase struct {
	invites    repository.InviteRepository
	users      repository.UserRepository
	activities repository.ActivityRepository
	recorder   usecase.ActivityRecorder
	logger     *zap.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func New(
	invites repository.InviteRepository,
	users repository.UserRepository,
	activities repository.ActivityRepository,
	recorder usecase.ActivityRecorder,
	log *zap.Logger,
) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = usecase.NopRecorder{}
	}
	return &UseCase{
		invites:    invites,
		users:      users,
		activities: activities,
		recorder:   recorder,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
		newCode:    domain.NewInviteCode,
	}
}

// CreateInvite issues a pending invite owned by creatorID. actorID, when set,
// must be the creator.
func (uc *UseCase) CreateInvite(ctx context.Context, actorID, creatorID string) (*domain.Invite, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, domain.Validation("creator_id is required")
	}
	if actorID != "" && actorID != creatorID {
		return nil, domain.ErrForbidden
	}

	creator, err := uc.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Validation("creator %s does not exist", creatorID)
		}
		return nil, err
	}
	if !creator.IsCreator() {
		return nil, domain.Validation("user %s is not a creator", creatorID)
	}

	for attempt := 1; ; attempt++ {
		code, err := uc.newCode()
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "generate invite code", err)
		}
		invite := &domain.Invite{
			Code:      code,
			CreatorID: creatorID,
			Status:    domain.InviteStatusPending,
			CreatedAt: uc.now(),
		}
		err = uc.invites.Create(ctx, invite)
		if err == nil {
			logger.WithRequestID(ctx, uc.logger).Info("invite created",
				zap.String("invite_id", invite.ID),
				zap.String("creator_id", creatorID))
			uc.record(ctx, usecase.ActivityEntry{
				Kind:      domain.ActivityInviteCreated,
				InviteID:  invite.ID,
				ActorID:   creatorID,
				SubjectID: invite.ID,
			})
			return invite, nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) || attempt >= maxCodeAttempts {
			return nil, err
		}
		uc.logger.Warn("invite code collision, regenerating", zap.Int("attempt", attempt))
	}
}

// RedeemInvite binds executorID to the invite holding code. Exactly one of any
// number of concurrent redemptions of the same code succeeds; the rest get
// domain.ErrInviteUsed.
func (uc *UseCase) RedeemInvite(ctx context.Context, actorID, code, executorID string) (*domain.Invite, error) {
	code = domain.NormalizeInviteCode(code)
	executorID = strings.TrimSpace(executorID)
	if code == "" {
		return nil, domain.Validation("code is required")
	}
	if executorID == "" {
		return nil, domain.Validation("executor_id is required")
	}
	if actorID != "" && actorID != executorID {
		return nil, domain.ErrForbidden
	}

	executor, err := uc.users.GetByID(ctx, executorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Validation("executor %s does not exist", executorID)
		}
		return nil, err
	}
	if !executor.IsExecutor() {
		return nil, domain.Validation("user %s is not an executor", executorID)
	}

	invite, err := uc.invites.Redeem(ctx, code, executorID, uc.now())
	if err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("invite redeemed",
		zap.String("invite_id", invite.ID),
		zap.String("executor_id", executorID))
	uc.record(ctx, usecase.ActivityEntry{
		Kind:      domain.ActivityInviteRedeemed,
		InviteID:  invite.ID,
		ActorID:   executorID,
		SubjectID: invite.ID,
		Payload:   map[string]string{"executor_id": executorID},
	})
	return invite, nil
}

func (uc *UseCase) ListByCreator(ctx context.Context, creatorID string) ([]domain.Invite, error) {
	return uc.invites.List(ctx, repository.InviteFilter{CreatorID: creatorID})
}

func (uc *UseCase) ListByExecutor(ctx context.Context, executorID string) ([]domain.Invite, error) {
	return uc.invites.List(ctx, repository.InviteFilter{ExecutorID: executorID})
}

func (uc *UseCase) GetInvite(ctx context.Context, id string) (*domain.Invite, error) {
	return uc.invites.GetByID(ctx, id)
}

// Activity returns the newest entries recorded against an invite.
func (uc *UseCase) Activity(ctx context.Context, inviteID string, limit int) ([]domain.Activity, error) {
	if _, err := uc.invites.GetByID(ctx, inviteID); err != nil {
		return nil, err
	}
	if uc.activities == nil {
		return []domain.Activity{}, nil
	}
	return uc.activities.List(ctx, repository.ActivityFilter{InviteID: inviteID, Limit: limit})
}

func (uc *UseCase) record(ctx context.Context, entry usecase.ActivityEntry) {
	if err := uc.recorder.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record invite activity",
			zap.String("kind", string(entry.Kind)),
			zap.String("invite_id", entry.InviteID),
			zap.Error(err))
	}
}
