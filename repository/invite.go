package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskview/domain"
)

// InviteFilter selects invites by owner or bound executor. Empty fields match everything.
type InviteFilter struct {
	CreatorID  string
	ExecutorID string
}

type InviteRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Invite, error)
	GetByCode(ctx context.Context, code string) (*domain.Invite, error)
	// Create returns domain.ErrDuplicateCode when the code is taken.
	Create(ctx context.Context, invite *domain.Invite) error
	// Redeem atomically moves the invite holding code from pending to used.
	// It returns domain.ErrInviteNotFound for an unknown code and
	// domain.ErrInviteUsed when the invite was already redeemed.
	Redeem(ctx context.Context, code, executorID string, at time.Time) (*domain.Invite, error)
	// List returns matching invites, newest first.
	List(ctx context.Context, filter InviteFilter) ([]domain.Invite, error)
}
