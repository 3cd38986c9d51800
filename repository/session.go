package repository

import (
	"context"

	"github.com/fastygo/taskview/domain"
)

// SessionRepository keeps login sessions. Drivers may drop expired sessions on
// their own; a missing session is domain.ErrSessionNotFound.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	// Delete succeeds for sessions that are already gone.
	Delete(ctx context.Context, id string) error
	// Extend moves ExpiresAt to now plus ttlSeconds.
	Extend(ctx context.Context, id string, ttlSeconds int) error
}
