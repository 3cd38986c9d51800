package usecase

import (
	"context"

	"github.com/fastygo/taskview/domain"
)

// ActivityRecorder abstracts the activity log so use cases stay storage-agnostic.
// Implementations must not block the mutation that is being recorded.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityEntry is what a use case knows about a mutation; the recorder turns it
// into a persisted domain.Activity.
type ActivityEntry struct {
	Kind      domain.ActivityKind
	InviteID  string
	ActorID   string
	SubjectID string
	Payload   interface{}
}

// TokenIssuer signs access tokens for a logged-in session.
type TokenIssuer interface {
	Issue(user *domain.User, sessionID string) (string, error)
}

// NopRecorder drops every entry.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, ActivityEntry) error { return nil }
