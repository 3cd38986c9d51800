package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/logger"
	"github.com/fastygo/taskview/repository"
	"github.com/fastygo/taskview/usecase"
)

// ActivityRecorder persists use case activity entries into the activity log.
type ActivityRecorder struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewActivityRecorder(repo repository.ActivityRepository, log *zap.Logger) *ActivityRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityRecorder{
		repo:   repo,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *ActivityRecorder) Record(ctx context.Context, entry usecase.ActivityEntry) error {
	if r.repo == nil {
		return nil
	}
	if entry.InviteID == "" || entry.Kind == "" {
		return domain.ErrInvalidPayload
	}

	var payload json.RawMessage
	if entry.Payload != nil {
		data, err := json.Marshal(entry.Payload)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode activity payload", err)
		}
		payload = data
	}

	activity := &domain.Activity{
		ID:        uuid.NewString(),
		InviteID:  entry.InviteID,
		ActorID:   entry.ActorID,
		Kind:      entry.Kind,
		SubjectID: entry.SubjectID,
		Payload:   payload,
		CreatedAt: r.now(),
	}
	if err := r.repo.Append(ctx, activity); err != nil {
		return err
	}

	logger.WithRequestID(ctx, r.logger).Debug("activity recorded",
		zap.String("kind", string(entry.Kind)),
		zap.String("invite_id", entry.InviteID))
	return nil
}

var _ usecase.ActivityRecorder = (*ActivityRecorder)(nil)
