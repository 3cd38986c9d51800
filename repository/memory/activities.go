package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type activityRepository struct{ s *Store }

func (r *activityRepository) Append(_ context.Context, activity *domain.Activity) error {
	if activity == nil || activity.InviteID == "" {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Touch()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activities = append(r.s.activities, *activity)
	return nil
}

func (r *activityRepository) List(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	limit := repository.ClampLimit(filter.Limit)
	out := make([]domain.Activity, 0)
	for i := len(r.s.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if a := r.s.activities[i]; filter.InviteID == "" || a.InviteID == filter.InviteID {
			out = append(out, a)
		}
	}
	return out, nil
}
