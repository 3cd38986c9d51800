package bolt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type activityRepository struct {
	db *bolt.DB
}

// Append keys entries by the bucket sequence so a cursor walks them in order.
func (r *activityRepository) Append(_ context.Context, activity *domain.Activity) error {
	if activity == nil || activity.InviteID == "" {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Touch()
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActivities)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return put(b, fmt.Sprintf("%020d", seq), activity)
	})
}

func (r *activityRepository) List(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	limit := repository.ClampLimit(filter.Limit)
	out := make([]domain.Activity, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var activity domain.Activity
			if err := unmarshal(v, &activity); err != nil {
				continue
			}
			if filter.InviteID != "" && activity.InviteID != filter.InviteID {
				continue
			}
			out = append(out, activity)
		}
		return nil
	})
	return out, err
}
