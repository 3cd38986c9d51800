package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a Postgres-backed ActivityRepository implementation.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity == nil || activity.InviteID == "" {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activities (id, invite_id, actor_id, kind, subject_id, payload, created_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, COALESCE($7, NOW()))
	RETURNING created_at
	`

	var payload []byte
	if len(activity.Payload) > 0 {
		payload = []byte(activity.Payload)
	}

	return r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.InviteID,
		activity.ActorID,
		string(activity.Kind),
		activity.SubjectID,
		payload,
		nullTime(activity.CreatedAt),
	).Scan(&activity.CreatedAt)
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT id, invite_id, COALESCE(actor_id, ''), kind, subject_id, payload, created_at
	FROM activities
	WHERE ($1 = '' OR invite_id = $1)
	ORDER BY created_at DESC, id
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, filter.InviteID, repository.ClampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			entity  domain.Activity
			kind    string
			payload []byte
		)
		if err := rows.Scan(
			&entity.ID,
			&entity.InviteID,
			&entity.ActorID,
			&kind,
			&entity.SubjectID,
			&payload,
			&entity.CreatedAt,
		); err != nil {
			return nil, err
		}
		entity.Kind = domain.ActivityKind(kind)
		if len(payload) > 0 {
			entity.Payload = append([]byte(nil), payload...)
		}
		activities = append(activities, entity)
	}
	return activities, rows.Err()
}
