package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

const inviteColumns = `id, code, creator_id, executor_id, status, created_at, used_at`

type inviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository returns a Postgres-backed implementation of InviteRepository.
func NewInviteRepository(pool *pgxpool.Pool) repository.InviteRepository {
	return &inviteRepository{pool: pool}
}

func (r *inviteRepository) GetByID(ctx context.Context, id string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	return scanInvite(r.pool.QueryRow(ctx, query, id))
}

func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE code = $1`
	return scanInvite(r.pool.QueryRow(ctx, query, code))
}

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	if invite == nil || invite.Code == "" {
		return domain.ErrInvalidPayload
	}
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	if invite.Status == "" {
		invite.Status = domain.InviteStatusPending
	}

	const query = `
	INSERT INTO invites (id, code, creator_id, executor_id, status, created_at, used_at)
	VALUES ($1, $2, $3, NULL, $4, COALESCE($5, NOW()), NULL)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		invite.ID,
		invite.Code,
		invite.CreatorID,
		string(invite.Status),
		nullTime(invite.CreatedAt),
	).Scan(&invite.CreatedAt); err != nil {
		if isUniqueViolation(err, "invites_code_key") {
			return domain.ErrDuplicateCode
		}
		return err
	}
	return nil
}

// Redeem performs the pending -> used transition as one conditional UPDATE.
// Concurrent callers race on the row lock; the loser sees status = 'used' and
// matches zero rows.
func (r *inviteRepository) Redeem(ctx context.Context, code, executorID string, at time.Time) (*domain.Invite, error) {
	query := `
	UPDATE invites
	SET executor_id = $2,
		status = 'used',
		used_at = $3
	WHERE code = $1 AND status = 'pending'
	RETURNING ` + inviteColumns

	invite, err := scanInvite(r.pool.QueryRow(ctx, query, code, executorID, at))
	if err == nil {
		return invite, nil
	}
	if !errors.Is(err, domain.ErrInviteNotFound) {
		return nil, err
	}

	var status string
	if err := r.pool.QueryRow(ctx, `SELECT status FROM invites WHERE code = $1`, code).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return nil, domain.ErrInviteUsed
}

func (r *inviteRepository) List(ctx context.Context, filter repository.InviteFilter) ([]domain.Invite, error) {
	q := psql.Select(inviteColumns).From("invites").OrderBy("created_at DESC", "id")
	if filter.CreatorID != "" {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.ExecutorID != "" {
		q = q.Where("executor_id = ?", filter.ExecutorID)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]domain.Invite, 0)
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *invite)
	}
	return invites, rows.Err()
}

func scanInvite(row scanner) (*domain.Invite, error) {
	var (
		invite domain.Invite
		status string
	)
	if err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.CreatorID,
		&invite.ExecutorID,
		&status,
		&invite.CreatedAt,
		&invite.UsedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	invite.Status = domain.InviteStatus(status)
	return &invite, nil
}
