package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

const sessionPrefix = "taskview:session:"

type sessionRepository struct {
	client     *redislib.Client
	defaultTTL time.Duration
}

// NewSessionRepository stores login sessions as JSON values whose key TTL
// tracks Session.ExpiresAt, so Redis drops them on expiry.
func NewSessionRepository(client *redislib.Client, defaultTTL time.Duration) repository.SessionRepository {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &sessionRepository{client: client, defaultTTL: defaultTTL}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionPrefix+id).Bytes()
	switch {
	case errors.Is(err, redislib.Nil):
		return nil, domain.ErrSessionNotFound
	case err != nil:
		return nil, err
	}

	session := new(domain.Session)
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if !session.ExpiresAt.After(now) {
		session.ExpiresAt = now.Add(r.defaultTTL)
	}
	_, err := r.write(ctx, session, false)
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionPrefix+id).Err()
}

// Extend rewrites the session with a new expiry. A session that vanished
// between the read and the write is reported as not found.
func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	stored, err := r.write(ctx, session, true)
	if err != nil {
		return err
	}
	if !stored {
		return domain.ErrSessionNotFound
	}
	return nil
}

// write stores session with a TTL derived from ExpiresAt. With existing set
// the key is only overwritten if it is still present.
func (r *sessionRepository) write(ctx context.Context, session *domain.Session, existing bool) (bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return false, err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	key := sessionPrefix + session.ID
	if existing {
		return r.client.SetXX(ctx, key, payload, ttl).Result()
	}
	return true, r.client.Set(ctx, key, payload, ttl).Err()
}
