package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/repository"
)

// cachedUser carries the password hash that domain.User keeps out of JSON.
type cachedUser struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

// userCache is a read-through cache in front of another UserRepository.
// Lookups by id are served from Redis; concurrent misses for the same id
// share one backing query.
type userCache struct {
	next   repository.UserRepository
	client *redislib.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
	logger *zap.Logger
}

// NewUserCache wraps next with a Redis read-through cache keyed by user id.
func NewUserCache(next repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userCache{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "taskview:user:",
		logger: logger,
	}
}

func (c *userCache) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := c.lookup(ctx, id); ok {
		return user, nil
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		user, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.store(ctx, user)
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	user := *v.(*domain.User)
	return &user, nil
}

func (c *userCache) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return c.next.GetByEmail(ctx, email)
}

func (c *userCache) Create(ctx context.Context, user *domain.User) error {
	if err := c.next.Create(ctx, user); err != nil {
		return err
	}
	c.store(ctx, user)
	return nil
}

func (c *userCache) Update(ctx context.Context, user *domain.User) error {
	if err := c.next.Update(ctx, user); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(user.ID)).Err(); err != nil {
		c.logger.Warn("user cache invalidation failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func (c *userCache) lookup(ctx context.Context, id string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			c.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, false
	}
	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	user := cached.User
	user.PasswordHash = cached.PasswordHash
	return &user, true
}

func (c *userCache) store(ctx context.Context, user *domain.User) {
	payload, err := json.Marshal(cachedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(user.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache write failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (c *userCache) key(id string) string {
	return c.prefix + id
}
