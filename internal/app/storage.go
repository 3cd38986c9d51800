// Package app wires configuration into concrete repositories. Both the server
// and taskctl open storage through it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskview/internal/config"
	"github.com/fastygo/taskview/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskview/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskview/internal/infrastructure/redis"
	"github.com/fastygo/taskview/internal/services/lifecycle"
	"github.com/fastygo/taskview/repository"
	boltRepo "github.com/fastygo/taskview/repository/bolt"
	"github.com/fastygo/taskview/repository/memory"
	"github.com/fastygo/taskview/repository/postgres"
	redisRepo "github.com/fastygo/taskview/repository/redis"
)

// Repositories is the storage the use cases run on.
type Repositories struct {
	Users      repository.UserRepository
	Invites    repository.InviteRepository
	Tasks      repository.TaskRepository
	Activities repository.ActivityRepository
	Sessions   repository.SessionRepository
}

// OpenStorage opens the configured driver plus optional Redis, registers
// every opened resource with manager and every dependency with mon (when
// non-nil).
func OpenStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, mon *monitor.Monitor, logger *zap.Logger) (*Repositories, error) {
	repos := &Repositories{}
	var memStore *memory.Store

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg.Database.URL, cfg.Migrations.Path, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		addCheck(mon, "postgresql", pgInfra.Ping(pool))

		repos.Users = postgres.NewUserRepository(pool)
		repos.Invites = postgres.NewInviteRepository(pool)
		repos.Tasks = postgres.NewTaskRepository(pool)
		repos.Activities = postgres.NewActivityRepository(pool)

	case config.DriverBolt:
		store, err := boltRepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		manager.RegisterCloser("bolt", store.Close)
		addCheck(mon, "bolt", func(context.Context) error { return store.Ping() })
		logger.Info("using bolt storage", zap.String("path", cfg.Storage.BoltPath))

		repos.Users = store.Users()
		repos.Invites = store.Invites()
		repos.Tasks = store.Tasks()
		repos.Activities = store.Activities()

	case config.DriverMemory:
		memStore = memory.NewStore()
		logger.Warn("using in-memory storage; data is lost on restart")

		repos.Users = memStore.Users()
		repos.Invites = memStore.Invites()
		repos.Tasks = memStore.Tasks()
		repos.Activities = memStore.Activities()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.URL == "" {
		if memStore == nil {
			memStore = memory.NewStore()
		}
		repos.Sessions = memStore.Sessions()
		return repos, nil
	}

	client, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	manager.RegisterCloser("redis", client.Close)
	addCheck(mon, "redis", redisInfra.Ping(client))

	repos.Sessions = redisRepo.NewSessionRepository(client, cfg.JWT.SessionTTL)
	if cfg.Redis.UserCacheTTL > 0 {
		repos.Users = redisRepo.NewUserCache(repos.Users, client, cfg.Redis.UserCacheTTL, logger)
	}
	return repos, nil
}

func addCheck(mon *monitor.Monitor, name string, check monitor.Check) {
	if mon != nil {
		mon.Add(name, check)
	}
}
