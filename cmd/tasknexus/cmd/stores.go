package cmd

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tasknexus/tasknexus-api/internal/api/handler"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
	"github.com/tasknexus/tasknexus-api/internal/infrastructure/db/memory"
	"github.com/tasknexus/tasknexus-api/internal/infrastructure/db/mongo"
	"github.com/tasknexus/tasknexus-api/internal/infrastructure/db/redis"
	"github.com/tasknexus/tasknexus-api/internal/infrastructure/queue"
	"github.com/tasknexus/tasknexus-api/internal/pkg/config"
)

// stores bundles the persistence backends selected by configuration.
type stores struct {
	users   ports.CredentialRepository
	tasks   ports.TaskRepository
	limiter ports.LoginLimiter // nil without Redis
	sink    ports.NotificationSink
	checks  []handler.DependencyCheck
	closers []func(context.Context) error
}

func (s *stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{sink: queue.NewLogSink(log)}

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory stores, data is lost on restart")
		s.users = memory.NewCredentialRepository()
		s.tasks = memory.NewTaskRepository()
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Disconnect)

		users := mongo.NewCredentialRepository(db)
		tasks := mongo.NewTaskRepository(db)
		if err := mongo.EnsureIndexes(ctx, users, tasks); err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.users, s.tasks = users, tasks
		s.checks = append(s.checks, handler.DependencyCheck{Name: "mongo", Check: mongo.Ping(client)})
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.closers = append(s.closers, closeRedis(client))
		s.limiter = redis.NewLoginLimiter(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
		s.sink = redis.NewOutbox(client)
		s.checks = append(s.checks, handler.DependencyCheck{Name: "redis", Check: redis.Ping(client)})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}
	return s, nil
}

func closeRedis(client *goredis.Client) func(context.Context) error {
	return func(context.Context) error { return client.Close() }
}
