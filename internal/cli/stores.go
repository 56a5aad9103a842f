package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// stores owns every connection opened at startup and closes them at shutdown
type stores struct {
	db      *config.DB
	redis   *redis.Client
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	s := &stores{db: db}

	if db.Postgres != nil {
		if err := repositories.EnsureSchema(db.Postgres); err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		s.users = repositories.NewGormUserRepository(db.Postgres)
		s.follows = repositories.NewGormFollowRepository(db.Postgres)
	} else {
		users := repositories.NewMongoUserRepository(db.MongoDB)
		follows := repositories.NewMongoFollowRepository(db.MongoDB)
		if err := users.EnsureIndexes(ctx); err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("ensure users indexes: %w", err)
		}
		if err := follows.EnsureIndexes(ctx); err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("ensure follows indexes: %w", err)
		}
		s.users = users
		s.follows = follows
	}

	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.users = repositories.NewCachedUserRepository(s.users, s.redis, cfg.CacheTTL, log)
		log.Info("user cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}
	return s, nil
}

func (s *stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.db.CloseDB()
}
