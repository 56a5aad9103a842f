package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	userCacheKeyPrefix = "user:"
	userCacheGenPrefix = "usergen:"
)

// CachedUserRepository wraps a UserRepository with a Redis read-through cache for
// lookups by id. Writes go to the wrapped repository first, then drop the cached entry.
type CachedUserRepository struct {
	UserRepository
	cache *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedUserRepository creates a CachedUserRepository in front of next
func NewCachedUserRepository(next UserRepository, cache *redis.Client, ttl time.Duration, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{UserRepository: next, cache: cache, ttl: ttl, log: log}
}

// GetUserByID serves from Redis when possible. Cache failures fall back to the store.
// A miss fills the cache under WATCH on the user's generation key, so a write that
// lands between the store read and the fill aborts the fill instead of caching a
// stale row.
func (r *CachedUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	id = cacheID(id)
	key := userCacheKeyPrefix + id
	if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
		var user models.User
		if uErr := json.Unmarshal(data, &user); uErr == nil {
			return &user, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
	}

	var (
		user     *models.User
		storeErr error
		loaded   bool
	)
	err := r.cache.Watch(ctx, func(tx *redis.Tx) error {
		user, storeErr = r.UserRepository.GetUserByID(ctx, id)
		loaded = true
		if storeErr != nil {
			return nil
		}
		payload, err := json.Marshal(user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, userCacheGenPrefix+id)

	if !loaded {
		r.log.Warn("user cache unavailable", zap.String("key", key), zap.Error(err))
		return r.UserRepository.GetUserByID(ctx, id)
	}
	if storeErr != nil {
		return nil, storeErr
	}
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		r.log.Warn("user cache write failed", zap.String("key", key), zap.Error(err))
	}
	return user, nil
}

// UpdateUser updates the store and invalidates the cached entry
func (r *CachedUserRepository) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := r.UserRepository.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return user, nil
}

// UpsertUserByName upserts in the store and invalidates the affected entry
func (r *CachedUserRepository) UpsertUserByName(ctx context.Context, name string, avatarURL *string) (*models.User, error) {
	user, err := r.UserRepository.UpsertUserByName(ctx, name, avatarURL)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, user.ID.Hex())
	return user, nil
}

// DeleteUser deletes from the store and invalidates the cached entry
func (r *CachedUserRepository) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	user, err := r.UserRepository.DeleteUser(ctx, id)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return user, nil
}

// DeleteAllUsers empties the store and drops every cached user
func (r *CachedUserRepository) DeleteAllUsers(ctx context.Context) error {
	if err := r.UserRepository.DeleteAllUsers(ctx); err != nil {
		return err
	}
	iter := r.cache.Scan(ctx, 0, userCacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.invalidate(ctx, iter.Val()[len(userCacheKeyPrefix):])
	}
	return iter.Err()
}

// invalidate bumps the generation key, aborting in-flight fills, and drops the entry.
func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	id = cacheID(id)
	genKey := userCacheGenPrefix + id
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.ttl)
		pipe.Del(ctx, userCacheKeyPrefix+id)
		return nil
	})
	if err != nil {
		r.log.Warn("user cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

// cacheID keys entries by the canonical hex id so any spelling of an id shares one
// entry. Malformed ids are left as is; the store rejects them.
func cacheID(id string) string {
	if c, err := canonicalID(id); err == nil {
		return c
	}
	return id
}
