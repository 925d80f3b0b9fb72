package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheKey is the Redis hash mirroring the sort_settings table.
const cacheKey = "itemsorter:settings"

// cacheTTL bounds how long a hash filled before a missed invalidation can
// serve stale values.
const cacheTTL = 5 * time.Minute

// cachedRepository serves GetAll from a Redis hash and falls back to the
// wrapped repository on a miss. Writes go to the database first and then
// drop the hash. Redis failures degrade to uncached reads.
type cachedRepository struct {
	SettingsRepository
	redis *redis.Client
}

// NewCachedRepository wraps repo with a Redis read cache.
func NewCachedRepository(repo SettingsRepository, rdb *redis.Client) SettingsRepository {
	return &cachedRepository{SettingsRepository: repo, redis: rdb}
}

// GetAll returns the cached map, loading it from the database on a miss.
func (r *cachedRepository) GetAll(ctx context.Context) (map[string]string, error) {
	cached, err := r.redis.HGetAll(ctx, cacheKey).Result()
	if err == nil && len(cached) > 0 {
		return cached, nil
	}
	if err != nil {
		slog.Warn("settings cache read failed", slog.Any("error", err))
	}

	all, err := r.SettingsRepository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		pipe := r.redis.TxPipeline()
		pipe.HSet(ctx, cacheKey, all)
		pipe.Expire(ctx, cacheKey, cacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			slog.Warn("settings cache fill failed", slog.Any("error", err))
		}
	}
	return all, nil
}

// Set writes through to the database and invalidates the cache.
func (r *cachedRepository) Set(ctx context.Context, key, value string) error {
	if err := r.SettingsRepository.Set(ctx, key, value); err != nil {
		return err
	}
	if err := r.redis.Del(ctx, cacheKey).Err(); err != nil {
		slog.Warn("settings cache invalidation failed", slog.Any("error", err))
	}
	return nil
}
