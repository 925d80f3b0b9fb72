package sorter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// markerKey is the Redis set of actor ids sorted since startup.
const markerKey = "itemsorter:sorted-actors"

// Marker records which actors the durable engine has already sorted, so a
// render only triggers assignment the first time an actor is seen.
type Marker interface {
	HasBeenSorted(ctx context.Context, actorID string) (bool, error)
	MarkSorted(ctx context.Context, actorID string) error

	// Reset forgets every actor. Called at startup so the marker covers one
	// process lifetime.
	Reset(ctx context.Context) error
}

// redisMarker implements Marker with a Redis set.
type redisMarker struct {
	redis *redis.Client
}

// NewRedisMarker creates a Marker backed by Redis.
func NewRedisMarker(rdb *redis.Client) Marker {
	return &redisMarker{redis: rdb}
}

func (m *redisMarker) HasBeenSorted(ctx context.Context, actorID string) (bool, error) {
	ok, err := m.redis.SIsMember(ctx, markerKey, actorID).Result()
	if err != nil {
		return false, fmt.Errorf("checking sorted marker: %w", err)
	}
	return ok, nil
}

func (m *redisMarker) MarkSorted(ctx context.Context, actorID string) error {
	if err := m.redis.SAdd(ctx, markerKey, actorID).Err(); err != nil {
		return fmt.Errorf("setting sorted marker: %w", err)
	}
	return nil
}

func (m *redisMarker) Reset(ctx context.Context) error {
	if err := m.redis.Del(ctx, markerKey).Err(); err != nil {
		return fmt.Errorf("resetting sorted markers: %w", err)
	}
	return nil
}
