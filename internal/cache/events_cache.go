package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/event-gate/internal/domain"
)

const eventsKey = "events:all"

// EventsCache holds the serialized event catalogue. A nil client disables
// it: reads miss and writes are no-ops.
type EventsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventsCache builds the cache over an optional client.
func NewEventsCache(client *redis.Client, ttl time.Duration) *EventsCache {
	return &EventsCache{client: client, ttl: ttl}
}

// Enabled reports whether a backing client exists.
func (c *EventsCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached catalogue. ok is false on a miss.
func (c *EventsCache) Get(ctx context.Context) ([]domain.Event, bool, error) {
	const op = "cache.EventsCache.Get"
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, eventsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var events []domain.Event
	if err := json.Unmarshal(val, &events); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return events, true, nil
}

// Set stores the catalogue with the configured TTL.
func (c *EventsCache) Set(ctx context.Context, events []domain.Event) error {
	const op = "cache.EventsCache.Set"
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.client.Set(ctx, eventsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate drops the cached catalogue.
func (c *EventsCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, eventsKey).Err()
}
