package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskdeck/task-system/internal/api/metrics"
	"github.com/taskdeck/task-system/internal/core/ports"
)

const defaultCacheTTL = time.Minute

// TaskCache caches task list results per user using a versioned key scheme:
//
//	tasks:ver:<user_id>              → monotonically increasing version
//	tasks:list:<user_id>:<ver>:<fh>  → serialized list result (fh = filter hash)
//
// Invalidation bumps the version, so every cached page for that user lapses
// at once without scanning keys. Stale entries expire via TTL.
type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTaskCache wraps the given Redis client. A non-positive ttl falls back to
// one minute.
func NewTaskCache(client *redis.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &TaskCache{client: client, ttl: ttl}
}

// Get returns the cached result for (userID, filter) if the entry belongs to
// the user's current version.
func (c *TaskCache) Get(ctx context.Context, userID string, filter ports.ListTasksFilter) (*ports.ListTasksResult, bool, error) {
	key, err := c.listKey(ctx, userID, filter)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.TaskCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("task cache get: %w", err)
	}

	var result ports.ListTasksResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("task cache decode: %w", err)
	}
	metrics.TaskCacheTotal.WithLabelValues("hit").Inc()
	return &result, true, nil
}

// Set stores the result under the user's current version with a TTL.
func (c *TaskCache) Set(ctx context.Context, userID string, filter ports.ListTasksFilter, result *ports.ListTasksResult) error {
	key, err := c.listKey(ctx, userID, filter)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("task cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("task cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the user's version so all cached pages fall out.
func (c *TaskCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Incr(ctx, c.versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("task cache invalidate: %w", err)
	}
	return nil
}

func (c *TaskCache) versionKey(userID string) string {
	return "tasks:ver:" + userID
}

func (c *TaskCache) listKey(ctx context.Context, userID string, filter ports.ListTasksFilter) (string, error) {
	ver, err := c.client.Get(ctx, c.versionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		ver = "0"
	} else if err != nil {
		return "", fmt.Errorf("task cache version: %w", err)
	}
	return fmt.Sprintf("tasks:list:%s:%s:%d", userID, ver, filterHash(filter)), nil
}

// filterHash maps a filter deterministically to a compact key component.
func filterHash(f ports.ListTasksFilter) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%d|%d", f.Status, f.Search, f.Page, f.Limit)
	return h.Sum32()
}
