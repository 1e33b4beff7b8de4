package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"valoracademy/internal/http-api/models"

	"github.com/redis/go-redis/v9"
)

const progressCacheTTL = 90 * 24 * time.Hour

// ProgressCache is a write-through Redis cache in front of the lesson
// progress table. A nil receiver or a missing client turns every method into
// a no-op, so the API keeps working when Redis is down or not configured.
type ProgressCache struct {
	client *redis.Client
}

// NewProgressCache connects to Redis and verifies the connection.
func NewProgressCache(redisAddr, password string) (*ProgressCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ProgressCache{client: rdb}, nil
}

func progressKey(userID string, lessonID int64) string {
	return fmt.Sprintf("progress:user:%s:lesson:%d", userID, lessonID)
}

// Save caches a progress record. Failures are logged, never propagated: the
// database row is the source of truth.
func (c *ProgressCache) Save(ctx context.Context, record *models.LessonProgress) {
	if c == nil || c.client == nil || record == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	key := progressKey(record.UserID, record.LessonID)
	if err := c.client.Set(ctx, key, payload, progressCacheTTL).Err(); err != nil {
		slog.Warn("progress cache write failed", "key", key, "error", err)
	}
}

// Get returns the cached record and true on a hit.
func (c *ProgressCache) Get(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	key := progressKey(userID, lessonID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("progress cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var record models.LessonProgress
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, false
	}
	return &record, true
}

// Close releases the underlying Redis connection.
func (c *ProgressCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
