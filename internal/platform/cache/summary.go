// Package cache holds the optional Redis layer. Everything here is
// nil-safe: when REDIS_ADDR is unset the app runs without a cache and
// every lookup is a miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

// SummaryCache keeps data file summaries warm so re-summarizing a file
// on every chat turn is avoided even across restarts.
type SummaryCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewSummaryCache connects to Redis when REDIS_ADDR is set. With no
// address it returns a disabled cache and no error.
func NewSummaryCache(log *logger.Logger) (*SummaryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Info("summary cache disabled, REDIS_ADDR not set")
		return &SummaryCache{log: log.With("service", "SummaryCache")}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &SummaryCache{
		log: log.With("service", "SummaryCache"),
		rdb: rdb,
		ttl: envutil.Seconds("SUMMARY_CACHE_TTL_SECONDS", 24*time.Hour),
	}, nil
}

func (c *SummaryCache) Enabled() bool { return c != nil && c.rdb != nil }

func key(fileID string) string { return "vizboard:summary:" + strings.TrimSpace(fileID) }

// Get returns the cached summary JSON, or "" on any miss or error.
func (c *SummaryCache) Get(ctx context.Context, fileID string) string {
	if !c.Enabled() {
		return ""
	}
	val, err := c.rdb.Get(ctx, key(fileID)).Result()
	if errors.Is(err, goredis.Nil) {
		return ""
	}
	if err != nil {
		c.log.Warn("summary cache get failed", "error", err)
		return ""
	}
	return val
}

// Set stores the summary JSON. Failures are logged and swallowed; the
// cache never breaks the request path.
func (c *SummaryCache) Set(ctx context.Context, fileID string, summary string) {
	if !c.Enabled() || summary == "" {
		return
	}
	if err := c.rdb.Set(ctx, key(fileID), summary, c.ttl).Err(); err != nil {
		c.log.Warn("summary cache set failed", "error", err)
	}
}

// Invalidate drops the entry, used when a file is deleted.
func (c *SummaryCache) Invalidate(ctx context.Context, fileID string) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Del(ctx, key(fileID)).Err(); err != nil {
		c.log.Warn("summary cache invalidate failed", "error", err)
	}
}

func (c *SummaryCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
