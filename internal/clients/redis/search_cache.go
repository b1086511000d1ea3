package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

// SearchCache is a hot tier in front of the Postgres search cache.
// All methods are nil-safe so callers can carry a nil cache when
// REDIS_ADDR is unset.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]types.GuideItem, bool)
	Set(ctx context.Context, query string, items []types.GuideItem, ttl time.Duration)
	Close() error
}

type searchCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewSearchCache(log *logger.Logger) (SearchCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_SEARCH_PREFIX"))
	if prefix == "" {
		prefix = "guide_search"
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

	return &searchCache{
		log:    log.With("service", "RedisSearchCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

// NewNoopSearchCache returns a cache whose operations all miss. Used
// when REDIS_ADDR is unset so callers never branch on nil.
func NewNoopSearchCache() SearchCache {
	return (*searchCache)(nil)
}

func (c *searchCache) key(query string) string {
	return c.prefix + ":" + strings.ToLower(strings.TrimSpace(query))
}

func (c *searchCache) Get(ctx context.Context, query string) ([]types.GuideItem, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(query)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("redis get failed", "error", err)
		}
		return nil, false
	}
	var items []types.GuideItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn("bad cached search payload", "error", err)
		return nil, false
	}
	return items, true
}

func (c *searchCache) Set(ctx context.Context, query string, items []types.GuideItem, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		c.log.Warn("marshal search payload failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(query), raw, ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "error", err)
	}
}

func (c *searchCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
