package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hirebridge/hirebridge-backend/internal/platform/envutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/search"
)

// SearchCache is a short-TTL cache for ranked search responses. Failures are
// treated as misses; the cache never fails a search call.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]search.RankedResult, bool)
	Set(ctx context.Context, key string, results []search.RankedResult)
	Close() error
}

type redisSearchCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisSearchCache(log *logger.Logger) (SearchCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := time.Duration(envutil.Int("SEARCH_CACHE_TTL_SECONDS", 60)) * time.Second

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

	return &redisSearchCache{
		log: log.With("service", "RedisSearchCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

// Key builds a deterministic cache key for one search call.
func Key(query string, opts search.SearchOptions) string {
	return fmt.Sprintf("search:%s|vw=%.4f|gw=%.4f|min=%d|limit=%d",
		strings.ToLower(strings.TrimSpace(query)),
		opts.VectorWeight,
		opts.GraphWeight,
		opts.MinSharedSkills,
		opts.Limit,
	)
}

func (c *redisSearchCache) Get(ctx context.Context, key string) ([]search.RankedResult, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var results []search.RankedResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.log.Warn("cache decode failed", "key", key, "error", err)
		return nil, false
	}
	return results, true
}

func (c *redisSearchCache) Set(ctx context.Context, key string, results []search.RankedResult) {
	raw, err := json.Marshal(results)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *redisSearchCache) Close() error {
	return c.rdb.Close()
}
