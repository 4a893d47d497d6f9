package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const trendingKeyPrefix = "hashtags:trending:%d"

// TrendingTTL bounds how stale the trending board may get.
const TrendingTTL = 5 * time.Minute

func TrendingHashtagsKey(limit int) string {
	return fmt.Sprintf(trendingKeyPrefix, limit)
}

// Aside implements the cache-aside pattern: on a hit, dest is filled from the
// cached JSON; on a miss, fetch runs and its result (whatever dest points at
// afterwards) is cached with the given TTL. Without a Redis client it
// degrades to calling fetch directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if data, err := client.Get(ctx, key).Bytes(); err == nil {
		if err := json.Unmarshal(data, dest); err == nil {
			return nil
		}
		// Corrupt entry; fall through to refetch and overwrite.
	}

	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, data, ttl)
	}
	return nil
}

// Invalidate drops the key. A nil client makes this a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
