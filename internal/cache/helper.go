package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gighub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest. It reports false, without
// error, on a miss or when no client is configured.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside serves key from Redis when present. On a miss it calls fetch, which
// must populate dest, and stores dest with ttl. Cache failures never fail the
// call; fetch errors are returned unchanged and nothing is stored.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if client != nil {
		observability.CacheLookups.WithLabelValues(keyFamily(key), lookupResult(found, err)).Inc()
	}
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

func keyFamily(key string) string {
	family, _, _ := strings.Cut(key, ":")
	return family
}

func lookupResult(found bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case found:
		return "hit"
	}
	return "miss"
}
