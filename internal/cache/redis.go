package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hshy1839/seongji-erp-server/internal/config"
)

// ListTTL is how long a cached list page lives.
const ListTTL = 2 * time.Minute

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close shuts the connection down.
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// ListKey is the cache key of one list request of a resource.
func ListKey(resource, rawQuery string) string {
	sum := sha256.Sum256([]byte(rawQuery))
	return fmt.Sprintf("list:%s:%s", resource, hex.EncodeToString(sum[:])[:32])
}

// GetCached returns cached data if available
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// ledgerTargets lists the resources whose rows change when a resource is written.
var ledgerTargets = map[string][]string{
	"deliveries": {"stocks"},
	"shipments":  {"orders"},
}

// InvalidateResource clears the cached lists of a resource and of the ledgers it moves.
// Called after every write and every stored upload.
func InvalidateResource(ctx context.Context, resource string) {
	InvalidatePattern(ctx, "list:"+resource+":*")
	for _, target := range ledgerTargets[resource] {
		InvalidatePattern(ctx, "list:"+target+":*")
	}
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
