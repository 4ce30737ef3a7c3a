package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// DefaultCacheTTL bounds staleness for entries that miss an invalidation.
const DefaultCacheTTL = 5 * time.Minute

// Cache is the query cache behind list, metadata and detail endpoints.
// Entries are tagged with a resource name so every key a mutation touches
// can be invalidated together. Keys encode the full query spec (page,
// per_page, sort, filters), so distinct views never collide.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key, resource string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidateResource(ctx context.Context, resource string) error
}

// NewCacheFromEnv returns a Redis-backed cache when REDIS_HOST is set and
// an in-process cache otherwise.
func NewCacheFromEnv() Cache {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		logrus.Info("REDIS_HOST not set, using in-memory query cache")
		return NewMemoryCache()
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return &RedisCache{client: client}
}

// RedisCache keeps cache entries in Redis. A per-resource set tracks which
// keys belong to a resource so invalidation can delete them in one pass.
type RedisCache struct {
	client *redis.Client
}

func tagKey(resource string) string {
	return "cachetag:" + resource
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, resource string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, tagKey(resource), key).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) InvalidateResource(ctx context.Context, resource string) error {
	keys, err := r.client.SMembers(ctx, tagKey(resource)).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, tagKey(resource)).Err()
}

// MemoryCache is the in-process fallback, also used by the tests. Entries
// honor the TTL so staleness stays bounded even without Redis.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key, resource string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	entry := memoryEntry{data: stored}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	if m.tags[resource] == nil {
		m.tags[resource] = make(map[string]struct{})
	}
	m.tags[resource][key] = struct{}{}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache) InvalidateResource(_ context.Context, resource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.tags[resource] {
		delete(m.entries, key)
	}
	delete(m.tags, resource)
	return nil
}

// OptimisticUpdate runs a mutation with an optimistic cache patch on the
// affected detail entry. The pre-patch snapshot is captured before the
// patch is applied and restored verbatim (never re-derived) if the
// mutation fails. On success the resource's cached lists are still
// invalidated so server-computed fields (FX rate snapshots, generated
// reference numbers) get reconciled on the next read.
func OptimisticUpdate(ctx context.Context, c Cache, key, resource string, patch func([]byte) []byte, mutate func() error) error {
	snapshot, had, err := c.Get(ctx, key)
	if err != nil {
		// Cache unavailable: fall through to the plain mutation path.
		logrus.Warnf("cache get failed for %s: %v", key, err)
		had = false
	}

	if had && patch != nil {
		if err := c.Set(ctx, key, resource, patch(snapshot), DefaultCacheTTL); err != nil {
			logrus.Warnf("optimistic patch failed for %s: %v", key, err)
		}
	}

	if err := mutate(); err != nil {
		if had {
			if rbErr := c.Set(ctx, key, resource, snapshot, DefaultCacheTTL); rbErr != nil {
				logrus.Errorf("cache rollback failed for %s: %v", key, rbErr)
			}
		} else {
			_ = c.Delete(ctx, key)
		}
		return err
	}

	return c.InvalidateResource(ctx, resource)
}
