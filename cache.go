package atelier

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// cacheStore holds encoded page data. Implementations must be safe for
// concurrent use.
type cacheStore interface {
	get(ctx context.Context, key string) ([]byte, bool)
	set(ctx context.Context, key string, val []byte)
	purge(ctx context.Context)
}

// ContentCache caches public reads with a TTL. Every admin mutation calls
// Invalidate so visitors see changes on their next request.
type ContentCache struct {
	store  cacheStore
	logger *log.Logger
	gen    atomic.Uint64
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache returns a ContentCache backed by an in-process expirable LRU.
func NewMemoryCache(size int, ttl time.Duration) *ContentCache {
	return &ContentCache{
		store:  &memoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)},
		logger: log.New("cache"),
	}
}

// NewRedisCache returns a ContentCache stored in Redis under prefix.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *ContentCache {
	return &ContentCache{
		store:  &redisStore{client: client, prefix: prefix, ttl: ttl},
		logger: log.New("cache"),
	}
}

// Invalidate drops every cached entry so the next read triggers a fresh load.
func (c *ContentCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	c.gen.Add(1)
	c.store.purge(ctx)
}

// Stats returns hit and miss counts since start.
func (c *ContentCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// cached returns the value stored under key, calling load and storing its
// result on a miss. A nil cache always loads. Cache failures degrade to a
// direct load.
func cached[T any](ctx context.Context, c *ContentCache, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if raw, ok := c.store.get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.hits.Add(1)
			return v, nil
		}
	}
	c.misses.Add(1)
	gen := c.gen.Load()
	v, err := load()
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warnf("cache encode %s: %v", key, err)
		return v, nil
	}
	// A mutation that landed while loading makes v stale.
	if c.gen.Load() == gen {
		c.store.set(ctx, key, raw)
	}
	return v, nil
}

type memoryStore struct {
	lru *expirable.LRU[string, []byte]
}

func (m *memoryStore) get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *memoryStore) set(_ context.Context, key string, val []byte) {
	m.lru.Add(key, val)
}

func (m *memoryStore) purge(context.Context) {
	m.lru.Purge()
}

// redisStore namespaces keys by a generation counter; purging bumps the
// counter and lets the old generation expire.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (r *redisStore) genKey() string { return r.prefix + ":gen" }

func (r *redisStore) key(ctx context.Context, key string) (string, error) {
	gen, err := r.client.Get(ctx, r.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		return "", err
	}
	return r.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key, nil
}

func (r *redisStore) get(ctx context.Context, key string) ([]byte, bool) {
	k, err := r.key(ctx, key)
	if err != nil {
		return nil, false
	}
	val, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *redisStore) set(ctx context.Context, key string, val []byte) {
	k, err := r.key(ctx, key)
	if err != nil {
		return
	}
	r.client.Set(ctx, k, val, r.ttl)
}

func (r *redisStore) purge(ctx context.Context) {
	r.client.Incr(ctx, r.genKey())
}
