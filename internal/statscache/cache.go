package statscache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// Cache keeps rendered aggregates (formatted text blocks, chart PNGs) warm
// between inserts. Entries are best-effort: a miss or a Redis failure just
// means recomputing. Every live or backfill insert invalidates the whole
// namespace, so stale reads last at most one insert.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// NewFromURL connects to Redis via a redis:// URL and pings it once.
func NewFromURL(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return New(rdb, ttl), nil
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) key(kind string) string { return "stats:" + strings.TrimSpace(kind) }
func (c *Cache) keyIndex() string       { return "stats:index" }

// GetText returns a cached text block and whether it was present.
func (c *Cache) GetText(ctx context.Context, kind string) (string, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(kind)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

func (c *Cache) SetText(ctx context.Context, kind, value string) error {
	return c.set(ctx, kind, []byte(value))
}

// GetImage returns a cached PNG and whether it was present.
func (c *Cache) GetImage(ctx context.Context, kind string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(kind)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *Cache) SetImage(ctx context.Context, kind string, png []byte) error {
	return c.set(ctx, kind, png)
}

func (c *Cache) set(ctx context.Context, kind string, raw []byte) error {
	key := c.key(kind)
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	if err := c.rdb.SAdd(ctx, c.keyIndex(), key).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, c.keyIndex(), c.ttl).Err()
}

// Invalidate drops every cached entry. Called after any successful insert.
func (c *Cache) Invalidate(ctx context.Context) error {
	keys, err := c.rdb.SMembers(ctx, c.keyIndex()).Result()
	if err != nil {
		return err
	}
	keys = append(keys, c.keyIndex())
	return c.rdb.Del(ctx, keys...).Err()
}
