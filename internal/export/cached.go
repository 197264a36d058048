package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/cv-builder/internal/logger"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// DefaultCacheTTL is how long an exported PDF stays cached.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores exported bytes by key. Get reports a miss with ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisCacheFromURL parses a redis:// URL and connects.
func NewRedisCacheFromURL(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &Error{Op: "cache", Message: "invalid redis url", Cause: err}
	}
	return NewRedisCache(redis.NewClient(opts)), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedExporterConfig holds configuration for the cached exporter.
type CachedExporterConfig struct {
	TTL       time.Duration
	KeyPrefix string
	SkipCache bool
}

// DefaultCachedExporterConfig returns a 24h TTL under the "cvbuilder:pdf:" prefix.
func DefaultCachedExporterConfig() *CachedExporterConfig {
	return &CachedExporterConfig{
		TTL:       DefaultCacheTTL,
		KeyPrefix: "cvbuilder:pdf:",
	}
}

// CachedExporter serves repeated exports of an unchanged document from cache.
type CachedExporter struct {
	next  Exporter
	cache Cache
	cfg   *CachedExporterConfig
	log   *logger.Logger
}

// NewCachedExporter wraps next. A nil cache disables caching.
func NewCachedExporter(next Exporter, cache Cache, cfg *CachedExporterConfig, log *logger.Logger) *CachedExporter {
	if cfg == nil {
		cfg = DefaultCachedExporterConfig()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedExporter{next: next, cache: cache, cfg: cfg, log: log}
}

// PDF returns cached bytes when the same HTML was exported with the same
// options, otherwise exports and stores the result. Cache errors are logged
// and bypassed.
func (c *CachedExporter) PDF(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error) {
	if c.cache == nil || c.cfg.SkipCache || doc == nil {
		return c.next.PDF(ctx, doc, opts)
	}

	html, err := doc.HTML()
	if err != nil {
		return nil, &Error{Op: "pdf", Message: "failed to serialize document", Cause: err}
	}
	key := c.cfg.KeyPrefix + CacheKey(html, opts)

	data, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("export cache read failed", "key", key, "error", err)
	case ok:
		c.log.Debug("export cache hit", "key", key)
		return data, nil
	}

	data, err = c.next.PDF(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.cfg.TTL); err != nil {
		c.log.Warn("export cache write failed", "key", key, "error", err)
	}
	return data, nil
}

// Snapshot passes through to the wrapped exporter. Images are not cached.
func (c *CachedExporter) Snapshot(ctx context.Context, doc *rendering.Document, opts Options) ([]byte, error) {
	snap, ok := c.next.(Snapshotter)
	if !ok {
		return nil, &Error{Op: "snapshot", Message: "exporter cannot take snapshots"}
	}
	return snap.Snapshot(ctx, doc, opts)
}

// CacheKey hashes the HTML together with the options that affect output.
// The download filename is not part of the key.
func CacheKey(html string, opts Options) string {
	opts.Filename = ""
	h := sha256.New()
	h.Write([]byte(html))
	h.Write([]byte{0})
	b, _ := json.Marshal(opts)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}
