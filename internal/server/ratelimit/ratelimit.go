// Package ratelimit provides per-client token bucket rate limiting for the CV API.
package ratelimit

import (
	"sync"
	"time"
)

// idleTTL is how long an untouched bucket survives a sweep.
const idleTTL = time.Hour

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Info describes the outcome of one Allow call. Limit is 0 when the request
// was not metered.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket holds the tokens of one client for one endpoint policy.
type bucket struct {
	capacity float64
	perSec   float64
	tokens   float64
	updated  time.Time
	lastSeen time.Time
}

func newBucket(p EndpointConfig, now time.Time) *bucket {
	window := p.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := p.Burst
	if capacity <= 0 {
		capacity = p.Limit
	}
	return &bucket{
		capacity: float64(capacity),
		perSec:   float64(p.Limit) / window.Seconds(),
		tokens:   float64(capacity),
		updated:  now,
		lastSeen: now,
	}
}

// advance credits the tokens earned since the last update.
func (b *bucket) advance(now time.Time) {
	if now.After(b.updated) {
		b.tokens = min(b.capacity, b.tokens+now.Sub(b.updated).Seconds()*b.perSec)
		b.updated = now
	}
}

func (b *bucket) take() bool {
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *bucket) wait(tokens float64) time.Duration {
	if tokens <= 0 || b.perSec <= 0 {
		return 0
	}
	return time.Duration(tokens / b.perSec * float64(time.Second))
}

// untilNext is the wait before one whole token is available.
func (b *bucket) untilNext() time.Duration { return b.wait(1 - b.tokens) }

// untilFull is the wait before the bucket is back at capacity.
func (b *bucket) untilFull() time.Duration { return b.wait(b.capacity - b.tokens) }

// Limiter meters requests per client and endpoint policy.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig. When the
// limiter is enabled with a CleanupInterval, idle buckets are swept in the
// background until Stop is called.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweepEvery(config.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may call method on path now, consuming a
// token when it may. Paths matching one wildcard pattern share a bucket, so
// exporting many CVs draws from one budget.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	policy := l.policy(path, method)
	if policy.Limit <= 0 {
		return true, Info{Allowed: true}
	}
	key := clientID + ":" + policy.Path + ":" + method

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(policy, now)
		l.buckets[key] = b
	}
	b.advance(now)
	b.lastSeen = now

	info := Info{Allowed: b.take(), Limit: policy.Limit}
	info.Remaining = int(b.tokens)
	info.ResetTime = now.Add(b.untilFull())
	if !info.Allowed {
		info.RetryAfter = b.untilNext()
	}
	return info.Allowed, info
}

// policy resolves the endpoint configuration, falling back to the default limit.
func (l *Limiter) policy(path, method string) EndpointConfig {
	if ep := MatchEndpoint(path, method, l.config.EndpointConfigs); ep != nil {
		return *ep
	}
	return EndpointConfig{
		Path:   path,
		Method: method,
		Limit:  l.config.DefaultLimit,
		Window: l.config.DefaultWindow,
		Burst:  l.config.DefaultLimit,
	}
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets that have not been used for idleTTL.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idleTTL)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends background sweeping. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
