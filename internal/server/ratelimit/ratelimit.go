// Package ratelimit implements per-client token-bucket rate limiting for the
// API routes. Auto-apply submissions get the tightest budgets because each
// one can hold a headless browser session.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is one client+route token bucket. level refills continuously at
// rate tokens per second, capped at capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	level    float64
	updated  time.Time
	lastSeen time.Time
}

func newBucket(capacity int, rate float64) *bucket {
	now := time.Now()
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		level:    float64(capacity),
		updated:  now,
		lastSeen: now,
	}
}

// refill advances the level to now. Caller holds b.mu.
func (b *bucket) refill(now time.Time) {
	b.level = min(b.capacity, b.level+now.Sub(b.updated).Seconds()*b.rate)
	b.updated = now
}

// take consumes one token if one is available.
func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refill(now)
	b.lastSeen = now

	if b.level >= 1 {
		b.level--
		return true
	}
	return false
}

// status reports the whole tokens remaining and when the bucket refills
// completely, without consuming anything.
func (b *bucket) status() (remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refill(now)

	reset = now
	if b.level < b.capacity {
		wait := (b.capacity - b.level) / b.rate
		reset = now.Add(time.Duration(wait * float64(time.Second)))
	}
	return int(b.level), reset
}

// Info describes the outcome of one rate-limit check; the server turns it
// into X-RateLimit-* headers and 429 bodies.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds limiter configuration. Routes without an EndpointConfig fall
// back to the default limit and window.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter tracks one token bucket per client+route pair and reaps buckets
// that have gone idle.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	config  *Config
	ticker  *time.Ticker
	done    chan struct{}
}

// NewLimiter creates a limiter; a nil config enables limiting with
// library defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.done = make(chan struct{})
		go l.reap()
	}
	return l
}

// Allow checks one request from clientID against the budget for the route.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	// Limit 0 marks an unmetered route, e.g. the health check.
	if cfg.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	b := l.bucketFor(clientID+" "+method+" "+endpoint, cfg)
	allowed := b.take()
	remaining, reset := b.status()

	info := Info{
		Allowed:   allowed,
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if wait := time.Until(reset); wait > 0 {
			info.RetryAfter = wait
		}
	}
	return allowed, info
}

// bucketFor returns the bucket for the key, creating it on first sight.
func (l *Limiter) bucketFor(key string, cfg *EndpointConfig) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	fresh := newBucket(burst, float64(cfg.Limit)/cfg.Window.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}
	l.buckets[key] = fresh
	return fresh
}

func (l *Limiter) reap() {
	for {
		select {
		case <-l.ticker.C:
			// A bucket idle for an hour has long since refilled; dropping it
			// changes nothing for the client.
			l.reapIdle(time.Now().Add(-time.Hour))
		case <-l.done:
			return
		}
	}
}

// reapIdle drops every bucket last used before the cutoff.
func (l *Limiter) reapIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastSeen.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// Stop halts the background reaper.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
