package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_BurstThenDeny(t *testing.T) {
	b := newBucket(5, 1.0)

	for i := 0; i < 5; i++ {
		assert.True(t, b.take(), "request %d fits in the burst", i+1)
	}
	assert.False(t, b.take(), "burst exhausted")
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(5, 10.0) // refills a token every 100ms

	for i := 0; i < 5; i++ {
		require.True(t, b.take())
	}
	require.False(t, b.take())

	time.Sleep(150 * time.Millisecond)
	assert.True(t, b.take(), "one token refilled after the wait")
}

func TestBucket_Status(t *testing.T) {
	b := newBucket(10, 1.0)

	for i := 0; i < 4; i++ {
		b.take()
	}

	remaining, reset := b.status()
	assert.Equal(t, 6, remaining)
	assert.True(t, reset.After(time.Now()), "a drained bucket resets in the future")
}

func limiterConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

func TestLimiter_AutoApplyTier(t *testing.T) {
	l := NewLimiter(limiterConfig())
	defer l.Stop()

	client := "203.0.113.7"

	// The auto-apply tier allows a burst of 5; "/auto-apply/" is a prefix
	// pattern, so every operation under it shares the budget.
	for i := 0; i < 5; i++ {
		allowed, info := l.Allow(client, "/auto-apply/preview-responses", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 30, info.Limit)
	}

	allowed, info := l.Allow(client, "/auto-apply/preview-responses", "POST")
	assert.False(t, allowed, "burst exhausted")
	assert.Equal(t, 30, info.Limit)
	assert.Positive(t, info.RetryAfter)

	// Browsing jobs is untouched by the auto-apply budget.
	allowed, info = l.Allow(client, "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 100, info.Limit, "reads use the default budget")
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(limiterConfig())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("203.0.113.7", "/auto-apply/auto-apply", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("203.0.113.7", "/auto-apply/auto-apply", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("198.51.100.23", "/auto-apply/auto-apply", "POST")
	assert.True(t, allowed, "another client keeps its own bucket")
}

func TestLimiter_HealthIsUnmetered(t *testing.T) {
	cfg := limiterConfig()
	cfg.DefaultLimit = 1
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("203.0.113.7", "/health", "GET")
		require.True(t, allowed, "health check %d", i+1)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	cfg := limiterConfig()
	cfg.DefaultLimit = 1
	cfg.Whitelist = map[string]bool{"203.0.113.7": true}
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("203.0.113.7", "/jobs", "GET")
		require.True(t, allowed, "whitelisted request %d", i+1)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	cfg := limiterConfig()
	cfg.Blacklist = map[string]bool{"203.0.113.66": true}
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, info := l.Allow("203.0.113.66", "/jobs", "GET")
	assert.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("203.0.113.7", "/auto-apply/auto-apply", "POST")
		require.True(t, allowed, "request %d with limiting disabled", i+1)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute}
	l := NewLimiter(cfg)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("203.0.113.7", "/jobs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount, "exactly the budget is admitted under contention")
}

func TestLimiter_ReapDropsIdleBuckets(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 4; i++ {
		client := fmt.Sprintf("203.0.113.%d", i+1)
		allowed, _ := l.Allow(client, "/jobs", "GET")
		require.True(t, allowed)
	}
	require.Len(t, l.buckets, 4)

	// Touch two of the clients, then reap with a cutoff between the touches
	// and the original creations.
	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now()
	for i := 0; i < 2; i++ {
		client := fmt.Sprintf("203.0.113.%d", i+1)
		allowed, _ := l.Allow(client, "/jobs", "GET")
		require.True(t, allowed)
	}

	l.reapIdle(cutoff)
	assert.Len(t, l.buckets, 2, "only the recently used buckets survive")
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("203.0.113.7", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"auto-apply prefix", "/auto-apply/analyze-form", "POST", 30, false},
		{"auto-apply submit", "/auto-apply/auto-apply", "POST", 30, false},
		{"register exact", "/auth/register", "POST", 20, false},
		{"login exact", "/auth/login", "POST", 60, false},
		{"job posting", "/jobs", "POST", 100, false},
		{"profile update prefix", "/users/me/profile", "PUT", 100, false},
		{"job listing falls through", "/jobs", "GET", 0, true},
		{"method must match", "/auth/login", "GET", 0, true},
		{"health is unmetered", "/health", "GET", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, cfg)
				return
			}
			require.NotNil(t, cfg)
			assert.Equal(t, tt.wantLimit, cfg.Limit)
		})
	}
}
