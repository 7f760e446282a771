// Package ratelimit throttles API clients with per-client, per-endpoint
// token buckets. Chat endpoints fan out to the embedding service and the
// language model, so they get much tighter budgets than plain reads.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client bucket survives before the janitor
// drops it.
const staleAfter = time.Hour

// Info is the limiter's view of one decision. The server translates it into
// the X-RateLimit response headers, so it is populated on allowed requests
// too.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

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

// bucket pairs a token bucket with the parameters needed to derive header
// values and the last-seen timestamp the janitor sweeps on.
type bucket struct {
	limiter   *rate.Limiter
	burst     int
	perSecond float64
	lastSeen  time.Time
}

// Limiter hands out token buckets keyed by client, endpoint, and method.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config

	janitor *time.Ticker
	stop    chan struct{}
}

// NewLimiter creates a limiter. A nil config selects permissive defaults
// with cleanup enabled.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.janitor = time.NewTicker(config.CleanupInterval)
		l.stop = make(chan struct{})
		go l.sweepLoop()
	}

	return l
}

// Allow decides whether one request from clientID to the endpoint may
// proceed, and reports the state the response headers should carry.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	// Limit 0 marks an unmetered endpoint such as the health check.
	if cfg.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	b := l.bucketFor(clientID+"|"+method+"|"+endpoint, cfg)

	allowed := b.limiter.Allow()

	tokens := b.limiter.Tokens()
	if tokens < 0 {
		tokens = 0
	}

	now := time.Now()
	resetTime := now
	if deficit := float64(b.burst) - tokens; deficit > 0 {
		resetTime = now.Add(time.Duration(deficit / b.perSecond * float64(time.Second)))
	}

	var retryAfter time.Duration
	if !allowed {
		retryAfter = time.Duration((1 - tokens) / b.perSecond * float64(time.Second))
		if retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      cfg.Limit,
		Remaining:  int(tokens),
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// bucketFor returns the bucket for key, creating it on first sight, and
// stamps its last access.
func (l *Limiter) bucketFor(key string, cfg *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Limit
		}
		perSecond := float64(cfg.Limit) / cfg.Window.Seconds()
		b = &bucket{
			limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
			burst:     burst,
			perSecond: perSecond,
		}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.janitor.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle past staleAfter so one-off clients do not
// accumulate forever.
func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop halts the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.janitor != nil {
		l.janitor.Stop()
	}
	if l.stop != nil {
		close(l.stop)
	}
}
