// Package ratelimit provides per-key token bucket rate limiting for MCP tool calls.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter implements a per-key token bucket rate limiter.
// Each key gets its own bucket with the configured rate and burst.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max burst size (also initial token count)
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute is NewLimiter with the rate given in calls per minute.
func PerMinute(calls float64, burst int) *Limiter {
	return NewLimiter(calls/60.0, burst)
}

// refill returns key's bucket topped up to now. Callers hold l.mu.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}
	return b
}

// Allow takes one token from key's bucket. It reports false when the
// bucket holds less than a whole token.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// Remaining returns the whole tokens left for key without consuming any.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.refill(key).tokens)
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default per-tool limits. Buckets are keyed by
// network, so a client hammering one network does not starve another.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"cogna_neuron":     PerMinute(120, 20),
		"cogna_connect":    PerMinute(120, 20),
		"cogna_disconnect": PerMinute(120, 20),
		"cogna_check":      PerMinute(300, 50),
		"cogna_weight":     PerMinute(300, 50),
		"cogna_transmit":   PerMinute(600, 100),
		"cogna_graph":      PerMinute(30, 5),
		"cogna_list":       PerMinute(60, 10),
		"cogna_validate":   PerMinute(10, 5),
		"cogna_backup":     PerMinute(5, 2),
		"cogna_restore":    PerMinute(5, 2),
	}
}

// CheckLimit consumes a token for toolName on the given network.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName, network string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(network) {
		return fmt.Errorf("%w for %s on network %q, please try again shortly", ErrRateLimited, toolName, network)
	}
	return nil
}
