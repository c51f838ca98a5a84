package service

import (
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter using the token bucket
// algorithm. It is safe for concurrent use. Buckets idle for longer than
// ten minutes are dropped by a background sweeper until Close is called.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter that allows up to capacity tokens per
// key, refilling at rate tokens per second.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go tb.sweep(5*time.Minute, 10*time.Minute)
	return tb
}

// NewPerMinuteLimiter creates a limiter refilling perMinute tokens each
// minute with the given burst.
func NewPerMinuteLimiter(perMinute, burst int) *TokenBucket {
	return NewTokenBucket(float64(perMinute)/60, float64(burst))
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*tb.rate, tb.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Close stops the background sweeper.
func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.done) })
}

func (tb *TokenBucket) sweep(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-tb.done:
			return
		case <-ticker.C:
			tb.mu.Lock()
			cutoff := tb.now().Add(-idle)
			for key, b := range tb.buckets {
				if b.last.Before(cutoff) {
					delete(tb.buckets, key)
				}
			}
			tb.mu.Unlock()
		}
	}
}
