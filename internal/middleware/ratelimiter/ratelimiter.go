// Package ratelimiter implements a per-identity token bucket with idle
// expiry, used to throttle message posting and vote casting.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	expiry     *time.Timer
	identity   string
	parent     *Limiter
}

// Limiter manages one token bucket per identity (user id, IP, "global").
type Limiter struct {
	mu       sync.RWMutex
	buckets  map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
	idleTTL  time.Duration
}

func New(rate, capacity float64, idleTTL time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		idleTTL:  idleTTL,
	}
}

// Allow consumes one token for the identity if available.
func (l *Limiter) Allow(identity string) bool {
	return l.getBucket(identity).allow(l.rate, l.capacity)
}

func (l *Limiter) getBucket(identity string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[identity]
	l.mu.RUnlock()
	if ok {
		b.touch(l.idleTTL)
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// re-check, another goroutine may have created it
	if b, ok = l.buckets[identity]; ok {
		b.touch(l.idleTTL)
		return b
	}
	b = &bucket{
		tokens:     l.capacity,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     l,
	}
	l.buckets[identity] = b
	b.touch(l.idleTTL)
	return b
}

func (l *Limiter) drop(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

// Stop cancels every expiry timer.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.expiry != nil {
			b.expiry.Stop()
		}
	}
}

func (b *bucket) allow(rate, capacity float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * rate
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// touch pushes the idle-expiry timer out; an untouched bucket frees itself.
func (b *bucket) touch(ttl time.Duration) {
	if b.expiry != nil {
		b.expiry.Stop()
	}
	b.expiry = time.AfterFunc(ttl, func() {
		b.parent.drop(b.identity)
	})
}

func Rps10() *Limiter         { return New(10, 10, time.Hour) }
func Rps100() *Limiter        { return New(100, 100, time.Hour) }
func OncePerSecond() *Limiter { return New(1, 1, time.Hour) }
