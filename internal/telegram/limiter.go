package telegram

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket holds a single rate limiter and the last time its sender was seen,
// so idle entries can be evicted.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SenderLimiter is a per-sender token-bucket limiter. Buckets are created on
// demand, keyed by the Telegram sender id, and idle buckets are evicted
// opportunistically during lookups to keep memory bounded.
//
// The limiter is process-local and safe for concurrent use.
type SenderLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[int64]*bucket

	ttl      time.Duration
	cleanupN uint64
}

// NewSenderLimiter constructs a limiter replenishing rps tokens per second
// with the given burst size. rps <= 0 disables limiting entirely; burst
// values below 1 are coerced to 1.
func NewSenderLimiter(rps float64, burst int) *SenderLimiter {
	if burst < 1 {
		burst = 1
	}
	return &SenderLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[int64]*bucket),
		ttl:     10 * time.Minute,
	}
}

// Allow reports whether senderID may proceed right now.
func (l *SenderLimiter) Allow(senderID int64) bool {
	if l == nil || l.rps <= 0 {
		return true
	}
	return l.getBucket(senderID).Allow()
}

// getBucket returns (and refreshes) the limiter for senderID, creating it if
// absent. Eviction runs before the lookup so a stale bucket is dropped even
// when it is the one being fetched.
func (l *SenderLimiter) getBucket(senderID int64) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	l.cleanupN++
	if l.cleanupN >= 5000 {
		for id, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.ttl {
				delete(l.buckets, id)
			}
		}
		l.cleanupN = 0
	}

	if b, ok := l.buckets[senderID]; ok {
		b.lastSeen = now
		lim := b.limiter
		l.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.buckets[senderID] = &bucket{limiter: lim, lastSeen: now}
	l.mu.Unlock()
	return lim
}
