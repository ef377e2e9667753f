package identity

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// throttle keeps a token bucket per identity name and drops buckets that
// have been idle for a while. A nil throttle allows everything.
type throttle struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	byName map[string]*bucket
	hits   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newThrottle(perSecond float64, burst int) *throttle {
	if perSecond <= 0 || burst <= 0 {
		return nil
	}

	return &throttle{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		byName:  make(map[string]*bucket),
	}
}

func (t *throttle) allow(name string, now time.Time) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.byName[name]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.byName[name] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	t.hits++
	if t.hits%256 == 0 {
		cutoff := now.Add(-t.idleTTL)
		for k, v := range t.byName {
			if v.lastSeen.Before(cutoff) {
				delete(t.byName, k)
			}
		}
	}

	return allowed
}
