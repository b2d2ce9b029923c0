package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type MemoryOptions struct {
	// IdleTTL evicts keys not seen for this long. Defaults to three windows.
	IdleTTL time.Duration
	// SweepInterval defaults to one minute.
	SweepInterval time.Duration
	Now           func() time.Time
}

// MemoryLimiter is a per-process token bucket per key. Bursts up to
// Rate.Limit are admitted and the bucket refills evenly over Rate.Window.
type MemoryLimiter struct {
	rate     Rate
	idleTTL  time.Duration
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewMemoryLimiter(r Rate, opts MemoryOptions) *MemoryLimiter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 3 * r.Window
		if opts.IdleTTL < 3*time.Minute {
			opts.IdleTTL = 3 * time.Minute
		}
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	l := &MemoryLimiter{
		rate:     r,
		idleTTL:  opts.IdleTTL,
		now:      opts.Now,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.janitor(opts.SweepInterval)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	limiter := l.limiterFor(key, now)

	decision := Decision{Limit: l.rate.Limit}
	if limiter.AllowN(now, 1) {
		decision.Allowed = true
		decision.Remaining = int(limiter.TokensAt(now))
		if decision.Remaining < 0 {
			decision.Remaining = 0
		}
		return decision, nil
	}

	reservation := limiter.ReserveN(now, 1)
	decision.RetryAfter = reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return decision, nil
}

// Close stops the eviction goroutine. It is safe to call more than once.
func (l *MemoryLimiter) Close() error {
	l.once.Do(func() {
		close(l.stop)
		<-l.done
	})
	return nil
}

func (l *MemoryLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		every := rate.Every(l.rate.Window / time.Duration(l.rate.Limit))
		v = &visitor{limiter: rate.NewLimiter(every, l.rate.Limit)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *MemoryLimiter) sweep() {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, item := range l.visitors {
		if item.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *MemoryLimiter) janitor(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}
