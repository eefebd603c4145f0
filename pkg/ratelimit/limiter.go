package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a minimum wall-clock gap between consecutive permitted
// calls. The first call never blocks. One Interval instance is shared by
// every component performing outbound requests, so the spacing applies
// process-wide.
type Interval struct {
	delay   time.Duration
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewInterval creates a limiter that spaces permitted calls at least delay
// apart.
func NewInterval(delay time.Duration) *Interval {
	return &Interval{
		delay:   delay,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Allow reports whether a call may proceed right now, consuming the slot if
// so.
func (i *Interval) Allow() bool {
	i.mu.Lock()
	l := i.limiter
	i.mu.Unlock()
	return l.Allow()
}

// Wait blocks until at least the configured delay has elapsed since the last
// permitted call, then records the current call as the new last one.
func (i *Interval) Wait() {
	i.mu.Lock()
	l := i.limiter
	i.mu.Unlock()

	// Waiting on the background context never fails with burst 1; blocking
	// here is plain sleeping, not abortable.
	_ = l.Wait(context.Background())
}

// Reset forgets all call history; the next call proceeds immediately.
func (i *Interval) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.limiter = rate.NewLimiter(rate.Every(i.delay), 1)
}
