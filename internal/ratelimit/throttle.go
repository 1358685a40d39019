package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out outbound page fetches: a hard rate ceiling followed
// by a random pause in [min, max].
type Throttle struct {
	limiter *rate.Limiter
	min     time.Duration
	max     time.Duration
	jitter  func(min, max time.Duration) time.Duration
}

// NewThrottle builds a throttle. perSecond <= 0 disables the rate ceiling.
func NewThrottle(min, max time.Duration, perSecond float64) *Throttle {
	if max < min {
		max = min
	}
	t := &Throttle{min: min, max: max, jitter: uniform}
	if perSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return t
}

// Wait blocks until the next fetch may start or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	d := t.jitter(t.min, t.max)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func uniform(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}
