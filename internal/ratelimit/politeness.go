package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Politeness draws a pause from a fixed [Min, Max] window after each
// outbound request to the vendor site.
type Politeness struct {
	Min   time.Duration
	Max   time.Duration
	rng   *rand.Rand
	sleep SleepFunc
}

// NewPoliteness returns a delay source drawing from rng. A nil sleep uses
// a context-aware timer.
func NewPoliteness(minDelay, maxDelay time.Duration, rng *rand.Rand, sleep SleepFunc) *Politeness {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Politeness{Min: minDelay, Max: maxDelay, rng: rng, sleep: sleep}
}

// Next returns the next delay, uniform over [Min, Max].
func (p *Politeness) Next() time.Duration {
	span := p.Max - p.Min
	if span <= 0 || p.rng == nil {
		return p.Min
	}
	return p.Min + time.Duration(p.rng.Float64()*float64(span))
}

// Wait sleeps for the next delay and returns it.
func (p *Politeness) Wait(ctx context.Context) (time.Duration, error) {
	d := p.Next()
	if d <= 0 {
		return 0, nil
	}
	return d, p.sleep(ctx, d)
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
