package throttle

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delay is a randomized pre-call delay bounded by [Min, Max].
type Delay struct {
	Min time.Duration
	Max time.Duration

	sleep func(context.Context, time.Duration) error
}

func New(min, max time.Duration) *Delay {
	if max < min {
		min, max = max, min
	}

	return &Delay{
		Min:   min,
		Max:   max,
		sleep: sleepContext,
	}
}

// Seconds builds a Delay from fractional second bounds, as found in the config.
func Seconds(min, max float64) *Delay {
	return New(time.Duration(min*float64(time.Second)), time.Duration(max*float64(time.Second)))
}

// Next draws the next delay.
func (d *Delay) Next() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}

	return d.Min + rand.N(d.Max-d.Min+1)
}

// Wait blocks for the next delay or until ctx is done.
func (d *Delay) Wait(ctx context.Context) error {
	next := d.Next()
	if next <= 0 {
		return ctx.Err()
	}

	if d.sleep == nil {
		return sleepContext(ctx, next)
	}
	return d.sleep(ctx, next)
}

// Wrap returns fn with a delay inserted before every call.
func Wrap[A, T any](d *Delay, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		if err := d.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}

		return fn(ctx, arg)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
