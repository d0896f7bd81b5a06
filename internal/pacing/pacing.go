// Package pacing inserts randomized pauses between browser interactions.
package pacing

import (
	"context"
	"math/rand"
	"time"
)

// Pacer pauses for a duration drawn from [min, max]
type Pacer interface {
	Pause(ctx context.Context, min, max time.Duration) error
	// Duration draws a duration from [min, max] without sleeping
	Duration(min, max time.Duration) time.Duration
}

// Jitter sleeps for a uniformly random duration
type Jitter struct {
	rng *rand.Rand
}

// NewJitter creates a Jitter seeded from seed
func NewJitter(seed int64) *Jitter {
	return &Jitter{rng: rand.New(rand.NewSource(seed))}
}

// Duration draws a duration from [min, max]
func (j *Jitter) Duration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(j.rng.Int63n(int64(max-min)+1))
}

// Pause sleeps for Duration(min, max) or until ctx is done
func (j *Jitter) Pause(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, j.Duration(min, max))
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// None never sleeps. Duration returns zero, so bounded waits check their condition once.
var None Pacer = none{}

type none struct{}

func (none) Duration(_, _ time.Duration) time.Duration { return 0 }

func (none) Pause(ctx context.Context, _, _ time.Duration) error { return ctx.Err() }

// Recorder never sleeps and records every requested pause
type Recorder struct {
	Pauses [][2]time.Duration
}

// Duration returns zero
func (r *Recorder) Duration(_, _ time.Duration) time.Duration { return 0 }

// Pause records the range and returns immediately
func (r *Recorder) Pause(ctx context.Context, min, max time.Duration) error {
	r.Pauses = append(r.Pauses, [2]time.Duration{min, max})
	return ctx.Err()
}
