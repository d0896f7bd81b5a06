package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter_DurationWithinRange(t *testing.T) {
	j := NewJitter(42)
	for i := 0; i < 200; i++ {
		d := j.Duration(5*time.Second, 10*time.Second)
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 10*time.Second)
	}
}

func TestJitter_DegenerateRange(t *testing.T) {
	j := NewJitter(1)
	assert.Equal(t, time.Second, j.Duration(time.Second, time.Second))
	assert.Equal(t, 2*time.Second, j.Duration(2*time.Second, time.Second))
}

func TestJitter_PauseHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := NewJitter(1).Pause(ctx, time.Hour, 2*time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestJitter_PauseSleeps(t *testing.T) {
	start := time.Now()
	err := NewJitter(1).Pause(context.Background(), 10*time.Millisecond, 20*time.Millisecond)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestNone(t *testing.T) {
	assert.NoError(t, None.Pause(context.Background(), time.Hour, time.Hour))
	assert.Zero(t, None.Duration(5*time.Second, 10*time.Second))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Pause(context.Background(), time.Second, 2*time.Second)
	_ = r.Pause(context.Background(), 3*time.Second, 5*time.Second)

	assert.Equal(t, [][2]time.Duration{{time.Second, 2 * time.Second}, {3 * time.Second, 5 * time.Second}}, r.Pauses)
}
