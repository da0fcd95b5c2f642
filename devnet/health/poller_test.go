package health

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeckit/zeckit/devnet/params"
)

type recordingSink struct {
	ticks int
	done  bool
}

func (s *recordingSink) Tick(int, time.Duration) { s.ticks++ }
func (s *recordingSink) Done()                   { s.done = true }

func TestPoll_ReadyOnFirstAttemptDoesNotWait(t *testing.T) {
	probe := func(context.Context) Outcome { return Ready() }
	policy := params.PollPolicy{Interval: time.Hour, MaxAttempts: 5}

	start := time.Now()
	sink := &recordingSink{}
	err := Poll(context.Background(), probe, policy, sink)
	require.NoError(t, err)
	assert.True(t, time.Since(start) < time.Second, "poller waited despite an immediately ready probe")
	assert.Equal(t, 1, sink.ticks)
	assert.True(t, sink.done)
}

func TestPoll_ReadyAfterSeveralAttempts(t *testing.T) {
	attempts := 0
	probe := func(context.Context) Outcome {
		attempts++
		if attempts < 3 {
			return NotReady(errors.New("still starting"))
		}
		return Ready()
	}
	policy := params.PollPolicy{Interval: time.Millisecond, MaxAttempts: 10}

	require.NoError(t, Poll(context.Background(), probe, policy, nil))
	assert.Equal(t, 3, attempts)
}

func TestPoll_AttemptBoundTimesOut(t *testing.T) {
	attempts := 0
	probe := func(context.Context) Outcome {
		attempts++
		return NotReady(errors.New("never ready"))
	}
	policy := params.PollPolicy{Interval: time.Millisecond, MaxAttempts: 4}

	err := Poll(context.Background(), probe, policy, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimedOut))
	assert.Equal(t, 4, attempts)
}

func TestPoll_DeadlineBoundTimesOut(t *testing.T) {
	probe := func(context.Context) Outcome {
		return NotReady(errors.New("never ready"))
	}
	policy := params.PollPolicy{Interval: 10 * time.Millisecond, Deadline: 50 * time.Millisecond}

	start := time.Now()
	err := Poll(context.Background(), probe, policy, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimedOut))
	// Bounded by the deadline plus one probe interval, never an infinite loop.
	assert.True(t, time.Since(start) < 500*time.Millisecond)
}

func TestPoll_FatalShortCircuits(t *testing.T) {
	attempts := 0
	probe := func(context.Context) Outcome {
		attempts++
		return Fatal(errors.New("service will never be ready"))
	}
	policy := params.PollPolicy{Interval: time.Millisecond, MaxAttempts: 100}

	err := Poll(context.Background(), probe, policy, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimedOut))
	assert.Equal(t, 1, attempts, "fatal outcome must stop polling without exhausting the budget")
}

func TestPoll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	probe := func(context.Context) Outcome {
		return NotReady(errors.New("still starting"))
	}
	policy := params.PollPolicy{Interval: time.Minute, MaxAttempts: 10}

	err := Poll(ctx, probe, policy, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPollPolicy_Ticks(t *testing.T) {
	assert.Equal(t, 7, params.PollPolicy{MaxAttempts: 7}.Ticks())
	assert.Equal(t, 31, params.PollPolicy{Interval: 2 * time.Second, Deadline: time.Minute}.Ticks())
	assert.Equal(t, 0, params.PollPolicy{Interval: time.Second}.Ticks())
}
