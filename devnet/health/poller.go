package health

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zeckit/zeckit/devnet/params"
)

// ErrTimedOut is returned by Poll when the retry budget is exhausted before
// the probe ever reported ready.
var ErrTimedOut = errors.New("service did not become ready in time")

// ProbeFunc is one readiness attempt against some service.
type ProbeFunc func(ctx context.Context) Outcome

// ProgressSink observes polling progress. It is a display side channel, not
// business state, and is passed explicitly into every poll rather than held
// as ambient process state.
type ProgressSink interface {
	// Tick is invoked once per probe attempt.
	Tick(attempt int, elapsed time.Duration)
	// Done is invoked exactly once when polling stops, for any reason.
	Done()
}

// NopSink discards all progress.
type NopSink struct{}

// Tick implements ProgressSink.
func (NopSink) Tick(int, time.Duration) {}

// Done implements ProgressSink.
func (NopSink) Done() {}

// Poll invokes probe at the policy's interval until it reports ready. The
// first attempt runs immediately, so a service that is already up never
// waits. Polling ends with ErrTimedOut once either the attempt count or the
// elapsed-time bound is exceeded, and ends immediately with the probe's
// error when the probe reports a fatal outcome.
func Poll(ctx context.Context, probe ProbeFunc, policy params.PollPolicy, sink ProgressSink) error {
	if sink == nil {
		sink = NopSink{}
	}
	defer sink.Done()

	start := time.Now()
	var lastErr error
	for attempt := 1; ; attempt++ {
		sink.Tick(attempt, time.Since(start))

		outcome := probe(ctx)
		switch outcome.Status {
		case StatusReady:
			return nil
		case StatusFatal:
			return errors.Wrap(outcome.Err, "service can not become ready")
		}
		lastErr = outcome.Err

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return exhausted(attempt, start, lastErr)
		}
		if policy.Deadline > 0 && time.Since(start)+policy.Interval > policy.Deadline {
			return exhausted(attempt, start, lastErr)
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "polling canceled")
		case <-time.After(policy.Interval):
		}
	}
}

func exhausted(attempts int, start time.Time, lastErr error) error {
	if lastErr != nil {
		return errors.Wrapf(ErrTimedOut, "%d attempts over %s, last: %v",
			attempts, time.Since(start).Round(time.Second), lastErr)
	}
	return errors.Wrapf(ErrTimedOut, "%d attempts over %s",
		attempts, time.Since(start).Round(time.Second))
}
