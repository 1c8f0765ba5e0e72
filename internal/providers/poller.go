package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
)

// PollPolicy tunes a poll loop. Intervals and attempt budgets accommodate
// provider SLAs and come from configuration, never from code.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// StatusFunc fetches the current state of an asynchronous provider job.
type StatusFunc func(ctx context.Context, taskID string) (*RawResponse, error)

// Poller drives fixed-interval polling of asynchronous provider jobs. The
// wait is a timer select against the context, so a disconnected client
// cancels the loop instead of leaving an orphaned polling task.
type Poller struct {
	logger zerolog.Logger
}

func NewPoller(logger zerolog.Logger) *Poller {
	return &Poller{logger: logger}
}

// Await polls until the job reaches a terminal state or the attempt budget is
// exhausted. Queued and processing states continue the loop; succeeded
// returns the response; any other terminal state raises
// GenerationFailedError; running out of attempts raises TimeoutError.
func (p *Poller) Await(ctx context.Context, handle JobHandle, status StatusFunc, policy PollPolicy) (*RawResponse, error) {
	if policy.Interval <= 0 {
		policy.Interval = 5 * time.Second
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 60
	}

	timer := time.NewTimer(policy.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		raw, err := status(ctx, handle.TaskID)
		if err != nil {
			return nil, err
		}

		switch raw.State {
		case JobQueued, JobProcessing:
			p.logger.Debug().
				Str("provider", handle.Provider).
				Str("task_id", handle.TaskID).
				Int("attempt", attempt).
				Str("state", string(raw.State)).
				Msg("poll: job still running")
			timer.Reset(policy.Interval)
		case JobSucceeded:
			return raw, nil
		default:
			return nil, &domain.GenerationFailedError{Provider: handle.Provider, Status: raw.UpstreamStatus}
		}
	}

	return nil, &domain.TimeoutError{Provider: handle.Provider, Attempts: policy.MaxAttempts, Interval: policy.Interval}
}
