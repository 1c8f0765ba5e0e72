package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
)

func testHandle() JobHandle {
	return JobHandle{TaskID: "task-1", Provider: "fake", SubmittedAt: time.Now()}
}

func TestAwaitSucceedsAfterProcessing(t *testing.T) {
	p := NewPoller(zerolog.Nop())
	calls := 0
	status := func(ctx context.Context, taskID string) (*RawResponse, error) {
		calls++
		if calls < 3 {
			return &RawResponse{State: JobProcessing}, nil
		}
		return &RawResponse{State: JobSucceeded, VideoURL: "https://cdn.example/video.mp4"}, nil
	}

	raw, err := p.Await(context.Background(), testHandle(), status, PollPolicy{Interval: time.Millisecond, MaxAttempts: 10})
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if raw.VideoURL != "https://cdn.example/video.mp4" {
		t.Fatalf("unexpected video url %q", raw.VideoURL)
	}
	if calls != 3 {
		t.Fatalf("expected 3 status calls, got %d", calls)
	}
}

func TestAwaitTimesOutWhileProcessing(t *testing.T) {
	p := NewPoller(zerolog.Nop())
	status := func(ctx context.Context, taskID string) (*RawResponse, error) {
		return &RawResponse{State: JobProcessing}, nil
	}

	_, err := p.Await(context.Background(), testHandle(), status, PollPolicy{Interval: time.Millisecond, MaxAttempts: 4})
	var timeoutErr *domain.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Attempts != 4 {
		t.Fatalf("expected 4 attempts recorded, got %d", timeoutErr.Attempts)
	}
}

func TestAwaitFailsOnTerminalState(t *testing.T) {
	p := NewPoller(zerolog.Nop())
	status := func(ctx context.Context, taskID string) (*RawResponse, error) {
		return &RawResponse{State: JobFailed, UpstreamStatus: "CONTENT_POLICY"}, nil
	}

	_, err := p.Await(context.Background(), testHandle(), status, PollPolicy{Interval: time.Millisecond, MaxAttempts: 10})
	var failedErr *domain.GenerationFailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("expected GenerationFailedError, got %v", err)
	}
	if failedErr.Status != "CONTENT_POLICY" {
		t.Fatalf("expected upstream status preserved, got %q", failedErr.Status)
	}
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	p := NewPoller(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := func(ctx context.Context, taskID string) (*RawResponse, error) {
		t.Fatal("status must not be called after cancellation")
		return nil, nil
	}

	_, err := p.Await(ctx, testHandle(), status, PollPolicy{Interval: time.Hour, MaxAttempts: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAwaitPropagatesStatusError(t *testing.T) {
	p := NewPoller(zerolog.Nop())
	boom := &domain.ProviderError{Provider: "fake", Message: "http 500"}
	status := func(ctx context.Context, taskID string) (*RawResponse, error) {
		return nil, boom
	}

	_, err := p.Await(context.Background(), testHandle(), status, PollPolicy{Interval: time.Millisecond, MaxAttempts: 10})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}
