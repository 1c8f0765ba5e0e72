package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
)

type fakeVideoAdapter struct {
	id        string
	generates int
	edits     int
	genErr    error
	raw       *RawResponse
	handle    *JobHandle
	statusRaw *RawResponse
}

func (f *fakeVideoAdapter) ID() string                  { return f.id }
func (f *fakeVideoAdapter) Kind() domain.MediaKind      { return domain.MediaVideo }
func (f *fakeVideoAdapter) Capabilities() Capabilities  { return Capabilities{Models: []string{f.id}} }
func (f *fakeVideoAdapter) Cost(op Operation, model string, s domain.Settings) float64 { return 1 }

func (f *fakeVideoAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (*RawResponse, *JobHandle, error) {
	f.generates++
	if f.genErr != nil {
		return nil, nil, f.genErr
	}
	return f.raw, f.handle, nil
}

func (f *fakeVideoAdapter) Edit(ctx context.Context, targetID, prompt string, s domain.Settings) (*RawResponse, *JobHandle, error) {
	f.edits++
	if f.genErr != nil {
		return nil, nil, f.genErr
	}
	return f.raw, f.handle, nil
}

func (f *fakeVideoAdapter) Status(ctx context.Context, taskID string) (*RawResponse, error) {
	return f.statusRaw, nil
}

func succeeded(provider string) *RawResponse {
	return &RawResponse{Provider: provider, State: JobSucceeded, VideoURL: "https://cdn.example/v.mp4"}
}

func newVideoRouter(t *testing.T, aggregator, veo, sora *fakeVideoAdapter) *FallbackRouter {
	t.Helper()
	registry := NewRegistry()
	registry.RegisterVideo(aggregator)
	registry.RegisterVideo(veo)
	registry.RegisterVideo(sora)
	return NewFallbackRouter(RouterOptions{
		Registry:   registry,
		Poller:     NewPoller(zerolog.Nop()),
		Logger:     zerolog.Nop(),
		VideoPoll:  PollPolicy{Interval: time.Millisecond, MaxAttempts: 3},
		Aggregator: aggregator.ID(),
		Families: map[string]string{
			"veo3":  veo.ID(),
			"sora2": sora.ID(),
		},
	})
}

func TestGenerateVideoFallsBackToModelFamily(t *testing.T) {
	aggregator := &fakeVideoAdapter{id: "kie", genErr: &domain.ProviderError{Provider: "kie", Message: "http 503"}}
	veo := &fakeVideoAdapter{id: "veo3", raw: succeeded("veo3")}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	raw, err := router.GenerateVideo(context.Background(), domain.GenerationRequest{Model: "sora-2", Prompt: "a storm"})
	if err != nil {
		t.Fatalf("GenerateVideo returned error: %v", err)
	}
	if raw.Provider != "sora2" {
		t.Fatalf("expected sora2 fallback, got %q", raw.Provider)
	}
	if veo.generates != 0 {
		t.Fatal("sora-family request must never reach the veo adapter")
	}
	if sora.generates != 1 {
		t.Fatalf("expected exactly one direct attempt, got %d", sora.generates)
	}
}

func TestGenerateVideoFallsBackOnPollTimeout(t *testing.T) {
	aggregator := &fakeVideoAdapter{
		id:        "kie",
		handle:    &JobHandle{TaskID: "t1", Provider: "kie"},
		statusRaw: &RawResponse{State: JobProcessing},
	}
	veo := &fakeVideoAdapter{id: "veo3", raw: succeeded("veo3")}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	raw, err := router.GenerateVideo(context.Background(), domain.GenerationRequest{Model: "veo3", Prompt: "a storm"})
	if err != nil {
		t.Fatalf("GenerateVideo returned error: %v", err)
	}
	if raw.Provider != "veo3" {
		t.Fatalf("expected veo3 fallback, got %q", raw.Provider)
	}
}

func TestGenerateVideoDirectFailureIsTerminal(t *testing.T) {
	aggregator := &fakeVideoAdapter{id: "kie", genErr: &domain.ProviderError{Provider: "kie", Message: "http 503"}}
	veo := &fakeVideoAdapter{id: "veo3", genErr: &domain.ProviderError{Provider: "veo3", Message: "http 500"}}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	_, err := router.GenerateVideo(context.Background(), domain.GenerationRequest{Model: "veo3", Prompt: "a storm"})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Provider != "veo3" {
		t.Fatalf("expected the direct provider's error, got %q", provErr.Provider)
	}
	if veo.generates != 1 {
		t.Fatalf("direct adapter must be tried exactly once, got %d", veo.generates)
	}
}

func TestGenerateVideoUnknownFamilyKeepsAggregatorError(t *testing.T) {
	aggregator := &fakeVideoAdapter{id: "kie", genErr: &domain.ProviderError{Provider: "kie", Message: "http 503"}}
	veo := &fakeVideoAdapter{id: "veo3", raw: succeeded("veo3")}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	_, err := router.GenerateVideo(context.Background(), domain.GenerationRequest{Model: "pika-1", Prompt: "a storm"})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) || provErr.Provider != "kie" {
		t.Fatalf("expected aggregator error to surface, got %v", err)
	}
	if veo.generates != 0 || sora.generates != 0 {
		t.Fatal("no fallback may run for an unknown model family")
	}
}

func TestGenerateVideoPinnedProviderSkipsAggregator(t *testing.T) {
	aggregator := &fakeVideoAdapter{id: "kie", raw: succeeded("kie")}
	veo := &fakeVideoAdapter{id: "veo3", raw: succeeded("veo3")}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	raw, err := router.GenerateVideo(context.Background(), domain.GenerationRequest{Provider: "veo3", Model: "veo3", Prompt: "a storm"})
	if err != nil {
		t.Fatalf("GenerateVideo returned error: %v", err)
	}
	if raw.Provider != "veo3" || aggregator.generates != 0 {
		t.Fatal("pinned provider must bypass the aggregator")
	}
}

func TestEditVideoNeverFallsBack(t *testing.T) {
	aggregator := &fakeVideoAdapter{id: "kie", genErr: &domain.ProviderError{Provider: "kie", Message: "http 503"}}
	veo := &fakeVideoAdapter{id: "veo3", raw: succeeded("veo3")}
	sora := &fakeVideoAdapter{id: "sora2", raw: succeeded("sora2")}
	router := newVideoRouter(t, aggregator, veo, sora)

	_, err := router.EditVideo(context.Background(), "", "task-9", "new prompt", domain.Settings{})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) || provErr.Provider != "kie" {
		t.Fatalf("expected aggregator error, got %v", err)
	}
	if veo.edits != 0 || sora.edits != 0 || veo.generates != 0 || sora.generates != 0 {
		t.Fatal("edit must not fall back to direct providers")
	}
}

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sora-2", "sora2"},
		{"Sora2", "sora2"},
		{"VEO3", "veo3"},
		{" veo-3 ", "veo3"},
	}
	for _, tc := range tests {
		if got := NormalizeModel(tc.in); got != tc.want {
			t.Fatalf("NormalizeModel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
