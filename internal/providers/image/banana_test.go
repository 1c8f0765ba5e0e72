package image

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

func TestBananaCost(t *testing.T) {
	b := NewBanana(BananaOptions{APIKey: "k"})
	tests := []struct {
		name string
		op   providers.Operation
		s    domain.Settings
		want float64
	}{
		{
			name: "baseline generation",
			op:   providers.OpGenerate,
			s:    domain.Settings{Width: 1024, Height: 1024, Samples: 1},
			want: 0.02,
		},
		{
			name: "edit surcharge",
			op:   providers.OpEdit,
			s:    domain.Settings{Width: 1024, Height: 1024, Samples: 1},
			want: 0.02 * 1.2,
		},
		{
			name: "upscale defaults to 2048 and surcharges",
			op:   providers.OpUpscale,
			s:    domain.Settings{Samples: 1},
			want: 0.02 * 4 * 1.5,
		},
		{
			name: "samples multiply",
			op:   providers.OpGenerate,
			s:    domain.Settings{Width: 1024, Height: 1024, Samples: 3},
			want: 0.06,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := b.Cost(tc.op, "banana-image-v1", tc.s)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Cost() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBananaStateMapping(t *testing.T) {
	tests := []struct {
		in   string
		want providers.JobState
	}{
		{"IN_QUEUE", providers.JobQueued},
		{"IN_PROGRESS", providers.JobProcessing},
		{"COMPLETED", providers.JobSucceeded},
		{"completed", providers.JobSucceeded},
		{"ERROR", providers.JobFailed},
		{"", providers.JobFailed},
	}
	for _, tc := range tests {
		if got := bananaState(tc.in); got != tc.want {
			t.Fatalf("bananaState(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// End to end through the poller: start returns a handle, two queued polls,
// then a completed payload.
func TestBananaGenerateThenPoll(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/start/v1":
			var req bananaStartRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode start request: %v", err)
			}
			if req.Model != "banana-image-v1" {
				t.Fatalf("unexpected model %q", req.Model)
			}
			_ = json.NewEncoder(w).Encode(bananaStartResponse{ID: "call-42", Status: "IN_QUEUE"})
		case strings.HasPrefix(r.URL.Path, "/status/v1/"):
			n := polls.Add(1)
			resp := bananaStatusResponse{ID: "call-42", Status: "IN_PROGRESS"}
			if n >= 3 {
				resp.Status = "COMPLETED"
				resp.Outputs.Images = []string{"cmVzdWx0"}
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	b := NewBanana(BananaOptions{APIKey: "k", BaseURL: srv.URL})
	raw, handle, err := b.Generate(context.Background(), domain.GenerationRequest{
		Prompt:   "a cat",
		Settings: domain.Settings{Width: 1024, Height: 1024},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if raw != nil {
		t.Fatal("asynchronous provider must not return an immediate response")
	}
	if handle == nil || handle.TaskID != "call-42" {
		t.Fatalf("unexpected handle %+v", handle)
	}

	poller := providers.NewPoller(zerolog.Nop())
	settled, err := poller.Await(context.Background(), *handle, b.Status, providers.PollPolicy{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	})
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if settled.State != providers.JobSucceeded {
		t.Fatalf("unexpected state %q", settled.State)
	}
	if settled.Images[0].Base64 != "cmVzdWx0" {
		t.Fatalf("unexpected image payload %q", settled.Images[0].Base64)
	}
}

func TestMidjourneyCost(t *testing.T) {
	m := NewMidjourney(MidjourneyOptions{APIKey: "k"})
	tests := []struct {
		name string
		s    domain.Settings
		want float64
	}{
		{
			name: "baseline",
			s:    domain.Settings{Width: 1024, Height: 1024, Samples: 1},
			want: 0.03,
		},
		{
			name: "hd multiplier",
			s:    domain.Settings{Width: 1024, Height: 1024, Quality: "hd", Samples: 1},
			want: 0.045,
		},
		{
			name: "megapixel scaling",
			s:    domain.Settings{Width: 2048, Height: 2048, Samples: 1},
			want: 0.03 * 4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Cost(providers.OpGenerate, "midjourney-v6", tc.s)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Cost() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTargetBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pixels"))
	}))
	defer srv.Close()

	got, err := targetBase64(context.Background(), srv.Client(), "test", "data:image/png;base64,aGVsbG8=")
	if err != nil || got != "aGVsbG8=" {
		t.Fatalf("data uri extraction failed: %q, %v", got, err)
	}

	got, err = targetBase64(context.Background(), srv.Client(), "test", srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("url fetch failed: %v", err)
	}
	if got != "cGl4ZWxz" {
		t.Fatalf("unexpected encoding %q", got)
	}

	if _, err := targetBase64(context.Background(), srv.Client(), "test", "data:image/png;base64"); err == nil {
		t.Fatal("malformed data uri must error")
	}
}
