package providers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
	"mediastudio/internal/providers/image"
	"mediastudio/internal/providers/video"
)

// The data URI target keeps edit/upscale calls from fetching a source asset,
// so unsupported operations reject before any upstream traffic.
const stubImageTarget = "data:image/png;base64,aGVsbG8="

// Every adapter's declared feature table must agree with its implemented
// methods: an operation it advertises must reach the upstream (here a stub
// that always fails with 500), and one it does not advertise must reject
// locally with a ConfigurationError.
func TestAdapterCapabilitiesMatchMethods(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"unavailable"}`))
	}))
	defer upstream.Close()

	adapters := []providers.Adapter{
		image.NewDALLE(image.DALLEOptions{APIKey: "k", BaseURL: upstream.URL}),
		image.NewMidjourney(image.MidjourneyOptions{APIKey: "k", BaseURL: upstream.URL}),
		image.NewStability(image.StabilityOptions{APIKey: "k", BaseURL: upstream.URL}),
		image.NewBanana(image.BananaOptions{APIKey: "k", BaseURL: upstream.URL}),
		video.NewKIE(video.KIEOptions{APIKey: "k", BaseURL: upstream.URL, Logger: zerolog.Nop()}),
		video.NewVeo3(video.Veo3Options{APIKey: "k", BaseURL: upstream.URL}),
		video.NewSora2(video.Sora2Options{APIKey: "k", BaseURL: upstream.URL}),
	}

	for _, a := range adapters {
		t.Run(a.ID(), func(t *testing.T) {
			caps := a.Capabilities()
			if len(caps.Models) == 0 {
				t.Fatal("capabilities must list at least one model")
			}

			ctx := context.Background()
			switch impl := a.(type) {
			case providers.ImageAdapter:
				_, _, err := impl.Edit(ctx, stubImageTarget, "tweak the sky", domain.Settings{})
				if rejected := isConfigRejection(err); rejected == caps.SupportsEditing {
					t.Fatalf("supportsEditing=%v but Edit rejected locally=%v (err=%v)", caps.SupportsEditing, rejected, err)
				}
				_, _, err = impl.Upscale(ctx, stubImageTarget, domain.Settings{})
				if rejected := isConfigRejection(err); rejected == caps.SupportsUpscaling {
					t.Fatalf("supportsUpscaling=%v but Upscale rejected locally=%v (err=%v)", caps.SupportsUpscaling, rejected, err)
				}
			case providers.VideoAdapter:
				_, _, err := impl.Edit(ctx, "https://cdn.example/src.mp4", "tweak the sky", domain.Settings{})
				if rejected := isConfigRejection(err); rejected == caps.SupportsEditing {
					t.Fatalf("supportsEditing=%v but Edit rejected locally=%v (err=%v)", caps.SupportsEditing, rejected, err)
				}
			default:
				t.Fatalf("adapter %s implements no media interface", a.ID())
			}
		})
	}
}

func isConfigRejection(err error) bool {
	var cfgErr *domain.ConfigurationError
	return errors.As(err, &cfgErr)
}
