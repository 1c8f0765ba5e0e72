package providers

import (
	"errors"
	"testing"

	"mediastudio/internal/domain"
)

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Image("no-such-provider")
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if _, err := r.Video("no-such-provider"); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestRegistryResolvesByKind(t *testing.T) {
	r := NewRegistry()
	img := &fakeImageAdapter{id: "img-1", kind: domain.MediaImage}
	vid := &fakeVideoAdapter{id: "vid-1"}
	r.RegisterImage(img)
	r.RegisterVideo(vid)

	a, err := r.Adapter(domain.MediaImage, "img-1")
	if err != nil || a.ID() != "img-1" {
		t.Fatalf("image lookup failed: %v", err)
	}
	a, err = r.Adapter(domain.MediaVideo, "vid-1")
	if err != nil || a.ID() != "vid-1" {
		t.Fatalf("video lookup failed: %v", err)
	}
	if _, err := r.Adapter(domain.MediaChat, "img-1"); err == nil {
		t.Fatal("unsupported kind must error")
	}
}

func TestRegistryListings(t *testing.T) {
	r := NewRegistry()
	r.RegisterImage(&fakeImageAdapter{id: "a", kind: domain.MediaImage})
	r.RegisterImage(&fakeImageAdapter{id: "b", kind: domain.MediaImage})
	r.RegisterVideo(&fakeVideoAdapter{id: "c"})

	if got := len(r.ImageProviders()); got != 2 {
		t.Fatalf("expected 2 image providers, got %d", got)
	}
	if got := len(r.VideoProviders()); got != 1 {
		t.Fatalf("expected 1 video provider, got %d", got)
	}
}
