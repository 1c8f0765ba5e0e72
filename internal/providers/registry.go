package providers

import (
	"sync"

	"mediastudio/internal/domain"
)

// Registry maps provider identifiers to adapters. It replaces switch-on-string
// dispatch: new providers are registered at wiring time and the router never
// needs to change.
type Registry struct {
	mu     sync.RWMutex
	images map[string]ImageAdapter
	videos map[string]VideoAdapter
}

func NewRegistry() *Registry {
	return &Registry{
		images: make(map[string]ImageAdapter),
		videos: make(map[string]VideoAdapter),
	}
}

func (r *Registry) RegisterImage(a ImageAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[a.ID()] = a
}

func (r *Registry) RegisterVideo(a VideoAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[a.ID()] = a
}

// Image returns the image adapter for the given provider id.
func (r *Registry) Image(id string) (ImageAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.images[id]
	if !ok {
		return nil, &domain.ConfigurationError{Provider: id, Reason: "unsupported image provider"}
	}
	return a, nil
}

// Video returns the video adapter for the given provider id.
func (r *Registry) Video(id string) (VideoAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.videos[id]
	if !ok {
		return nil, &domain.ConfigurationError{Provider: id, Reason: "unsupported video provider"}
	}
	return a, nil
}

// ImageProviders lists registered image provider ids.
func (r *Registry) ImageProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.images))
	for id := range r.images {
		out = append(out, id)
	}
	return out
}

// VideoProviders lists registered video provider ids.
func (r *Registry) VideoProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.videos))
	for id := range r.videos {
		out = append(out, id)
	}
	return out
}

// Adapter resolves any registered adapter by media kind and id.
func (r *Registry) Adapter(kind domain.MediaKind, id string) (Adapter, error) {
	switch kind {
	case domain.MediaImage:
		a, err := r.Image(id)
		if err != nil {
			return nil, err
		}
		return a, nil
	case domain.MediaVideo:
		a, err := r.Video(id)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, &domain.ConfigurationError{Provider: id, Reason: "unsupported media kind " + string(kind)}
	}
}
