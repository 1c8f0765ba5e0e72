package providers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"mediastudio/internal/domain"
)

// Normalizer maps every provider's heterogeneous result shape into the one
// internal GenerationResult record.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a settled raw response into a GenerationResult.
//
// Cost is always recomputed through the adapter's deterministic cost function
// from the normalized dimensions/duration; billing fields a provider may have
// reported are ignored. Optional fields missing from the response (seed,
// style) default to the request's original values, never silently to nil.
func (n *Normalizer) Normalize(a Adapter, op Operation, req domain.GenerationRequest, raw *RawResponse) (*domain.GenerationResult, error) {
	if raw == nil {
		return nil, &domain.ProviderError{Provider: a.ID(), Message: "empty provider response"}
	}

	effective := req.Settings
	if raw.Duration > 0 {
		effective.Duration = raw.Duration
	}
	if raw.Resolution != "" {
		effective.Resolution = raw.Resolution
	}
	if raw.Width > 0 {
		effective.Width = raw.Width
	}
	if raw.Height > 0 {
		effective.Height = raw.Height
	}

	model := raw.Model
	if model == "" {
		model = req.Model
	}
	style := raw.Style
	if style == "" {
		style = req.Settings.Style
	}
	seed := raw.Seed
	if seed == nil {
		seed = req.Settings.Seed
	}

	result := &domain.GenerationResult{
		ID:             resultID(raw),
		UserID:         req.UserID,
		Kind:           a.Kind(),
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Provider:       a.ID(),
		Model:          model,
		Status:         stateToStatus(raw.State),
		Cost:           a.Cost(op, model, effective),
		Metadata:       map[string]any{},
		CreatedAt:      createdAt(raw),
	}
	result.UpdatedAt = result.CreatedAt

	switch a.Kind() {
	case domain.MediaImage:
		normalizeImages(result, req, raw)
		putIfSet(result.Metadata, "width", effective.Width)
		putIfSet(result.Metadata, "height", effective.Height)
		putIfSet(result.Metadata, "steps", effective.Steps)
		if effective.CfgScale > 0 {
			result.Metadata["cfgScale"] = effective.CfgScale
		}
		if effective.Quality != "" {
			result.Metadata["quality"] = effective.Quality
		}
	case domain.MediaVideo:
		result.VideoURL = raw.VideoURL
		result.ThumbnailURL = raw.ThumbnailURL
		putIfSet(result.Metadata, "duration", effective.Duration)
		if effective.Resolution != "" {
			result.Metadata["resolution"] = effective.Resolution
		}
		if raw.AspectRatio != "" {
			result.Metadata["aspectRatio"] = raw.AspectRatio
		} else if req.Settings.AspectRatio != "" {
			result.Metadata["aspectRatio"] = req.Settings.AspectRatio
		}
	}

	if style != "" {
		result.Metadata["style"] = style
	}
	if seed != nil {
		result.Metadata["seed"] = *seed
	}
	if op != OpGenerate {
		result.Metadata["operation"] = string(op)
	}

	return result, nil
}

func normalizeImages(result *domain.GenerationResult, req domain.GenerationRequest, raw *RawResponse) {
	urls := make([]string, 0, len(raw.Images))
	for _, img := range raw.Images {
		urls = append(urls, imageURL(img))
	}
	if len(urls) > 0 {
		result.ImageURL = urls[0]
	}
	if len(urls) > 1 {
		result.Metadata["images"] = urls
	}
	if len(raw.Images) > 0 && raw.Images[0].RevisedPrompt != "" {
		result.RevisedPrompt = raw.Images[0].RevisedPrompt
	} else {
		result.RevisedPrompt = req.Prompt
	}
}

// imageURL prefers the provider URL and otherwise synthesizes a data URI from
// a raw base64 payload, so no provider-specific encoding leaks downstream.
func imageURL(img RawImage) string {
	if img.URL != "" {
		return img.URL
	}
	if img.Base64 == "" {
		return ""
	}
	if strings.HasPrefix(img.Base64, "data:") {
		return img.Base64
	}
	return "data:image/png;base64," + img.Base64
}

func resultID(raw *RawResponse) string {
	if raw.TaskID != "" {
		return raw.TaskID
	}
	for _, img := range raw.Images {
		if img.ProviderID != "" {
			return img.ProviderID
		}
	}
	return uuid.NewString()
}

func stateToStatus(state JobState) domain.Status {
	switch state {
	case JobQueued:
		return domain.StatusPending
	case JobProcessing:
		return domain.StatusProcessing
	case JobFailed:
		return domain.StatusFailed
	default:
		return domain.StatusCompleted
	}
}

func createdAt(raw *RawResponse) time.Time {
	if !raw.CreatedAt.IsZero() {
		return raw.CreatedAt.UTC()
	}
	return time.Now().UTC()
}

func putIfSet(meta map[string]any, key string, v int) {
	if v > 0 {
		meta[key] = v
	}
}
