package domain

import "time"

// MediaKind enumerates the media types the platform can generate.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaChat  MediaKind = "chat"
	MediaVoice MediaKind = "voice"
)

// Status enumerates generation lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Settings carries provider tuning knobs. Image and video requests share the
// struct; adapters read only the fields relevant to their media kind and
// clamp them against the provider's declared bounds before dispatch.
type Settings struct {
	// Image fields.
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Quality  string  `json:"quality,omitempty"`
	Steps    int     `json:"steps,omitempty"`
	CfgScale float64 `json:"cfgScale,omitempty"`
	Samples  int     `json:"samples,omitempty"`

	// Video fields.
	Duration       int     `json:"duration,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	AspectRatio    string  `json:"aspectRatio,omitempty"`
	MotionStrength float64 `json:"motionStrength,omitempty"`

	// Shared fields.
	Style string `json:"style,omitempty"`
	Seed  *int64 `json:"seed,omitempty"`
}

// GenerationRequest is the normalized request handed to the provider layer.
// It is immutable once submitted; adapters work on clamped copies of Settings.
type GenerationRequest struct {
	UserID         string    `json:"userId,omitempty"`
	Kind           MediaKind `json:"kind"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negativePrompt,omitempty"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model,omitempty"`
	Settings       Settings  `json:"settings"`
}

// GenerationResult is the uniform record produced by the response normalizer.
// Every result carries exactly one provider and one model, and Cost is always
// the local deterministic estimate, never an upstream billing figure.
type GenerationResult struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId,omitempty"`
	Kind           MediaKind      `json:"kind"`
	Prompt         string         `json:"prompt"`
	RevisedPrompt  string         `json:"revisedPrompt,omitempty"`
	NegativePrompt string         `json:"negativePrompt,omitempty"`
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	Status         Status         `json:"status"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	VideoURL       string         `json:"videoUrl,omitempty"`
	ThumbnailURL   string         `json:"thumbnailUrl,omitempty"`
	Cost           float64        `json:"cost"`
	Tags           []string       `json:"tags,omitempty"`
	Category       string         `json:"category,omitempty"`
	IsPublic       bool           `json:"isPublic"`
	IsFavorite     bool           `json:"isFavorite"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
