package providers

import (
	"context"
	"time"

	"mediastudio/internal/domain"
)

// Operation enumerates the calls an adapter can serve.
type Operation string

const (
	OpGenerate Operation = "generate"
	OpEdit     Operation = "edit"
	OpUpscale  Operation = "upscale"
)

// JobState is the canonical lifecycle state of an asynchronous provider job.
// Adapters translate upstream literals (IN_QUEUE, COMPLETED, ...) into these
// values; the upstream literal is preserved in RawResponse.UpstreamStatus.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobSucceeded  JobState = "succeeded"
	JobFailed     JobState = "failed"
)

// JobHandle is an opaque reference to an in-flight asynchronous provider
// task. It lives only for the duration of a poll loop and is never persisted.
type JobHandle struct {
	TaskID      string
	Provider    string
	SubmittedAt time.Time
}

// RawImage is a single image as decoded from a provider response, before
// normalization. Exactly one of URL and Base64 is set.
type RawImage struct {
	URL           string
	Base64        string
	RevisedPrompt string
	ProviderID    string
	Seed          *int64
}

// RawResponse is the decoded-but-unnormalized output of a provider call.
// Field names are already uniform; values are whatever the provider reported.
type RawResponse struct {
	Provider       string
	Model          string
	State          JobState
	UpstreamStatus string
	TaskID         string

	Images []RawImage

	VideoURL     string
	ThumbnailURL string
	Duration     int
	Resolution   string
	AspectRatio  string

	Prompt string
	Style  string
	Seed   *int64
	Width  int
	Height int

	CreatedAt time.Time
}

// Capabilities is the static feature table a provider declares. The UI gates
// feature availability on it; tests assert it matches implemented methods.
type Capabilities struct {
	Models                []string `json:"models"`
	MaxResolution         string   `json:"maxResolution,omitempty"`
	MaxDuration           int      `json:"maxDuration,omitempty"`
	SupportedSizes        []string `json:"supportedSizes,omitempty"`
	SupportedResolutions  []string `json:"supportedResolutions,omitempty"`
	SupportedAspectRatios []string `json:"supportedAspectRatios,omitempty"`
	Qualities             []string `json:"qualities,omitempty"`
	Styles                []string `json:"styles,omitempty"`
	SupportsEditing       bool     `json:"supportsEditing"`
	SupportsUpscaling     bool     `json:"supportsUpscaling"`
	MaxPromptLength       int      `json:"maxPromptLength"`
}

// Adapter is the contract shared by all media providers.
type Adapter interface {
	ID() string
	Kind() domain.MediaKind
	Capabilities() Capabilities
	// Cost deterministically estimates the price of an operation from the
	// clamped settings. The model matters to aggregators that broker several
	// families at different rates. It never reflects metered upstream billing.
	Cost(op Operation, model string, s domain.Settings) float64
}

// ImageAdapter is implemented by image providers. Synchronous providers
// return a RawResponse and a nil handle; asynchronous providers return a nil
// response and a JobHandle to hand to the poller.
type ImageAdapter interface {
	Adapter
	Generate(ctx context.Context, req domain.GenerationRequest) (*RawResponse, *JobHandle, error)
	Edit(ctx context.Context, target, prompt string, s domain.Settings) (*RawResponse, *JobHandle, error)
	Upscale(ctx context.Context, target string, s domain.Settings) (*RawResponse, *JobHandle, error)
	Status(ctx context.Context, taskID string) (*RawResponse, error)
}

// VideoAdapter is implemented by video providers and the aggregator.
type VideoAdapter interface {
	Adapter
	Generate(ctx context.Context, req domain.GenerationRequest) (*RawResponse, *JobHandle, error)
	Edit(ctx context.Context, targetID, prompt string, s domain.Settings) (*RawResponse, *JobHandle, error)
	Status(ctx context.Context, taskID string) (*RawResponse, error)
}
