package video

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const sora2ID = "sora2"

// Sora2Options configures the direct Sora 2 adapter.
type Sora2Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Sora2 talks to the Sora 2 video API directly. It serves as the fallback
// target for sora-family requests.
type Sora2 struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewSora2(opts Sora2Options) *Sora2 {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 300 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Sora2{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (s2 *Sora2) ID() string             { return sora2ID }
func (s2 *Sora2) Kind() domain.MediaKind { return domain.MediaVideo }

func (s2 *Sora2) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:                []string{"sora-2"},
		MaxDuration:           120,
		SupportedResolutions:  []string{"720p", "1080p"},
		SupportedAspectRatios: []string{"16:9", "9:16", "1:1"},
		Styles:                []string{"cinematic", "realistic"},
		SupportsEditing:       true,
		MaxPromptLength:       8000,
	}
}

type sora2Request struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
	Duration      int    `json:"duration"`
	Resolution    string `json:"resolution"`
	AspectRatio   string `json:"aspect_ratio"`
	SourceVideoID string `json:"source_video_id,omitempty"`
}

type sora2StatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
	Resolution   string `json:"resolution"`
	AspectRatio  string `json:"aspect_ratio"`
}

func (s2 *Sora2) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := req.Settings
	payload := sora2Request{
		Model:       "sora-2",
		Prompt:      req.Prompt,
		Duration:    defaultInt(s.Duration, defaultDuration("sora-2")),
		Resolution:  defaultString(s.Resolution, "1080p"),
		AspectRatio: defaultString(s.AspectRatio, "16:9"),
	}
	return s2.submit(ctx, payload)
}

func (s2 *Sora2) Edit(ctx context.Context, targetID, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	payload := sora2Request{
		Model:         "sora-2",
		Prompt:        prompt,
		Duration:      defaultInt(s.Duration, defaultDuration("sora-2")),
		Resolution:    defaultString(s.Resolution, "1080p"),
		AspectRatio:   defaultString(s.AspectRatio, "16:9"),
		SourceVideoID: targetID,
	}
	return s2.submit(ctx, payload)
}

func (s2 *Sora2) submit(ctx context.Context, payload sora2Request) (*providers.RawResponse, *providers.JobHandle, error) {
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := postJSON(ctx, s2.httpClient, sora2ID, s2.baseURL+"/v1/videos/generations", s2.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	if out.ID == "" {
		return nil, nil, &domain.ProviderError{Provider: sora2ID, Message: "submit response missing job id"}
	}
	return nil, &providers.JobHandle{
		TaskID:      out.ID,
		Provider:    sora2ID,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

func (s2 *Sora2) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	var out sora2StatusResponse
	if err := getJSON(ctx, s2.httpClient, sora2ID, s2.baseURL+"/v1/videos/generations/"+taskID, s2.apiKey, &out); err != nil {
		return nil, err
	}
	return &providers.RawResponse{
		Provider:       sora2ID,
		Model:          "sora-2",
		TaskID:         defaultString(out.ID, taskID),
		State:          videoState(out.Status),
		UpstreamStatus: out.Status,
		VideoURL:       out.VideoURL,
		ThumbnailURL:   out.ThumbnailURL,
		Duration:       out.Duration,
		Resolution:     out.Resolution,
		AspectRatio:    out.AspectRatio,
	}, nil
}

func (s2 *Sora2) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	return estimateCost("sora-2", s)
}
