package video

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const veo3ID = "veo3"

// Veo3Options configures the direct Veo 3 adapter.
type Veo3Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Veo3 talks to the Veo 3 API directly, bypassing the aggregator. It serves
// as the fallback target for veo-family requests.
type Veo3 struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewVeo3(opts Veo3Options) *Veo3 {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.veo.dev"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 300 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Veo3{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (v *Veo3) ID() string             { return veo3ID }
func (v *Veo3) Kind() domain.MediaKind { return domain.MediaVideo }

func (v *Veo3) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:                []string{"veo3"},
		MaxDuration:           60,
		SupportedResolutions:  []string{"720p", "1080p", "4k"},
		SupportedAspectRatios: []string{"16:9", "9:16"},
		Styles:                []string{"cinematic", "realistic"},
		SupportsEditing:       true,
		MaxPromptLength:       4000,
	}
}

type veo3Request struct {
	Prompt         string  `json:"prompt"`
	Duration       int     `json:"duration"`
	Resolution     string  `json:"resolution"`
	AspectRatio    string  `json:"aspect_ratio"`
	Style          string  `json:"style,omitempty"`
	MotionStrength float64 `json:"motion_strength,omitempty"`
	SourceVideoID  string  `json:"source_video_id,omitempty"`
}

type veo3StatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
	Resolution   string `json:"resolution"`
	AspectRatio  string `json:"aspect_ratio"`
}

func (v *Veo3) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := req.Settings
	payload := veo3Request{
		Prompt:         req.Prompt,
		Duration:       defaultInt(s.Duration, defaultDuration("veo3")),
		Resolution:     defaultString(s.Resolution, "1080p"),
		AspectRatio:    defaultString(s.AspectRatio, "16:9"),
		Style:          defaultString(s.Style, "cinematic"),
		MotionStrength: s.MotionStrength,
	}
	return v.submit(ctx, payload)
}

func (v *Veo3) Edit(ctx context.Context, targetID, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	payload := veo3Request{
		Prompt:         prompt,
		Duration:       defaultInt(s.Duration, defaultDuration("veo3")),
		Resolution:     defaultString(s.Resolution, "1080p"),
		AspectRatio:    defaultString(s.AspectRatio, "16:9"),
		Style:          s.Style,
		MotionStrength: s.MotionStrength,
		SourceVideoID:  targetID,
	}
	return v.submit(ctx, payload)
}

func (v *Veo3) submit(ctx context.Context, payload veo3Request) (*providers.RawResponse, *providers.JobHandle, error) {
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := postJSON(ctx, v.httpClient, veo3ID, v.baseURL+"/v1/generate", v.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	if out.ID == "" {
		return nil, nil, &domain.ProviderError{Provider: veo3ID, Message: "submit response missing job id"}
	}
	return nil, &providers.JobHandle{
		TaskID:      out.ID,
		Provider:    veo3ID,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

func (v *Veo3) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	var out veo3StatusResponse
	if err := getJSON(ctx, v.httpClient, veo3ID, v.baseURL+"/v1/generate/"+taskID, v.apiKey, &out); err != nil {
		return nil, err
	}
	return &providers.RawResponse{
		Provider:       veo3ID,
		Model:          "veo3",
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

func (v *Veo3) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	return estimateCost("veo3", s)
}
