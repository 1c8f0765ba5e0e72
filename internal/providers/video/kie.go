package video

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const kieID = "kie"

// VideoModel describes one model offered by a video backend.
type VideoModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	MaxDuration int    `json:"maxDuration"`
	Description string `json:"description,omitempty"`
}

// KIEOptions configures the KIE aggregator adapter.
type KIEOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// KIE fronts the KIE meta-API, which brokers requests to several video
// backends behind one task interface. All operations are asynchronous.
type KIE struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewKIE(opts KIEOptions) *KIE {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.kie.ai"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 300 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &KIE{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    base,
		httpClient: client,
		logger:     opts.Logger,
	}
}

func (k *KIE) ID() string             { return kieID }
func (k *KIE) Kind() domain.MediaKind { return domain.MediaVideo }

func (k *KIE) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:                []string{"veo3", "sora-2"},
		MaxDuration:           60,
		SupportedResolutions:  []string{"720p", "1080p", "4k"},
		SupportedAspectRatios: []string{"16:9", "9:16", "1:1"},
		Styles:                []string{"cinematic", "realistic"},
		SupportsEditing:       true,
		MaxPromptLength:       4000,
	}
}

type kieGenerateRequest struct {
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt"`
	Duration       int     `json:"duration"`
	Resolution     string  `json:"resolution"`
	AspectRatio    string  `json:"aspect_ratio"`
	Style          string  `json:"style,omitempty"`
	MotionStrength float64 `json:"motion_strength,omitempty"`
	VideoURL       string  `json:"video_url,omitempty"`
}

type kieTaskResponse struct {
	TaskID string `json:"taskId"`
	State  string `json:"state"`
}

type kieStatusResponse struct {
	TaskID     string `json:"taskId"`
	State      string `json:"state"`
	ResultJSON string `json:"resultJson"`
	FailMsg    string `json:"failMsg"`
}

// kieResult is the payload embedded as a JSON string inside resultJson.
type kieResult struct {
	ResultURLs   []string `json:"resultUrls"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Duration     int      `json:"duration"`
	Resolution   string   `json:"resolution"`
	AspectRatio  string   `json:"aspectRatio"`
}

func (k *KIE) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := req.Settings
	model := defaultString(req.Model, "veo3")
	payload := kieGenerateRequest{
		Model:          model,
		Prompt:         req.Prompt,
		Duration:       defaultInt(s.Duration, defaultDuration(model)),
		Resolution:     defaultString(s.Resolution, "1080p"),
		AspectRatio:    defaultString(s.AspectRatio, "16:9"),
		Style:          defaultString(s.Style, "cinematic"),
		MotionStrength: s.MotionStrength,
	}
	return k.submit(ctx, k.baseURL+"/v1/video/generate", payload)
}

// Edit re-generates from an existing provider-side asset. The target must be
// a URL the aggregator can reach, so callers upload local sources first.
func (k *KIE) Edit(ctx context.Context, target, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	payload := kieGenerateRequest{
		Model:          "veo3",
		Prompt:         prompt,
		Duration:       defaultInt(s.Duration, defaultDuration("veo3")),
		Resolution:     defaultString(s.Resolution, "1080p"),
		AspectRatio:    defaultString(s.AspectRatio, "16:9"),
		Style:          s.Style,
		MotionStrength: s.MotionStrength,
		VideoURL:       target,
	}
	return k.submit(ctx, k.baseURL+"/v1/video/edit", payload)
}

func (k *KIE) submit(ctx context.Context, url string, payload kieGenerateRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	var out kieTaskResponse
	if err := postJSON(ctx, k.httpClient, kieID, url, k.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	if out.TaskID == "" {
		return nil, nil, &domain.ProviderError{Provider: kieID, Message: "submit response missing task id"}
	}
	return nil, &providers.JobHandle{
		TaskID:      out.TaskID,
		Provider:    kieID,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

func (k *KIE) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	var out kieStatusResponse
	if err := getJSON(ctx, k.httpClient, kieID, k.baseURL+"/v1/video/status/"+taskID, k.apiKey, &out); err != nil {
		return nil, err
	}

	raw := &providers.RawResponse{
		Provider:       kieID,
		TaskID:         defaultString(out.TaskID, taskID),
		State:          videoState(out.State),
		UpstreamStatus: out.State,
	}
	if raw.State != providers.JobSucceeded {
		return raw, nil
	}

	var result kieResult
	if err := json.Unmarshal([]byte(out.ResultJSON), &result); err != nil {
		return nil, &domain.ProviderError{Provider: kieID, Message: "decode result payload", Err: err}
	}
	if len(result.ResultURLs) > 0 {
		raw.VideoURL = result.ResultURLs[0]
	}
	raw.ThumbnailURL = result.ThumbnailURL
	raw.Duration = result.Duration
	raw.Resolution = result.Resolution
	raw.AspectRatio = result.AspectRatio
	return raw, nil
}

// UploadVideo pushes a local video to the aggregator and returns the hosted
// URL, which edit calls then reference.
func (k *KIE) UploadVideo(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		return "", &domain.ProviderError{Provider: kieID, Message: "build upload request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+"/v1/video/upload", &buf)
	if err != nil {
		return "", &domain.ProviderError{Provider: kieID, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+k.apiKey)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: kieID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", upstreamError(kieID, resp)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.ProviderError{Provider: kieID, Message: "decode response", Err: err}
	}
	if out.URL == "" {
		return "", &domain.ProviderError{Provider: kieID, Message: "upload response missing url"}
	}
	return out.URL, nil
}

// Models lists the backends the aggregator currently exposes. When the
// listing endpoint is down the static catalog keeps the picker working.
func (k *KIE) Models(ctx context.Context) []VideoModel {
	var out struct {
		Models []VideoModel `json:"models"`
	}
	err := getJSON(ctx, k.httpClient, kieID, k.baseURL+"/v1/models", k.apiKey, &out)
	if err == nil && len(out.Models) > 0 {
		return out.Models
	}
	if err != nil {
		k.logger.Warn().Err(err).Msg("kie: model listing failed, serving static catalog")
	}
	return []VideoModel{
		{ID: "veo3", Name: "Veo 3", Provider: kieID, MaxDuration: 60},
		{ID: "sora-2", Name: "Sora 2", Provider: kieID, MaxDuration: 60},
	}
}

// Cost prices by the requested model family so aggregator and direct paths
// charge the same.
func (k *KIE) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	return estimateCost(model, s)
}
