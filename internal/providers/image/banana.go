package image

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const bananaID = "banana"

// BananaOptions configures the Banana serverless-GPU adapter.
type BananaOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Banana runs diffusion models on serverless GPUs. Every operation is
// asynchronous: a call returns a job handle and the poller drives it to a
// terminal state through Status.
type Banana struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewBanana(opts BananaOptions) *Banana {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.banana.dev"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Banana{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (b *Banana) ID() string             { return bananaID }
func (b *Banana) Kind() domain.MediaKind { return domain.MediaImage }

func (b *Banana) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:            []string{"banana-image-v1", "banana-image-edit-v1", "banana-upscale-v1"},
		MaxResolution:     "2048x2048",
		SupportedSizes:    []string{"512x512", "768x768", "1024x1024", "2048x2048"},
		Qualities:         []string{"standard"},
		SupportsEditing:   true,
		SupportsUpscaling: true,
		MaxPromptLength:   2000,
	}
}

type bananaInputs struct {
	Prompt            string  `json:"prompt,omitempty"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	ImageBase64       string  `json:"image_base64,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	NumImages         int     `json:"num_images,omitempty"`
	Creativity        float64 `json:"creativity,omitempty"`
}

type bananaStartRequest struct {
	Model  string       `json:"model"`
	Inputs bananaInputs `json:"inputs"`
}

type bananaStartResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type bananaStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Outputs struct {
		Images []string `json:"images"`
		Seed   *int64   `json:"seed"`
	} `json:"outputs"`
}

func (b *Banana) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := providers.Clamp(req.Settings, providers.DefaultImageBounds)
	payload := bananaStartRequest{
		Model: defaultString(req.Model, "banana-image-v1"),
		Inputs: bananaInputs{
			Prompt:            req.Prompt,
			NegativePrompt:    req.NegativePrompt,
			Width:             defaultInt(s.Width, 1024),
			Height:            defaultInt(s.Height, 1024),
			NumInferenceSteps: defaultInt(s.Steps, 30),
			GuidanceScale:     defaultFloat(s.CfgScale, 7.5),
			NumImages:         defaultInt(s.Samples, 1),
		},
	}
	return b.start(ctx, payload)
}

func (b *Banana) Edit(ctx context.Context, target, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	b64, err := targetBase64(ctx, b.httpClient, bananaID, target)
	if err != nil {
		return nil, nil, err
	}
	payload := bananaStartRequest{
		Model: "banana-image-edit-v1",
		Inputs: bananaInputs{
			Prompt:            prompt,
			ImageBase64:       b64,
			NumInferenceSteps: defaultInt(s.Steps, 30),
			GuidanceScale:     defaultFloat(s.CfgScale, 7.5),
			NumImages:         defaultInt(s.Samples, 1),
		},
	}
	return b.start(ctx, payload)
}

// Upscale targets 2048x2048 with a low creativity so the upscaler sharpens
// instead of repainting.
func (b *Banana) Upscale(ctx context.Context, target string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	b64, err := targetBase64(ctx, b.httpClient, bananaID, target)
	if err != nil {
		return nil, nil, err
	}
	payload := bananaStartRequest{
		Model: "banana-upscale-v1",
		Inputs: bananaInputs{
			ImageBase64: b64,
			Width:       defaultInt(s.Width, 2048),
			Height:      defaultInt(s.Height, 2048),
			Creativity:  0.3,
		},
	}
	return b.start(ctx, payload)
}

func (b *Banana) start(ctx context.Context, payload bananaStartRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	var out bananaStartResponse
	if err := postJSON(ctx, b.httpClient, bananaID, b.baseURL+"/start/v1", b.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	if out.ID == "" {
		return nil, nil, &domain.ProviderError{Provider: bananaID, Message: "start response missing job id"}
	}
	return nil, &providers.JobHandle{
		TaskID:      out.ID,
		Provider:    bananaID,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

func (b *Banana) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	var out bananaStatusResponse
	if err := getJSON(ctx, b.httpClient, bananaID, b.baseURL+"/status/v1/"+taskID, b.apiKey, &out); err != nil {
		return nil, err
	}
	raw := &providers.RawResponse{
		Provider:       bananaID,
		TaskID:         out.ID,
		State:          bananaState(out.Status),
		UpstreamStatus: out.Status,
		Seed:           out.Outputs.Seed,
	}
	if raw.TaskID == "" {
		raw.TaskID = taskID
	}
	for _, img := range out.Outputs.Images {
		raw.Images = append(raw.Images, providers.RawImage{Base64: img})
	}
	return raw, nil
}

// Cost scales $0.02 by megapixels relative to 1024x1024, with edit and
// upscale model surcharges, per image.
func (b *Banana) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	w := defaultInt(s.Width, 1024)
	h := defaultInt(s.Height, 1024)
	if op == providers.OpUpscale {
		w = defaultInt(s.Width, 2048)
		h = defaultInt(s.Height, 2048)
	}
	sizeMult := float64(w*h) / (1024 * 1024)
	modelMult := 1.0
	switch op {
	case providers.OpEdit:
		modelMult = 1.2
	case providers.OpUpscale:
		modelMult = 1.5
	}
	return 0.02 * sizeMult * modelMult * float64(defaultInt(s.Samples, 1))
}

func bananaState(status string) providers.JobState {
	switch strings.ToUpper(status) {
	case "IN_QUEUE", "QUEUED":
		return providers.JobQueued
	case "IN_PROGRESS", "RUNNING", "PROCESSING":
		return providers.JobProcessing
	case "COMPLETED", "SUCCEEDED":
		return providers.JobSucceeded
	default:
		return providers.JobFailed
	}
}
