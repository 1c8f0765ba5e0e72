package image

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const stabilityID = "stable-diffusion"

// StabilityOptions configures the Stability AI adapter.
type StabilityOptions struct {
	APIKey     string
	BaseURL    string
	Engine     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Stability talks to the Stability AI generation API. All three operations
// are synchronous and return base64 artifacts, which normalization turns into
// data URIs.
type Stability struct {
	apiKey     string
	baseURL    string
	engine     string
	httpClient *http.Client
}

func NewStability(opts StabilityOptions) *Stability {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.stability.ai"
	}
	engine := opts.Engine
	if engine == "" {
		engine = "stable-diffusion-xl-1024-v1-0"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Stability{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, engine: engine, httpClient: client}
}

func (st *Stability) ID() string             { return stabilityID }
func (st *Stability) Kind() domain.MediaKind { return domain.MediaImage }

func (st *Stability) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:            []string{"stable-diffusion-xl"},
		MaxResolution:     "2048x2048",
		SupportedSizes:    []string{"512x512", "768x768", "1024x1024", "1536x1536", "2048x2048"},
		Qualities:         []string{"standard"},
		SupportsEditing:   true,
		SupportsUpscaling: true,
		MaxPromptLength:   2000,
	}
}

type stabilityPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityGenerateRequest struct {
	TextPrompts   []stabilityPrompt `json:"text_prompts"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Steps         int               `json:"steps"`
	CfgScale      float64           `json:"cfg_scale"`
	Samples       int               `json:"samples"`
	Seed          int64             `json:"seed,omitempty"`
	StylePreset   string            `json:"style_preset,omitempty"`
	InitImage     string            `json:"init_image,omitempty"`
	ImageStrength float64           `json:"image_strength,omitempty"`
}

type stabilityArtifact struct {
	Base64       string `json:"base64"`
	Seed         int64  `json:"seed"`
	FinishReason string `json:"finishReason"`
}

type stabilityResponse struct {
	Artifacts []stabilityArtifact `json:"artifacts"`
}

func (st *Stability) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := providers.Clamp(req.Settings, providers.DefaultImageBounds)
	payload := st.basePayload(req.Prompt, req.NegativePrompt, s)
	var out stabilityResponse
	url := st.baseURL + "/v1/generation/" + st.engine + "/text-to-image"
	if err := postJSON(ctx, st.httpClient, stabilityID, url, st.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	return st.rawFromResponse(out, s), nil, nil
}

// Edit runs image-to-image with a fixed init strength, keeping most of the
// source composition.
func (st *Stability) Edit(ctx context.Context, target, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	b64, err := targetBase64(ctx, st.httpClient, stabilityID, target)
	if err != nil {
		return nil, nil, err
	}
	payload := st.basePayload(prompt, "", s)
	payload.InitImage = b64
	payload.ImageStrength = 0.75

	var out stabilityResponse
	url := st.baseURL + "/v1/generation/" + st.engine + "/image-to-image"
	if err := postJSON(ctx, st.httpClient, stabilityID, url, st.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	return st.rawFromResponse(out, s), nil, nil
}

func (st *Stability) Upscale(ctx context.Context, target string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	b64, err := targetBase64(ctx, st.httpClient, stabilityID, target)
	if err != nil {
		return nil, nil, err
	}
	payload := struct {
		Image  string `json:"image"`
		Width  int    `json:"width,omitempty"`
		Height int    `json:"height,omitempty"`
	}{Image: b64, Width: s.Width, Height: s.Height}

	var out stabilityResponse
	url := st.baseURL + "/v1/generation/" + st.engine + "/upscale"
	if err := postJSON(ctx, st.httpClient, stabilityID, url, st.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	return st.rawFromResponse(out, s), nil, nil
}

func (st *Stability) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	return nil, &domain.ConfigurationError{Provider: stabilityID, Reason: "synchronous provider has no job status"}
}

// Cost scales a per-operation base by megapixels relative to 1024x1024.
// Generation and editing additionally scale with diffusion steps.
func (st *Stability) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	w := defaultInt(s.Width, 1024)
	h := defaultInt(s.Height, 1024)
	sizeMult := float64(w*h) / (1024 * 1024)
	samples := float64(defaultInt(s.Samples, 1))
	steps := float64(defaultInt(s.Steps, 20))

	switch op {
	case providers.OpUpscale:
		return 0.02 * sizeMult
	case providers.OpEdit:
		return 0.015 * sizeMult * (steps / 20) * samples
	default:
		return 0.01 * sizeMult * (steps / 20) * samples
	}
}

func (st *Stability) basePayload(prompt, negative string, s domain.Settings) stabilityGenerateRequest {
	prompts := []stabilityPrompt{{Text: prompt, Weight: 1}}
	if negative != "" {
		prompts = append(prompts, stabilityPrompt{Text: negative, Weight: -1})
	}
	payload := stabilityGenerateRequest{
		TextPrompts: prompts,
		Width:       defaultInt(s.Width, 1024),
		Height:      defaultInt(s.Height, 1024),
		Steps:       defaultInt(s.Steps, 30),
		CfgScale:    defaultFloat(s.CfgScale, 7),
		Samples:     defaultInt(s.Samples, 1),
		StylePreset: s.Style,
	}
	if s.Seed != nil {
		payload.Seed = *s.Seed
	}
	return payload
}

func (st *Stability) rawFromResponse(out stabilityResponse, s domain.Settings) *providers.RawResponse {
	raw := &providers.RawResponse{
		Provider: stabilityID,
		Model:    "stable-diffusion-xl",
		State:    providers.JobSucceeded,
		Width:    defaultInt(s.Width, 1024),
		Height:   defaultInt(s.Height, 1024),
	}
	for _, art := range out.Artifacts {
		seed := art.Seed
		raw.Images = append(raw.Images, providers.RawImage{
			Base64: art.Base64,
			Seed:   &seed,
		})
	}
	if len(out.Artifacts) > 0 {
		seed := out.Artifacts[0].Seed
		raw.Seed = &seed
	}
	return raw
}
