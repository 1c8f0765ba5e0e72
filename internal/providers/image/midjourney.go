package image

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const midjourneyID = "midjourney"

// MidjourneyOptions configures the Midjourney-compatible adapter.
type MidjourneyOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Midjourney talks to a Midjourney-compatible imagine API. The upstream blocks
// until the grid is rendered, so the adapter is synchronous.
type Midjourney struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewMidjourney(opts MidjourneyOptions) *Midjourney {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.midjourney.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Midjourney{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (m *Midjourney) ID() string             { return midjourneyID }
func (m *Midjourney) Kind() domain.MediaKind { return domain.MediaImage }

func (m *Midjourney) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:            []string{"midjourney-v6"},
		MaxResolution:     "2048x2048",
		SupportedSizes:    []string{"1024x1024", "1456x816", "816x1456", "2048x2048"},
		Qualities:         []string{"standard", "hd"},
		Styles:            []string{"raw", "cute", "expressive", "scenic"},
		SupportsEditing:   false,
		SupportsUpscaling: false,
		MaxPromptLength:   6000,
	}
}

type midjourneyRequest struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Quality     string `json:"quality,omitempty"`
	Style       string `json:"style,omitempty"`
	N           int    `json:"n"`
}

type midjourneyResult struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type midjourneyResponse struct {
	Status  string             `json:"status"`
	Results []midjourneyResult `json:"results"`
}

func (m *Midjourney) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := providers.Clamp(req.Settings, providers.DefaultImageBounds)
	payload := midjourneyRequest{
		Prompt:      req.Prompt,
		Model:       defaultString(req.Model, "midjourney-v6"),
		AspectRatio: midjourneyAspect(s),
		Quality:     defaultString(s.Quality, "standard"),
		Style:       s.Style,
		N:           defaultInt(s.Samples, 1),
	}
	var out midjourneyResponse
	if err := postJSON(ctx, m.httpClient, midjourneyID, m.baseURL+"/v1/imagine", m.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil, &domain.ProviderError{Provider: midjourneyID, Message: "empty result set"}
	}

	raw := &providers.RawResponse{
		Provider: midjourneyID,
		Model:    payload.Model,
		State:    providers.JobSucceeded,
		Width:    defaultInt(out.Results[0].Width, defaultInt(s.Width, 1024)),
		Height:   defaultInt(out.Results[0].Height, defaultInt(s.Height, 1024)),
	}
	for _, res := range out.Results {
		raw.Images = append(raw.Images, providers.RawImage{
			URL:        res.ImageURL,
			ProviderID: res.ID,
		})
	}
	return raw, nil, nil
}

func (m *Midjourney) Edit(ctx context.Context, target, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	return nil, nil, &domain.ConfigurationError{Provider: midjourneyID, Reason: "editing not supported"}
}

func (m *Midjourney) Upscale(ctx context.Context, target string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	return nil, nil, &domain.ConfigurationError{Provider: midjourneyID, Reason: "upscaling not supported"}
}

func (m *Midjourney) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	return nil, &domain.ConfigurationError{Provider: midjourneyID, Reason: "synchronous provider has no job status"}
}

// Cost scales $0.03 by megapixels relative to 1024x1024, x1.5 for hd, per
// image.
func (m *Midjourney) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	w := defaultInt(s.Width, 1024)
	h := defaultInt(s.Height, 1024)
	sizeMult := float64(w*h) / (1024 * 1024)
	hdMult := 1.0
	if s.Quality == "hd" {
		hdMult = 1.5
	}
	return 0.03 * sizeMult * hdMult * float64(defaultInt(s.Samples, 1))
}

// midjourneyAspect reduces width/height to the aspect string the API expects.
func midjourneyAspect(s domain.Settings) string {
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	d := gcd(s.Width, s.Height)
	return fmt.Sprintf("%d:%d", s.Width/d, s.Height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
