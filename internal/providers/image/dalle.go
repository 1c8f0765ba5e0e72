package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

const dalleID = "dall-e-3"

var dalleSizes = map[string]bool{
	"1024x1024": true,
	"1792x1024": true,
	"1024x1792": true,
}

// DALLEOptions configures the OpenAI image adapter.
type DALLEOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// DALLE talks to the OpenAI images API. Generation and editing are
// synchronous; upscaling is not offered by the provider.
type DALLE struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewDALLE(opts DALLEOptions) *DALLE {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &DALLE{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (d *DALLE) ID() string             { return dalleID }
func (d *DALLE) Kind() domain.MediaKind { return domain.MediaImage }

func (d *DALLE) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Models:            []string{"dall-e-3"},
		MaxResolution:     "1792x1792",
		SupportedSizes:    []string{"1024x1024", "1792x1024", "1024x1792"},
		Qualities:         []string{"standard", "hd"},
		Styles:            []string{"vivid", "natural"},
		SupportsEditing:   true,
		SupportsUpscaling: false,
		MaxPromptLength:   4000,
	}
}

type dalleGenerateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	Style          string `json:"style,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type dalleImage struct {
	URL           string `json:"url"`
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt"`
}

type dalleResponse struct {
	Created int64        `json:"created"`
	Data    []dalleImage `json:"data"`
}

func (d *DALLE) Generate(ctx context.Context, req domain.GenerationRequest) (*providers.RawResponse, *providers.JobHandle, error) {
	s := providers.Clamp(req.Settings, providers.DefaultImageBounds)
	size := dalleSize(s)
	payload := dalleGenerateRequest{
		Model:          defaultString(req.Model, "dall-e-3"),
		Prompt:         req.Prompt,
		N:              defaultInt(s.Samples, 1),
		Size:           size,
		Quality:        defaultString(s.Quality, "standard"),
		Style:          defaultString(s.Style, "vivid"),
		ResponseFormat: "url",
	}
	var out dalleResponse
	if err := postJSON(ctx, d.httpClient, dalleID, d.baseURL+"/images/generations", d.apiKey, payload, &out); err != nil {
		return nil, nil, err
	}
	return d.rawFromResponse(payload.Model, size, out), nil, nil
}

// Edit uses the multipart images/edits endpoint; the source image is pulled
// from the target URL or data URI first.
func (d *DALLE) Edit(ctx context.Context, target, prompt string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	s = providers.Clamp(s, providers.DefaultImageBounds)
	b64, err := targetBase64(ctx, d.httpClient, dalleID, target)
	if err != nil {
		return nil, nil, err
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, nil, &domain.ProviderError{Provider: dalleID, Message: "decode source image", Err: err}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "source.png")
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = form.WriteField("prompt", prompt)
	}
	if err == nil {
		err = form.WriteField("model", "dall-e-3")
	}
	if err == nil {
		err = form.WriteField("n", fmt.Sprintf("%d", defaultInt(s.Samples, 1)))
	}
	size := dalleSize(s)
	if err == nil {
		err = form.WriteField("size", size)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		return nil, nil, &domain.ProviderError{Provider: dalleID, Message: "build multipart request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/images/edits", &buf)
	if err != nil {
		return nil, nil, &domain.ProviderError{Provider: dalleID, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, &domain.ProviderError{Provider: dalleID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, upstreamError(dalleID, resp)
	}
	var out dalleResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return nil, nil, &domain.ProviderError{Provider: dalleID, Message: "decode response", Err: decodeErr}
	}
	return d.rawFromResponse("dall-e-3", size, out), nil, nil
}

func (d *DALLE) Upscale(ctx context.Context, target string, s domain.Settings) (*providers.RawResponse, *providers.JobHandle, error) {
	return nil, nil, &domain.ConfigurationError{Provider: dalleID, Reason: "upscaling not supported"}
}

func (d *DALLE) Status(ctx context.Context, taskID string) (*providers.RawResponse, error) {
	return nil, &domain.ConfigurationError{Provider: dalleID, Reason: "synchronous provider has no job status"}
}

// Cost estimates pricing: $0.04 base, x2 for hd, x1.5 for the oversized
// landscape/portrait sizes, per image. Edits skip the hd multiplier.
func (d *DALLE) Cost(op providers.Operation, model string, s domain.Settings) float64 {
	size := dalleSize(providers.Clamp(s, providers.DefaultImageBounds))
	base := 0.04
	sizeMult := 1.0
	if size == "1792x1024" || size == "1024x1792" {
		sizeMult = 1.5
	}
	hdMult := 1.0
	if op == providers.OpGenerate && s.Quality == "hd" {
		hdMult = 2
	}
	return base * hdMult * sizeMult * float64(defaultInt(s.Samples, 1))
}

func (d *DALLE) rawFromResponse(model, size string, out dalleResponse) *providers.RawResponse {
	raw := &providers.RawResponse{
		Provider: dalleID,
		Model:    model,
		State:    providers.JobSucceeded,
	}
	if out.Created > 0 {
		raw.CreatedAt = time.Unix(out.Created, 0)
	}
	var w, h int
	fmt.Sscanf(size, "%dx%d", &w, &h)
	raw.Width, raw.Height = w, h
	for _, img := range out.Data {
		raw.Images = append(raw.Images, providers.RawImage{
			URL:           img.URL,
			Base64:        img.B64JSON,
			RevisedPrompt: img.RevisedPrompt,
		})
	}
	return raw
}

// dalleSize snaps width/height to one of the sizes DALL-E 3 accepts.
func dalleSize(s domain.Settings) string {
	if s.Width > 0 && s.Height > 0 {
		size := fmt.Sprintf("%dx%d", s.Width, s.Height)
		if dalleSizes[size] {
			return size
		}
	}
	return "1024x1024"
}
