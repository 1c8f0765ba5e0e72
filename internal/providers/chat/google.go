package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
)

const googleID = "google"

// GoogleOptions configures the Google chat adapter.
type GoogleOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Google completes conversations through the generateContent API. The API
// takes one prompt string, so the history is flattened into labeled turns.
type Google struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGoogle(opts GoogleOptions) *Google {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Google{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (g *Google) ID() string { return googleID }

func (g *Google) Models() []string {
	return []string{"gemini-2.0-flash", "gemini-1.5-pro"}
}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googleRequest struct {
	Contents         []googleContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (g *Google) Complete(ctx context.Context, req Request) (*Response, error) {
	model := defaultString(req.Model, "gemini-2.0-flash")
	payload := googleRequest{
		Contents: []googleContent{{Parts: []googlePart{{Text: flattenHistory(req)}}}},
	}
	payload.GenerationConfig.Temperature = defaultFloat(req.Settings.Temperature, 0.7)
	payload.GenerationConfig.MaxOutputTokens = defaultInt(req.Settings.MaxTokens, 2048)

	url := g.baseURL + "/v1beta/models/" + model + ":generateContent?key=" + g.apiKey
	var out googleResponse
	if err := postJSON(ctx, g.httpClient, googleID, url, nil, payload, &out); err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, &domain.ProviderError{Provider: googleID, Message: "empty candidate list"}
	}
	return &Response{
		Content: out.Candidates[0].Content.Parts[0].Text,
		Model:   model,
		Usage: Usage{
			PromptTokens:     out.UsageMetadata.PromptTokenCount,
			CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      out.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// flattenHistory renders the conversation as labeled turns ending with an
// open assistant turn the model is expected to fill.
func flattenHistory(req Request) string {
	var b strings.Builder
	if req.Settings.SystemPrompt != "" {
		b.WriteString("System: " + req.Settings.SystemPrompt + "\n\n")
	}
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			b.WriteString("System: " + m.Content + "\n\n")
		case domain.RoleAssistant:
			b.WriteString("Assistant: " + m.Content + "\n\n")
		default:
			b.WriteString("Human: " + m.Content + "\n\n")
		}
	}
	b.WriteString("Assistant: ")
	return b.String()
}
