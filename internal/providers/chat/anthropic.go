package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
)

const anthropicID = "anthropic"

// AnthropicOptions configures the Anthropic chat adapter.
type AnthropicOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Anthropic completes conversations through the messages API. System prompts
// travel in a dedicated top-level field, not in the message list.
type Anthropic struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropic(opts AnthropicOptions) *Anthropic {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.anthropic.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Anthropic{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (a *Anthropic) ID() string { return anthropicID }

func (a *Anthropic) Models() []string {
	return []string{"claude-sonnet-4-5", "claude-haiku-4-5", "claude-opus-4-1"}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (*Response, error) {
	system := req.Settings.SystemPrompt
	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == domain.RoleSystem {
			if system == "" {
				system = m.Content
			} else {
				system += "\n\n" + m.Content
			}
			continue
		}
		messages = append(messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	payload := anthropicRequest{
		Model:       defaultString(req.Model, "claude-sonnet-4-5"),
		System:      system,
		Messages:    messages,
		Temperature: defaultFloat(req.Settings.Temperature, 0.7),
		MaxTokens:   defaultInt(req.Settings.MaxTokens, 2048),
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
	var out anthropicResponse
	if err := postJSON(ctx, a.httpClient, anthropicID, a.baseURL+"/v1/messages", headers, payload, &out); err != nil {
		return nil, err
	}
	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &domain.ProviderError{Provider: anthropicID, Message: "empty content"}
	}
	return &Response{
		Content: text.String(),
		Model:   defaultString(out.Model, payload.Model),
		Usage: Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
			TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
		},
	}, nil
}
