package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
)

const openAIID = "openai"

// OpenAIOptions configures the OpenAI chat adapter.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// OpenAI completes conversations through the chat completions API.
type OpenAI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAI{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (o *OpenAI) ID() string { return openAIID }

func (o *OpenAI) Models() []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo"}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openAIMessage, 0, len(req.Messages)+1)
	if req.Settings.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.Settings.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}
	payload := openAIRequest{
		Model:       defaultString(req.Model, "gpt-4o"),
		Messages:    messages,
		Temperature: defaultFloat(req.Settings.Temperature, 0.7),
		MaxTokens:   defaultInt(req.Settings.MaxTokens, 2048),
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	var out openAIResponse
	if err := postJSON(ctx, o.httpClient, openAIID, o.baseURL+"/chat/completions", headers, payload, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &domain.ProviderError{Provider: openAIID, Message: "empty choice list"}
	}
	return &Response{
		Content: out.Choices[0].Message.Content,
		Model:   defaultString(out.Model, payload.Model),
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}
