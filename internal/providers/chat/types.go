package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mediastudio/internal/domain"
)

// Request is a single completion call over a conversation history.
type Request struct {
	Model    string
	Messages []domain.Message
	Settings domain.ChatSettings
}

// Usage reports token consumption as the upstream counted it.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Response is a normalized completion.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Adapter is implemented by chat backends.
type Adapter interface {
	ID() string
	Models() []string
	Complete(ctx context.Context, req Request) (*Response, error)
}

func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.ProviderError{Provider: provider, Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.ProviderError{Provider: provider, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: provider, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return upstreamError(provider, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProviderError{Provider: provider, Message: "decode response", Err: err}
	}
	return nil
}

func upstreamError(provider string, resp *http.Response) error {
	var apiErr struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("http %d", resp.StatusCode)
	} else {
		msg = fmt.Sprintf("http %d: %s", resp.StatusCode, msg)
	}
	return &domain.ProviderError{Provider: provider, Message: msg}
}

func defaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defaultFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func defaultInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
