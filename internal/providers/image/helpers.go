package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mediastudio/internal/domain"
)

func postJSON(ctx context.Context, client *http.Client, provider, url, apiKey string, payload any, out any) error {
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
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: provider, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return upstreamError(provider, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProviderError{Provider: provider, Message: "decode response", Err: err}
	}
	return nil
}

func getJSON(ctx context.Context, client *http.Client, provider, url, apiKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.ProviderError{Provider: provider, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

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

// targetBase64 resolves an edit/upscale target into raw base64 data. Targets
// arrive either as data URIs from earlier normalization or as plain URLs.
func targetBase64(ctx context.Context, client *http.Client, provider, target string) (string, error) {
	if strings.HasPrefix(target, "data:") {
		_, payload, ok := strings.Cut(target, ",")
		if !ok {
			return "", &domain.ProviderError{Provider: provider, Message: "malformed data uri"}
		}
		return payload, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &domain.ProviderError{Provider: provider, Message: "build image fetch", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: provider, Message: "fetch source image", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", &domain.ProviderError{Provider: provider, Message: fmt.Sprintf("fetch source image: http %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: provider, Message: "read source image", Err: err}
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func defaultInt(v, fallback int) int {
	if v > 0 {
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

func defaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
