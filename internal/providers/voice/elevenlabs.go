package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"mediastudio/internal/domain"
)

const elevenLabsID = "elevenlabs"

const defaultTTSModel = "eleven_multilingual_v2"

// defaultVoices maps a conversation language to the stock voice used when the
// caller does not pin one.
var defaultVoices = map[string]string{
	"en": "21m00Tcm4TlvDq8ikWAM", // Rachel
	"ar": "pNInz6obpgDQGcFmaJgB", // Fatima
}

// Voice is one entry from the upstream voice catalog.
type Voice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

// CloneRequest describes a voice clone submission. Samples are raw audio
// files keyed by filename.
type CloneRequest struct {
	Name        string
	Description string
	Samples     map[string][]byte
}

// CloneStatus reports the readiness of a cloned voice.
type CloneStatus struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
}

// ElevenLabsOptions configures the voice client.
type ElevenLabsOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// ElevenLabs synthesizes speech and manages cloned voices.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabs(opts ElevenLabsOptions) *ElevenLabs {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.elevenlabs.io"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ElevenLabs{apiKey: strings.TrimSpace(opts.APIKey), baseURL: base, httpClient: client}
}

func (e *ElevenLabs) ID() string { return elevenLabsID }

// DefaultVoice returns the stock voice for a language, falling back to the
// English voice for unknown languages.
func DefaultVoice(language string) string {
	if id, ok := defaultVoices[language]; ok {
		return id
	}
	return defaultVoices["en"]
}

type ttsRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	} `json:"voice_settings"`
}

// Synthesize converts text to speech with the given voice and returns the
// audio bytes with their content type.
func (e *ElevenLabs) Synthesize(ctx context.Context, voiceID, text string) ([]byte, string, error) {
	if voiceID == "" {
		voiceID = DefaultVoice("en")
	}
	payload := ttsRequest{Text: text, ModelID: defaultTTSModel}
	payload.VoiceSettings.Stability = 0.5
	payload.VoiceSettings.SimilarityBoost = 0.75

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: elevenLabsID, Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/text-to-speech/"+voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: elevenLabsID, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: elevenLabsID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", e.upstreamError(resp)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: elevenLabsID, Message: "read audio", Err: err}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return audio, contentType, nil
}

// Voices lists the catalog, stock and cloned alike.
func (e *ElevenLabs) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, e.upstreamError(resp)
	}
	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "decode response", Err: err}
	}
	return out.Voices, nil
}

// CreateClone submits audio samples for voice cloning and returns the new
// voice id. Cloning continues server-side; poll CloneState for readiness.
func (e *ElevenLabs) CreateClone(ctx context.Context, clone CloneRequest) (string, error) {
	if clone.Name == "" {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "clone name required"}
	}
	if len(clone.Samples) == 0 {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "at least one audio sample required"}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("name", clone.Name); err != nil {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "build multipart request", Err: err}
	}
	if clone.Description != "" {
		if err := form.WriteField("description", clone.Description); err != nil {
			return "", &domain.ProviderError{Provider: elevenLabsID, Message: "build multipart request", Err: err}
		}
	}
	for filename, data := range clone.Samples {
		part, err := form.CreateFormFile("files", filename)
		if err == nil {
			_, err = part.Write(data)
		}
		if err != nil {
			return "", &domain.ProviderError{Provider: elevenLabsID, Message: "build multipart request", Err: err}
		}
	}
	if err := form.Close(); err != nil {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "build multipart request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/voices/add", &buf)
	if err != nil {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", e.upstreamError(resp)
	}
	var out struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "decode response", Err: err}
	}
	if out.VoiceID == "" {
		return "", &domain.ProviderError{Provider: elevenLabsID, Message: "clone response missing voice id"}
	}
	return out.VoiceID, nil
}

// CloneState fetches a cloned voice and reports whether it is ready for
// synthesis.
func (e *ElevenLabs) CloneState(ctx context.Context, voiceID string) (*CloneStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices/"+voiceID, nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, e.upstreamError(resp)
	}
	var out struct {
		VoiceID          string `json:"voice_id"`
		Name             string `json:"name"`
		Category         string `json:"category"`
		FineTuningStatus struct {
			State string `json:"state"`
		} `json:"fine_tuning"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.ProviderError{Provider: elevenLabsID, Message: "decode response", Err: err}
	}
	state := out.FineTuningStatus.State
	return &CloneStatus{
		VoiceID: out.VoiceID,
		Name:    out.Name,
		Status:  state,
		Ready:   state == "" || state == "fine_tuned" || state == "not_started",
	}, nil
}

func (e *ElevenLabs) upstreamError(resp *http.Response) error {
	var apiErr struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
	msg := apiErr.Detail.Message
	if msg == "" {
		msg = fmt.Sprintf("http %d", resp.StatusCode)
	} else {
		msg = fmt.Sprintf("http %d: %s", resp.StatusCode, msg)
	}
	return &domain.ProviderError{Provider: elevenLabsID, Message: msg}
}
