package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediastudio/internal/domain"
)

func TestFlattenHistory(t *testing.T) {
	got := flattenHistory(Request{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "be brief"},
			{Role: domain.RoleUser, Content: "what is Go"},
			{Role: domain.RoleAssistant, Content: "a language"},
			{Role: domain.RoleUser, Content: "who made it"},
		},
		Settings: domain.ChatSettings{SystemPrompt: "you are helpful"},
	})
	want := "System: you are helpful\n\n" +
		"System: be brief\n\n" +
		"Human: what is Go\n\n" +
		"Assistant: a language\n\n" +
		"Human: who made it\n\n" +
		"Assistant: "
	if got != want {
		t.Fatalf("flattenHistory() = %q, want %q", got, want)
	}
}

func TestGoogleComplete(t *testing.T) {
	var captured googleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1beta/models/gemini-2.0-flash:generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("api key must travel as query parameter, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		var out googleResponse
		out.Candidates = []struct {
			Content googleContent `json:"content"`
		}{{Content: googleContent{Parts: []googlePart{{Text: "Ken and Rob"}}}}}
		out.UsageMetadata.PromptTokenCount = 9
		out.UsageMetadata.CandidatesTokenCount = 4
		out.UsageMetadata.TotalTokenCount = 13
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	g := NewGoogle(GoogleOptions{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := g.Complete(context.Background(), Request{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "who made Go"}},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Content != "Ken and Rob" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 13 {
		t.Fatalf("unexpected total tokens %d", resp.Usage.TotalTokens)
	}

	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 1 {
		t.Fatalf("history must flatten into one prompt part: %+v", captured.Contents)
	}
	prompt := captured.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "Human: who made Go") || !strings.HasSuffix(prompt, "Assistant: ") {
		t.Fatalf("unexpected flattened prompt %q", prompt)
	}
}

func TestGoogleEmptyCandidatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(googleResponse{})
	}))
	defer srv.Close()

	g := NewGoogle(GoogleOptions{APIKey: "k", BaseURL: srv.URL})
	if _, err := g.Complete(context.Background(), Request{Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}}}); err == nil {
		t.Fatal("empty candidates must error")
	}
}
