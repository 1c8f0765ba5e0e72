package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
	"mediastudio/internal/service"
)

type completionRequest struct {
	ConversationID string              `json:"conversationId,omitempty"`
	Provider       string              `json:"provider,omitempty"`
	Model          string              `json:"model,omitempty"`
	Message        string              `json:"message"`
	Settings       domain.ChatSettings `json:"settings"`
}

func (a *App) ChatCompletion(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body completionRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Message == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	out, err := a.Chat.Complete(r.Context(), service.CompletionInput{
		UserID:         user,
		ConversationID: body.ConversationID,
		Provider:       body.Provider,
		Model:          body.Model,
		Message:        body.Message,
		Settings:       body.Settings,
	})
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	convs, page, err := a.Chat.List(r.Context(), user, queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 20))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"conversations": convs, "pagination": page})
}

func (a *App) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	conv, err := a.Chat.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, conv)
}

func (a *App) ChatProviders(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"providers": a.Chat.Providers()})
}
