package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
)

type generateVideoRequest struct {
	Prompt   string          `json:"prompt"`
	Provider string          `json:"provider,omitempty"`
	Model    string          `json:"model,omitempty"`
	Settings domain.Settings `json:"settings"`
}

type editVideoRequest struct {
	Prompt   string          `json:"prompt"`
	Settings domain.Settings `json:"settings"`
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body generateVideoRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Prompt == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	result, err := a.Generations.GenerateVideo(r.Context(), domain.GenerationRequest{
		UserID:   user,
		Prompt:   body.Prompt,
		Provider: body.Provider,
		Model:    body.Model,
		Settings: body.Settings,
	})
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}

func (a *App) EditVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body editVideoRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Prompt == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	result, err := a.Generations.EditVideo(r.Context(), user, chi.URLParam(r, "id"), body.Prompt, body.Settings)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}

func (a *App) ListVideoModels(w http.ResponseWriter, r *http.Request) {
	models := a.Generations.ListVideoModels(r.Context())
	a.json(w, http.StatusOK, map[string]any{"models": models})
}
