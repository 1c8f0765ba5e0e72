package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
)

type generateImageRequest struct {
	Prompt         string          `json:"prompt"`
	NegativePrompt string          `json:"negativePrompt,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	Model          string          `json:"model,omitempty"`
	Settings       domain.Settings `json:"settings"`
}

type editImageRequest struct {
	Prompt   string          `json:"prompt"`
	Settings domain.Settings `json:"settings"`
}

type upscaleImageRequest struct {
	Settings domain.Settings `json:"settings"`
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body generateImageRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Prompt == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	result, err := a.Generations.GenerateImage(r.Context(), domain.GenerationRequest{
		UserID:         user,
		Prompt:         body.Prompt,
		NegativePrompt: body.NegativePrompt,
		Provider:       body.Provider,
		Model:          body.Model,
		Settings:       body.Settings,
	})
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}

func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body editImageRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Prompt == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	result, err := a.Generations.EditImage(r.Context(), user, chi.URLParam(r, "id"), body.Prompt, body.Settings)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}

func (a *App) UpscaleImage(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body upscaleImageRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := a.Generations.UpscaleImage(r.Context(), user, chi.URLParam(r, "id"), body.Settings)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}
