package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
)

func (a *App) ListProviders(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"image": a.Generations.ImageProviders(),
		"video": a.Generations.VideoProviders(),
		"chat":  a.Chat.Providers(),
	})
}

func (a *App) ProviderCapabilities(w http.ResponseWriter, r *http.Request) {
	kind := domain.MediaKind(chi.URLParam(r, "kind"))
	if kind != domain.MediaImage && kind != domain.MediaVideo {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "kind must be image or video"})
		return
	}
	caps, err := a.Generations.Capabilities(kind, chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, caps)
}
