package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
	"mediastudio/pkg/zip"
)

func (a *App) ListGenerations(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.GenerationFilter{
		UserID:       user,
		Kind:         domain.MediaKind(q.Get("kind")),
		Provider:     q.Get("provider"),
		Status:       domain.Status(q.Get("status")),
		Category:     q.Get("category"),
		Tag:          q.Get("tag"),
		FavoriteOnly: q.Get("favorite") == "true",
		PublicOnly:   q.Get("public") == "true",
	}

	results, page, err := a.Generations.List(r.Context(), filter, queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 20))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"generations": results, "pagination": page})
}

func (a *App) GetGeneration(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	result, err := a.Generations.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) DeleteGeneration(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Generations.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		a.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	favorite, err := a.Generations.ToggleFavorite(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"isFavorite": favorite})
}

// ExportGenerations bundles the caller's stored images into a zip archive.
// Only inline (data URI) images are included; remote URLs stay references.
func (a *App) ExportGenerations(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	filter := domain.GenerationFilter{
		UserID:       user,
		Kind:         domain.MediaImage,
		Status:       domain.StatusCompleted,
		FavoriteOnly: r.URL.Query().Get("favorite") == "true",
	}
	results, _, err := a.Generations.List(r.Context(), filter, 1, 100)
	if err != nil {
		a.error(w, r, err)
		return
	}

	assets := make([]zip.Asset, 0, len(results))
	for i, result := range results {
		payload, ok := strings.CutPrefix(result.ImageURL, "data:image/png;base64,")
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%03d-%s.png", i+1, result.ID),
			MIME:     "image/png",
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.json(w, http.StatusNotFound, map[string]string{"error": "no inline images to export"})
		return
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="generations.zip"`)
	_, _ = w.Write(archive)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
