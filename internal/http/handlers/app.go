package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/service"
)

// App holds the handler dependencies.
type App struct {
	Logger      zerolog.Logger
	DB          *pgxpool.Pool
	Generations *service.GenerationService
	Chat        *service.ChatService
	Voice       *service.VoiceService
}

func NewApp(logger zerolog.Logger, db *pgxpool.Pool, generations *service.GenerationService, chat *service.ChatService, voice *service.VoiceService) *App {
	return &App{
		Logger:      logger,
		DB:          db,
		Generations: generations,
		Chat:        chat,
		Voice:       voice,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.json(w, code, map[string]string{"error": err.Error()})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	}

	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}
	var timeoutErr *domain.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout
	}
	var failedErr *domain.GenerationFailedError
	if errors.As(err, &failedErr) {
		return http.StatusBadGateway
	}
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// userID identifies the caller. Authentication happens upstream at the
// gateway; the resolved identity arrives in a trusted header.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (a *App) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := userID(r)
	if id == "" {
		a.json(w, http.StatusUnauthorized, map[string]string{"error": "missing X-User-ID header"})
		return "", false
	}
	return id, true
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
