package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mediastudio/internal/http/handlers"
	"mediastudio/internal/middleware"
)

// RouterOptions carries the cross-cutting dependencies of the router.
type RouterOptions struct {
	Logger          zerolog.Logger
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.I18N("en", opts.CountryLookup),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/generations", app.GenerateImage)
		r.Post("/{id}/edits", app.EditImage)
		r.Post("/{id}/upscale", app.UpscaleImage)
	})

	r.Route("/v1/videos", func(r chi.Router) {
		r.Post("/generations", app.GenerateVideo)
		r.Post("/{id}/edits", app.EditVideo)
		r.Get("/models", app.ListVideoModels)
	})

	r.Route("/v1/generations", func(r chi.Router) {
		r.Get("/", app.ListGenerations)
		r.Get("/export", app.ExportGenerations)
		r.Get("/{id}", app.GetGeneration)
		r.Delete("/{id}", app.DeleteGeneration)
		r.Post("/{id}/favorite", app.ToggleFavorite)
	})

	r.Route("/v1/providers", func(r chi.Router) {
		r.Get("/", app.ListProviders)
		r.Get("/{kind}/{id}/capabilities", app.ProviderCapabilities)
	})

	r.Route("/v1/chat", func(r chi.Router) {
		r.Post("/completions", app.ChatCompletion)
		r.Get("/conversations", app.ListConversations)
		r.Get("/conversations/{id}", app.GetConversation)
		r.Get("/providers", app.ChatProviders)
	})

	r.Route("/v1/voice", func(r chi.Router) {
		r.Post("/tts", app.TextToSpeech)
		r.Get("/voices", app.ListVoices)
		r.Post("/clones", app.CreateVoiceClone)
		r.Get("/clones/{id}", app.VoiceCloneStatus)
	})

	return r
}
