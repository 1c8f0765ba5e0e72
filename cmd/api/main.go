package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mediastudio/internal/adapter/repo"
	"mediastudio/internal/http/handlers"
	"mediastudio/internal/http/httpapi"
	"mediastudio/internal/infra"
	"mediastudio/internal/infra/geoip"
	"mediastudio/internal/middleware"
	"mediastudio/internal/providers"
	"mediastudio/internal/providers/chat"
	"mediastudio/internal/providers/image"
	"mediastudio/internal/providers/video"
	"mediastudio/internal/providers/voice"
	"mediastudio/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	registry := providers.NewRegistry()
	imageClient := &http.Client{Timeout: cfg.ImageHTTPTimeout}
	videoClient := &http.Client{Timeout: cfg.VideoHTTPTimeout}
	chatClient := &http.Client{Timeout: cfg.ChatHTTPTimeout}

	if cfg.OpenAIAPIKey != "" {
		registry.RegisterImage(image.NewDALLE(image.DALLEOptions{
			APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, HTTPClient: imageClient,
		}))
	}
	if cfg.MidjourneyAPIKey != "" {
		registry.RegisterImage(image.NewMidjourney(image.MidjourneyOptions{
			APIKey: cfg.MidjourneyAPIKey, BaseURL: cfg.MidjourneyURL, HTTPClient: imageClient,
		}))
	}
	if cfg.StabilityAPIKey != "" {
		registry.RegisterImage(image.NewStability(image.StabilityOptions{
			APIKey: cfg.StabilityAPIKey, BaseURL: cfg.StabilityURL, HTTPClient: imageClient,
		}))
	}
	if cfg.BananaAPIKey != "" {
		registry.RegisterImage(image.NewBanana(image.BananaOptions{
			APIKey: cfg.BananaAPIKey, BaseURL: cfg.BananaURL, HTTPClient: imageClient,
		}))
	}

	var aggregator *video.KIE
	aggregatorID := ""
	if cfg.KIEAPIKey != "" {
		aggregator = video.NewKIE(video.KIEOptions{
			APIKey: cfg.KIEAPIKey, BaseURL: cfg.KIEBaseURL, HTTPClient: videoClient, Logger: logger,
		})
		registry.RegisterVideo(aggregator)
		aggregatorID = aggregator.ID()
	}
	if cfg.Veo3APIKey != "" {
		registry.RegisterVideo(video.NewVeo3(video.Veo3Options{
			APIKey: cfg.Veo3APIKey, BaseURL: cfg.Veo3URL, HTTPClient: videoClient,
		}))
	}
	if cfg.Sora2APIKey != "" {
		registry.RegisterVideo(video.NewSora2(video.Sora2Options{
			APIKey: cfg.Sora2APIKey, BaseURL: cfg.Sora2URL, HTTPClient: videoClient,
		}))
	}

	router := providers.NewFallbackRouter(providers.RouterOptions{
		Registry:   registry,
		Poller:     providers.NewPoller(logger),
		Logger:     logger,
		ImagePoll:  providers.PollPolicy{Interval: cfg.ImagePollInterval, MaxAttempts: cfg.ImagePollMaxAttempts},
		VideoPoll:  providers.PollPolicy{Interval: cfg.VideoPollInterval, MaxAttempts: cfg.VideoPollMaxAttempts},
		Aggregator: aggregatorID,
		Families: map[string]string{
			"veo3":  "veo3",
			"sora2": "sora2",
		},
	})

	generations := service.NewGenerationService(service.GenerationServiceOptions{
		Registry:   registry,
		Router:     router,
		Normalizer: providers.NewNormalizer(),
		Repo:       repo.NewGenerationRepository(dbpool),
		Aggregator: aggregator,
		Logger:     logger,
	})

	var chatAdapters []chat.Adapter
	if cfg.OpenAIAPIKey != "" {
		chatAdapters = append(chatAdapters, chat.NewOpenAI(chat.OpenAIOptions{
			APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, HTTPClient: chatClient,
		}))
	}
	if cfg.AnthropicAPIKey != "" {
		chatAdapters = append(chatAdapters, chat.NewAnthropic(chat.AnthropicOptions{
			APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.AnthropicURL, HTTPClient: chatClient,
		}))
	}
	if cfg.GoogleAPIKey != "" {
		chatAdapters = append(chatAdapters, chat.NewGoogle(chat.GoogleOptions{
			APIKey: cfg.GoogleAPIKey, BaseURL: cfg.GoogleAIURL, HTTPClient: chatClient,
		}))
	}
	chatSvc := service.NewChatService(repo.NewConversationRepository(dbpool), logger, chatAdapters...)

	voiceSvc := service.NewVoiceService(voice.NewElevenLabs(voice.ElevenLabsOptions{
		APIKey: cfg.ElevenLabsAPIKey, BaseURL: cfg.ElevenLabsURL, HTTPClient: imageClient,
	}), logger)

	app := handlers.NewApp(logger, dbpool, generations, chatSvc, voiceSvc)

	handler := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, handler)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
