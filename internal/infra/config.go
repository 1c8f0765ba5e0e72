package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	GeoIPDBPath string

	// Image providers.
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	MidjourneyAPIKey string
	MidjourneyURL    string
	StabilityAPIKey  string
	StabilityURL     string
	BananaAPIKey     string
	BananaURL        string

	// Video providers.
	KIEAPIKey   string
	KIEBaseURL  string
	Veo3APIKey  string
	Veo3URL     string
	Sora2APIKey string
	Sora2URL    string

	// Chat providers.
	AnthropicAPIKey string
	AnthropicURL    string
	GoogleAPIKey    string
	GoogleAIURL     string

	// Voice.
	ElevenLabsAPIKey string
	ElevenLabsURL    string

	// Provider HTTP timeouts.
	ImageHTTPTimeout time.Duration
	VideoHTTPTimeout time.Duration
	ChatHTTPTimeout  time.Duration

	// Poll tuning for asynchronous providers.
	ImagePollInterval    time.Duration
	ImagePollMaxAttempts int
	VideoPollInterval    time.Duration
	VideoPollMaxAttempts int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		MidjourneyAPIKey: os.Getenv("MIDJOURNEY_API_KEY"),
		MidjourneyURL:    getEnv("MIDJOURNEY_BASE_URL", "https://api.midjourney.com"),
		StabilityAPIKey:  os.Getenv("STABILITY_API_KEY"),
		StabilityURL:     getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),
		BananaAPIKey:     os.Getenv("BANANA_API_KEY"),
		BananaURL:        getEnv("BANANA_BASE_URL", "https://api.banana.dev"),

		KIEAPIKey:   os.Getenv("KIE_API_KEY"),
		KIEBaseURL:  getEnv("KIE_BASE_URL", "https://api.kie.ai"),
		Veo3APIKey:  os.Getenv("VEO3_API_KEY"),
		Veo3URL:     getEnv("VEO3_BASE_URL", "https://api.veo.dev"),
		Sora2APIKey: os.Getenv("SORA2_API_KEY"),
		Sora2URL:    getEnv("SORA2_BASE_URL", "https://api.openai.com"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicURL:    getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GoogleAPIKey:    os.Getenv("GOOGLE_AI_API_KEY"),
		GoogleAIURL:     getEnv("GOOGLE_AI_BASE_URL", "https://generativelanguage.googleapis.com"),

		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsURL:    getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),

		ImageHTTPTimeout: time.Second * time.Duration(getEnvInt("IMAGE_HTTP_TIMEOUT_SECONDS", 120)),
		VideoHTTPTimeout: time.Second * time.Duration(getEnvInt("VIDEO_HTTP_TIMEOUT_SECONDS", 300)),
		ChatHTTPTimeout:  time.Second * time.Duration(getEnvInt("CHAT_HTTP_TIMEOUT_SECONDS", 60)),

		ImagePollInterval:    time.Second * time.Duration(getEnvInt("IMAGE_POLL_INTERVAL_SECONDS", 5)),
		ImagePollMaxAttempts: getEnvInt("IMAGE_POLL_MAX_ATTEMPTS", 60),
		VideoPollInterval:    time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 15)),
		VideoPollMaxAttempts: getEnvInt("VIDEO_POLL_MAX_ATTEMPTS", 240),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 330)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
