package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// ConfigurationError reports a bad or unsupported provider/model/operation.
// It is fatal for the request and never retried.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: provider %q: %s", e.Provider, e.Reason)
}

// ProviderError wraps an upstream HTTP, auth, or validation failure. The
// fallback router may retry it once against a direct provider; adapters and
// the poller never retry it themselves.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TimeoutError is raised when a poll loop exhausts its attempt budget. The
// upstream job is presumed abandoned.
type TimeoutError struct {
	Provider string
	Attempts int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: polling timed out after %d attempts (%s interval)", e.Provider, e.Attempts, e.Interval)
}

// GenerationFailedError carries a terminal failure status reported by the
// provider, verbatim.
type GenerationFailedError struct {
	Provider string
	Status   string
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("%s: generation failed with status %s", e.Provider, e.Status)
}
