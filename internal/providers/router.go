package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
)

// FallbackRouter resolves a generation request to an adapter and drives the
// call to completion, polling when the provider is asynchronous.
//
// For video the aggregator is tried first; when it fails with a provider
// error or a polling timeout, the request falls back exactly once to the
// direct adapter of the requested model family. A sora-2 request never falls
// back to the Veo3 adapter, and a direct-provider failure is terminal.
type FallbackRouter struct {
	registry   *Registry
	poller     *Poller
	logger     zerolog.Logger
	imagePoll  PollPolicy
	videoPoll  PollPolicy
	aggregator string
	families   map[string]string
}

// RouterOptions wires a FallbackRouter.
type RouterOptions struct {
	Registry  *Registry
	Poller    *Poller
	Logger    zerolog.Logger
	ImagePoll PollPolicy
	VideoPoll PollPolicy
	// Aggregator is the provider id of the video meta-API, empty when none
	// is configured.
	Aggregator string
	// Families maps a normalized model name to the direct provider id that
	// serves it when the aggregator fails.
	Families map[string]string
}

func NewFallbackRouter(opts RouterOptions) *FallbackRouter {
	families := opts.Families
	if families == nil {
		families = map[string]string{}
	}
	return &FallbackRouter{
		registry:   opts.Registry,
		poller:     opts.Poller,
		logger:     opts.Logger,
		imagePoll:  opts.ImagePoll,
		videoPoll:  opts.VideoPoll,
		aggregator: opts.Aggregator,
		families:   families,
	}
}

// NormalizeModel canonicalizes a model name for family matching
// ("sora-2" and "Sora2" both resolve to "sora2").
func NormalizeModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	return strings.ReplaceAll(model, "-", "")
}

func (r *FallbackRouter) GenerateImage(ctx context.Context, req domain.GenerationRequest) (*RawResponse, error) {
	a, err := r.registry.Image(req.Provider)
	if err != nil {
		return nil, err
	}
	raw, handle, err := a.Generate(ctx, req)
	return r.settle(ctx, a.Status, r.imagePoll, raw, handle, err)
}

func (r *FallbackRouter) EditImage(ctx context.Context, provider, target, prompt string, s domain.Settings) (*RawResponse, error) {
	a, err := r.registry.Image(provider)
	if err != nil {
		return nil, err
	}
	raw, handle, err := a.Edit(ctx, target, prompt, s)
	return r.settle(ctx, a.Status, r.imagePoll, raw, handle, err)
}

func (r *FallbackRouter) UpscaleImage(ctx context.Context, provider, target string, s domain.Settings) (*RawResponse, error) {
	a, err := r.registry.Image(provider)
	if err != nil {
		return nil, err
	}
	raw, handle, err := a.Upscale(ctx, target, s)
	return r.settle(ctx, a.Status, r.imagePoll, raw, handle, err)
}

func (r *FallbackRouter) GenerateVideo(ctx context.Context, req domain.GenerationRequest) (*RawResponse, error) {
	primary, err := r.videoPrimary(req.Provider)
	if err != nil {
		return nil, err
	}

	raw, handle, err := primary.Generate(ctx, req)
	raw, err = r.settle(ctx, primary.Status, r.videoPoll, raw, handle, err)
	if err == nil {
		return raw, nil
	}
	if primary.ID() != r.aggregator || !fallbackWorthy(err) {
		return nil, err
	}

	directID, ok := r.families[NormalizeModel(req.Model)]
	if !ok {
		return nil, err
	}
	direct, derr := r.registry.Video(directID)
	if derr != nil {
		return nil, err
	}
	r.logger.Warn().
		Err(err).
		Str("aggregator", r.aggregator).
		Str("fallback", directID).
		Str("model", req.Model).
		Msg("router: aggregator failed, falling back to direct provider")

	raw, handle, ferr := direct.Generate(ctx, req)
	return r.settle(ctx, direct.Status, r.videoPoll, raw, handle, ferr)
}

// EditVideo goes through the same primary resolution but does not fall back:
// edits reference a provider-side asset that only the primary backend knows.
func (r *FallbackRouter) EditVideo(ctx context.Context, provider, targetID, prompt string, s domain.Settings) (*RawResponse, error) {
	primary, err := r.videoPrimary(provider)
	if err != nil {
		return nil, err
	}
	raw, handle, err := primary.Edit(ctx, targetID, prompt, s)
	return r.settle(ctx, primary.Status, r.videoPoll, raw, handle, err)
}

// videoPrimary resolves the adapter a video request starts with: the
// aggregator when one is configured and the caller did not pin a direct
// provider, otherwise the named provider.
func (r *FallbackRouter) videoPrimary(provider string) (VideoAdapter, error) {
	id := provider
	if id == "" || (r.aggregator != "" && id == r.aggregator) {
		if r.aggregator == "" {
			return nil, &domain.ConfigurationError{Reason: "no video provider requested and no aggregator configured"}
		}
		id = r.aggregator
	}
	return r.registry.Video(id)
}

// settle completes a dispatched call: synchronous responses pass through,
// asynchronous ones are polled to a terminal state.
func (r *FallbackRouter) settle(ctx context.Context, status StatusFunc, policy PollPolicy, raw *RawResponse, handle *JobHandle, err error) (*RawResponse, error) {
	if err != nil {
		return nil, err
	}
	if handle != nil {
		return r.poller.Await(ctx, *handle, status, policy)
	}
	return raw, nil
}

func fallbackWorthy(err error) bool {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return true
	}
	var te *domain.TimeoutError
	return errors.As(err, &te)
}
