package service

import (
	"context"

	"github.com/rs/zerolog"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
	"mediastudio/internal/providers/video"
)

const defaultImageProvider = "dall-e-3"

// GenerationService fronts the provider core for media generation: it clamps
// settings, dispatches through the router, normalizes the settled response
// and persists the result.
type GenerationService struct {
	registry   *providers.Registry
	router     *providers.FallbackRouter
	normalizer *providers.Normalizer
	repo       domain.GenerationRepository
	aggregator *video.KIE
	logger     zerolog.Logger
}

// GenerationServiceOptions wires a GenerationService. Aggregator is optional;
// without it the video model listing falls back to registry capabilities.
type GenerationServiceOptions struct {
	Registry   *providers.Registry
	Router     *providers.FallbackRouter
	Normalizer *providers.Normalizer
	Repo       domain.GenerationRepository
	Aggregator *video.KIE
	Logger     zerolog.Logger
}

func NewGenerationService(opts GenerationServiceOptions) *GenerationService {
	return &GenerationService{
		registry:   opts.Registry,
		router:     opts.Router,
		normalizer: opts.Normalizer,
		repo:       opts.Repo,
		aggregator: opts.Aggregator,
		logger:     opts.Logger,
	}
}

// GenerateImage runs a text-to-image request to completion and stores the
// normalized result.
func (s *GenerationService) GenerateImage(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if req.Provider == "" {
		req.Provider = defaultImageProvider
	}
	req.Kind = domain.MediaImage

	raw, err := s.router.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, providers.OpGenerate, req, raw)
}

// EditImage re-generates an existing image under a new prompt. The source is
// resolved from the stored record and must belong to the caller.
func (s *GenerationService) EditImage(ctx context.Context, userID, id, prompt string, settings domain.Settings) (*domain.GenerationResult, error) {
	source, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if source.ImageURL == "" {
		return nil, &domain.ProviderError{Provider: source.Provider, Message: "source generation has no image"}
	}

	raw, err := s.router.EditImage(ctx, source.Provider, source.ImageURL, prompt, settings)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		UserID:   userID,
		Kind:     domain.MediaImage,
		Prompt:   prompt,
		Provider: source.Provider,
		Model:    source.Model,
		Settings: settings,
	}
	return s.finish(ctx, providers.OpEdit, req, raw)
}

// UpscaleImage produces a higher-resolution variant of a stored image.
func (s *GenerationService) UpscaleImage(ctx context.Context, userID, id string, settings domain.Settings) (*domain.GenerationResult, error) {
	source, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if source.ImageURL == "" {
		return nil, &domain.ProviderError{Provider: source.Provider, Message: "source generation has no image"}
	}

	raw, err := s.router.UpscaleImage(ctx, source.Provider, source.ImageURL, settings)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		UserID:   userID,
		Kind:     domain.MediaImage,
		Prompt:   source.Prompt,
		Provider: source.Provider,
		Model:    source.Model,
		Settings: settings,
	}
	return s.finish(ctx, providers.OpUpscale, req, raw)
}

// GenerateVideo runs a text-to-video request through the router, which may
// settle it on a fallback provider.
func (s *GenerationService) GenerateVideo(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	req.Kind = domain.MediaVideo

	raw, err := s.router.GenerateVideo(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, providers.OpGenerate, req, raw)
}

// EditVideo re-generates an existing video under a new prompt on the backend
// that produced it.
func (s *GenerationService) EditVideo(ctx context.Context, userID, id, prompt string, settings domain.Settings) (*domain.GenerationResult, error) {
	source, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	target := source.VideoURL
	if target == "" {
		target = source.ID
	}

	raw, err := s.router.EditVideo(ctx, source.Provider, target, prompt, settings)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		UserID:   userID,
		Kind:     domain.MediaVideo,
		Prompt:   prompt,
		Provider: source.Provider,
		Model:    source.Model,
		Settings: settings,
	}
	return s.finish(ctx, providers.OpEdit, req, raw)
}

// Capabilities returns the static feature table of one registered provider.
func (s *GenerationService) Capabilities(kind domain.MediaKind, providerID string) (providers.Capabilities, error) {
	a, err := s.registry.Adapter(kind, providerID)
	if err != nil {
		return providers.Capabilities{}, err
	}
	return a.Capabilities(), nil
}

// ImageProviders lists registered image provider ids.
func (s *GenerationService) ImageProviders() []string { return s.registry.ImageProviders() }

// VideoProviders lists registered video provider ids.
func (s *GenerationService) VideoProviders() []string { return s.registry.VideoProviders() }

// ListVideoModels returns the model catalog, preferring the aggregator's live
// listing.
func (s *GenerationService) ListVideoModels(ctx context.Context) []video.VideoModel {
	if s.aggregator != nil {
		return s.aggregator.Models(ctx)
	}
	models := make([]video.VideoModel, 0, 4)
	for _, id := range s.registry.VideoProviders() {
		a, err := s.registry.Video(id)
		if err != nil {
			continue
		}
		caps := a.Capabilities()
		for _, m := range caps.Models {
			models = append(models, video.VideoModel{ID: m, Name: m, Provider: id, MaxDuration: caps.MaxDuration})
		}
	}
	return models
}

// Get fetches a generation owned by the user.
func (s *GenerationService) Get(ctx context.Context, userID, id string) (*domain.GenerationResult, error) {
	return s.owned(ctx, id, userID)
}

// List returns a filtered page of the user's generations.
func (s *GenerationService) List(ctx context.Context, filter domain.GenerationFilter, page, limit int) ([]domain.GenerationResult, domain.Page, error) {
	return s.repo.List(ctx, filter, page, limit)
}

// Delete removes a generation owned by the user.
func (s *GenerationService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *GenerationService) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	return s.repo.ToggleFavorite(ctx, id, userID)
}

// finish normalizes a settled raw response against the adapter that actually
// served it and persists the result.
func (s *GenerationService) finish(ctx context.Context, op providers.Operation, req domain.GenerationRequest, raw *providers.RawResponse) (*domain.GenerationResult, error) {
	a, err := s.registry.Adapter(req.Kind, raw.Provider)
	if err != nil {
		return nil, err
	}
	result, err := s.normalizer.Normalize(a, op, req, raw)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, result); err != nil {
		s.logger.Error().Err(err).Str("generation_id", result.ID).Msg("generation: persist failed")
		return nil, err
	}
	return result, nil
}

func (s *GenerationService) owned(ctx context.Context, id, userID string) (*domain.GenerationResult, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return result, nil
}
