package video

import (
	"strings"

	"mediastudio/internal/domain"
	"mediastudio/internal/providers"
)

// Pricing is shared across video backends: a per-second base scaled by
// resolution and model family. The aggregator and the direct adapters must
// agree so a fallback never changes what the user is charged.
const costPerSecond = 0.08

var resolutionMultipliers = map[string]float64{
	"720p":  1,
	"1080p": 1.5,
	"4k":    3,
}

var modelMultipliers = map[string]float64{
	"veo3":  1.2,
	"sora2": 1.5,
}

// defaultDurations is keyed by normalized model family. Every adapter fills
// an unset duration through defaultDuration, so an aggregator-to-direct
// fallback prices and submits the same clip length.
var defaultDurations = map[string]int{
	"veo3":  15,
	"sora2": 30,
}

func defaultDuration(model string) int {
	if d, ok := defaultDurations[providers.NormalizeModel(model)]; ok {
		return d
	}
	return 10
}

// estimateCost prices a video operation from its effective settings. Unknown
// resolutions and models fall back to a multiplier of 1.
func estimateCost(model string, s domain.Settings) float64 {
	duration := float64(defaultInt(s.Duration, defaultDuration(model)))
	resMult, ok := resolutionMultipliers[strings.ToLower(defaultString(s.Resolution, "1080p"))]
	if !ok {
		resMult = 1
	}
	modelMult, ok := modelMultipliers[providers.NormalizeModel(model)]
	if !ok {
		modelMult = 1
	}
	return costPerSecond * duration * resMult * modelMult
}

// videoState folds the status vocabularies of every video backend into the
// internal job states.
func videoState(status string) providers.JobState {
	switch strings.ToLower(status) {
	case "queued", "pending", "submitted", "waiting", "queuing":
		return providers.JobQueued
	case "processing", "in_progress", "running", "generating":
		return providers.JobProcessing
	case "succeeded", "success", "completed", "complete":
		return providers.JobSucceeded
	default:
		return providers.JobFailed
	}
}
