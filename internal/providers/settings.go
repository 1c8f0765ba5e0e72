package providers

import "mediastudio/internal/domain"

// Bounds declares the numeric limits a provider accepts. Zero-valued fields
// mean the dimension is not constrained by that provider.
type Bounds struct {
	MinWidth, MaxWidth     int
	MinHeight, MaxHeight   int
	MinSteps, MaxSteps     int
	MinCfg, MaxCfg         float64
	MinSamples, MaxSamples int
	MaxDuration            int
}

// DefaultImageBounds mirrors the persistence schema the platform historically
// declared but never enforced: width/height 256..2048, steps 1..150,
// cfgScale 1..20, samples 1..4. Enforcement now happens here, at the adapter
// boundary, by clamping.
var DefaultImageBounds = Bounds{
	MinWidth: 256, MaxWidth: 2048,
	MinHeight: 256, MaxHeight: 2048,
	MinSteps: 1, MaxSteps: 150,
	MinCfg: 1, MaxCfg: 20,
	MinSamples: 1, MaxSamples: 4,
}

// Clamp returns a copy of s with out-of-range values pulled to the nearest
// bound. Unset (zero) values are left for the adapter's defaults to fill.
func Clamp(s domain.Settings, b Bounds) domain.Settings {
	s.Width = clampInt(s.Width, b.MinWidth, b.MaxWidth)
	s.Height = clampInt(s.Height, b.MinHeight, b.MaxHeight)
	s.Steps = clampInt(s.Steps, b.MinSteps, b.MaxSteps)
	s.CfgScale = clampFloat(s.CfgScale, b.MinCfg, b.MaxCfg)
	s.Samples = clampInt(s.Samples, b.MinSamples, b.MaxSamples)
	if b.MaxDuration > 0 && s.Duration > b.MaxDuration {
		s.Duration = b.MaxDuration
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v == 0 {
		return 0
	}
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v == 0 {
		return 0
	}
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
