package liveness

import (
	"os"
	"strconv"

	"facemark.io/infrastructure/logger"
)

// Config holds every threshold the flash-challenge scorer uses. The values
// are calibration constants: defaults come from field calibration against
// live and spoofed capture sets, and each one can be overridden through the
// environment without a code change.
type Config struct {
	// FramesPerBatch is the expected frame count of each batch. Zero accepts
	// any non-zero count as long as before and after agree.
	FramesPerBatch int

	// Bounds on the mean brightness increase of the after batch, as a
	// percentage of the before baseline. Below the floor the flash produced
	// no measurable response; above the ceiling the surface reflected like a
	// screen or glossy print.
	BrightnessDeltaFloorPct   float64
	BrightnessDeltaCeilingPct float64

	// ColorVarianceFloor is the minimum average per-channel pixel variance.
	// Flat reproductions carry materially less colour variance than skin.
	ColorVarianceFloor float64

	// EdgeDensityCeiling caps the fraction of edge pixels in the centre
	// region. Display pixel grids and moire push edge density far above
	// anything a face produces.
	EdgeDensityCeiling float64

	// UniformityFloor is the minimum luminance standard deviation. Depth and
	// shading on a real face keep this well above a flat surface's.
	UniformityFloor float64

	// NonuniformityCeiling caps the standard deviation of the per-frame
	// brightness deltas. Screens answer the flash with an almost perfectly
	// consistent jump; wildly inconsistent deltas mean the capture is junk.
	NonuniformityCeiling float64

	// Bounds on mean absolute inter-frame difference (gray levels) across
	// the before batch. Near zero is a static replay; very large is camera
	// shake.
	MotionFloor   float64
	MotionCeiling float64

	// CompositeMinimum is the score the summed per-metric scores must reach
	// once no hard-fail condition has triggered. Each metric scores in
	// [0, 1], so the theoretical maximum is 6.
	CompositeMinimum float64
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		FramesPerBatch:            5,
		BrightnessDeltaFloorPct:   2.0,
		BrightnessDeltaCeilingPct: 8.0,
		ColorVarianceFloor:        300.0,
		EdgeDensityCeiling:        0.25,
		UniformityFloor:           15.0,
		NonuniformityCeiling:      30.0,
		MotionFloor:               0.3,
		MotionCeiling:             25.0,
		CompositeMinimum:          3.6,
	}
}

// ConfigFromEnv overlays environment overrides onto the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.FramesPerBatch = intFromEnv("LIVENESS_FRAMES_PER_BATCH", cfg.FramesPerBatch)
	cfg.BrightnessDeltaFloorPct = floatFromEnv("LIVENESS_BRIGHTNESS_FLOOR_PCT", cfg.BrightnessDeltaFloorPct)
	cfg.BrightnessDeltaCeilingPct = floatFromEnv("LIVENESS_BRIGHTNESS_CEILING_PCT", cfg.BrightnessDeltaCeilingPct)
	cfg.ColorVarianceFloor = floatFromEnv("LIVENESS_COLOR_VARIANCE_FLOOR", cfg.ColorVarianceFloor)
	cfg.EdgeDensityCeiling = floatFromEnv("LIVENESS_EDGE_DENSITY_CEILING", cfg.EdgeDensityCeiling)
	cfg.UniformityFloor = floatFromEnv("LIVENESS_UNIFORMITY_FLOOR", cfg.UniformityFloor)
	cfg.NonuniformityCeiling = floatFromEnv("LIVENESS_NONUNIFORMITY_CEILING", cfg.NonuniformityCeiling)
	cfg.MotionFloor = floatFromEnv("LIVENESS_MOTION_FLOOR", cfg.MotionFloor)
	cfg.MotionCeiling = floatFromEnv("LIVENESS_MOTION_CEILING", cfg.MotionCeiling)
	cfg.CompositeMinimum = floatFromEnv("LIVENESS_COMPOSITE_MINIMUM", cfg.CompositeMinimum)
	return cfg
}

func floatFromEnv(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warning("invalid liveness threshold override, using default", logger.LoggerOptions{
			Key:  "variable",
			Data: key,
		}, logger.LoggerOptions{
			Key:  "value",
			Data: raw,
		})
		return fallback
	}
	return parsed
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		logger.Warning("invalid liveness threshold override, using default", logger.LoggerOptions{
			Key:  "variable",
			Data: key,
		}, logger.LoggerOptions{
			Key:  "value",
			Data: raw,
		})
		return fallback
	}
	return parsed
}
