// Package liveness implements the flash-challenge anti-spoofing check. The
// client captures a short frame burst, fires a controlled illumination
// pulse, captures a second burst, and sends both. A live face answers the
// pulse with a moderate, uneven brightness response; flat reproductions
// (prints, phone screens, monitors) answer uniformly and carry pixel-grid
// artifacts. The verifier measures both effects and scores them.
package liveness

import (
	"errors"
	"fmt"

	"facemark.io/infrastructure/logger"
	"gocv.io/x/gocv"
)

// ErrBadInput wraps every input-contract violation: empty or mismatched
// batches and undecodable frames. These are caller errors, never a liveness
// verdict.
var ErrBadInput = errors.New("invalid liveness input")

// Rejection reasons. Hard-fail reasons name the artifact that triggered
// them so operators can tell positioning problems from spoof attempts.
const (
	ReasonNoIlluminationResponse = "no illumination response detected"
	ReasonReflectiveResponse     = "excessive illumination response, reflective flat surface suspected"
	ReasonEdgePattern            = "screen-like edge pattern detected"
	ReasonFlatTexture            = "flat color texture, printed reproduction suspected"
	ReasonUniformSurface         = "implausibly uniform surface luminance"
	ReasonInconsistentResponse   = "inconsistent illumination response across frames"
	ReasonStaticFrames           = "static frames, replayed capture suspected"
	ReasonExcessiveMotion        = "excessive motion during capture"
	ReasonLowCompositeScore      = "composite liveness score below minimum"
)

// Result is the verdict for one challenge. A spoof rejection is a normal
// result with IsLive=false and the triggering reason; errors are reserved
// for input-contract violations.
type Result struct {
	IsLive        bool    `json:"isLive"`
	Metrics       Metrics `json:"metrics"`
	FailureReason string  `json:"failureReason,omitempty"`
}

type Verifier struct {
	cfg Config
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify scores one flash challenge. Both batches must be non-empty, of
// equal length, and (when FramesPerBatch is set) of the configured count.
func (v *Verifier) Verify(before, after [][]byte) (*Result, error) {
	if len(before) == 0 || len(after) == 0 {
		return nil, fmt.Errorf("%w: empty frame batch", ErrBadInput)
	}
	if len(before) != len(after) {
		return nil, fmt.Errorf("%w: batch length mismatch, before=%d after=%d", ErrBadInput, len(before), len(after))
	}
	if v.cfg.FramesPerBatch > 0 && len(before) != v.cfg.FramesPerBatch {
		return nil, fmt.Errorf("%w: expected %d frames per batch, got %d", ErrBadInput, v.cfg.FramesPerBatch, len(before))
	}

	beforeMats, err := decodeBatch(before, "before")
	if err != nil {
		return nil, err
	}
	defer closeMats(beforeMats)
	afterMats, err := decodeBatch(after, "after")
	if err != nil {
		return nil, err
	}
	defer closeMats(afterMats)

	rows, cols := beforeMats[0].Rows(), beforeMats[0].Cols()
	for _, mat := range append(append([]gocv.Mat{}, beforeMats...), afterMats...) {
		if mat.Rows() != rows || mat.Cols() != cols {
			return nil, fmt.Errorf("%w: frames have inconsistent dimensions", ErrBadInput)
		}
	}

	metrics := v.measure(beforeMats, afterMats)
	result := v.decide(metrics)
	logger.Info("liveness challenge scored", logger.LoggerOptions{
		Key:  "isLive",
		Data: result.IsLive,
	}, logger.LoggerOptions{
		Key:  "reason",
		Data: result.FailureReason,
	}, logger.LoggerOptions{
		Key:  "metrics",
		Data: result.Metrics,
	})
	return result, nil
}

// measure computes the six-metric bundle over the centre regions of both
// batches.
func (v *Verifier) measure(beforeMats, afterMats []gocv.Mat) Metrics {
	beforeBrightness := make([]float64, len(beforeMats))
	afterBrightness := make([]float64, len(afterMats))
	variances := []float64{}
	edgeDensities := []float64{}
	uniformities := []float64{}

	beforeRegions := make([]gocv.Mat, len(beforeMats))
	for i, mat := range beforeMats {
		region := centerRegion(mat)
		beforeRegions[i] = region
		beforeBrightness[i] = meanBrightness(region)
		variances = append(variances, colorVariance(region))
		edgeDensities = append(edgeDensities, edgeDensity(region))
		uniformities = append(uniformities, luminanceStdDev(region))
	}
	defer closeMats(beforeRegions)

	for i, mat := range afterMats {
		region := centerRegion(mat)
		afterBrightness[i] = meanBrightness(region)
		variances = append(variances, colorVariance(region))
		edgeDensities = append(edgeDensities, edgeDensity(region))
		uniformities = append(uniformities, luminanceStdDev(region))
		region.Close()
	}

	baseline := meanOf(beforeBrightness)
	deltaPct := 0.0
	if baseline > 0 {
		deltaPct = (meanOf(afterBrightness) - baseline) / baseline * 100.0
	}

	// brightness jump of each (before, after) frame pair; a screen answers
	// the flash with a near-identical jump in every pair
	pairDeltas := make([]float64, len(beforeBrightness))
	for i := range beforeBrightness {
		pairDeltas[i] = afterBrightness[i] - beforeBrightness[i]
	}

	motionDiffs := []float64{}
	for i := 1; i < len(beforeRegions); i++ {
		motionDiffs = append(motionDiffs, interFrameDiff(beforeRegions[i-1], beforeRegions[i]))
	}

	return Metrics{
		BrightnessDeltaPct: deltaPct,
		ColorVariance:      meanOf(variances),
		EdgeDensity:        meanOf(edgeDensities),
		Uniformity:         meanOf(uniformities),
		Nonuniformity:      stdDevOf(pairDeltas),
		Motion:             meanOf(motionDiffs),
	}
}

// decide applies the ordered hard-fail checks and then the composite score.
// Any crossed hard-fail threshold rejects regardless of the composite.
func (v *Verifier) decide(metrics Metrics) *Result {
	cfg := v.cfg

	hardFails := []struct {
		failed bool
		reason string
	}{
		{metrics.BrightnessDeltaPct < cfg.BrightnessDeltaFloorPct, ReasonNoIlluminationResponse},
		{metrics.BrightnessDeltaPct > cfg.BrightnessDeltaCeilingPct, ReasonReflectiveResponse},
		{metrics.EdgeDensity > cfg.EdgeDensityCeiling, ReasonEdgePattern},
		{metrics.ColorVariance < cfg.ColorVarianceFloor, ReasonFlatTexture},
		{metrics.Uniformity < cfg.UniformityFloor, ReasonUniformSurface},
		{metrics.Nonuniformity > cfg.NonuniformityCeiling, ReasonInconsistentResponse},
		{metrics.Motion < cfg.MotionFloor, ReasonStaticFrames},
		{metrics.Motion > cfg.MotionCeiling, ReasonExcessiveMotion},
	}
	for _, check := range hardFails {
		if check.failed {
			return &Result{IsLive: false, Metrics: metrics, FailureReason: check.reason}
		}
	}

	composite := windowScore(metrics.BrightnessDeltaPct, cfg.BrightnessDeltaFloorPct, cfg.BrightnessDeltaCeilingPct) +
		floorScore(metrics.ColorVariance, cfg.ColorVarianceFloor) +
		ceilingScore(metrics.EdgeDensity, cfg.EdgeDensityCeiling) +
		floorScore(metrics.Uniformity, cfg.UniformityFloor) +
		ceilingScore(metrics.Nonuniformity, cfg.NonuniformityCeiling) +
		windowScore(metrics.Motion, cfg.MotionFloor, cfg.MotionCeiling)
	metrics.CompositeScore = composite

	if composite < cfg.CompositeMinimum {
		return &Result{IsLive: false, Metrics: metrics, FailureReason: ReasonLowCompositeScore}
	}
	return &Result{IsLive: true, Metrics: metrics}
}

// windowScore peaks at the midpoint of [lo, hi] and falls linearly to 0 at
// either bound. Hard-fail checks guarantee value is inside the window.
func windowScore(value, lo, hi float64) float64 {
	mid := (lo + hi) / 2.0
	half := (hi - lo) / 2.0
	if half <= 0 {
		return 0
	}
	score := 1.0 - abs(value-mid)/half
	return clamp01(score)
}

// floorScore rewards clearing the floor with margin, saturating at double
// the floor.
func floorScore(value, floor float64) float64 {
	if floor <= 0 {
		return 1
	}
	return clamp01(value / (2.0 * floor))
}

// ceilingScore rewards distance below the ceiling.
func ceilingScore(value, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return clamp01(1.0 - value/ceiling)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func decodeBatch(frames [][]byte, label string) ([]gocv.Mat, error) {
	mats := make([]gocv.Mat, 0, len(frames))
	for i, raw := range frames {
		mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
		if err != nil || mat.Empty() {
			closeMats(mats)
			return nil, fmt.Errorf("%w: %s frame %d is not a decodable image", ErrBadInput, label, i)
		}
		mats = append(mats, mat)
	}
	return mats, nil
}

func closeMats(mats []gocv.Mat) {
	for i := range mats {
		if mats[i].Ptr() != nil {
			mats[i].Close()
		}
	}
}
