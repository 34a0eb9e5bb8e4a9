// Package embedding treats face detection and embedding extraction as an
// opaque external capability: given one image, return zero or more 512-d
// unit-norm vectors, one per detected face. The production implementation
// delegates to an inference sidecar over HTTP.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Dimension must match the index's embedding size.
const Dimension = 512

// ErrBadVector wraps extractor outputs that violate the embedding contract
// (wrong dimension, zero norm).
var ErrBadVector = errors.New("invalid embedding vector")

// Face is one detected face: its embedding and pixel bounding box.
type Face struct {
	Vector []float64 `json:"vector"`
	// Bounding box in pixel coordinates of the source frame.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Extractor is the capability boundary. Implementations return one Face per
// detected face, or an empty slice when the frame holds none.
type Extractor interface {
	Extract(ctx context.Context, frame []byte) ([]Face, error)
}

// NormaliseVector validates the dimension and rescales to unit norm, so
// downstream cosine comparisons do not depend on the sidecar's output scale.
func NormaliseVector(vector []float64) ([]float64, error) {
	if len(vector) != Dimension {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrBadVector, len(vector), Dimension)
	}
	sumSq := 0.0
	for _, v := range vector {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w: zero or invalid norm", ErrBadVector)
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out, nil
}
