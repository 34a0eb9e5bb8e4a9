package validator

import (
	"github.com/go-playground/validator/v10"
)

const embeddingDimension = 512

// the service only ever deals in 512-d ArcFace style embeddings; anything
// else is a caller bug, not a calibration issue
func validateEmbeddingDimension(fl validator.FieldLevel) bool {
	vector, ok := fl.Field().Interface().([]float64)
	if !ok {
		return false
	}
	return len(vector) == embeddingDimension
}

// frame batches must be non-empty and every frame non-blank; batch length
// equality is checked at the DTO level where both batches are visible
func validateFrameBatch(fl validator.FieldLevel) bool {
	frames, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	if len(frames) == 0 {
		return false
	}
	for _, frame := range frames {
		if frame == "" {
			return false
		}
	}
	return true
}
