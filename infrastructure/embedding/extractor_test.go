package embedding

import (
	"errors"
	"math"
	"testing"
)

func TestNormaliseVector(t *testing.T) {
	vector := make([]float64, Dimension)
	for i := range vector {
		vector[i] = 2.0
	}

	normalised, err := NormaliseVector(vector)
	if err != nil {
		t.Fatalf("NormaliseVector() error = %v", err)
	}
	sumSq := 0.0
	for _, v := range normalised {
		sumSq += v * v
	}
	if math.Abs(sumSq-1.0) > 1e-9 {
		t.Errorf("NormaliseVector() norm² = %f, want 1", sumSq)
	}
}

func TestNormaliseVectorRejectsBadInput(t *testing.T) {
	if _, err := NormaliseVector(make([]float64, 128)); !errors.Is(err, ErrBadVector) {
		t.Errorf("NormaliseVector() short vector error = %v, want ErrBadVector", err)
	}
	if _, err := NormaliseVector(make([]float64, Dimension)); !errors.Is(err, ErrBadVector) {
		t.Errorf("NormaliseVector() zero vector error = %v, want ErrBadVector", err)
	}
	nan := make([]float64, Dimension)
	nan[0] = math.NaN()
	if _, err := NormaliseVector(nan); !errors.Is(err, ErrBadVector) {
		t.Errorf("NormaliseVector() NaN vector error = %v, want ErrBadVector", err)
	}
}
