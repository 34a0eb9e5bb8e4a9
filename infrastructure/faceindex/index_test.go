package faceindex

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func basisVector(axis int) []float64 {
	v := make([]float64, Dimension)
	v[axis] = 1.0
	return v
}

func blendedVector(axis int, weight float64) []float64 {
	v := make([]float64, Dimension)
	v[axis] = weight
	v[(axis+1)%Dimension] = 1.0 - weight
	return v
}

func TestInsertAndQueryNearest(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "index.json"))

	if err := ix.Insert(basisVector(0), "subject-a"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := ix.Insert(basisVector(1), "subject-b"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	key, score, err := ix.QueryNearest(blendedVector(1, 0.9))
	if err != nil {
		t.Fatalf("QueryNearest() error = %v", err)
	}
	if key == nil || *key != "subject-b" {
		t.Fatalf("QueryNearest() key = %v, want subject-b", key)
	}
	if score <= 0.9 {
		t.Errorf("QueryNearest() score = %f, want > 0.9", score)
	}
}

func TestQueryNearestEmptyIndex(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "index.json"))
	key, score, err := ix.QueryNearest(basisVector(0))
	if err != nil {
		t.Fatalf("QueryNearest() error = %v", err)
	}
	if key != nil {
		t.Errorf("QueryNearest() key = %v, want nil", *key)
	}
	if score != EmptyQueryScore {
		t.Errorf("QueryNearest() score = %f, want sentinel %f", score, EmptyQueryScore)
	}
}

func TestMatchAppliesThreshold(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "index.json"))
	if err := ix.Insert(basisVector(0), "subject-a"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// orthogonal probe: nearest neighbour exists but scores ~0
	key, score, err := ix.Match(basisVector(5), 0.55)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if key != nil {
		t.Errorf("Match() below threshold returned key %v, want nil", *key)
	}
	if math.Abs(score) > 1e-9 {
		t.Errorf("Match() score = %f, want ~0", score)
	}

	key, score, err = ix.Match(blendedVector(0, 0.95), 0.55)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if key == nil || *key != "subject-a" {
		t.Fatalf("Match() key = %v, want subject-a", key)
	}
	if score < 0.55 {
		t.Errorf("Match() score = %f, want >= threshold", score)
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "index.json"))
	ix.Insert(basisVector(0), "subject-a")
	ix.Insert(basisVector(0), "subject-a")

	probe := blendedVector(0, 0.9)
	key1, score1, _ := ix.Match(probe, 0.5)
	key2, score2, _ := ix.Match(probe, 0.5)
	if *key1 != *key2 || score1 != score2 {
		t.Errorf("Match() not idempotent: (%s, %f) vs (%s, %f)", *key1, score1, *key2, score2)
	}
}

func TestInsertRejectsBadVectors(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "index.json"))

	if err := ix.Insert(make([]float64, 128), "subject-a"); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Insert() short vector error = %v, want ErrDimensionMismatch", err)
	}
	if err := ix.Insert(make([]float64, Dimension), "subject-a"); err == nil {
		t.Error("Insert() accepted a zero-norm vector")
	}
	if err := ix.Insert(basisVector(0), ""); err == nil {
		t.Error("Insert() accepted an empty subject key")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	ix := NewFlatIndex(path)
	ix.Insert(basisVector(0), "subject-a")
	ix.Insert(basisVector(1), "subject-b")

	reloaded := NewFlatIndex(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.Size() != 2 {
		t.Fatalf("Size() after reload = %d, want 2", reloaded.Size())
	}
	key, _, err := reloaded.Match(basisVector(1), 0.9)
	if err != nil {
		t.Fatalf("Match() after reload error = %v", err)
	}
	if key == nil || *key != "subject-b" {
		t.Errorf("Match() after reload = %v, want subject-b", key)
	}
}

func TestLoadMissingSnapshotStartsEmpty(t *testing.T) {
	ix := NewFlatIndex(filepath.Join(t.TempDir(), "absent.json"))
	if err := ix.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ix.Size() != 0 {
		t.Errorf("Size() = %d, want 0", ix.Size())
	}
}

func TestLoadDesynchronisedSnapshotRefusesQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	raw := `{"vectors":[` + vectorJSON() + `],"subjectKeys":["a","b"]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	ix := NewFlatIndex(path)
	if err := ix.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load() error = %v, want ErrCorrupt", err)
	}
	if _, _, err := ix.QueryNearest(basisVector(0)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("QueryNearest() on corrupt index error = %v, want ErrCorrupt", err)
	}
	if err := ix.Insert(basisVector(0), "subject-a"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Insert() on corrupt index error = %v, want ErrCorrupt", err)
	}
}

func TestResetClearsEntriesAndSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ix := NewFlatIndex(path)
	ix.Insert(basisVector(0), "subject-a")

	if err := ix.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if ix.Size() != 0 {
		t.Errorf("Size() after reset = %d, want 0", ix.Size())
	}

	reloaded := NewFlatIndex(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() after reset error = %v", err)
	}
	if reloaded.Size() != 0 {
		t.Errorf("Size() after reset reload = %d, want 0", reloaded.Size())
	}
}

func TestConfidenceMapping(t *testing.T) {
	tests := []struct {
		similarity float64
		want       float64
	}{
		{1.0, 1.0},
		{0.5, 1.0 / 1.5},
		{0.0, 0.5},
	}
	for _, tt := range tests {
		if got := Confidence(tt.similarity); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Confidence(%f) = %f, want %f", tt.similarity, got, tt.want)
		}
	}
}

// vectorJSON renders one 512-d unit vector as a JSON array.
func vectorJSON() string {
	out := "[1"
	for i := 1; i < Dimension; i++ {
		out += ",0"
	}
	return out + "]"
}
