// Package faceindex implements the in-process nearest-neighbour index that
// maps face embeddings to enrolled subject keys. The index is flat: every
// query scans all stored vectors with cosine similarity. At the scale of an
// attendance roster (hundreds to low thousands of entries) a scan is faster
// than maintaining graph structures, and it keeps insertion order exact.
package faceindex

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"facemark.io/infrastructure/logger"
	"gonum.org/v1/gonum/floats"
)

// Dimension is the embedding size the service deals in. Extractors emitting
// any other size are rejected at the boundary.
const Dimension = 512

// EmptyQueryScore is the sentinel score returned when the index holds no
// entries. Cosine similarity lives in [-1, 1] so -2 is unambiguous.
const EmptyQueryScore = -2.0

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorrupt signals that the persisted vector and key collections have
	// desynchronised. Queries must fail rather than risk misattribution.
	ErrCorrupt = errors.New("face index corrupt: vector/key count mismatch")
)

// FlatIndex stores (vector, subject key) pairs append-only. Multiple entries
// per subject are expected: re-enrollment and extra angles improve recall.
type FlatIndex struct {
	mu           sync.RWMutex
	vectors      [][]float64
	subjectKeys  []string
	snapshotPath string
	corrupt      bool
}

func NewFlatIndex(snapshotPath string) *FlatIndex {
	return &FlatIndex{snapshotPath: snapshotPath}
}

// Insert appends an embedding for the given subject key. The vector is
// normalised to unit length so stored entries and probes compare on the same
// scale regardless of the extractor's output.
func (ix *FlatIndex) Insert(vector []float64, subjectKey string) error {
	if len(vector) != Dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), Dimension)
	}
	if subjectKey == "" {
		return errors.New("subject key must not be empty")
	}
	normalised, err := normalise(vector)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.corrupt {
		return ErrCorrupt
	}
	ix.vectors = append(ix.vectors, normalised)
	ix.subjectKeys = append(ix.subjectKeys, subjectKey)
	if err := ix.persistLocked(); err != nil {
		// roll the append back so memory and disk stay consistent
		ix.vectors = ix.vectors[:len(ix.vectors)-1]
		ix.subjectKeys = ix.subjectKeys[:len(ix.subjectKeys)-1]
		return err
	}
	logger.Info("face index entry added", logger.LoggerOptions{
		Key:  "subjectKey",
		Data: subjectKey,
	}, logger.LoggerOptions{
		Key:  "indexSize",
		Data: len(ix.subjectKeys),
	})
	return nil
}

// QueryNearest returns the subject key of the single closest entry and its
// cosine similarity. An empty index returns (nil, EmptyQueryScore).
func (ix *FlatIndex) QueryNearest(vector []float64) (*string, float64, error) {
	if len(vector) != Dimension {
		return nil, EmptyQueryScore, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), Dimension)
	}
	probe, err := normalise(vector)
	if err != nil {
		return nil, EmptyQueryScore, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.corrupt || len(ix.vectors) != len(ix.subjectKeys) {
		return nil, EmptyQueryScore, ErrCorrupt
	}
	if len(ix.vectors) == 0 {
		return nil, EmptyQueryScore, nil
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, stored := range ix.vectors {
		score := floats.Dot(stored, probe)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	key := ix.subjectKeys[best]
	return &key, bestScore, nil
}

// Match applies the similarity threshold to QueryNearest: the nearest entry
// is only an identity claim when its score clears the threshold. The raw
// score is returned either way so callers can report near-misses.
func (ix *FlatIndex) Match(vector []float64, threshold float64) (*string, float64, error) {
	key, score, err := ix.QueryNearest(vector)
	if err != nil {
		return nil, score, err
	}
	if key == nil || score < threshold {
		return nil, score, nil
	}
	return key, score, nil
}

// Size reports the number of stored entries.
func (ix *FlatIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.subjectKeys)
}

// Reset drops every entry and rewrites the snapshot so the vector and key
// collections clear together.
func (ix *FlatIndex) Reset() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = nil
	ix.subjectKeys = nil
	ix.corrupt = false
	return ix.persistLocked()
}

// Confidence maps a cosine similarity to a display confidence in (0, 1]
// through the distance form 1/(1+d) with d = 1 - similarity. It is a
// monotonic heuristic for logs and responses, not a calibrated probability.
func Confidence(similarity float64) float64 {
	distance := 1.0 - similarity
	if distance < 0 {
		distance = 0
	}
	return 1.0 / (1.0 + distance)
}

func normalise(vector []float64) ([]float64, error) {
	norm := math.Sqrt(floats.Dot(vector, vector))
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, errors.New("embedding has zero or invalid norm")
	}
	out := make([]float64, len(vector))
	copy(out, vector)
	floats.Scale(1.0/norm, out)
	return out, nil
}
