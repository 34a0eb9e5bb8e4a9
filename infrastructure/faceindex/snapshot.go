package faceindex

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"facemark.io/infrastructure/logger"
)

// snapshot is the on-disk form of the index. Vectors and subject keys are
// persisted in one document so the k-th vector always travels with the k-th
// key; a length mismatch after load can only mean external tampering or a
// partial write, both of which are treated as corruption.
type snapshot struct {
	Vectors     [][]float64 `json:"vectors"`
	SubjectKeys []string    `json:"subjectKeys"`
}

// Load reads the snapshot from disk. A missing file starts an empty index;
// a malformed or desynchronised file marks the index corrupt so every later
// query fails loudly instead of misattributing identities.
func (ix *FlatIndex) Load() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	raw, err := os.ReadFile(ix.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no face index snapshot found, starting fresh")
			ix.vectors = nil
			ix.subjectKeys = nil
			return nil
		}
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		ix.corrupt = true
		return ErrCorrupt
	}
	if len(snap.Vectors) != len(snap.SubjectKeys) {
		ix.corrupt = true
		logger.Error("face index snapshot is desynchronised", logger.LoggerOptions{
			Key:  "vectorCount",
			Data: len(snap.Vectors),
		}, logger.LoggerOptions{
			Key:  "keyCount",
			Data: len(snap.SubjectKeys),
		})
		return ErrCorrupt
	}
	for _, vector := range snap.Vectors {
		if len(vector) != Dimension {
			ix.corrupt = true
			return ErrCorrupt
		}
	}

	ix.vectors = snap.Vectors
	ix.subjectKeys = snap.SubjectKeys
	ix.corrupt = false
	logger.Info("face index snapshot loaded", logger.LoggerOptions{
		Key:  "entries",
		Data: len(ix.subjectKeys),
	})
	return nil
}

// persistLocked writes the snapshot atomically (temp file + rename) so a
// crash mid-write can never leave a half-updated pair on disk. Caller holds
// the write lock.
func (ix *FlatIndex) persistLocked() error {
	if ix.snapshotPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(ix.snapshotPath), 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(snapshot{
		Vectors:     ix.vectors,
		SubjectKeys: ix.subjectKeys,
	})
	if err != nil {
		return err
	}
	tmp := ix.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, ix.snapshotPath)
}
