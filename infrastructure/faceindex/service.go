package faceindex

import (
	"os"
	"path/filepath"
	"strconv"

	"facemark.io/infrastructure/logger"
)

// DefaultMatchThreshold is the cosine similarity an embedding must reach to
// be accepted as an identity. 0.55 follows the ArcFace calibration the
// enrolment pipeline was tuned against; override with FACE_MATCH_THRESHOLD.
const DefaultMatchThreshold = 0.55

var Index *FlatIndex

// MatchThreshold reads the configured similarity threshold, falling back to
// the default on absent or unparsable values.
func MatchThreshold() float64 {
	raw := os.Getenv("FACE_MATCH_THRESHOLD")
	if raw == "" {
		return DefaultMatchThreshold
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 || parsed > 1 {
		logger.Warning("invalid FACE_MATCH_THRESHOLD, using default", logger.LoggerOptions{
			Key:  "value",
			Data: raw,
		})
		return DefaultMatchThreshold
	}
	return parsed
}

// InitialiseFaceIndex builds the shared index instance and loads its
// snapshot. A corrupt snapshot is fatal at startup: operators must resolve
// it rather than let the service misattribute identities.
func InitialiseFaceIndex() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	Index = NewFlatIndex(filepath.Join(dataDir, "faceindex.json"))
	if err := Index.Load(); err != nil {
		logger.Error("failed to load face index snapshot", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		panic(err)
	}
}
