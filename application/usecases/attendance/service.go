package attendance_usecases

import (
	"context"

	"facemark.io/application/repository"
	"facemark.io/entities"
	"facemark.io/infrastructure/embedding"
	"facemark.io/infrastructure/faceindex"
	"facemark.io/infrastructure/ledger"
	"facemark.io/infrastructure/liveness"
)

// RepoSubjectStore resolves index keys against the subjects collection. The
// index stores subject document IDs as its keys.
type RepoSubjectStore struct{}

func (RepoSubjectStore) FindByKey(ctx context.Context, key string) (*entities.Subject, error) {
	return repository.SubjectRepo().FindByID(ctx, key)
}

var defaultPipeline *Pipeline
var defaultLedger *ledger.Ledger

// Initialise wires the production pipeline: gocv flash verifier, HTTP
// inference sidecar, the shared face index, and the mongo-backed ledger.
// Called once from startup after the index snapshot has loaded.
func Initialise() {
	defaultLedger = ledger.New(ledger.NewMongoStore())
	defaultPipeline = NewPipeline(
		liveness.NewVerifier(liveness.ConfigFromEnv()),
		embedding.NewHTTPExtractor(),
		faceindex.Index,
		defaultLedger,
		RepoSubjectStore{},
		faceindex.MatchThreshold(),
	)
}

// Default returns the pipeline built by Initialise.
func Default() *Pipeline {
	return defaultPipeline
}

// DefaultLedger returns the shared ledger for record queries and resets.
func DefaultLedger() *ledger.Ledger {
	return defaultLedger
}
