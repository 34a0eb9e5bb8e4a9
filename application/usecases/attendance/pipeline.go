// Package attendance_usecases orchestrates one verification attempt:
// flash-challenge liveness, embedding extraction, identity match, then the
// ledger write. Collaborators are injected so the pipeline itself stays
// stateless and every stage can be faked in tests.
package attendance_usecases

import (
	"context"
	"errors"

	"facemark.io/entities"
	"facemark.io/infrastructure/embedding"
	"facemark.io/infrastructure/faceindex"
	"facemark.io/infrastructure/ledger"
	"facemark.io/infrastructure/liveness"
	"facemark.io/infrastructure/logger"
)

// Rejection reasons surfaced to callers. Spoof rejections carry the
// verifier's specific reason after the prefix.
const (
	SpoofReasonPrefix    = "spoof: "
	ReasonNoFaceDetected = "no face detected"
	ReasonNotRecognized  = "not recognized"
	ReasonSubjectMissing = "subject record missing"
	ReasonAlreadyMarked  = "already marked today"
)

// LivenessVerifier scores a flash challenge.
type LivenessVerifier interface {
	Verify(before, after [][]byte) (*liveness.Result, error)
}

// IdentityIndex resolves an embedding to an enrolled subject key.
type IdentityIndex interface {
	Match(vector []float64, threshold float64) (*string, float64, error)
}

// AttendanceLedger enforces at most one accepted event per subject per day.
type AttendanceLedger interface {
	Mark(ctx context.Context, subjectID string, confidence float64) (*entities.AttendanceEvent, error)
}

// SubjectReader loads subject records by their index key.
type SubjectReader interface {
	FindByKey(ctx context.Context, key string) (*entities.Subject, error)
}

// Outcome is the single externally visible result of a pipeline run. A
// rejection is a normal outcome with Accepted=false and a reason; errors
// are reserved for invalid input and internal faults.
type Outcome struct {
	Accepted    bool                      `json:"accepted"`
	Reason      string                    `json:"reason,omitempty"`
	SubjectKey  string                    `json:"subjectKey,omitempty"`
	SubjectName string                    `json:"subjectName,omitempty"`
	Similarity  float64                   `json:"similarity"`
	Confidence  float64                   `json:"confidence,omitempty"`
	Liveness    *liveness.Result          `json:"liveness,omitempty"`
	Event       *entities.AttendanceEvent `json:"event,omitempty"`
}

type Pipeline struct {
	verifier  LivenessVerifier
	extractor embedding.Extractor
	index     IdentityIndex
	ledger    AttendanceLedger
	subjects  SubjectReader
	threshold float64
}

func NewPipeline(verifier LivenessVerifier, extractor embedding.Extractor, index IdentityIndex, attendanceLedger AttendanceLedger, subjects SubjectReader, threshold float64) *Pipeline {
	return &Pipeline{
		verifier:  verifier,
		extractor: extractor,
		index:     index,
		ledger:    attendanceLedger,
		subjects:  subjects,
		threshold: threshold,
	}
}

// Run executes the verification state machine. Stages run strictly in
// order; the first negative stage decides the outcome and later stages
// never execute.
func (p *Pipeline) Run(ctx context.Context, before, after [][]byte) (*Outcome, error) {
	livenessResult, err := p.verifier.Verify(before, after)
	if err != nil {
		return nil, err
	}
	if !livenessResult.IsLive {
		return &Outcome{
			Reason:   SpoofReasonPrefix + livenessResult.FailureReason,
			Liveness: livenessResult,
		}, nil
	}

	// the first post-flash frame is the best illuminated capture
	faces, err := p.extractor.Extract(ctx, after[0])
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return &Outcome{Reason: ReasonNoFaceDetected, Liveness: livenessResult}, nil
	}
	probe := largestFace(faces)

	key, similarity, err := p.index.Match(probe.Vector, p.threshold)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return &Outcome{
			Reason:     ReasonNotRecognized,
			Similarity: similarity,
			Liveness:   livenessResult,
		}, nil
	}

	subject, err := p.subjects.FindByKey(ctx, *key)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		// the index and the subject store have diverged; reject the attempt
		// but flag the fault loudly, it needs operator attention
		logger.Error("index entry points at a missing subject record", logger.LoggerOptions{
			Key:  "subjectKey",
			Data: *key,
		})
		return &Outcome{
			Reason:     ReasonSubjectMissing,
			SubjectKey: *key,
			Similarity: similarity,
			Liveness:   livenessResult,
		}, nil
	}

	confidence := faceindex.Confidence(similarity)
	event, err := p.ledger.Mark(ctx, *key, confidence)
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadyMarked) {
			return &Outcome{
				Reason:      ReasonAlreadyMarked,
				SubjectKey:  *key,
				SubjectName: subject.Name,
				Similarity:  similarity,
				Liveness:    livenessResult,
			}, nil
		}
		return nil, err
	}

	return &Outcome{
		Accepted:    true,
		SubjectKey:  *key,
		SubjectName: subject.Name,
		Similarity:  similarity,
		Confidence:  confidence,
		Liveness:    livenessResult,
		Event:       event,
	}, nil
}

// largestFace picks the face with the biggest bounding box; when a frame
// catches bystanders, the subject standing at the capture point dominates.
func largestFace(faces []embedding.Face) embedding.Face {
	best := faces[0]
	bestArea := best.Width * best.Height
	for _, face := range faces[1:] {
		if area := face.Width * face.Height; area > bestArea {
			best = face
			bestArea = area
		}
	}
	return best
}
