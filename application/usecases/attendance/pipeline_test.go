package attendance_usecases

import (
	"context"
	"errors"
	"testing"

	"facemark.io/entities"
	"facemark.io/infrastructure/embedding"
	"facemark.io/infrastructure/ledger"
	"facemark.io/infrastructure/liveness"
)

type fakeVerifier struct {
	result *liveness.Result
	err    error
}

func (f *fakeVerifier) Verify(before, after [][]byte) (*liveness.Result, error) {
	return f.result, f.err
}

type fakeExtractor struct {
	faces []embedding.Face
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, frame []byte) ([]embedding.Face, error) {
	return f.faces, f.err
}

type fakeIndex struct {
	key   *string
	score float64
	err   error
}

func (f *fakeIndex) Match(vector []float64, threshold float64) (*string, float64, error) {
	return f.key, f.score, f.err
}

type fakeLedger struct {
	event *entities.AttendanceEvent
	err   error
	calls int
}

func (f *fakeLedger) Mark(ctx context.Context, subjectID string, confidence float64) (*entities.AttendanceEvent, error) {
	f.calls++
	return f.event, f.err
}

type fakeSubjects struct {
	subject *entities.Subject
	err     error
}

func (f *fakeSubjects) FindByKey(ctx context.Context, key string) (*entities.Subject, error) {
	return f.subject, f.err
}

func strPtr(s string) *string { return &s }

func liveResult() *liveness.Result {
	return &liveness.Result{IsLive: true}
}

func someFace() embedding.Face {
	return embedding.Face{Vector: make([]float64, embedding.Dimension), Width: 100, Height: 100}
}

func frames() [][]byte {
	return [][]byte{{0x01}, {0x02}}
}

func TestRunRejectsSpoof(t *testing.T) {
	p := NewPipeline(
		&fakeVerifier{result: &liveness.Result{IsLive: false, FailureReason: liveness.ReasonEdgePattern}},
		&fakeExtractor{},
		&fakeIndex{},
		&fakeLedger{},
		&fakeSubjects{},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Accepted {
		t.Fatal("Run() accepted a spoofed challenge")
	}
	want := SpoofReasonPrefix + liveness.ReasonEdgePattern
	if outcome.Reason != want {
		t.Errorf("Run() reason = %q, want %q", outcome.Reason, want)
	}
}

func TestRunPropagatesInputError(t *testing.T) {
	p := NewPipeline(
		&fakeVerifier{err: liveness.ErrBadInput},
		&fakeExtractor{},
		&fakeIndex{},
		&fakeLedger{},
		&fakeSubjects{},
		0.55,
	)

	if _, err := p.Run(context.Background(), nil, nil); !errors.Is(err, liveness.ErrBadInput) {
		t.Errorf("Run() error = %v, want ErrBadInput", err)
	}
}

func TestRunRejectsWhenNoFaceDetected(t *testing.T) {
	ledgerFake := &fakeLedger{}
	p := NewPipeline(
		&fakeVerifier{result: liveResult()},
		&fakeExtractor{faces: []embedding.Face{}},
		&fakeIndex{},
		ledgerFake,
		&fakeSubjects{},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Reason != ReasonNoFaceDetected {
		t.Errorf("Run() reason = %q, want %q", outcome.Reason, ReasonNoFaceDetected)
	}
	if ledgerFake.calls != 0 {
		t.Error("ledger was called for a rejected attempt")
	}
}

func TestRunRejectsUnrecognisedFace(t *testing.T) {
	p := NewPipeline(
		&fakeVerifier{result: liveResult()},
		&fakeExtractor{faces: []embedding.Face{someFace()}},
		&fakeIndex{key: nil, score: 0.41},
		&fakeLedger{},
		&fakeSubjects{},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Reason != ReasonNotRecognized {
		t.Errorf("Run() reason = %q, want %q", outcome.Reason, ReasonNotRecognized)
	}
	if outcome.Similarity != 0.41 {
		t.Errorf("Run() similarity = %f, want the near-miss score", outcome.Similarity)
	}
}

func TestRunRejectsWhenSubjectRecordMissing(t *testing.T) {
	p := NewPipeline(
		&fakeVerifier{result: liveResult()},
		&fakeExtractor{faces: []embedding.Face{someFace()}},
		&fakeIndex{key: strPtr("subject-a"), score: 0.8},
		&fakeLedger{},
		&fakeSubjects{subject: nil},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Reason != ReasonSubjectMissing {
		t.Errorf("Run() reason = %q, want %q", outcome.Reason, ReasonSubjectMissing)
	}
	if outcome.SubjectKey != "subject-a" {
		t.Errorf("Run() subjectKey = %q, want the dangling key", outcome.SubjectKey)
	}
}

func TestRunRejectsDuplicateMark(t *testing.T) {
	p := NewPipeline(
		&fakeVerifier{result: liveResult()},
		&fakeExtractor{faces: []embedding.Face{someFace()}},
		&fakeIndex{key: strPtr("subject-a"), score: 0.8},
		&fakeLedger{err: ledger.ErrAlreadyMarked},
		&fakeSubjects{subject: &entities.Subject{ID: "subject-a", Name: "Ada"}},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Reason != ReasonAlreadyMarked {
		t.Errorf("Run() reason = %q, want %q", outcome.Reason, ReasonAlreadyMarked)
	}
	if outcome.SubjectName != "Ada" {
		t.Errorf("Run() subjectName = %q, want Ada", outcome.SubjectName)
	}
}

func TestRunAccepts(t *testing.T) {
	event := &entities.AttendanceEvent{SubjectID: "subject-a", Day: "2026-08-24"}
	p := NewPipeline(
		&fakeVerifier{result: liveResult()},
		&fakeExtractor{faces: []embedding.Face{someFace()}},
		&fakeIndex{key: strPtr("subject-a"), score: 0.8},
		&fakeLedger{event: event},
		&fakeSubjects{subject: &entities.Subject{ID: "subject-a", Name: "Ada"}},
		0.55,
	)

	outcome, err := p.Run(context.Background(), frames(), frames())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !outcome.Accepted {
		t.Fatalf("Run() rejected a valid attempt: %q", outcome.Reason)
	}
	if outcome.SubjectKey != "subject-a" || outcome.SubjectName != "Ada" {
		t.Errorf("Run() identity = (%q, %q), want (subject-a, Ada)", outcome.SubjectKey, outcome.SubjectName)
	}
	if outcome.Event != event {
		t.Error("Run() did not carry the ledger event")
	}
	// similarity 0.8 -> distance 0.2 -> confidence 1/1.2
	if diff := outcome.Confidence - 1.0/1.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Run() confidence = %f, want %f", outcome.Confidence, 1.0/1.2)
	}
}

func TestLargestFaceSelection(t *testing.T) {
	small := embedding.Face{Vector: []float64{1}, Width: 10, Height: 10}
	big := embedding.Face{Vector: []float64{2}, Width: 100, Height: 120}
	got := largestFace([]embedding.Face{small, big, small})
	if got.Width != big.Width || got.Height != big.Height {
		t.Errorf("largestFace() picked %dx%d, want %dx%d", got.Width, got.Height, big.Width, big.Height)
	}
}
