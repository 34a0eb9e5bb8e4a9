package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"facemark.io/entities"
	"facemark.io/infrastructure/logger"
)

// Ledger coordinates duplicate checks and inserts over a Store.
type Ledger struct {
	mu    sync.Mutex
	store Store
	// now is swappable for tests that pin the clock around midnight.
	now func() time.Time
}

func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// HasMarkedToday reports whether the subject already holds an accepted event
// for the current calendar day.
func (l *Ledger) HasMarkedToday(ctx context.Context, subjectID string) (bool, error) {
	return l.store.HasEvent(ctx, subjectID, DayKey(l.now()))
}

// Mark records an accepted attendance event for the subject. Exactly one
// concurrent call per subject per day succeeds; the rest get
// ErrAlreadyMarked. The mutex makes the check-then-insert atomic within this
// process, and the store's uniqueness constraint converts any remaining race
// into ErrDuplicateEvent, which is reported the same way.
func (l *Ledger) Mark(ctx context.Context, subjectID string, confidence float64) (*entities.AttendanceEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	day := DayKey(now)

	marked, err := l.store.HasEvent(ctx, subjectID, day)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, ErrAlreadyMarked
	}

	event, err := l.store.CreateEvent(ctx, entities.AttendanceEvent{
		SubjectID:  subjectID,
		Day:        day,
		Timestamp:  now,
		Confidence: confidence,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return nil, ErrAlreadyMarked
		}
		return nil, err
	}
	logger.Info("attendance marked", logger.LoggerOptions{
		Key:  "subjectID",
		Data: subjectID,
	}, logger.LoggerOptions{
		Key:  "day",
		Data: day,
	})
	return event, nil
}

// EventsForSubject lists the subject's accepted events, newest first.
func (l *Ledger) EventsForSubject(ctx context.Context, subjectID string) ([]entities.AttendanceEvent, error) {
	return l.store.EventsForSubject(ctx, subjectID)
}

// Reset removes every recorded event. Only the admin reset flow calls this.
func (l *Ledger) Reset(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteAll(ctx)
}
