// Package ledger enforces the one-accepted-event-per-subject-per-day rule of
// the attendance record. The rule is applied twice: a process-local mutex
// serialises check-then-act within one instance, and the unique
// (subjectID, day) index on the events collection backstops races across
// instances or restarts.
package ledger

import (
	"context"
	"errors"
	"time"

	"facemark.io/entities"
)

// DayKeyLayout is the calendar-day bucket for the ledger. Days roll over at
// local midnight of the service's timezone.
const DayKeyLayout = "2006-01-02"

// ErrAlreadyMarked is returned by Mark when the subject already holds an
// accepted event for the day.
var ErrAlreadyMarked = errors.New("attendance already marked for today")

// Store is the persistence the ledger runs over. CreateEvent must refuse a
// second event for the same (subjectID, day) pair with ErrDuplicateEvent.
type Store interface {
	CreateEvent(ctx context.Context, event entities.AttendanceEvent) (*entities.AttendanceEvent, error)
	HasEvent(ctx context.Context, subjectID string, day string) (bool, error)
	EventsForSubject(ctx context.Context, subjectID string) ([]entities.AttendanceEvent, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ErrDuplicateEvent is what Store implementations return when the uniqueness
// constraint on (subjectID, day) rejects an insert.
var ErrDuplicateEvent = errors.New("duplicate attendance event")

// DayKey buckets a timestamp into its calendar day.
func DayKey(at time.Time) string {
	return at.Format(DayKeyLayout)
}
