package entities

import (
	"time"

	"facemark.io/application/utils"
)

// AttendanceEvent is one accepted attendance record. Day is the local
// calendar date of Timestamp in 2006-01-02 form; the (subjectID, day) pair
// is unique in the datastore, which is what enforces the at-most-one
// acceptance per subject per day invariant across processes.
type AttendanceEvent struct {
	SubjectID  string    `bson:"subjectID" json:"subjectID"`
	Day        string    `bson:"day" json:"day"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Confidence float64   `bson:"confidence" json:"confidence"`

	ID            string     `bson:"_id" json:"id"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt     *time.Time `bson:"deletedAt" json:"deletedAt"`
	DeletedReason *string    `bson:"deletedReason" json:"deletedReason"`
}

func (model AttendanceEvent) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateULIDString()
		}
	}
	model.UpdatedAt = now
	return &model
}
