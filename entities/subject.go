package entities

import (
	"time"

	"facemark.io/application/utils"
)

// Subject is an enrolled person. The ID is the opaque subject key used by
// the identity index and the attendance ledger; it never changes after
// enrollment.
type Subject struct {
	Name      string  `bson:"name" json:"name"`
	RollNo    string  `bson:"rollNo" json:"rollNo"`
	ClassName *string `bson:"className" json:"className,omitempty"`
	ImagePath string  `bson:"imagePath" json:"imagePath"`
	Email     *string `bson:"email" json:"email,omitempty"`

	ID            string     `bson:"_id" json:"id"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt     *time.Time `bson:"deletedAt" json:"deletedAt"`
	DeletedReason *string    `bson:"deletedReason" json:"deletedReason"`
}

func (model Subject) ParseModel() any {
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
