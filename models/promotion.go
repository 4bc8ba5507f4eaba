package models

import "time"

// Promotion records a belt advancement. BeltTo always has a strictly greater
// order than the trainee's belt at promotion time. Belt references are nulled
// out if a belt is deleted; the row itself survives.
type Promotion struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	TraineeID  string    `json:"trainee_id" gorm:"index;not null"`
	BeltFromID *string   `json:"belt_from_id,omitempty"`
	BeltToID   *string   `json:"belt_to_id,omitempty"`
	Date       time.Time `json:"date" gorm:"not null;index"`

	Trainee  Trainee `json:"trainee,omitempty" gorm:"foreignKey:TraineeID;constraint:OnDelete:CASCADE"`
	BeltFrom *Belt   `json:"belt_from,omitempty" gorm:"foreignKey:BeltFromID"`
	BeltTo   *Belt   `json:"belt_to,omitempty" gorm:"foreignKey:BeltToID"`
}
