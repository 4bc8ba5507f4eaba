package models

import "time"

const (
	EventTypeTournament = "tournament"
	EventTypeTraining   = "training"
	EventTypeSeminar    = "seminar"
	EventTypeGrading    = "grading"
)

// Event is a scheduled club happening. Matches belong to an event and are
// removed with it.
type Event struct {
	ID                   string     `json:"id" gorm:"primaryKey"`
	Name                 string     `json:"name" gorm:"not null"`
	Slug                 string     `json:"slug" gorm:"index"`
	Description          string     `json:"description"`
	StartDate            time.Time  `json:"start_date" gorm:"not null;index"`
	EndDate              time.Time  `json:"end_date" gorm:"not null"`
	Location             string     `json:"location"`
	EventType            string     `json:"event_type" gorm:"type:varchar(20);default:'training'"`
	MaxParticipants      *int       `json:"max_participants,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	IsPublished          bool       `json:"is_published" gorm:"default:false"`
	CreatedAt            time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Matches []Match `json:"matches,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// IsUpcoming reports whether the event starts after now. Computed, never stored.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartDate.After(now)
}

// EventRegistration records a trainee signing up for a published event.
type EventRegistration struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	EventID      string    `json:"event_id" gorm:"index;not null"`
	TraineeID    string    `json:"trainee_id" gorm:"index;not null"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`

	Event   Event   `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Trainee Trainee `json:"trainee,omitempty" gorm:"foreignKey:TraineeID"`
}
