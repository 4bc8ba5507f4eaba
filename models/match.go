package models

import "time"

// Match is a scored bout between two trainees at an event. A match with a
// winner set is terminal: scores and winner never change afterwards.
//
// Version is an optimistic-concurrency counter bumped on every mutation.
// Callers that present the version they read get a Conflict on mismatch;
// a zero version skips the check.
type Match struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	EventID    string    `json:"event_id" gorm:"index;not null"`
	Trainee1ID string    `json:"trainee1_id" gorm:"index;not null"`
	Trainee2ID string    `json:"trainee2_id" gorm:"index;not null"`
	WinnerID   *string   `json:"winner_id,omitempty" gorm:"index"`
	Score1     int       `json:"score1" gorm:"default:0"`
	Score2     int       `json:"score2" gorm:"default:0"`
	JudgeID    *string   `json:"judge_id,omitempty" gorm:"index"`
	MatchTime  time.Time `json:"match_time" gorm:"not null;index"`
	Version    int       `json:"version" gorm:"default:1"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Event    Event    `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Trainee1 Trainee  `json:"trainee1,omitempty" gorm:"foreignKey:Trainee1ID"`
	Trainee2 Trainee  `json:"trainee2,omitempty" gorm:"foreignKey:Trainee2ID"`
	Winner   *Trainee `json:"winner,omitempty" gorm:"foreignKey:WinnerID"`
}

// IsCompleted reports whether a winner has been declared.
func (m *Match) IsCompleted() bool {
	return m.WinnerID != nil
}

// UpcomingMatch decorates a match with countdown info for the judge view.
// Derived per request, never persisted.
type UpcomingMatch struct {
	Match      Match         `json:"match"`
	TimeUntil  time.Duration `json:"time_until"`
	IsImminent bool          `json:"is_imminent"` // starts within 15 minutes
}
