package models

import "time"

// Trainee is the club member profile, one-to-one with a User.
// Deactivation is a soft delete: history (matches, payments, promotions)
// stays attached to the row.
type Trainee struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"uniqueIndex;not null"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	BeltID           *string   `json:"belt_id,omitempty" gorm:"index"`
	ContactNumber    string    `json:"contact_number"`
	Address          string    `json:"address"`
	JoinDate         time.Time `json:"join_date" gorm:"autoCreateTime"`
	ProfileImageURL  string    `json:"profile_image_url,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	EmergencyPhone   string    `json:"emergency_phone,omitempty"`
	// No column default on IsActive: GORM substitutes a tag default for a
	// zero-valued bool at INSERT, which would flip a pending registration to
	// active. Callers set the flag explicitly on every create.
	IsActive   bool `json:"is_active"`
	IsApproved bool `json:"is_approved" gorm:"default:false"`

	User User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Belt *Belt `json:"belt,omitempty" gorm:"foreignKey:BeltID"`
}

// TraineeStats is the computed read model attached to profile and dashboard
// responses. Always derived from matches and payments, never stored.
type TraineeStats struct {
	TotalMatches       int64   `json:"total_matches"`
	Wins               int64   `json:"wins"`
	Losses             int64   `json:"losses"`
	WinRate            float64 `json:"win_rate"`
	PendingPayments    int64   `json:"pending_payments"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// PromotionCandidate is the per-trainee row of the admin promotion list.
// Both eligibility flags are surfaced independently; IsEligible follows the
// time criterion alone.
type PromotionCandidate struct {
	Trainee             Trainee `json:"trainee"`
	DaysSincePromotion  int     `json:"days_since_promotion"`
	TimeEligible        bool    `json:"time_eligible"`
	MatchCount          int64   `json:"match_count"`
	WinRate             float64 `json:"win_rate"`
	PerformanceEligible bool    `json:"performance_eligible"`
	IsEligible          bool    `json:"is_eligible"`
	NextBelt            *Belt   `json:"next_belt,omitempty"`
}
