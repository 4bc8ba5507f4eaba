package models

import "time"

// Payment is a due/paid ledger row per trainee. Overdue is never stored;
// it is always derived from the paid flag and the due date.
type Payment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	TraineeID   string    `json:"trainee_id" gorm:"index;not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	DueDate     time.Time `json:"due_date" gorm:"not null;index"`
	Description string    `json:"description"`
	Paid        bool      `json:"paid" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Trainee Trainee `json:"trainee,omitempty" gorm:"foreignKey:TraineeID;constraint:OnDelete:CASCADE"`
}

// IsOverdue reports whether the payment is unpaid past its due date.
func (p *Payment) IsOverdue(now time.Time) bool {
	return !p.Paid && p.DueDate.Before(now)
}

// PaymentTotals aggregates the ledger for reports. Sums over zero rows are 0.
type PaymentTotals struct {
	TotalCollected float64 `json:"total_collected"`
	TotalPending   float64 `json:"total_pending"`
	TotalOverdue   float64 `json:"total_overdue"`
}
