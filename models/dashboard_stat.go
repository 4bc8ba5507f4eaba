package models

import (
	"time"

	"gorm.io/datatypes"
)

// StatTypeAdminDashboard is the single cache key the aggregator writes.
const StatTypeAdminDashboard = "admin_dashboard"

// DashboardStat is a last-write-wins cache row, one per stat type. It is a
// pure read optimization: its value is always reproducible by a fresh
// recompute from the source tables.
type DashboardStat struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	StatType  string         `json:"stat_type" gorm:"uniqueIndex;not null"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// DashboardSummary is the payload cached under StatTypeAdminDashboard.
type DashboardSummary struct {
	TotalTrainees         int64   `json:"total_trainees"`
	UpcomingEvents        int64   `json:"upcoming_events"`
	PendingPayments       int64   `json:"pending_payments"`
	PendingPaymentsAmount float64 `json:"pending_payments_amount"`
	RecentPromotions      int64   `json:"recent_promotions"`
}
