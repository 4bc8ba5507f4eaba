package models

import "time"

const (
	NotificationTypeMatch     = "match"
	NotificationTypePayment   = "payment"
	NotificationTypePromotion = "promotion"
	NotificationTypeEvent     = "event"
)

// Notification is an append-only per-user message. Only the read flag is
// mutable after creation. Listings are always newest-created-first.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message"`
	Type      string    `json:"type" gorm:"column:notification_type;type:varchar(20);not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
