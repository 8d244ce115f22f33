package models

import "time"

// Notification types emitted by the request and session lifecycles.
const (
	NotificationRequestReceived  = "request_received"
	NotificationRequestAccepted  = "request_accepted"
	NotificationRequestDeclined  = "request_declined"
	NotificationRequestCancelled = "request_cancelled"
	NotificationSessionScheduled = "session_scheduled"
	NotificationSessionCancelled = "session_cancelled"
)

// Notification is an append-only per-user mailbox entry. Only the read flag
// is ever mutated after creation.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"notification_id"`
	UserID    string    `gorm:"size:64;index;not null" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Link      string    `gorm:"size:512" json:"link"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
