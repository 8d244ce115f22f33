package models

import "time"

// Session statuses. completed and cancelled are terminal.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session modes.
const (
	SessionModeOnline  = "online"
	SessionModeOffline = "offline"
)

// Session is a scheduled mentoring meeting, normally created when a
// mentoring request is accepted. Rating is set exactly once, on completion.
// Description doubles as an append-only cancellation audit trail.
type Session struct {
	ID            uint      `gorm:"primaryKey" json:"session_id"`
	MentorID      string    `gorm:"size:64;index;not null" json:"mentor_id"`
	MenteeID      string    `gorm:"size:64;index;not null" json:"mentee_id"`
	Topic         string    `gorm:"size:255;not null" json:"topic"`
	ScheduledDate time.Time `gorm:"not null" json:"scheduled_date"`
	Duration      int       `gorm:"default:60" json:"duration"`
	Mode          string    `gorm:"size:16;default:online" json:"mode"`
	Location      string    `gorm:"type:text" json:"location"`
	Status        string    `gorm:"size:16;index;default:scheduled" json:"status"`
	MentorNotes   string    `gorm:"type:text" json:"mentor_notes"`
	MenteeNotes   string    `gorm:"type:text" json:"mentee_notes"`
	Description   string    `gorm:"type:text" json:"description"`
	Rating        *int      `json:"rating"`
	Feedback      string    `gorm:"type:text" json:"feedback"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the session reached a final state.
func (s Session) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}
