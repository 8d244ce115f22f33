package models

import "time"

// Mentoring request statuses. pending is the only non-terminal state.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusDeclined  = "declined"
	RequestStatusCancelled = "cancelled"
)

// MentoringRequest is a directed proposal from a mentee to a mentor.
// At most one pending row may exist per (mentee, mentor) pair.
type MentoringRequest struct {
	ID        uint      `gorm:"primaryKey" json:"request_id"`
	MenteeID  string    `gorm:"size:64;index;not null" json:"mentee_id"`
	MentorID  string    `gorm:"size:64;index;not null" json:"mentor_id"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:16;index;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether no further transition is defined on the request.
func (r MentoringRequest) Terminal() bool {
	return r.Status != RequestStatusPending
}
