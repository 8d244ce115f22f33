package dto

import (
	"time"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// SessionCreateRequest is the payload to schedule a mentoring session.
// ScheduledDate is RFC3339.
type SessionCreateRequest struct {
	MentorID      string `json:"mentor_id" validate:"required,max=64"`
	MenteeID      string `json:"mentee_id" validate:"required,max=64"`
	Topic         string `json:"topic" validate:"required,min=1,max=255"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
	Duration      int    `json:"duration" validate:"omitempty,min=15,max=480"`
	Mode          string `json:"mode" validate:"omitempty,oneof=online offline"`
	Location      string `json:"location" validate:"omitempty,max=2048"`
}

// SessionUpdateRequest mutates allow-listed session fields. Status is
// deliberately absent: completion and cancellation have dedicated
// operations with their own invariants.
type SessionUpdateRequest struct {
	Topic         *string `json:"topic" validate:"omitempty,min=1,max=255"`
	ScheduledDate *string `json:"scheduled_date"`
	Duration      *int    `json:"duration" validate:"omitempty,min=15,max=480"`
	Mode          *string `json:"mode" validate:"omitempty,oneof=online offline"`
	Location      *string `json:"location" validate:"omitempty,max=2048"`
	MentorNotes   *string `json:"mentor_notes" validate:"omitempty,max=8000"`
	MenteeNotes   *string `json:"mentee_notes" validate:"omitempty,max=8000"`
	Description   *string `json:"description" validate:"omitempty,max=8000"`
}

// Empty reports whether the update carries no allow-listed field.
func (r SessionUpdateRequest) Empty() bool {
	return r.Topic == nil && r.ScheduledDate == nil && r.Duration == nil &&
		r.Mode == nil && r.Location == nil && r.MentorNotes == nil &&
		r.MenteeNotes == nil && r.Description == nil
}

// SessionCompleteRequest closes a session with its mandatory rating.
type SessionCompleteRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"omitempty,max=8000"`
}

// SessionCancelRequest cancels a scheduled session.
type SessionCancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

// SessionResponse is the serialized session. Mentor and Mentee summaries
// are populated by read endpoints that join the user rows.
type SessionResponse struct {
	ID            uint         `json:"session_id"`
	MentorID      string       `json:"mentor_id"`
	MenteeID      string       `json:"mentee_id"`
	Topic         string       `json:"topic"`
	ScheduledDate time.Time    `json:"scheduled_date"`
	Duration      int          `json:"duration"`
	Mode          string       `json:"mode"`
	Location      string       `json:"location"`
	Status        string       `json:"status"`
	MentorNotes   string       `json:"mentor_notes"`
	MenteeNotes   string       `json:"mentee_notes"`
	Description   string       `json:"description"`
	Rating        *int         `json:"rating"`
	Feedback      string       `json:"feedback"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Mentor        *UserSummary `json:"mentor,omitempty"`
	Mentee        *UserSummary `json:"mentee,omitempty"`
}

// SessionStatsResponse aggregates a user's sessions on both sides of the
// table.
type SessionStatsResponse struct {
	UpcomingCount  int64    `json:"upcoming_count"`
	CompletedCount int64    `json:"completed_count"`
	AvgRating      *float64 `json:"avg_rating"`
	TotalSessions  int64    `json:"total_sessions"`
}

// NewSessionResponse converts a session model into a DTO.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		ID:            session.ID,
		MentorID:      session.MentorID,
		MenteeID:      session.MenteeID,
		Topic:         session.Topic,
		ScheduledDate: session.ScheduledDate,
		Duration:      session.Duration,
		Mode:          session.Mode,
		Location:      session.Location,
		Status:        session.Status,
		MentorNotes:   session.MentorNotes,
		MenteeNotes:   session.MenteeNotes,
		Description:   session.Description,
		Rating:        session.Rating,
		Feedback:      session.Feedback,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}

// NewSessionResponseSlice converts a slice of sessions into DTOs.
func NewSessionResponseSlice(sessions []models.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	return out
}
