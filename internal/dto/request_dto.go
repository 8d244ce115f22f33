package dto

import (
	"time"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// RequestCreateRequest is the payload to open a mentoring request.
type RequestCreateRequest struct {
	MenteeID string `json:"mentee_id" validate:"required,max=64"`
	MentorID string `json:"mentor_id" validate:"required,max=64"`
	Message  string `json:"message" validate:"omitempty,max=4000"`
}

// RequestStatusUpdateRequest transitions a pending request.
type RequestStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined cancelled"`
}

// RequestResponse is the serialized mentoring request. Counterpart carries
// the display fields of the other party relative to the querying user and is
// only populated by list endpoints.
type RequestResponse struct {
	ID          uint         `json:"request_id"`
	MenteeID    string       `json:"mentee_id"`
	MentorID    string       `json:"mentor_id"`
	Message     string       `json:"message"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Counterpart *UserSummary `json:"counterpart,omitempty"`
}

// RequestListResponse groups the requests a user received as mentor and
// sent as mentee.
type RequestListResponse struct {
	Received []RequestResponse `json:"received"`
	Sent     []RequestResponse `json:"sent"`
}

// NewRequestResponse converts a request model into a DTO.
func NewRequestResponse(request models.MentoringRequest) RequestResponse {
	return RequestResponse{
		ID:        request.ID,
		MenteeID:  request.MenteeID,
		MentorID:  request.MentorID,
		Message:   request.Message,
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}
