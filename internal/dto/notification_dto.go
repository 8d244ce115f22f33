package dto

import (
	"time"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// NotificationCreateRequest describes the payload to append a mailbox entry.
type NotificationCreateRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64"`
	Type    string `json:"type" validate:"required,max=64"`
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Message string `json:"message" validate:"required,min=1,max=2000"`
	Link    string `json:"link" validate:"omitempty,max=512"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint      `json:"notification_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Link:      model.Link,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// UnreadCountResponse carries the number of unread notifications.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
