package dto

import (
	"time"

	"github.com/manara-platform/manara-api/internal/models"
)

// NotificationBroadcastRequest is the admin payload for a platform-wide or
// targeted notification. An empty UserID broadcasts to all users.
type NotificationBroadcastRequest struct {
	UserID  string `json:"user_id" validate:"omitempty,max=64"`
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Broadcast bool      `json:"broadcast"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	response := NotificationResponse{
		ID:        model.ID,
		Title:     model.Title,
		Message:   model.Message,
		Read:      model.Read,
		Broadcast: model.UserID == nil,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.UserID != nil {
		response.UserID = *model.UserID
	}
	return response
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
