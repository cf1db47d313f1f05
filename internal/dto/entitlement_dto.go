package dto

import (
	"time"

	"github.com/manara-platform/manara-api/internal/models"
)

// EntitlementResponse reports the access decision for one subject.
type EntitlementResponse struct {
	SubjectID uint   `json:"subject_id"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
}

// SubscriptionResponse is the serialized representation of a subscription.
type SubscriptionResponse struct {
	ID        uint      `json:"id"`
	StudentID string    `json:"student_id"`
	SubjectID uint      `json:"subject_id"`
	TeacherID string    `json:"teacher_id,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

// NewSubscriptionResponse converts a model into a DTO.
func NewSubscriptionResponse(subscription models.Subscription) SubscriptionResponse {
	response := SubscriptionResponse{
		ID:        subscription.ID,
		StudentID: subscription.StudentID,
		SubjectID: subscription.SubjectID,
		StartDate: subscription.StartDate,
		EndDate:   subscription.EndDate,
		IsActive:  subscription.IsActive,
	}
	if subscription.TeacherID != nil {
		response.TeacherID = *subscription.TeacherID
	}
	return response
}

// NewSubscriptionResponseSlice converts a slice of models into DTOs.
func NewSubscriptionResponseSlice(subscriptions []models.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		out = append(out, NewSubscriptionResponse(subscription))
	}
	return out
}
