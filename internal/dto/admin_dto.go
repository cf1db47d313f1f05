package dto

import "time"

// BanRequest toggles the banned flag on a user account.
type BanRequest struct {
	Banned bool `json:"banned"`
}

// SubscriptionStateRequest activates or deactivates a subscription.
// Deactivation is the hard override used for disputed payments.
type SubscriptionStateRequest struct {
	Active bool `json:"active"`
}

// SubscriptionCreateRequest records a manually confirmed payment as an
// active subscription.
type SubscriptionCreateRequest struct {
	StudentID string    `json:"student_id" validate:"required,max=64"`
	SubjectID uint      `json:"subject_id" validate:"required"`
	TeacherID string    `json:"teacher_id" validate:"omitempty,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// TeacherApprovalRequest flips the approval state of a teacher profile.
type TeacherApprovalRequest struct {
	Approved bool `json:"approved"`
}
