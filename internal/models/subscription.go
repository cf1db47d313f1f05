package models

import "time"

// Subscription grants a student access to one subject's content for the
// period [StartDate, EndDate). Rows are created when an admin confirms a
// payment out of band and are never deleted, only deactivated or left to
// lapse. Access requires IsActive AND EndDate in the future; deactivation is
// a hard override regardless of dates.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID string    `gorm:"size:64;index;not null" json:"student_id"`
	SubjectID uint      `gorm:"index;not null" json:"subject_id"`
	TeacherID *string   `gorm:"size:64" json:"teacher_id,omitempty"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"index;not null" json:"end_date"`
	// No column default on purpose: gorm omits zero-valued plain fields that
	// carry a default tag, which would flip rows created inactive back to
	// active on insert.
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherChoice records which teacher a student picked for a category, stage
// and grade. It is a binding, not an entitlement: it routes the payment
// confirmation message and scopes the teacher's content to chosen students.
// Exactly one row per (student, category, stage, grade); re-selection updates
// in place.
type TeacherChoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID string    `gorm:"size:64;not null;uniqueIndex:idx_choice_key" json:"student_id"`
	Category  string    `gorm:"size:64;not null;uniqueIndex:idx_choice_key" json:"category"`
	Stage     string    `gorm:"size:32;not null;uniqueIndex:idx_choice_key" json:"stage"`
	Grade     int       `gorm:"not null;uniqueIndex:idx_choice_key" json:"grade"`
	TeacherID string    `gorm:"size:64;not null" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
