package dto

import (
	"time"

	"github.com/manara-platform/manara-api/internal/models"
)

// TeacherListQuery filters the eligible-teacher listing. CategoryLabel is the
// student-facing label from the registration form, resolved to a catalog key
// by the directory service.
type TeacherListQuery struct {
	CategoryLabel string `query:"category" validate:"required,max=128"`
	Stage         string `query:"stage" validate:"required,oneof=primary preparatory secondary"`
	Grade         int    `query:"grade" validate:"required,min=1,max=12"`
}

// TeacherSelectRequest binds a student to a teacher for one category/stage/grade.
type TeacherSelectRequest struct {
	TeacherID     string `json:"teacher_id" validate:"required,max=64"`
	CategoryLabel string `json:"category" validate:"required,max=128"`
	Stage         string `json:"stage" validate:"required,oneof=primary preparatory secondary"`
	Grade         int    `json:"grade" validate:"required,min=1,max=12"`
}

// EligibleTeacherResponse is one selectable teacher with every grade the
// teacher is assigned to within the requested category and stage.
type EligibleTeacherResponse struct {
	TeacherID   string `json:"teacher_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Grades      []int  `json:"grades"`
}

// TeacherChoiceResponse is the persisted binding returned after selection.
type TeacherChoiceResponse struct {
	StudentID   string    `json:"student_id"`
	TeacherID   string    `json:"teacher_id"`
	Category    string    `json:"category"`
	Stage       string    `json:"stage"`
	Grade       int       `json:"grade"`
	PaymentLink string    `json:"payment_link,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTeacherChoiceResponse converts a model into a DTO.
func NewTeacherChoiceResponse(choice models.TeacherChoice) TeacherChoiceResponse {
	return TeacherChoiceResponse{
		StudentID: choice.StudentID,
		TeacherID: choice.TeacherID,
		Category:  choice.Category,
		Stage:     choice.Stage,
		Grade:     choice.Grade,
		UpdatedAt: choice.UpdatedAt,
	}
}
