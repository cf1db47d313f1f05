package models

import "time"

// Subject is a catalog entry scoped by category, stage and grade. Section is
// only populated for secondary-stage subjects that split by track.
type Subject struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Category        string    `gorm:"size:64;index;not null" json:"category"`
	Stage           string    `gorm:"size:32;index;not null" json:"stage"`
	Grade           int       `gorm:"index;not null" json:"grade"`
	Section         string    `gorm:"size:32" json:"section,omitempty"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	AssistantPrompt string    `gorm:"type:text" json:"assistant_prompt,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TeacherAssignment authorizes a teacher for one category/stage/grade
// combination. Rows are created by admin approval of a registration request.
type TeacherAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID string    `gorm:"size:64;not null;uniqueIndex:idx_assignment_key" json:"teacher_id"`
	Category  string    `gorm:"size:64;not null;uniqueIndex:idx_assignment_key" json:"category"`
	Stage     string    `gorm:"size:32;not null;uniqueIndex:idx_assignment_key" json:"stage"`
	Grade     int       `gorm:"not null;uniqueIndex:idx_assignment_key" json:"grade"`
	CreatedAt time.Time `json:"created_at"`
}
