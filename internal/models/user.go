package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roles recognised by the platform.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
	RoleSupport = "support"
)

// User represents an account in any of the portals.
type User struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Role        string    `gorm:"size:16;not null;default:student" json:"role"`
	IsBanned    bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeacherProfile is the teacher's self-authored profile. It stays invisible to
// students until an admin flips IsApproved; that flag is the single
// authoritative approval record for teaching eligibility.
type TeacherProfile struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     string            `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Bio        string            `gorm:"type:text" json:"bio"`
	PhotoURL   string            `gorm:"size:512" json:"photo_url"`
	IsApproved bool              `gorm:"not null;default:false" json:"is_approved"`
	Links      datatypes.JSONMap `gorm:"type:json" json:"links"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
