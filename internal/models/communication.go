package models

import "time"

// Notification is an in-app message. A nil UserID marks a broadcast visible
// to every user. Rows are created by the expiry job or by admin broadcast and
// are never deleted; only the recipient flips Read.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *string   `gorm:"size:64;index" json:"user_id,omitempty"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
