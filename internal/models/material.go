package models

import "time"

// MaterialRecord is the metadata row behind an uploaded reference file. The
// binary lives in external object storage; the assistant proxy only needs the
// per-subject file name catalog.
type MaterialRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SubjectID  uint      `gorm:"index;not null" json:"subject_id"`
	FileName   string    `gorm:"size:512;not null" json:"file_name"`
	URL        string    `gorm:"size:1024" json:"url"`
	MimeType   string    `gorm:"size:128" json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Checksum   string    `gorm:"size:128" json:"checksum"`
	UploadedBy string    `gorm:"size:64" json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
