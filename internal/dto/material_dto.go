package dto

import (
	"time"

	"github.com/manara-platform/manara-api/internal/models"
)

// MaterialResponse is the serialized metadata for an uploaded reference file.
type MaterialResponse struct {
	ID        uint      `json:"id"`
	SubjectID uint      `json:"subject_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMaterialResponse converts a model into a DTO.
func NewMaterialResponse(record models.MaterialRecord) MaterialResponse {
	return MaterialResponse{
		ID:        record.ID,
		SubjectID: record.SubjectID,
		FileName:  record.FileName,
		URL:       record.URL,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		CreatedAt: record.CreatedAt,
	}
}

// NewMaterialResponseSlice converts a slice of models into DTOs.
func NewMaterialResponseSlice(records []models.MaterialRecord) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewMaterialResponse(record))
	}
	return out
}
