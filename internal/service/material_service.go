package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/observability"
	"github.com/manara-platform/manara-api/internal/repository"
)

var (
	// ErrMaterialTooLarge indicates the payload exceeded the configured limit.
	ErrMaterialTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrMaterialTypeNotAllowed indicates the MIME type is not permitted.
	ErrMaterialTypeNotAllowed = errors.New("file type not allowed")
)

var allowedMaterialTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"text/plain":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// FileStorage abstracts the object store holding material binaries.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// MaterialChange is the tagged payload of a save operation. Create and edit
// carry different shapes and dispatch to distinct handlers; there is no
// shared optional-field path.
type MaterialChange interface {
	isMaterialChange()
}

// MaterialCreate uploads a new reference file for a subject.
type MaterialCreate struct {
	SubjectID  uint
	FileName   string
	Data       []byte
	UploadedBy string
}

func (MaterialCreate) isMaterialChange() {}

// MaterialEdit renames an existing record and optionally replaces its
// content.
type MaterialEdit struct {
	ID       uint
	FileName *string
	Data     []byte
}

func (MaterialEdit) isMaterialChange() {}

// MaterialService validates and persists reference material.
type MaterialService interface {
	Save(ctx context.Context, change MaterialChange) (dto.MaterialResponse, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]dto.MaterialResponse, error)
}

type materialService struct {
	storage FileStorage
	repo    repository.MaterialRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewMaterialService constructs a material service.
func NewMaterialService(storage FileStorage, repo repository.MaterialRepository, maxSizeMB int, logger zerolog.Logger) MaterialService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &materialService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "material_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/manara-platform/manara-api/internal/service/material"),
	}
}

func (s *materialService) Save(ctx context.Context, change MaterialChange) (dto.MaterialResponse, error) {
	switch c := change.(type) {
	case MaterialCreate:
		return s.create(ctx, c)
	case MaterialEdit:
		return s.edit(ctx, c)
	default:
		return dto.MaterialResponse{}, fmt.Errorf("unsupported material change %T", change)
	}
}

func (s *materialService) create(ctx context.Context, change MaterialCreate) (dto.MaterialResponse, error) {
	ctx, span := s.tracer.Start(ctx, "material.create", trace.WithAttributes(
		attribute.String("material.file_name", change.FileName),
		attribute.Int64("material.subject_id", int64(change.SubjectID)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	fileType, err := s.validatePayload(change.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.MaterialResponse{}, err
	}

	url, err := s.storage.Upload(ctx, change.FileName, bytes.NewReader(change.Data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.MaterialResponse{}, fmt.Errorf("upload material: %w", err)
	}

	checksum := sha256.Sum256(change.Data)
	record := models.MaterialRecord{
		SubjectID:  change.SubjectID,
		FileName:   strings.TrimSpace(change.FileName),
		URL:        url,
		MimeType:   fileType,
		SizeBytes:  int64(len(change.Data)),
		Checksum:   hex.EncodeToString(checksum[:]),
		UploadedBy: change.UploadedBy,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		return dto.MaterialResponse{}, err
	}

	s.logger.Info().Str("file_name", record.FileName).Uint("subject_id", record.SubjectID).Msg("material uploaded")

	return dto.NewMaterialResponse(record), nil
}

func (s *materialService) edit(ctx context.Context, change MaterialEdit) (dto.MaterialResponse, error) {
	ctx, span := s.tracer.Start(ctx, "material.edit", trace.WithAttributes(
		attribute.Int64("material.id", int64(change.ID)),
	))
	defer span.End()

	record, err := s.repo.FindByID(ctx, change.ID)
	if err != nil {
		span.RecordError(err)
		return dto.MaterialResponse{}, err
	}

	if change.FileName != nil {
		trimmed := strings.TrimSpace(*change.FileName)
		if trimmed == "" {
			return dto.MaterialResponse{}, errors.New("file name must not be empty")
		}
		record.FileName = trimmed
	}

	if len(change.Data) > 0 {
		fileType, err := s.validatePayload(change.Data)
		if err != nil {
			span.RecordError(err)
			return dto.MaterialResponse{}, err
		}

		url, err := s.storage.Upload(ctx, record.FileName, bytes.NewReader(change.Data))
		if err != nil {
			span.RecordError(err)
			return dto.MaterialResponse{}, fmt.Errorf("upload material: %w", err)
		}

		checksum := sha256.Sum256(change.Data)
		record.URL = url
		record.MimeType = fileType
		record.SizeBytes = int64(len(change.Data))
		record.Checksum = hex.EncodeToString(checksum[:])
	}

	if err := s.repo.Update(ctx, &record); err != nil {
		span.RecordError(err)
		return dto.MaterialResponse{}, err
	}

	return dto.NewMaterialResponse(record), nil
}

func (s *materialService) ListBySubject(ctx context.Context, subjectID uint) ([]dto.MaterialResponse, error) {
	records, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return dto.NewMaterialResponseSlice(records), nil
}

// validatePayload enforces the size limit and sniffs the MIME type before
// any storage call is made.
func (s *materialService) validatePayload(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("file is required")
	}

	if int64(len(data)) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return "", ErrMaterialTooLarge
	}

	fileType := normalizeMime(mimetype.Detect(data).String())
	if _, ok := allowedMaterialTypes[fileType]; !ok {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return "", ErrMaterialTypeNotAllowed
	}

	return fileType, nil
}

func normalizeMime(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(strings.ToLower(mime))
}
