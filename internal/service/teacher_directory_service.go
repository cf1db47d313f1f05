package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/repository"
)

var (
	// ErrTeacherNotEligible means no assignment covers the requested
	// category/stage/grade for the chosen teacher.
	ErrTeacherNotEligible = errors.New("teacher not assigned to the requested scope")
	// ErrTeacherNotApproved means the teacher's profile has not passed admin
	// review and is not selectable.
	ErrTeacherNotApproved = errors.New("teacher profile not approved")
)

// TeacherDirectoryService lists eligible teachers and records the student's
// binding choice.
type TeacherDirectoryService interface {
	ListEligibleTeachers(ctx context.Context, query dto.TeacherListQuery) ([]dto.EligibleTeacherResponse, error)
	SelectTeacher(ctx context.Context, session Session, req dto.TeacherSelectRequest) (dto.TeacherChoiceResponse, error)
}

type teacherDirectoryService struct {
	repo      repository.TeacherRepository
	payments  PaymentService
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewTeacherDirectoryService constructs the directory service. The cache is
// optional; listings fall through to the store when it is nil.
func NewTeacherDirectoryService(repo repository.TeacherRepository, payments PaymentService, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) TeacherDirectoryService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &teacherDirectoryService{
		repo:      repo,
		payments:  payments,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "teacher_directory_service").Logger(),
		tracer:    otel.Tracer("github.com/manara-platform/manara-api/internal/service/teacherdirectory"),
	}
}

func (s *teacherDirectoryService) ListEligibleTeachers(ctx context.Context, query dto.TeacherListQuery) ([]dto.EligibleTeacherResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	mapping, err := ResolveCategoryLabel(query.CategoryLabel)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if s.cache != nil {
		cacheKey = fmt.Sprintf("teachers:eligible:v1:%s:%s:%d", mapping.Key, query.Stage, query.Grade)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var teachers []dto.EligibleTeacherResponse
			if err := json.Unmarshal([]byte(cached), &teachers); err == nil {
				return teachers, nil
			}
		}
	}

	rows, err := s.repo.ListEligible(ctx, mapping.Key, query.Stage)
	if err != nil {
		return nil, err
	}

	teachers := aggregateEligible(rows, query.Grade)

	if cacheKey != "" {
		if payload, err := json.Marshal(teachers); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache eligible teachers")
			}
		}
	}

	return teachers, nil
}

// aggregateEligible groups (teacher, grade) rows into one entry per teacher,
// keeping only teachers assigned to the requested grade while reporting every
// grade they cover within the category and stage.
func aggregateEligible(rows []repository.EligibleTeacherRow, grade int) []dto.EligibleTeacherResponse {
	order := make([]string, 0, len(rows))
	byTeacher := make(map[string]*dto.EligibleTeacherResponse, len(rows))

	for _, row := range rows {
		entry, exists := byTeacher[row.TeacherID]
		if !exists {
			order = append(order, row.TeacherID)
			entry = &dto.EligibleTeacherResponse{
				TeacherID:   row.TeacherID,
				DisplayName: row.DisplayName,
				PhotoURL:    row.PhotoURL,
				Bio:         row.Bio,
			}
			byTeacher[row.TeacherID] = entry
		}
		entry.Grades = append(entry.Grades, row.Grade)
	}

	teachers := make([]dto.EligibleTeacherResponse, 0, len(order))
	for _, teacherID := range order {
		entry := byTeacher[teacherID]
		sort.Ints(entry.Grades)
		if containsGrade(entry.Grades, grade) {
			teachers = append(teachers, *entry)
		}
	}

	return teachers
}

func containsGrade(grades []int, grade int) bool {
	for _, g := range grades {
		if g == grade {
			return true
		}
	}
	return false
}

func (s *teacherDirectoryService) SelectTeacher(ctx context.Context, session Session, req dto.TeacherSelectRequest) (dto.TeacherChoiceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherChoiceResponse{}, err
	}

	mapping, err := ResolveCategoryLabel(req.CategoryLabel)
	if err != nil {
		return dto.TeacherChoiceResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "teachers.select", trace.WithAttributes(
		attribute.String("student.id", session.UserID),
		attribute.String("teacher.id", req.TeacherID),
		attribute.String("category", mapping.Key),
	))
	defer span.End()

	assigned, err := s.repo.HasAssignment(spanCtx, req.TeacherID, mapping.Key, req.Stage, req.Grade)
	if err != nil {
		span.RecordError(err)
		return dto.TeacherChoiceResponse{}, err
	}
	if !assigned {
		return dto.TeacherChoiceResponse{}, ErrTeacherNotEligible
	}

	approved, err := s.repo.IsApproved(spanCtx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherChoiceResponse{}, ErrTeacherNotApproved
		}
		span.RecordError(err)
		return dto.TeacherChoiceResponse{}, err
	}
	if !approved {
		return dto.TeacherChoiceResponse{}, ErrTeacherNotApproved
	}

	choice := models.TeacherChoice{
		StudentID: session.UserID,
		Category:  mapping.Key,
		Stage:     req.Stage,
		Grade:     req.Grade,
		TeacherID: req.TeacherID,
	}
	if err := s.repo.UpsertChoice(spanCtx, &choice); err != nil {
		span.RecordError(err)
		return dto.TeacherChoiceResponse{}, err
	}

	stored, err := s.repo.FindChoice(spanCtx, session.UserID, mapping.Key, req.Stage, req.Grade)
	if err != nil {
		span.RecordError(err)
		return dto.TeacherChoiceResponse{}, err
	}

	response := dto.NewTeacherChoiceResponse(stored)

	link, err := s.payments.ConfirmationLink(PaymentLinkParams{
		SubjectName: mapping.SubjectName,
		Stage:       req.Stage,
		Grade:       req.Grade,
		StudentID:   session.UserID,
		TeacherID:   req.TeacherID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("payment confirmation link unavailable")
	} else {
		response.PaymentLink = link
	}

	return response, nil
}
