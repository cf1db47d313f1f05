package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/repository"
)

// ErrInvalidSubscriptionPeriod rejects subscriptions whose start date falls
// after the end date.
var ErrInvalidSubscriptionPeriod = errors.New("subscription start date must not be after end date")

// AdminService covers the manual operations reserved to administrators: the
// ban switch, subscription lifecycle after out-of-band payment confirmation
// and teacher profile approval.
type AdminService interface {
	SetUserBanned(ctx context.Context, userID string, banned bool) error
	CreateSubscription(ctx context.Context, req dto.SubscriptionCreateRequest) (dto.SubscriptionResponse, error)
	SetSubscriptionActive(ctx context.Context, id uint, active bool) (dto.SubscriptionResponse, error)
	SetTeacherApproved(ctx context.Context, teacherID string, approved bool) error
}

type adminService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	teachers      repository.TeacherRepository
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewAdminService constructs the admin operations service.
func NewAdminService(users repository.UserRepository, subscriptions repository.SubscriptionRepository, teachers repository.TeacherRepository, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		users:         users,
		subscriptions: subscriptions,
		teachers:      teachers,
		validator:     validate,
		logger:        logger.With().Str("component", "admin_service").Logger(),
		tracer:        otel.Tracer("github.com/manara-platform/manara-api/internal/service/admin"),
	}
}

func (s *adminService) SetUserBanned(ctx context.Context, userID string, banned bool) error {
	spanCtx, span := s.tracer.Start(ctx, "admin.set_banned", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("user.banned", banned),
	))
	defer span.End()

	if err := s.users.SetBanned(spanCtx, userID, banned); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Info().Str("user_id", userID).Bool("banned", banned).Msg("user ban state changed")
	return nil
}

// CreateSubscription records a payment the admin confirmed out of band. The
// row starts active; deactivation later is the dispute override.
func (s *adminService) CreateSubscription(ctx context.Context, req dto.SubscriptionCreateRequest) (dto.SubscriptionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubscriptionResponse{}, err
	}
	if req.StartDate.After(req.EndDate) {
		return dto.SubscriptionResponse{}, ErrInvalidSubscriptionPeriod
	}

	subscription := models.Subscription{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
	}
	if req.TeacherID != "" {
		teacherID := req.TeacherID
		subscription.TeacherID = &teacherID
	}

	if err := s.subscriptions.Create(ctx, &subscription); err != nil {
		return dto.SubscriptionResponse{}, err
	}

	s.logger.Info().
		Str("student_id", req.StudentID).
		Uint("subject_id", req.SubjectID).
		Time("end_date", req.EndDate).
		Msg("subscription created")

	return dto.NewSubscriptionResponse(subscription), nil
}

func (s *adminService) SetSubscriptionActive(ctx context.Context, id uint, active bool) (dto.SubscriptionResponse, error) {
	if err := s.subscriptions.SetActive(ctx, id, active); err != nil {
		return dto.SubscriptionResponse{}, err
	}

	subscription, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return dto.SubscriptionResponse{}, err
	}

	s.logger.Info().Uint("subscription_id", id).Bool("active", active).Msg("subscription state changed")
	return dto.NewSubscriptionResponse(subscription), nil
}

func (s *adminService) SetTeacherApproved(ctx context.Context, teacherID string, approved bool) error {
	if err := s.teachers.SetApproved(ctx, teacherID, approved); err != nil {
		return err
	}

	s.logger.Info().Str("teacher_id", teacherID).Bool("approved", approved).Msg("teacher approval changed")
	return nil
}
