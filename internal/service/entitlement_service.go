package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/observability"
	"github.com/manara-platform/manara-api/internal/repository"
)

// ErrEntitlementUnknown marks an access decision that could not be computed
// because the backing store failed. Callers must treat it as a denial.
var ErrEntitlementUnknown = errors.New("entitlement unknown")

// Decision reasons reported alongside the boolean outcome.
const (
	ReasonBanned       = "banned"
	ReasonAdmin        = "admin"
	ReasonSubscription = "subscription"
	ReasonNone         = "none"
)

// EntitlementService decides whether a user may view a subject's content.
type EntitlementService interface {
	HasAccess(ctx context.Context, session Session, subjectID uint) (bool, string, error)
	ListSubscriptions(ctx context.Context, session Session) ([]dto.SubscriptionResponse, error)
}

type entitlementService struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewEntitlementService constructs the evaluator. A nil clock defaults to
// time.Now.
func NewEntitlementService(users repository.UserRepository, subscriptions repository.SubscriptionRepository, logger zerolog.Logger, now func() time.Time) EntitlementService {
	if now == nil {
		now = time.Now
	}
	return &entitlementService{
		users:         users,
		subscriptions: subscriptions,
		logger:        logger.With().Str("component", "entitlement_service").Logger(),
		tracer:        otel.Tracer("github.com/manara-platform/manara-api/internal/service/entitlement"),
		now:           now,
	}
}

// HasAccess applies the gates in order: ban, admin bypass, then active
// unexpired subscription match. It performs no writes and fails closed when
// the store is unreachable.
func (s *entitlementService) HasAccess(ctx context.Context, session Session, subjectID uint) (bool, string, error) {
	spanCtx, span := s.tracer.Start(ctx, "entitlement.has_access", trace.WithAttributes(
		attribute.String("user.id", session.UserID),
		attribute.String("user.role", session.Role),
		attribute.Int64("subject.id", int64(subjectID)),
	))
	defer span.End()

	if session.Banned {
		observability.EntitlementDecisions().WithLabelValues(ReasonBanned).Inc()
		return false, ReasonBanned, nil
	}

	// Tokens outlive an admin ban, so the account record is the authority. A
	// user without an account row has nothing to be banned on.
	user, err := s.users.FindByID(spanCtx, session.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("user lookup failed, denying access")
		observability.EntitlementDecisions().WithLabelValues("unknown").Inc()
		return false, ReasonNone, fmt.Errorf("%w: %v", ErrEntitlementUnknown, err)
	}
	if user.IsBanned {
		observability.EntitlementDecisions().WithLabelValues(ReasonBanned).Inc()
		return false, ReasonBanned, nil
	}

	if session.IsAdmin() {
		observability.EntitlementDecisions().WithLabelValues(ReasonAdmin).Inc()
		return true, ReasonAdmin, nil
	}

	subscriptions, err := s.subscriptions.ListActiveByStudent(spanCtx, session.UserID)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("subscription lookup failed, denying access")
		observability.EntitlementDecisions().WithLabelValues("unknown").Inc()
		return false, ReasonNone, fmt.Errorf("%w: %v", ErrEntitlementUnknown, err)
	}

	now := s.now()
	for _, subscription := range subscriptions {
		if subscription.SubjectID == subjectID && subscription.EndDate.After(now) {
			observability.EntitlementDecisions().WithLabelValues(ReasonSubscription).Inc()
			return true, ReasonSubscription, nil
		}
	}

	observability.EntitlementDecisions().WithLabelValues(ReasonNone).Inc()
	return false, ReasonNone, nil
}

// ListSubscriptions returns the caller's active subscriptions, expired rows
// included so the portal can render renewal prompts.
func (s *entitlementService) ListSubscriptions(ctx context.Context, session Session) ([]dto.SubscriptionResponse, error) {
	if session.IsAnonymous() {
		return nil, errors.New("user id is required")
	}

	subscriptions, err := s.subscriptions.ListActiveByStudent(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntitlementUnknown, err)
	}

	return dto.NewSubscriptionResponseSlice(subscriptions), nil
}
