package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/observability"
	"github.com/manara-platform/manara-api/internal/repository"
)

// ExpiryNoticeTitle is the fixed title of expiry alerts. Same-day
// de-duplication keys on it, so it must not vary per message.
const ExpiryNoticeTitle = "تنبيه انتهاء الاشتراك"

const (
	expiryWindowFrom = 6 * 24 * time.Hour
	expiryWindowTo   = 7 * 24 * time.Hour
)

// NotificationDispatcher fans a stored notification out to connected stream
// clients, local and cross-node, without persisting it again.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification dto.NotificationResponse)
}

// ExpiryService runs the scheduled subscription-expiry scan. Each run
// re-derives its candidate set from scratch; there is no persisted cursor.
type ExpiryService interface {
	Run(ctx context.Context) (dto.ExpiryRunResponse, error)
}

type expiryService struct {
	subscriptions repository.SubscriptionRepository
	notifications repository.NotificationRepository
	dispatcher    NotificationDispatcher
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewExpiryService constructs the batch job. The dispatcher is optional; a
// nil clock defaults to time.Now.
func NewExpiryService(subscriptions repository.SubscriptionRepository, notifications repository.NotificationRepository, dispatcher NotificationDispatcher, logger zerolog.Logger, now func() time.Time) ExpiryService {
	if now == nil {
		now = time.Now
	}
	return &expiryService{
		subscriptions: subscriptions,
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger.With().Str("component", "expiry_service").Logger(),
		tracer:        otel.Tracer("github.com/manara-platform/manara-api/internal/service/expiry"),
		now:           now,
	}
}

// Run scans active subscriptions ending in [now+6d, now+7d), skips users
// already notified today and inserts the remainder in a single batch. A
// failed read or write aborts the run; re-running after a partial success is
// safe because covered users fail the same-day check.
func (s *expiryService) Run(ctx context.Context) (dto.ExpiryRunResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "expiry.run")
	defer span.End()

	now := s.now().UTC()
	from := now.Add(expiryWindowFrom)
	to := now.Add(expiryWindowTo)

	expiring, err := s.subscriptions.ListExpiringBetween(spanCtx, from, to)
	if err != nil {
		span.RecordError(err)
		observability.ExpiryRuns().WithLabelValues("error").Inc()
		return dto.ExpiryRunResponse{Success: false, Error: "failed to scan subscriptions"}, fmt.Errorf("scan expiring subscriptions: %w", err)
	}

	span.SetAttributes(attribute.Int("expiry.candidates", len(expiring)))

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	notified, err := s.notifications.ListNotifiedUserIDs(spanCtx, ExpiryNoticeTitle, dayStart)
	if err != nil {
		span.RecordError(err)
		observability.ExpiryRuns().WithLabelValues("error").Inc()
		return dto.ExpiryRunResponse{Success: false, Error: "failed to load notified users"}, fmt.Errorf("load notified users: %w", err)
	}

	covered := make(map[string]struct{}, len(notified))
	for _, userID := range notified {
		covered[userID] = struct{}{}
	}

	batch := make([]models.Notification, 0, len(expiring))
	for _, row := range expiring {
		if _, done := covered[row.StudentID]; done {
			continue
		}
		covered[row.StudentID] = struct{}{}

		userID := row.StudentID
		batch = append(batch, models.Notification{
			UserID:  &userID,
			Title:   ExpiryNoticeTitle,
			Message: renderExpiryMessage(row),
		})
	}

	if _, err := s.notifications.CreateBatch(spanCtx, batch); err != nil {
		span.RecordError(err)
		observability.ExpiryRuns().WithLabelValues("error").Inc()
		return dto.ExpiryRunResponse{Success: false, Error: "failed to insert notifications"}, fmt.Errorf("insert expiry notifications: %w", err)
	}

	if s.dispatcher != nil {
		for _, notification := range batch {
			s.dispatcher.Dispatch(spanCtx, dto.NewNotificationResponse(notification))
		}
	}

	observability.ExpiryRuns().WithLabelValues("ok").Inc()
	observability.ExpiryNotificationsSent().Add(float64(len(batch)))

	s.logger.Info().
		Int("subscriptions_checked", len(expiring)).
		Int("notifications_sent", len(batch)).
		Time("window_from", from).
		Time("window_to", to).
		Msg("expiry scan completed")

	return dto.ExpiryRunResponse{
		Success:              true,
		Message:              "expiry scan completed",
		NotificationsSent:    len(batch),
		SubscriptionsChecked: len(expiring),
	}, nil
}

func renderExpiryMessage(row repository.ExpiringSubscription) string {
	name := row.StudentName
	if name == "" {
		name = "طالبنا العزيز"
	}
	return fmt.Sprintf("مرحباً %s، اشتراكك في مادة %s سينتهي بتاريخ %s. جدّد اشتراكك لتجنّب انقطاع الوصول.",
		name, row.SubjectName, row.EndDate.Format("2006-01-02"))
}
