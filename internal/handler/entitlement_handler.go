package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/middleware"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
)

// EntitlementHandler exposes the access-check and subscription listing
// endpoints for authenticated students.
type EntitlementHandler struct {
	service service.EntitlementService
	logger  zerolog.Logger
}

// NewEntitlementHandler constructs the handler.
func NewEntitlementHandler(service service.EntitlementService, logger zerolog.Logger) *EntitlementHandler {
	return &EntitlementHandler{
		service: service,
		logger:  logger.With().Str("component", "entitlement_handler").Logger(),
	}
}

// Register binds the entitlement routes.
func (h *EntitlementHandler) Register(router fiber.Router) {
	router.Get("/subjects/:id/access", h.checkAccess)
	router.Get("/subscriptions", h.listSubscriptions)
}

func (h *EntitlementHandler) checkAccess(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.IsAnonymous() {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	subjectID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	ctx := requestContext(c)

	allowed, reason, err := h.service.HasAccess(ctx, session, subjectID)
	if err != nil {
		if errors.Is(err, service.ErrEntitlementUnknown) {
			requestLogger(h.logger, c).Error().Err(err).Str("user_id", session.UserID).Msg("entitlement lookup failed")
			return utils.SendError(c, fiber.StatusServiceUnavailable, "access could not be verified")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to check access")
	}

	return utils.SendSuccess(c, "access evaluated", dto.EntitlementResponse{
		SubjectID: subjectID,
		Allowed:   allowed,
		Reason:    reason,
	})
}

func (h *EntitlementHandler) listSubscriptions(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.IsAnonymous() {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	subscriptions, err := h.service.ListSubscriptions(requestContext(c), session)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("user_id", session.UserID).Msg("failed to list subscriptions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list subscriptions")
	}

	return utils.SendSuccess(c, "subscriptions retrieved", subscriptions)
}

// requestContext derives the service context from the request, carrying the
// correlation id forward.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}
