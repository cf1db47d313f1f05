package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
)

// AdminHandler bundles the manual operations the operator performs after
// out-of-band payment confirmation: subscriptions, bans, teacher approval,
// and broadcast notifications.
type AdminHandler struct {
	admin         service.AdminService
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admin service.AdminService, notifications service.NotificationService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:         admin,
		notifications: notifications,
		logger:        logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds the admin routes. The router group is expected to enforce
// the admin role.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Patch("/users/:id/ban", h.setBanned)
	router.Post("/subscriptions", h.createSubscription)
	router.Patch("/subscriptions/:id/state", h.setSubscriptionState)
	router.Patch("/teachers/:id/approval", h.setTeacherApproval)
	router.Post("/notifications", h.broadcast)
}

func (h *AdminHandler) setBanned(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("id"))
	if userID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "user id required")
	}

	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.admin.SetUserBanned(requestContext(c), userID, req.Banned); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("target_user", userID).Msg("failed to update ban state")
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	}

	return utils.SendSuccess(c, "ban state updated", fiber.Map{"user_id": userID, "banned": req.Banned})
}

func (h *AdminHandler) createSubscription(c *fiber.Ctx) error {
	var req dto.SubscriptionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subscription, err := h.admin.CreateSubscription(requestContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubscriptionPeriod):
			return utils.SendError(c, fiber.StatusBadRequest, "subscription period is invalid")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create subscription")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create subscription")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subscription created", subscription)
}

func (h *AdminHandler) setSubscriptionState(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subscription id")
	}

	var req dto.SubscriptionStateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subscription, err := h.admin.SetSubscriptionActive(requestContext(c), id, req.Active)
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "subscription not found")
	}

	return utils.SendSuccess(c, "subscription updated", subscription)
}

func (h *AdminHandler) setTeacherApproval(c *fiber.Ctx) error {
	teacherID := strings.TrimSpace(c.Params("id"))
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "teacher id required")
	}

	var req dto.TeacherApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.admin.SetTeacherApproved(requestContext(c), teacherID, req.Approved); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("teacher_id", teacherID).Msg("failed to update approval")
		return utils.SendError(c, fiber.StatusNotFound, "teacher profile not found")
	}

	return utils.SendSuccess(c, "teacher approval updated", fiber.Map{"teacher_id": teacherID, "approved": req.Approved})
}

func (h *AdminHandler) broadcast(c *fiber.Ctx) error {
	var req dto.NotificationBroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.notifications.Broadcast(requestContext(c), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to broadcast notification")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to broadcast notification")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notification published", notification)
}
