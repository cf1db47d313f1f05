package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
	"github.com/manara-platform/manara-api/pkg/ai"
)

// AssistantHandler proxies chat requests to the hosted model provider.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register binds the assistant routes.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/chat", h.chat)
}

func (h *AssistantHandler) chat(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.IsAnonymous() {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.AssistantChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Chat(requestContext(c), session, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssistantAccessDenied):
			return utils.SendError(c, fiber.StatusForbidden, "no active subscription for this subject")
		case errors.Is(err, ai.ErrRateLimited):
			return utils.SendError(c, fiber.StatusTooManyRequests, "assistant busy")
		case errors.Is(err, ai.ErrQuotaExhausted):
			return utils.SendError(c, fiber.StatusPaymentRequired, "quota exhausted")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("user_id", session.UserID).Msg("assistant chat failed")
			return utils.SendError(c, fiber.StatusBadGateway, "assistant unavailable")
		}
	}

	return utils.SendSuccess(c, "assistant reply", result)
}
