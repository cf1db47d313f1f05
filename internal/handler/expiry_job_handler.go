package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/service"
)

// ExpiryJobHandler exposes the scheduler-facing trigger for the
// subscription-expiry scan. The route is guarded by a shared job token, not
// by user auth; the response body is the job contract consumed by the
// external scheduler, so it is not wrapped in the API envelope.
type ExpiryJobHandler struct {
	service service.ExpiryService
	token   string
	logger  zerolog.Logger
}

// NewExpiryJobHandler constructs the handler.
func NewExpiryJobHandler(service service.ExpiryService, token string, logger zerolog.Logger) *ExpiryJobHandler {
	return &ExpiryJobHandler{
		service: service,
		token:   token,
		logger:  logger.With().Str("component", "expiry_job_handler").Logger(),
	}
}

// Register binds the job route.
func (h *ExpiryJobHandler) Register(router fiber.Router) {
	router.Post("/subscription-expiry", h.run)
}

func (h *ExpiryJobHandler) run(c *fiber.Ctx) error {
	if h.token == "" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ExpiryRunResponse{
			Success: false,
			Error:   "job trigger disabled",
		})
	}

	provided := c.Get("X-Job-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ExpiryRunResponse{
			Success: false,
			Error:   "invalid job token",
		})
	}

	result, err := h.service.Run(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("expiry job run failed")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ExpiryRunResponse{
			Success: false,
			Error:   "expiry scan failed",
		})
	}

	return c.JSON(result)
}
