package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
)

// TeacherHandler serves the eligible-teacher directory and the student's
// teacher selection.
type TeacherHandler struct {
	service service.TeacherDirectoryService
	logger  zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(service service.TeacherDirectoryService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		service: service,
		logger:  logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register binds the teacher directory routes.
func (h *TeacherHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/select", h.selectTeacher)
}

func (h *TeacherHandler) list(c *fiber.Ctx) error {
	var query dto.TeacherListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	teachers, err := h.service.ListEligibleTeachers(requestContext(c), query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCategoryLabel):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown subject category")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list eligible teachers")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list teachers")
		}
	}

	return utils.SendSuccess(c, "teachers retrieved", teachers)
}

func (h *TeacherHandler) selectTeacher(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.IsAnonymous() {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.TeacherSelectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	choice, err := h.service.SelectTeacher(requestContext(c), session, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCategoryLabel):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown subject category")
		case errors.Is(err, service.ErrTeacherNotEligible):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "teacher is not available for this subject and stage")
		case errors.Is(err, service.ErrTeacherNotApproved):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "teacher is not approved")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("user_id", session.UserID).Msg("failed to record teacher choice")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record teacher choice")
		}
	}

	return utils.SendSuccess(c, "teacher selected", choice)
}
