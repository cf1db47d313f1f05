package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
)

// MaterialHandler manages reference material uploads used to ground the
// assistant. Writes are admin-only; the router group enforces the role.
type MaterialHandler struct {
	service service.MaterialService
	logger  zerolog.Logger
}

// NewMaterialHandler constructs the handler.
func NewMaterialHandler(service service.MaterialService, logger zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		service: service,
		logger:  logger.With().Str("component", "material_handler").Logger(),
	}
}

// Register wires the material routes.
func (h *MaterialHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.edit)
	router.Get("/subject/:subjectId", h.listBySubject)
}

func (h *MaterialHandler) create(c *fiber.Ctx) error {
	session := sessionFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	subjectID, err := parseFormUint(c, "subject_id")
	if err != nil || subjectID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "subject_id is required")
	}

	data, err := readMultipartFile(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}

	result, err := h.service.Save(requestContext(c), service.MaterialCreate{
		SubjectID:  subjectID,
		FileName:   file.Filename,
		Data:       data,
		UploadedBy: session.UserID,
	})
	if err != nil {
		return h.saveError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "material uploaded", result)
}

func (h *MaterialHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	change := service.MaterialEdit{ID: id}

	if name := strings.TrimSpace(c.FormValue("file_name")); name != "" {
		change.FileName = &name
	}
	if file, err := c.FormFile("file"); err == nil {
		data, readErr := readMultipartFile(file)
		if readErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
		}
		change.Data = data
		if change.FileName == nil {
			name := file.Filename
			change.FileName = &name
		}
	}

	if change.FileName == nil && change.Data == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "nothing to update")
	}

	result, err := h.service.Save(requestContext(c), change)
	if err != nil {
		return h.saveError(c, err)
	}

	return utils.SendSuccess(c, "material updated", result)
}

func (h *MaterialHandler) listBySubject(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	materials, err := h.service.ListBySubject(requestContext(c), subjectID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("subject_id", subjectID).Msg("failed to list materials")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list materials")
	}

	return utils.SendSuccess(c, "materials retrieved", materials)
}

func (h *MaterialHandler) saveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrMaterialTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrMaterialTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("material save failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "material save failed")
	}
}
