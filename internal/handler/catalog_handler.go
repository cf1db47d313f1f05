package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/repository"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/internal/utils"
)

// CatalogHandler serves the read-only subject catalog.
type CatalogHandler struct {
	subjects repository.SubjectRepository
	logger   zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(subjects repository.SubjectRepository, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		subjects: subjects,
		logger:   logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register wires the catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

func (h *CatalogHandler) list(c *fiber.Ctx) error {
	filter := repository.SubjectFilter{
		Stage:   strings.TrimSpace(c.Query("stage")),
		Section: strings.TrimSpace(c.Query("section")),
	}

	// The category filter accepts both the canonical key and the Arabic
	// registration-form label.
	if label := strings.TrimSpace(c.Query("category")); label != "" {
		mapping, err := service.ResolveCategoryLabel(label)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown subject category")
		}
		filter.Category = mapping.Key
	}

	grade, err := parseQueryInt(c, "grade")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid grade")
	}
	filter.Grade = grade

	subjects, err := h.subjects.List(requestContext(c), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list subjects")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list subjects")
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *CatalogHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	subject, err := h.subjects.FindByID(requestContext(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "subject not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("subject_id", id).Msg("failed to load subject")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load subject")
	}

	return utils.SendSuccess(c, "subject retrieved", subject)
}
