package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/service"
	"github.com/eduline/homework-api/internal/utils"
)

// TheoryHandler wires theory material HTTP routes.
type TheoryHandler struct {
	service service.TheoryService
	logger  zerolog.Logger
}

// NewTheoryHandler constructs the handler.
func NewTheoryHandler(service service.TheoryService, logger zerolog.Logger) *TheoryHandler {
	return &TheoryHandler{
		service: service,
		logger:  logger.With().Str("component", "theory_handler").Logger(),
	}
}

// RegisterList attaches the read endpoint shared by both roles.
func (h *TheoryHandler) RegisterList(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterManage attaches the teacher-only publish endpoint. Guards run
// before the route.
func (h *TheoryHandler) RegisterManage(router fiber.Router, guards ...fiber.Handler) {
	router.Post("", append(guards, h.create)...)
}

func (h *TheoryHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"theory": items})
}

// create accepts either a JSON body or a multipart form with an optional
// file attachment.
func (h *TheoryHandler) create(c *fiber.Ctx) error {
	var payload dto.TheoryCreateRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		payload.Title = c.FormValue("title")
		payload.Content = c.FormValue("content")
		payload.FileURL = c.FormValue("file_url")
		if ege, err := strconv.Atoi(strings.TrimSpace(c.FormValue("ege_number"))); err == nil {
			payload.EGENumber = ege
		}
	} else if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	theory, err := h.service.Create(c.Context(), userIDFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Envelope{"theory": theory})
}

func (h *TheoryHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
	case errors.Is(err, service.ErrUploadUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "file uploads are not configured")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
