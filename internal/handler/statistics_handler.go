package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/service"
	"github.com/eduline/homework-api/internal/utils"
)

// StatisticsHandler wires group statistics HTTP routes.
type StatisticsHandler struct {
	service service.StatisticsService
	logger  zerolog.Logger
}

// NewStatisticsHandler constructs the handler.
func NewStatisticsHandler(service service.StatisticsService, logger zerolog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		service: service,
		logger:  logger.With().Str("component", "statistics_handler").Logger(),
	}
}

// Register attaches statistics endpoints to the router group.
func (h *StatisticsHandler) Register(router fiber.Router) {
	router.Get("", h.flat)
	router.Get("/summary", h.summary)
}

func (h *StatisticsHandler) flat(c *fiber.Ctx) error {
	groupID, setID, err := h.parseFilters(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.service.GroupStatistics(c.Context(), userIDFromContext(c), groupID, setID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"statistics": rows})
}

func (h *StatisticsHandler) summary(c *fiber.Ctx) error {
	groupID, setID, err := h.parseFilters(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	groups, err := h.service.GroupSummary(c.Context(), userIDFromContext(c), groupID, setID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"statistics": groups})
}

func (h *StatisticsHandler) parseFilters(c *fiber.Ctx) (uint, *uint, error) {
	groupID, err := parseUintQuery(c, "group_id")
	if err != nil {
		return 0, nil, err
	}
	if groupID == 0 {
		return 0, nil, errors.New("group_id is required")
	}

	setID, err := parseUintQuery(c, "set_id")
	if err != nil {
		return 0, nil, err
	}
	if setID == 0 {
		return groupID, nil, nil
	}

	return groupID, &setID, nil
}

func (h *StatisticsHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "group not found")
	case errors.Is(err, service.ErrNotGroupOwner):
		return utils.SendError(c, fiber.StatusForbidden, "group is owned by another teacher")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
