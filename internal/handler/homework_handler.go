package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/service"
	"github.com/eduline/homework-api/internal/utils"
)

// HomeworkHandler wires homework set, assignment and submission HTTP routes.
type HomeworkHandler struct {
	service service.HomeworkService
	logger  zerolog.Logger
}

// NewHomeworkHandler constructs the handler.
func NewHomeworkHandler(service service.HomeworkService, logger zerolog.Logger) *HomeworkHandler {
	return &HomeworkHandler{
		service: service,
		logger:  logger.With().Str("component", "homework_handler").Logger(),
	}
}

// RegisterTeacher attaches the teacher-facing endpoints to the router group.
// Guards run before every route.
func (h *HomeworkHandler) RegisterTeacher(router fiber.Router, guards ...fiber.Handler) {
	router.Get("/sets", append(guards, h.listSets)...)
	router.Post("/sets", append(guards, h.createSet)...)
	router.Post("/assign", append(guards, h.assign)...)
	router.Put("/submissions/:id/grade", append(guards, h.grade)...)
}

// RegisterStudent attaches the student-facing endpoints to the router group.
func (h *HomeworkHandler) RegisterStudent(router fiber.Router, guards ...fiber.Handler) {
	router.Get("/tasks", append(guards, h.variantTasks)...)
	router.Post("/submissions", append(guards, h.submit)...)
}

func (h *HomeworkHandler) listSets(c *fiber.Ctx) error {
	sets, err := h.service.ListSets(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"homework_sets": sets})
}

func (h *HomeworkHandler) createSet(c *fiber.Ctx) error {
	var payload dto.HomeworkSetCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.service.CreateSet(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Envelope{"homework_set": set})
}

func (h *HomeworkHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Assign(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Envelope{
		"variants_created": result.VariantsCreated,
		"total_students":   result.TotalStudents,
	})
}

func (h *HomeworkHandler) variantTasks(c *fiber.Ctx) error {
	variantID, err := parseUintQuery(c, "variant_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if variantID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "variant_id is required")
	}

	tasks, err := h.service.VariantTasks(c.Context(), userIDFromContext(c), variantID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"tasks": tasks})
}

func (h *HomeworkHandler) grade(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.GradeSubmission(c.Context(), userIDFromContext(c), submissionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, utils.Envelope{"submission": submission})
}

func (h *HomeworkHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.SubmitAnswer(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, utils.Envelope{"submission": submission})
}

func (h *HomeworkHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "homework set not found")
	case errors.Is(err, service.ErrNotSetOwner):
		return utils.SendError(c, fiber.StatusForbidden, "homework set is owned by another teacher")
	case errors.Is(err, service.ErrGroupNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "group not found")
	case errors.Is(err, service.ErrNotGroupOwner):
		return utils.SendError(c, fiber.StatusForbidden, "group is owned by another teacher")
	case errors.Is(err, service.ErrTasksNotOwned):
		return utils.SendError(c, fiber.StatusBadRequest, "some tasks were not found or are owned by another teacher")
	case errors.Is(err, service.ErrEmptyGroup):
		return utils.SendError(c, fiber.StatusBadRequest, "group has no students")
	case errors.Is(err, service.ErrVariantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "variant not found")
	case errors.Is(err, service.ErrItemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "variant item not found")
	case errors.Is(err, service.ErrNotVariantOwner):
		return utils.SendError(c, fiber.StatusForbidden, "variant belongs to another student")
	case errors.Is(err, service.ErrEmptyAnswer):
		return utils.SendError(c, fiber.StatusBadRequest, "at least one answer field is required")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
