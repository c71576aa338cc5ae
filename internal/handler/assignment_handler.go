package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/service"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes, including the student status
// submission and screenshot upload endpoints.
type AssignmentHandler struct {
	assignments service.AssignmentService
	responses   service.ResponseService
	uploads     service.UploadService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, responses service.ResponseService, uploads service.UploadService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		responses:   responses,
		uploads:     uploads,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. Role guards are
// applied by the router, not here.
func (h *AssignmentHandler) Register(router fiber.Router, mentorOnly fiber.Handler, studentOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", mentorOnly, h.create)
	router.Put("/:id/status", studentOnly, h.submitStatus)
	router.Post("/:id/screenshots", studentOnly, h.addScreenshot)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	var filter dto.AssignmentFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	assignments, err := h.assignments.List(c.UserContext(), actor, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, assignments, "assignments retrieved", fiber.Map{"total": len(assignments)})
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignments.Get(c.UserContext(), actor, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Create(c.UserContext(), actor, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) submitStatus(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ResponseSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.responses.Submit(c.UserContext(), actor, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response recorded", snapshot)
}

func (h *AssignmentHandler) addScreenshot(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("screenshot")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "screenshot file is required")
	}

	snapshot, err := h.uploads.AddScreenshot(c.UserContext(), actor, id, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "screenshot attached", snapshot)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "assignment is not assigned to you")
	case errors.Is(err, service.ErrSubmissionURLRequired),
		errors.Is(err, service.ErrLearningNotesRequired),
		errors.Is(err, service.ErrAssigneesRequired),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, service.ErrBlankMessage),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
