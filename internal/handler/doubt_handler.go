package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/service"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

// DoubtHandler wires doubt conversation HTTP routes.
type DoubtHandler struct {
	doubts service.DoubtService
	logger zerolog.Logger
}

// NewDoubtHandler constructs the handler.
func NewDoubtHandler(doubts service.DoubtService, logger zerolog.Logger) *DoubtHandler {
	return &DoubtHandler{
		doubts: doubts,
		logger: logger.With().Str("component", "doubt_handler").Logger(),
	}
}

// Register attaches doubt endpoints to the router group. Students and
// volunteers open, follow up on and resolve their own threads; mentors and
// admins reply.
func (h *DoubtHandler) Register(router fiber.Router, studentOnly fiber.Handler, mentorOnly fiber.Handler, createLimiter fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", studentOnly, createLimiter, h.create)
	router.Put("/:id/reply", mentorOnly, h.reply)
	router.Put("/:id/followup", studentOnly, h.followup)
	router.Put("/:id/resolve", studentOnly, h.resolve)
}

func (h *DoubtHandler) list(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	var filter dto.DoubtFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	doubts, err := h.doubts.List(c.UserContext(), actor, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, doubts, "doubts retrieved", fiber.Map{"total": len(doubts)})
}

func (h *DoubtHandler) get(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	doubt, err := h.doubts.Get(c.UserContext(), actor, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "doubt retrieved", doubt)
}

func (h *DoubtHandler) create(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	var payload dto.DoubtCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	doubt, err := h.doubts.Create(c.UserContext(), actor, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "doubt created", doubt)
}

func (h *DoubtHandler) reply(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DoubtReplyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	doubt, err := h.doubts.Reply(c.UserContext(), actor, id, payload.Reply)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reply recorded", doubt)
}

func (h *DoubtHandler) followup(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DoubtFollowupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	doubt, err := h.doubts.Followup(c.UserContext(), actor, id, payload.Followup)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "follow-up recorded", doubt)
}

func (h *DoubtHandler) resolve(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	doubt, err := h.doubts.Resolve(c.UserContext(), actor, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "doubt resolved", doubt)
}

func (h *DoubtHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrDoubtNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "doubt not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrDoubtForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "you do not have access to this doubt")
	case errors.Is(err, service.ErrNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "assignment is not assigned to you")
	case errors.Is(err, service.ErrDoubtResolved):
		return utils.SendError(c, fiber.StatusConflict, "doubt is already resolved")
	case errors.Is(err, service.ErrBlankMessage), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
