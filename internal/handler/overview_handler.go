package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/service"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

// OverviewHandler serves the student's aggregate progress counters.
type OverviewHandler struct {
	overview service.OverviewService
	logger   zerolog.Logger
}

// NewOverviewHandler constructs the handler.
func NewOverviewHandler(overview service.OverviewService, logger zerolog.Logger) *OverviewHandler {
	return &OverviewHandler{
		overview: overview,
		logger:   logger.With().Str("component", "overview_handler").Logger(),
	}
}

// Register attaches the overview endpoint to the router group.
func (h *OverviewHandler) Register(router fiber.Router) {
	router.Get("/overview", h.get)
}

func (h *OverviewHandler) get(c *fiber.Ctx) error {
	actor, err := actorOrAbort(c)
	if err != nil {
		return err
	}

	overview, err := h.overview.GetOverview(c.UserContext(), actor.ID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build overview")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "overview retrieved", overview)
}
