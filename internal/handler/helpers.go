package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/middleware"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// actorOrAbort pulls the authenticated identity from the request context and
// writes a 401 when the token middleware did not bind one.
func actorOrAbort(c *fiber.Ctx) (models.Actor, error) {
	actor, ok := middleware.ActorFromCtx(c)
	if !ok {
		return models.Actor{}, utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	return actor, nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
