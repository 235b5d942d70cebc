package controllers

import (
	"errors"
	"relief-app/services"
	"relief-app/types"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a snowflake id path parameter.
func paramID(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	val, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return types.SnowflakeID(val), nil
}

// renderError maps engine error kinds to HTTP statuses. The structured kind
// and field travel to the client so the UI can render an actionable message.
func renderError(ctx *fiber.Ctx, err error) error {
	var engineErr *services.Error
	if !errors.As(err, &engineErr) {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}

	status := fiber.StatusInternalServerError
	switch engineErr.Kind {
	case services.KindValidation, services.KindInvalidQuantity, services.KindMissingReason:
		status = fiber.StatusBadRequest
	case services.KindInsufficientStock, services.KindInvalidStateTransition, services.KindConcurrencyConflict:
		status = fiber.StatusConflict
	case services.KindNotFound:
		status = fiber.StatusNotFound
	}

	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"message": engineErr.Message,
		"kind":    engineErr.Kind,
		"field":   engineErr.Field,
	})
}
