package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tricommerce/internal/idempotency"
	"tricommerce/internal/service"
	"tricommerce/pkg/validator"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrInvalidTransition, fiber.StatusConflict},
	{service.ErrInsufficientStock, fiber.StatusConflict},
	{service.ErrEmptyCart, fiber.StatusConflict},
	{service.ErrDuplicateEntity, fiber.StatusConflict},
	{idempotency.ErrInFlight, fiber.StatusConflict},
	{service.ErrInvalidQuantity, fiber.StatusBadRequest},
	{service.ErrValidationFailed, fiber.StatusBadRequest},
	{service.ErrProductUnavailable, fiber.StatusUnprocessableEntity},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrAccountInactive, fiber.StatusUnauthorized},
	{service.ErrTimeout, fiber.StatusGatewayTimeout},
	{service.ErrStorageUnavailable, fiber.StatusServiceUnavailable},
}

// statusFor maps a service error onto its HTTP status.
func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	body := fiber.Map{"error": msg}
	if errors.Is(err, service.ErrTimeout) || errors.Is(err, service.ErrStorageUnavailable) {
		body["retryable"] = true
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parseBody decodes JSON and runs struct validation. The returned
// *fiber.Error is rendered by ErrorHandler.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON")
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Validation failed: "+errs[0].Error())
	}
	return nil
}

// ErrorHandler renders errors returned from handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}
