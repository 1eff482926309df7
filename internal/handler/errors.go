package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
)

// mapServiceError translates the engine error taxonomy to HTTP statuses:
// rejected requests 400, missing entities 404, lock contention 409 (safe to
// retry). Unknown errors fall through as 500 for the caller to log.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return fiber.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrInsufficientFunds):
		return fiber.StatusBadRequest, "insufficient medal balance"
	case errors.Is(err, service.ErrQuotaExceeded):
		return fiber.StatusBadRequest, "monthly medal quota exceeded"
	case errors.Is(err, service.ErrProductUnavailable):
		return fiber.StatusBadRequest, "product unavailable"
	case errors.Is(err, service.ErrNotPending):
		return fiber.StatusBadRequest, "purchase is not pending"
	case errors.Is(err, service.ErrAccountNotFound):
		return fiber.StatusNotFound, "account not found"
	case errors.Is(err, service.ErrProductNotFound):
		return fiber.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrPurchaseNotFound):
		return fiber.StatusNotFound, "purchase not found"
	case errors.Is(err, service.ErrBusy):
		return fiber.StatusConflict, "resource busy, please retry"
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// formatValidationError converts validator errors to user-facing messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be blank"
			case "oneof":
				return "invalid request: " + field + " must be one of gold, silver, bronze"
			case "gte":
				return "invalid request: " + field + " is below the minimum value"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			}
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}
