package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/orbitsaas/credit-ledger/internal/constants"
	"github.com/orbitsaas/credit-ledger/internal/service"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Could not process the request",
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	statusMap := map[string]int{
		constants.ErrCodeInsufficientBalance: fiber.StatusConflict,
		constants.ErrCodeConcurrentConflict:  fiber.StatusConflict,
		constants.ErrCodeInvalidRequest:      fiber.StatusUnprocessableEntity,
		constants.ErrCodeForbidden:           fiber.StatusForbidden,
		constants.ErrCodeOperationFailed:     fiber.StatusInternalServerError,
	}

	status, ok := statusMap[err.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"code":    err.Code,
		"message": constants.GetErrorMessage(err.Code),
	})
}
