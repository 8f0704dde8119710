package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/models"
	"alfredoptarigan/ats-evaluator/internal/services"
)

// ErrorHandler renders every error as JSON with the status its kind maps to.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := services.StatusCode(err)
		kind := services.ErrorKind(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			kind = ""
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("request_id", string(c.Response().Header.Peek(HeaderRequestID))),
				zap.Int("code", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: err.Error(),
			Code:  code,
			Kind:  kind,
		})
	}
}

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{Status: "ok"})
}
