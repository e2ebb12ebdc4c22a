package api

import (
	"go-marketplace/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

// Route is an interface for any module that wants to register endpoints
type Route interface {
	Setup(app *fiber.App)
}

// RespondError renders err with the status its kind maps to.
// Authentication and authorization failures share one message.
func RespondError(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	body := fiber.Map{"error": apperr.PublicMessage(err)}
	if field := apperr.FieldOf(err); field != "" {
		body["field"] = field
	}
	return c.Status(status).JSON(body)
}
