package auth

import (
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	access     *middleware.Access
}

func NewAuthApi(controller *AuthController, access *middleware.Access) *AuthApi {
	return &AuthApi{
		controller: controller,
		access:     access,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/login", h.controller.Login)
	auth.Post("/logout", h.controller.Logout)

	me := auth.Group("/me", h.access.Authenticated())
	me.Get("/", h.controller.Me)
	me.Put("/", h.controller.UpdateMe)
	me.Put("/password", h.controller.ChangePassword)
}
