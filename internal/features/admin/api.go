package admin

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AdminApi struct {
	Controller *AdminController
	access     *middleware.Access
}

func NewAdminApi(controller *AdminController, access *middleware.Access) *AdminApi {
	return &AdminApi{Controller: controller, access: access}
}

func (a *AdminApi) Setup(app *fiber.App) {
	admins := app.Group("/api/admins")

	read := a.access.RequirePermission(authz.PermAdminRead)
	write := a.access.RequirePermission(authz.PermAdminWrite)

	admins.Get("/", read, a.Controller.ListAdmins)
	admins.Post("/", write, a.Controller.CreateAdmin)
	admins.Get("/:id", read, a.Controller.GetAdmin)
	admins.Put("/:id", write, a.Controller.UpdateAdmin)
	admins.Delete("/:id", write, a.Controller.DeleteAdmin)
	admins.Get("/:id/permissions", read, a.Controller.EffectivePermissions)
	admins.Put("/:id/groups", write, a.Controller.SetGroups)
	admins.Put("/:id/permissions", write, a.Controller.SetPermissions)
}
