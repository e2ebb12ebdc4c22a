package permission

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	Controller *PermissionController
	access     *middleware.Access
}

func NewPermissionApi(controller *PermissionController, access *middleware.Access) *PermissionApi {
	return &PermissionApi{
		Controller: controller,
		access:     access,
	}
}

// Setup registers permission catalog routes. The catalog is managed with role permissions.
func (a *PermissionApi) Setup(app *fiber.App) {
	permissions := app.Group("/api/permissions")

	permissions.Get("/", a.access.RequirePermission(authz.PermRoleRead), a.Controller.ListPermissions)
	permissions.Post("/", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.CreatePermission)
	permissions.Get("/:id", a.access.RequirePermission(authz.PermRoleRead), a.Controller.GetPermission)
	permissions.Put("/:id", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.UpdatePermission)
	permissions.Delete("/:id", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.DeletePermission)
}
