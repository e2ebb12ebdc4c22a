package role

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	Controller *RoleController
	access     *middleware.Access
}

func NewRoleApi(controller *RoleController, access *middleware.Access) *RoleApi {
	return &RoleApi{
		Controller: controller,
		access:     access,
	}
}

// Setup registers role routes
func (a *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles")

	roles.Get("/", a.access.RequirePermission(authz.PermRoleRead), a.Controller.ListRoles)
	roles.Get("/defaults", a.access.RequirePermission(authz.PermRoleRead), a.Controller.ListDefaults)
	roles.Post("/", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.CreateRole)
	roles.Get("/:id", a.access.RequirePermission(authz.PermRoleRead), a.Controller.GetRole)
	roles.Put("/:id", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.UpdateRole)
	roles.Delete("/:id", a.access.RequirePermission(authz.PermRoleWrite), a.Controller.DeleteRole)
}
