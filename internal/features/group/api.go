package group

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type GroupApi struct {
	Controller *GroupController
	access     *middleware.Access
}

func NewGroupApi(controller *GroupController, access *middleware.Access) *GroupApi {
	return &GroupApi{Controller: controller, access: access}
}

func (a *GroupApi) Setup(app *fiber.App) {
	groups := app.Group("/api/groups")

	groups.Get("/", a.access.RequirePermission(authz.PermGroupRead), a.Controller.ListGroups)
	groups.Post("/", a.access.RequirePermission(authz.PermGroupWrite), a.Controller.CreateGroup)
	groups.Get("/:id", a.access.RequirePermission(authz.PermGroupRead), a.Controller.GetGroup)
	groups.Put("/:id", a.access.RequirePermission(authz.PermGroupWrite), a.Controller.UpdateGroup)
	groups.Delete("/:id", a.access.RequirePermission(authz.PermGroupWrite), a.Controller.DeleteGroup)
}
