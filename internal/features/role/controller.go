package role

import (
	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleController struct {
	RoleService RoleService
}

func NewRoleController(roleService RoleService) *RoleController {
	return &RoleController{
		RoleService: roleService,
	}
}

// CreateRole godoc
// @Summary      Create a role registry entry
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        role body CreateRoleRequest true "Role"
// @Success      201  {object} Role
// @Router       /api/roles [post]
func (ctrl *RoleController) CreateRole(c *fiber.Ctx) error {
	var req CreateRoleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	role, err := ctrl.RoleService.CreateRole(c.UserContext(), req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// ListRoles godoc
// @Summary      List roles with their effective defaults
// @Tags         roles
// @Produce      json
// @Success      200  {array} RoleView
// @Router       /api/roles [get]
func (ctrl *RoleController) ListRoles(c *fiber.Ctx) error {
	roles, err := ctrl.RoleService.ListRoles(c.UserContext())
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(roles)
}

// ListDefaults returns the code-defined role defaults
func (ctrl *RoleController) ListDefaults(c *fiber.Ctx) error {
	return c.JSON(ctrl.RoleService.Defaults())
}

func (ctrl *RoleController) GetRole(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid role ID"))
	}
	role, err := ctrl.RoleService.GetRole(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(role)
}

func (ctrl *RoleController) UpdateRole(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid role ID"))
	}
	var req UpdateRoleRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	role, err := ctrl.RoleService.UpdateRole(c.UserContext(), id, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(role)
}

func (ctrl *RoleController) DeleteRole(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid role ID"))
	}
	if err := ctrl.RoleService.DeleteRole(c.UserContext(), id); err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role deleted successfully"})
}
