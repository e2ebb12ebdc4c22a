package permission

import (
	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PermissionController struct {
	PermissionService PermissionService
}

func NewPermissionController(permissionService PermissionService) *PermissionController {
	return &PermissionController{
		PermissionService: permissionService,
	}
}

// CreatePermission godoc
// @Summary      Catalog a permission key
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        permission body CreatePermissionRequest true "Permission"
// @Success      201  {object} Permission
// @Router       /api/permissions [post]
func (ctrl *PermissionController) CreatePermission(c *fiber.Ctx) error {
	var req CreatePermissionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}

	created, err := ctrl.PermissionService.CreatePermission(c.UserContext(), req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListPermissions godoc
// @Summary      List catalogued permission keys
// @Tags         permissions
// @Produce      json
// @Param        category query string false "Category"
// @Success      200  {array} Permission
// @Router       /api/permissions [get]
func (ctrl *PermissionController) ListPermissions(c *fiber.Ctx) error {
	perms, err := ctrl.PermissionService.ListPermissions(c.UserContext(), c.Query("category"))
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(perms)
}

func (ctrl *PermissionController) GetPermission(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid permission ID"))
	}
	p, err := ctrl.PermissionService.GetPermission(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(p)
}

func (ctrl *PermissionController) UpdatePermission(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid permission ID"))
	}
	var req UpdatePermissionRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}

	updated, err := ctrl.PermissionService.UpdatePermission(c.UserContext(), id, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(updated)
}

func (ctrl *PermissionController) DeletePermission(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid permission ID"))
	}
	if err := ctrl.PermissionService.DeletePermission(c.UserContext(), id); err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Permission deleted successfully",
	})
}
