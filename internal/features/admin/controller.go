package admin

import (
	"strconv"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/features/access"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminController struct {
	Service AdminService
	Guard   access.Guard
}

func NewAdminController(service AdminService, guard access.Guard) *AdminController {
	return &AdminController{Service: service, Guard: guard}
}

// ListAdmins godoc
// @Summary      List admin accounts
// @Tags         admins
// @Produce      json
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Param        role query string false "Role key"
// @Param        search query string false "Name or email"
// @Param        include_deleted query bool false "Include soft-deleted accounts"
// @Router       /api/admins [get]
func (ctrl *AdminController) ListAdmins(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	filter := ListFilter{
		Role:           c.Query("role"),
		Search:         c.Query("search"),
		IncludeDeleted: c.QueryBool("include_deleted"),
	}

	admins, total, err := ctrl.Service.ListAdmins(c.UserContext(), filter, page, limit)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":  admins,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *AdminController) GetAdmin(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	admin, err := ctrl.Service.GetAdmin(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(admin)
}

// CreateAdmin godoc
// @Summary      Create an admin account
// @Tags         admins
// @Accept       json
// @Produce      json
// @Param        admin body CreateAdminRequest true "Admin"
// @Router       /api/admins [post]
func (ctrl *AdminController) CreateAdmin(c *fiber.Ctx) error {
	var req CreateAdminRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	admin, err := ctrl.Service.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(admin)
}

func (ctrl *AdminController) UpdateAdmin(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	var req UpdateAdminRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	admin, err := ctrl.Service.UpdateAdmin(c.UserContext(), id, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(admin)
}

func (ctrl *AdminController) DeleteAdmin(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	if err := ctrl.Service.DeleteAdmin(c.UserContext(), id); err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}

func (ctrl *AdminController) SetGroups(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	var req SetGroupsRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	admin, err := ctrl.Service.SetGroups(c.UserContext(), id, req.Groups)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(admin)
}

func (ctrl *AdminController) SetPermissions(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	var req SetPermissionsRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	admin, err := ctrl.Service.SetPermissions(c.UserContext(), id, req.Permissions)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(admin)
}

// EffectivePermissions shows what the guard would resolve for the admin right now
func (ctrl *AdminController) EffectivePermissions(c *fiber.Ctx) error {
	id, err := adminID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	perms, err := ctrl.Guard.EffectivePermissions(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"permissions": perms})
}

func adminID(c *fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("id", "invalid admin ID")
	}
	return id, nil
}
