package group

import (
	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GroupController struct {
	Service GroupService
}

func NewGroupController(service GroupService) *GroupController {
	return &GroupController{Service: service}
}

func (ctrl *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req GroupRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	g, err := ctrl.Service.CreateGroup(c.UserContext(), req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

func (ctrl *GroupController) ListGroups(c *fiber.Ctx) error {
	groups, err := ctrl.Service.ListGroups(c.UserContext())
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(groups)
}

func (ctrl *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid group ID"))
	}
	g, err := ctrl.Service.GetGroup(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(g)
}

func (ctrl *GroupController) UpdateGroup(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid group ID"))
	}
	var req GroupRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	g, err := ctrl.Service.UpdateGroup(c.UserContext(), id, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(g)
}

func (ctrl *GroupController) DeleteGroup(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return common_api.RespondError(c, apperr.Validation("id", "invalid group ID"))
	}
	if err := ctrl.Service.DeleteGroup(c.UserContext(), id); err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Group deleted successfully"})
}
