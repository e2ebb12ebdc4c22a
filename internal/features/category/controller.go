package category

import (
	"strconv"
	"strings"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryController struct {
	Service  CategoryService
	Importer Importer
}

func NewCategoryController(service CategoryService, importer Importer) *CategoryController {
	return &CategoryController{Service: service, Importer: importer}
}

// ListCategories godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        parent query string false "Parent category ID, or 'root'"
// @Param        level query int false "Level"
// @Param        isActive query bool false "Active flag"
// @Param        search query string false "Name contains"
// @Success      200  {array} Category
// @Router       /api/categories [get]
func (ctrl *CategoryController) ListCategories(c *fiber.Ctx) error {
	var filter ListFilter
	switch parent := c.Query("parent"); parent {
	case "":
	case "root":
		filter.RootOnly = true
	default:
		id, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			return common_api.RespondError(c, apperr.Validation("parent", "invalid parent category ID"))
		}
		filter.Parent = &id
	}
	if raw := c.Query("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return common_api.RespondError(c, apperr.Validation("level", "level must be a number"))
		}
		filter.Level = &level
	}
	if raw := c.Query("isActive"); raw != "" {
		active := c.QueryBool("isActive")
		filter.IsActive = &active
	}
	filter.Search = c.Query("search")

	categories, err := ctrl.Service.ListCategories(c.UserContext(), filter)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(categories)
}

func (ctrl *CategoryController) Tree(c *fiber.Ctx) error {
	tree, err := ctrl.Service.Tree(c.UserContext())
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(tree)
}

func (ctrl *CategoryController) GetCategory(c *fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	category, err := ctrl.Service.GetCategory(c.UserContext(), id)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(category)
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category body CreateCategoryRequest true "Category"
// @Success      201  {object} Category
// @Router       /api/categories [post]
func (ctrl *CategoryController) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	category, err := ctrl.Service.CreateCategory(c.UserContext(), req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (ctrl *CategoryController) UpdateCategory(c *fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	var req UpdateCategoryRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	category, err := ctrl.Service.UpdateCategory(c.UserContext(), id, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(category)
}

func (ctrl *CategoryController) DeleteCategory(c *fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	if err := ctrl.Service.DeleteCategory(c.UserContext(), id); err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

// ImportCategories godoc
// @Summary      Bulk import categories
// @Description  Accepts a JSON body {records, updateExisting} or a multipart .csv/.xlsx upload in "file"
// @Tags         categories
// @Accept       json,mpfd
// @Produce      json
// @Param        file formData file false "CSV or XLSX file"
// @Param        updateExisting formData bool false "Update categories that already exist"
// @Success      200  {object} ImportReport
// @Router       /api/categories/import [post]
func (ctrl *CategoryController) ImportCategories(c *fiber.Ctx) error {
	var (
		records        []RawCategoryRecord
		updateExisting bool
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return common_api.RespondError(c, apperr.Validation("file", "file is required"))
		}
		file, err := fileHeader.Open()
		if err != nil {
			return common_api.RespondError(c, apperr.Internal("open upload", err))
		}
		defer file.Close()

		records, err = ParseFile(file, fileHeader.Filename)
		if err != nil {
			return common_api.RespondError(c, apperr.Validation("file", err.Error()))
		}
		updateExisting, _ = strconv.ParseBool(c.FormValue("updateExisting", "false"))
	} else {
		var req ImportRequest
		if err := common_api.ParseBody(c, &req); err != nil {
			return common_api.RespondError(c, err)
		}
		records = req.Records
		updateExisting = req.UpdateExisting
	}

	report, err := ctrl.Importer.Import(c.UserContext(), records, updateExisting)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(report)
}

func categoryID(c *fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("id", "invalid category ID")
	}
	return id, nil
}
