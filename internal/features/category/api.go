package category

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CategoryApi struct {
	Controller *CategoryController
	access     *middleware.Access
}

func NewCategoryApi(controller *CategoryController, access *middleware.Access) *CategoryApi {
	return &CategoryApi{Controller: controller, access: access}
}

func (a *CategoryApi) Setup(app *fiber.App) {
	categories := app.Group("/api/categories")

	read := a.access.RequirePermission(authz.PermCategoryRead)
	write := a.access.RequirePermission(authz.PermCategoryWrite)

	categories.Get("/", read, a.Controller.ListCategories)
	categories.Get("/tree", read, a.Controller.Tree)
	categories.Post("/import", write, a.Controller.ImportCategories)
	categories.Post("/", write, a.Controller.CreateCategory)
	categories.Get("/:id", read, a.Controller.GetCategory)
	categories.Put("/:id", write, a.Controller.UpdateCategory)
	categories.Delete("/:id", write, a.Controller.DeleteCategory)
}
