package audit

import (
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	access     *middleware.Access
}

func NewAuditApi(controller *AuditController, access *middleware.Access) *AuditApi {
	return &AuditApi{
		controller: controller,
		access:     access,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs")

	audit.Get("/", h.access.RequirePermission(authz.PermAuditRead), h.controller.ListLogs)
}
