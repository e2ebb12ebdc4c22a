package audit

import (
	"time"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"
	common_models "go-marketplace/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

type listQuery struct {
	Module   string `query:"module"`
	RecordID string `query:"record_id"`
	ActorID  string `query:"actor_id"`
	Action   string `query:"action"`
	Since    string `query:"since"`
	Until    string `query:"until"`
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
}

// ListLogs godoc
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Param        module    query string false "Collection name"
// @Param        record_id query string false "Record ID"
// @Param        actor_id  query string false "Admin ID"
// @Param        since     query string false "RFC3339 lower bound"
// @Param        until     query string false "RFC3339 upper bound"
// @Router       /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	var q listQuery
	if err := c.QueryParser(&q); err != nil {
		return common_api.RespondError(c, apperr.Validation("query", "invalid query parameters"))
	}

	filter := LogFilter{
		Module:   q.Module,
		RecordID: q.RecordID,
		ActorID:  q.ActorID,
		Action:   common_models.AuditAction(q.Action),
	}
	var err error
	if filter.Since, err = parseTime("since", q.Since); err != nil {
		return common_api.RespondError(c, err)
	}
	if filter.Until, err = parseTime("until", q.Until); err != nil {
		return common_api.RespondError(c, err)
	}

	page, err := ctrl.Service.ListLogs(c.UserContext(), filter, q.Page, q.Limit)
	if err != nil {
		return common_api.RespondError(c, apperr.Internal("list audit logs", err))
	}
	return c.JSON(page)
}

func parseTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation(field, "must be an RFC3339 timestamp")
	}
	return &t, nil
}
