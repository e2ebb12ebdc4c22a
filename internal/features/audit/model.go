package audit

import (
	"time"

	common_models "go-marketplace/internal/common/models"
)

// LogFilter narrows an audit listing. Zero values match everything.
type LogFilter struct {
	Module   string
	RecordID string
	ActorID  string
	Action   common_models.AuditAction
	Since    *time.Time
	Until    *time.Time
}

type LogPage struct {
	Data  []common_models.AuditLog `json:"data"`
	Total int64                    `json:"total"`
	Page  int64                    `json:"page"`
	Limit int64                    `json:"limit"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)
