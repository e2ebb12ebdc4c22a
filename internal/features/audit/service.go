package audit

import (
	"context"
	"strings"
	"time"

	common_models "go-marketplace/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.Admin, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter LogFilter, page, limit int64) (*LogPage, error)
}

type AuditServiceImpl struct {
	Repo      AuditRepository
	AdminRepo AdminFinder
	now       func() time.Time
}

func NewAuditService(repo AuditRepository, adminRepo AdminFinder) AuditService {
	return &AuditServiceImpl{
		Repo:      repo,
		AdminRepo: adminRepo,
		now:       time.Now,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   common_models.ActorFromContext(ctx),
		Changes:   changes,
		Timestamp: s.now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter LogFilter, page, limit int64) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	logs, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	s.nameActors(ctx, logs)

	return &LogPage{Data: logs, Total: total, Page: page, Limit: limit}, nil
}

// nameActors fills ActorName. A failed admin lookup leaves names as "Unknown Admin".
func (s *AuditServiceImpl) nameActors(ctx context.Context, logs []common_models.AuditLog) {
	var actorIDs []string
	seen := map[string]bool{}
	for _, log := range logs {
		if isSystemActor(log.ActorID) || seen[log.ActorID] {
			continue
		}
		seen[log.ActorID] = true
		actorIDs = append(actorIDs, log.ActorID)
	}

	nameByID := map[string]string{}
	if len(actorIDs) > 0 {
		if admins, err := s.AdminRepo.FindByIDs(ctx, actorIDs); err == nil {
			for _, a := range admins {
				nameByID[a.ID.Hex()] = strings.TrimSpace(a.FirstName + " " + a.LastName)
			}
		}
	}

	for i := range logs {
		id := logs[i].ActorID
		switch {
		case isSystemActor(id):
			logs[i].ActorName = "System"
		case nameByID[id] != "":
			logs[i].ActorName = nameByID[id]
		default:
			logs[i].ActorName = "Unknown Admin"
		}
	}
}

func isSystemActor(id string) bool {
	return id == "" || id == common_models.SystemActor
}
