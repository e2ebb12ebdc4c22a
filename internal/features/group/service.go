package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type GroupService interface {
	CreateGroup(ctx context.Context, req GroupRequest) (*models.Group, error)
	GetGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	UpdateGroup(ctx context.Context, id primitive.ObjectID, req GroupRequest) (*models.Group, error)
	// DeleteGroup leaves member admins untouched; their stale membership
	// contributes nothing at resolution time.
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
}

type GroupServiceImpl struct {
	Repo              GroupRepository
	AuditService      audit.AuditService
	PermissionService permission.PermissionService
}

func NewGroupService(repo GroupRepository, auditService audit.AuditService, permissionService permission.PermissionService) GroupService {
	return &GroupServiceImpl{
		Repo:              repo,
		AuditService:      auditService,
		PermissionService: permissionService,
	}
}

func (s *GroupServiceImpl) CreateGroup(ctx context.Context, req GroupRequest) (*models.Group, error) {
	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", req.Permissions)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g := &models.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, g); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("name", "group name already exists")
		}
		return nil, apperr.Internal("create group", err)
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "groups", g.ID.Hex(), map[string]models.Change{
		"name":        {New: g.Name},
		"permissions": {New: g.Permissions},
	})
	return g, nil
}

func (s *GroupServiceImpl) GetGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	g, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get group")
	}
	return g, nil
}

func (s *GroupServiceImpl) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list groups", err)
	}
	return groups, nil
}

func (s *GroupServiceImpl) UpdateGroup(ctx context.Context, id primitive.ObjectID, req GroupRequest) (*models.Group, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get group")
	}
	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", req.Permissions)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = strings.TrimSpace(req.Name)
	updated.Description = req.Description
	updated.Permissions = perms
	updated.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, &updated); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("name", "group name already exists")
		}
		return nil, notFoundOr(err, "update group")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "groups", id.Hex(), map[string]models.Change{
		"name":        {Old: existing.Name, New: updated.Name},
		"permissions": {Old: existing.Permissions, New: updated.Permissions},
	})
	return &updated, nil
}

func (s *GroupServiceImpl) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "get group")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete group")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "groups", id.Hex(), map[string]models.Change{
		"name": {Old: existing.Name},
	})
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("group")
	}
	return apperr.Internal(op, err)
}
