package permission

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	common_models "go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PermissionService interface {
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*Permission, error)
	GetPermission(ctx context.Context, id primitive.ObjectID) (*Permission, error)
	ListPermissions(ctx context.Context, category string) ([]Permission, error)
	UpdatePermission(ctx context.Context, id primitive.ObjectID, req UpdatePermissionRequest) (*Permission, error)
	DeletePermission(ctx context.Context, id primitive.ObjectID) error
	// ValidateKeys checks a role, group or admin permission list against the catalog.
	ValidateKeys(ctx context.Context, field string, keys []string) ([]string, error)
	SeedBuiltin(ctx context.Context) error
}

type PermissionServiceImpl struct {
	Repo         PermissionRepository
	AuditService audit.AuditService
}

func NewPermissionService(repo PermissionRepository, auditService audit.AuditService) PermissionService {
	return &PermissionServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *PermissionServiceImpl) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*Permission, error) {
	key := authz.Parse(req.Key)
	if key.IsAny() || !key.Valid() {
		return nil, apperr.Validation("key", "permission key must look like resource:action")
	}

	now := time.Now()
	p := &Permission{
		Key:         key.Name(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("key", "permission key already exists")
		}
		return nil, apperr.Internal("create permission", err)
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "permissions", p.ID.Hex(), map[string]common_models.Change{
		"key": {New: p.Key},
	})
	return p, nil
}

func (s *PermissionServiceImpl) GetPermission(ctx context.Context, id primitive.ObjectID) (*Permission, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get permission")
	}
	return p, nil
}

func (s *PermissionServiceImpl) ListPermissions(ctx context.Context, category string) ([]Permission, error) {
	perms, err := s.Repo.List(ctx, category)
	if err != nil {
		return nil, apperr.Internal("list permissions", err)
	}
	return perms, nil
}

func (s *PermissionServiceImpl) UpdatePermission(ctx context.Context, id primitive.ObjectID, req UpdatePermissionRequest) (*Permission, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get permission")
	}

	updated := *existing
	updated.Name = strings.TrimSpace(req.Name)
	updated.Description = req.Description
	updated.Category = req.Category
	updated.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, &updated); err != nil {
		return nil, notFoundOr(err, "update permission")
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "permissions", id.Hex(), map[string]common_models.Change{
		"name": {Old: existing.Name, New: updated.Name},
	})
	return &updated, nil
}

// DeletePermission removes the catalog entry only. Grants that still name the
// key stay in place and simply stop matching anything catalogued.
func (s *PermissionServiceImpl) DeletePermission(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "get permission")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete permission")
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "permissions", id.Hex(), map[string]common_models.Change{
		"key": {Old: existing.Key},
	})
	return nil
}

// ValidateKeys returns the normalized, de-duplicated list. The wildcard is
// always accepted; every other key must be well formed and catalogued.
func (s *PermissionServiceImpl) ValidateKeys(ctx context.Context, field string, keys []string) ([]string, error) {
	set := authz.NewSet()
	var lookup []string
	for _, raw := range keys {
		k := authz.Parse(raw)
		if k.IsAny() {
			set.Add(k)
			continue
		}
		if !k.Valid() {
			return nil, apperr.Validation(field, fmt.Sprintf("malformed permission key %q", raw))
		}
		if !set.Has(k) {
			lookup = append(lookup, k.Name())
		}
		set.Add(k)
	}

	if len(lookup) > 0 {
		found, err := s.Repo.ExistingKeys(ctx, lookup)
		if err != nil {
			return nil, apperr.Internal("check permission keys", err)
		}
		known := make(map[string]bool, len(found))
		for _, k := range found {
			known[k] = true
		}
		var unknown []string
		for _, k := range lookup {
			if !known[k] {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, apperr.Validation(field, "unknown permission keys: "+strings.Join(unknown, ", "))
		}
	}
	return set.Keys(), nil
}

// SeedBuiltin makes sure every built-in permission key is catalogued
func (s *PermissionServiceImpl) SeedBuiltin(ctx context.Context) error {
	now := time.Now()
	for _, entry := range authz.BuiltinCatalog {
		p := &Permission{
			Key:         entry.Key,
			Name:        entry.Name,
			Description: entry.Description,
			Category:    entry.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed permission %s: %w", entry.Key, err)
		}
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("permission")
	}
	return apperr.Internal(op, err)
}
