package role

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	common_models "go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var roleKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// AdminCounter reports how many admin accounts hold a role key
type AdminCounter interface {
	CountByRole(ctx context.Context, roleKey string) (int64, error)
}

type RoleService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error)
	GetRole(ctx context.Context, id primitive.ObjectID) (*RoleView, error)
	ListRoles(ctx context.Context) ([]RoleView, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, req UpdateRoleRequest) (*Role, error)
	DeleteRole(ctx context.Context, id primitive.ObjectID) error
	Defaults() []authz.RoleDefinition
	SeedDefaults(ctx context.Context) error
}

type RoleServiceImpl struct {
	RoleRepo          RoleRepository
	Admins            AdminCounter
	AuditService      audit.AuditService
	PermissionService permission.PermissionService
}

func NewRoleService(
	roleRepo RoleRepository,
	admins AdminCounter,
	auditService audit.AuditService,
	permissionService permission.PermissionService,
) RoleService {
	return &RoleServiceImpl{
		RoleRepo:          roleRepo,
		Admins:            admins,
		AuditService:      auditService,
		PermissionService: permissionService,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	key := strings.TrimSpace(req.Key)
	if !roleKeyPattern.MatchString(key) {
		return nil, apperr.Validation("key", "role key must be lower-case letters, digits or underscores")
	}
	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", req.Permissions)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	role := &Role{
		Key:         key,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.RoleRepo.Create(ctx, role); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("key", "role key already exists")
		}
		return nil, apperr.Internal("create role", err)
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "roles", role.ID.Hex(), map[string]common_models.Change{
		"key":         {New: role.Key},
		"permissions": {New: role.Permissions},
	})
	return role, nil
}

func (s *RoleServiceImpl) GetRole(ctx context.Context, id primitive.ObjectID) (*RoleView, error) {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get role")
	}
	view, err := s.view(ctx, *role)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]RoleView, error) {
	roles, err := s.RoleRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list roles", err)
	}
	views := make([]RoleView, 0, len(roles))
	for _, r := range roles {
		v, err := s.view(ctx, r)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id primitive.ObjectID, req UpdateRoleRequest) (*Role, error) {
	existing, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get role")
	}

	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = existing.Key
	}
	if key != existing.Key {
		if !roleKeyPattern.MatchString(key) {
			return nil, apperr.Validation("key", "role key must be lower-case letters, digits or underscores")
		}
		inUse, err := s.Admins.CountByRole(ctx, existing.Key)
		if err != nil {
			return nil, apperr.Internal("count role holders", err)
		}
		if inUse > 0 {
			return nil, apperr.Validation("key", fmt.Sprintf("role key is held by %d admins and cannot change", inUse))
		}
	}

	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", req.Permissions)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Key = key
	updated.Name = strings.TrimSpace(req.Name)
	updated.Description = req.Description
	updated.Permissions = perms
	updated.UpdatedAt = time.Now()

	if err := s.RoleRepo.Update(ctx, id, &updated); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("key", "role key already exists")
		}
		return nil, notFoundOr(err, "update role")
	}

	changes := map[string]common_models.Change{}
	if existing.Key != updated.Key {
		changes["key"] = common_models.Change{Old: existing.Key, New: updated.Key}
	}
	if existing.Name != updated.Name {
		changes["name"] = common_models.Change{Old: existing.Name, New: updated.Name}
	}
	changes["permissions"] = common_models.Change{Old: existing.Permissions, New: updated.Permissions}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "roles", id.Hex(), changes)

	return &updated, nil
}

// DeleteRole refuses while any admin still holds the key
func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "get role")
	}
	inUse, err := s.Admins.CountByRole(ctx, existing.Key)
	if err != nil {
		return apperr.Internal("count role holders", err)
	}
	if inUse > 0 {
		return apperr.HasDependents("admins", fmt.Sprintf("role is held by %d admins", inUse))
	}
	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete role")
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "roles", id.Hex(), map[string]common_models.Change{
		"key": {Old: existing.Key},
	})
	return nil
}

func (s *RoleServiceImpl) Defaults() []authz.RoleDefinition {
	return authz.DefaultRoles()
}

// SeedDefaults creates a registry entry for every well-known role that lacks one
func (s *RoleServiceImpl) SeedDefaults(ctx context.Context) error {
	for _, def := range authz.DefaultRoles() {
		_, err := s.RoleRepo.FindByKey(ctx, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("look up role %s: %w", def.Key, err)
		}
		now := time.Now()
		role := &Role{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Permissions: def.Permissions,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.RoleRepo.Create(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", def.Key, err)
		}
	}
	return nil
}

func (s *RoleServiceImpl) view(ctx context.Context, r Role) (RoleView, error) {
	inUse, err := s.Admins.CountByRole(ctx, r.Key)
	if err != nil {
		return RoleView{}, apperr.Internal("count role holders", err)
	}
	return RoleView{
		Role:               r,
		DefaultPermissions: authz.DefaultPermissions(r.Key).Keys(),
		InUse:              inUse,
	}, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("role")
	}
	return apperr.Internal(op, err)
}
