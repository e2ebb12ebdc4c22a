package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/access"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/permission"
	"go-marketplace/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RoleLookup finds registry entries for role keys outside the built-in set
type RoleLookup interface {
	Exists(ctx context.Context, roleKey string) (bool, error)
}

type GroupLookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error)
}

type AdminService interface {
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.Admin, error)
	GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	ListAdmins(ctx context.Context, filter ListFilter, page, limit int64) ([]models.Admin, int64, error)
	UpdateAdmin(ctx context.Context, id primitive.ObjectID, req UpdateAdminRequest) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id primitive.ObjectID) error
	SetGroups(ctx context.Context, id primitive.ObjectID, groupIDs []string) (*models.Admin, error)
	SetPermissions(ctx context.Context, id primitive.ObjectID, keys []string) (*models.Admin, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateProfileRequest) (*models.Admin, error)
	ChangePassword(ctx context.Context, id primitive.ObjectID, req ChangePasswordRequest) error
}

type AdminServiceImpl struct {
	Repo              AdminRepository
	Roles             RoleLookup
	Groups            GroupLookup
	PermissionService permission.PermissionService
	Sessions          access.SessionStore
	AuditService      audit.AuditService
	logger            *zap.Logger
	now               func() time.Time
}

func NewAdminService(
	repo AdminRepository,
	roles RoleLookup,
	groups GroupLookup,
	permissionService permission.PermissionService,
	sessions access.SessionStore,
	auditService audit.AuditService,
	logger *zap.Logger,
) AdminService {
	return &AdminServiceImpl{
		Repo:              repo,
		Roles:             roles,
		Groups:            groups,
		PermissionService: permissionService,
		Sessions:          sessions,
		AuditService:      auditService,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *AdminServiceImpl) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.Admin, error) {
	if err := s.checkRole(ctx, req.Role); err != nil {
		return nil, err
	}
	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", req.Permissions)
	if err != nil {
		return nil, err
	}
	groups, err := s.checkGroups(ctx, req.Groups)
	if err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.now()
	admin := &models.Admin{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  perms,
		Groups:       groups,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("email", "email already registered")
		}
		return nil, apperr.Internal("create admin", err)
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "admins", admin.ID.Hex(), map[string]models.Change{
		"email": {New: admin.Email},
		"role":  {New: admin.Role},
	})
	return admin, nil
}

func (s *AdminServiceImpl) GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get admin")
	}
	return admin, nil
}

func (s *AdminServiceImpl) ListAdmins(ctx context.Context, filter ListFilter, page, limit int64) ([]models.Admin, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	admins, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Internal("list admins", err)
	}
	return admins, total, nil
}

func (s *AdminServiceImpl) UpdateAdmin(ctx context.Context, id primitive.ObjectID, req UpdateAdminRequest) (*models.Admin, error) {
	existing, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	changes := map[string]models.Change{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
		changes["firstName"] = models.Change{Old: existing.FirstName, New: fields["first_name"]}
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
		changes["lastName"] = models.Change{Old: existing.LastName, New: fields["last_name"]}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		fields["email"] = email
		changes["email"] = models.Change{Old: existing.Email, New: email}
	}
	if req.Role != nil && *req.Role != existing.Role {
		if err := s.checkRole(ctx, *req.Role); err != nil {
			return nil, err
		}
		fields["role"] = *req.Role
		changes["role"] = models.Change{Old: existing.Role, New: *req.Role}
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
		changes["isActive"] = models.Change{Old: existing.IsActive, New: *req.IsActive}
	}
	if len(fields) == 0 {
		return existing, nil
	}
	fields["updated_at"] = s.now()

	if err := s.Repo.Update(ctx, id, fields); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("email", "email already registered")
		}
		return nil, notFoundOr(err, "update admin")
	}
	if req.IsActive != nil && !*req.IsActive {
		s.revokeSessions(ctx, id)
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "admins", id.Hex(), changes)
	return s.GetAdmin(ctx, id)
}

// DeleteAdmin soft-deletes the account and drops its sessions. Outstanding
// bearer tokens stop working because the guard refuses deleted accounts.
func (s *AdminServiceImpl) DeleteAdmin(ctx context.Context, id primitive.ObjectID) error {
	if actor := models.ActorFromContext(ctx); actor == id.Hex() {
		return apperr.Validation("id", "admins cannot delete their own account")
	}
	if _, err := s.live(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id, s.now()); err != nil {
		return notFoundOr(err, "delete admin")
	}
	s.revokeSessions(ctx, id)

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "admins", id.Hex(), nil)
	return nil
}

func (s *AdminServiceImpl) SetGroups(ctx context.Context, id primitive.ObjectID, groupIDs []string) (*models.Admin, error) {
	existing, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.checkGroups(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, id, bson.M{"groups": groups, "updated_at": s.now()}); err != nil {
		return nil, notFoundOr(err, "set groups")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionGroup, "admins", id.Hex(), map[string]models.Change{
		"groups": {Old: existing.Groups, New: groups},
	})
	return s.GetAdmin(ctx, id)
}

func (s *AdminServiceImpl) SetPermissions(ctx context.Context, id primitive.ObjectID, keys []string) (*models.Admin, error) {
	existing, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.PermissionService.ValidateKeys(ctx, "permissions", keys)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, id, bson.M{"permissions": perms, "updated_at": s.now()}); err != nil {
		return nil, notFoundOr(err, "set permissions")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "admins", id.Hex(), map[string]models.Change{
		"permissions": {Old: existing.Permissions, New: perms},
	})
	return s.GetAdmin(ctx, id)
}

func (s *AdminServiceImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateProfileRequest) (*models.Admin, error) {
	first, last, email := req.FirstName, req.LastName, req.Email
	return s.UpdateAdmin(ctx, id, UpdateAdminRequest{FirstName: &first, LastName: &last, Email: &email})
}

// ChangePassword verifies the current password, then signs the admin out everywhere
func (s *AdminServiceImpl) ChangePassword(ctx context.Context, id primitive.ObjectID, req ChangePasswordRequest) error {
	admin, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(admin.PasswordHash, req.CurrentPassword) {
		return apperr.Validation("currentPassword", "current password is incorrect")
	}
	if req.CurrentPassword == req.NewPassword {
		return apperr.Validation("newPassword", "new password must differ from the current one")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.Repo.Update(ctx, id, bson.M{"password_hash": hash, "updated_at": s.now()}); err != nil {
		return notFoundOr(err, "change password")
	}
	s.revokeSessions(ctx, id)

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "admins", id.Hex(), map[string]models.Change{
		"password": {New: "changed"},
	})
	return nil
}

// live loads an admin that has not been soft-deleted
func (s *AdminServiceImpl) live(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get admin")
	}
	if admin.DeletedAt != nil {
		return nil, apperr.NotFound("admin")
	}
	return admin, nil
}

func (s *AdminServiceImpl) checkRole(ctx context.Context, roleKey string) error {
	if authz.IsKnownRole(roleKey) {
		return nil
	}
	ok, err := s.Roles.Exists(ctx, roleKey)
	if err != nil {
		return apperr.Internal("look up role", err)
	}
	if !ok {
		return apperr.NotFound("role")
	}
	return nil
}

func (s *AdminServiceImpl) checkGroups(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for _, r := range raw {
		oid, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			return nil, apperr.Validation("groups", "invalid group ID "+r)
		}
		if !seen[oid] {
			seen[oid] = true
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}

	found, err := s.Groups.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load groups", err)
	}
	if len(found) != len(ids) {
		return nil, apperr.NotFound("group")
	}
	return ids, nil
}

func (s *AdminServiceImpl) revokeSessions(ctx context.Context, id primitive.ObjectID) {
	if err := s.Sessions.RevokeAll(ctx, id); err != nil {
		s.logger.Warn("failed to revoke admin sessions", zap.String("adminId", id.Hex()), zap.Error(err))
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("admin")
	}
	return apperr.Internal(op, err)
}
