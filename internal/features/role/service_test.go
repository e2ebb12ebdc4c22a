package role

import (
	"context"
	"testing"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	common_models "go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockRoleRepo struct {
	Roles map[primitive.ObjectID]*Role
}

func newMockRoleRepo() *MockRoleRepo {
	return &MockRoleRepo{Roles: map[primitive.ObjectID]*Role{}}
}

func (m *MockRoleRepo) Create(ctx context.Context, role *Role) error {
	for _, r := range m.Roles {
		if r.Key == role.Key {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
	}
	role.ID = primitive.NewObjectID()
	cp := *role
	m.Roles[role.ID] = &cp
	return nil
}

func (m *MockRoleRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Role, error) {
	r, ok := m.Roles[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (m *MockRoleRepo) FindByKey(ctx context.Context, key string) (*Role, error) {
	for _, r := range m.Roles {
		if r.Key == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockRoleRepo) List(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, r := range m.Roles {
		out = append(out, *r)
	}
	return out, nil
}

func (m *MockRoleRepo) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.FindByKey(ctx, key)
	return err == nil, nil
}

func (m *MockRoleRepo) Update(ctx context.Context, id primitive.ObjectID, role *Role) error {
	if _, ok := m.Roles[id]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *role
	m.Roles[id] = &cp
	return nil
}

func (m *MockRoleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.Roles[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.Roles, id)
	return nil
}

func (m *MockRoleRepo) EnsureIndexes(ctx context.Context) error { return nil }

type MockAdminCounter struct {
	ByRole map[string]int64
}

func (m *MockAdminCounter) CountByRole(ctx context.Context, roleKey string) (int64, error) {
	return m.ByRole[roleKey], nil
}

type MockAudit struct {
	Actions []common_models.AuditAction
}

func (m *MockAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAudit) ListLogs(ctx context.Context, filter audit.LogFilter, page, limit int64) (*audit.LogPage, error) {
	return nil, nil
}

// MockPermissions accepts the wildcard and anything in Known
type MockPermissions struct {
	permission.PermissionService
	Known map[string]bool
}

func (m *MockPermissions) ValidateKeys(ctx context.Context, field string, keys []string) ([]string, error) {
	set := authz.NewSet()
	for _, k := range keys {
		key := authz.Parse(k)
		if !key.IsAny() && !m.Known[key.Name()] {
			return nil, apperr.Validation(field, "unknown permission keys: "+k)
		}
		set.Add(key)
	}
	return set.Keys(), nil
}

func newService(counts map[string]int64) (*RoleServiceImpl, *MockRoleRepo, *MockAudit) {
	repo := newMockRoleRepo()
	audit := &MockAudit{}
	perms := &MockPermissions{Known: map[string]bool{"user:read": true, "order:read": true}}
	svc := NewRoleService(repo, &MockAdminCounter{ByRole: counts}, audit, perms).(*RoleServiceImpl)
	return svc, repo, audit
}

func TestCreateRoleValidatesPermissions(t *testing.T) {
	svc, _, audit := newService(nil)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleRequest{Key: "auditor", Name: "Auditor", Permissions: []string{"order:read", "user:read", "order:read"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"order:read", "user:read"}, role.Permissions)
	assert.Equal(t, []common_models.AuditAction{common_models.AuditActionCreate}, audit.Actions)

	_, err = svc.CreateRole(ctx, CreateRoleRequest{Key: "other", Name: "Other", Permissions: []string{"nope:read"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "permissions", apperr.FieldOf(err))

	_, err = svc.CreateRole(ctx, CreateRoleRequest{Key: "all", Name: "All", Permissions: []string{"*"}})
	assert.NoError(t, err)
}

func TestCreateRoleRejectsBadAndDuplicateKeys(t *testing.T) {
	svc, _, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, CreateRoleRequest{Key: "Bad Key", Name: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateRole(ctx, CreateRoleRequest{Key: "auditor", Name: "x"})
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, CreateRoleRequest{Key: "auditor", Name: "y"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRoleKeyImmutableWhileReferenced(t *testing.T) {
	svc, _, _ := newService(map[string]int64{"support": 2})
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleRequest{Key: "support", Name: "Support"})
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, role.ID, UpdateRoleRequest{Key: "helpdesk", Name: "Helpdesk"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "key", apperr.FieldOf(err))

	// name and permissions stay editable
	updated, err := svc.UpdateRole(ctx, role.ID, UpdateRoleRequest{Name: "Helpdesk", Permissions: []string{"user:read"}})
	require.NoError(t, err)
	assert.Equal(t, "support", updated.Key)
	assert.Equal(t, "Helpdesk", updated.Name)

	err = svc.DeleteRole(ctx, role.ID)
	assert.Equal(t, apperr.KindHasDependents, apperr.KindOf(err))
}

func TestUnreferencedRoleCanBeRenamedAndDeleted(t *testing.T) {
	svc, repo, _ := newService(nil)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleRequest{Key: "temp", Name: "Temp"})
	require.NoError(t, err)

	updated, err := svc.UpdateRole(ctx, role.ID, UpdateRoleRequest{Key: "temporary", Name: "Temp"})
	require.NoError(t, err)
	assert.Equal(t, "temporary", updated.Key)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	assert.Empty(t, repo.Roles)

	err = svc.DeleteRole(ctx, role.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetRoleReportsCodeDefaults(t *testing.T) {
	svc, _, _ := newService(map[string]int64{"support": 3})
	ctx := context.Background()

	// stored permissions are descriptive; the view shows what resolution applies
	role, err := svc.CreateRole(ctx, CreateRoleRequest{Key: "support", Name: "Support", Permissions: []string{"*"}})
	require.NoError(t, err)

	view, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"order:read", "user:read"}, view.DefaultPermissions)
	assert.Equal(t, int64(3), view.InUse)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	svc, repo, _ := newService(nil)
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))
	require.NoError(t, svc.SeedDefaults(ctx))
	assert.Len(t, repo.Roles, len(authz.DefaultRoles()))

	_, err := repo.FindByKey(ctx, authz.RoleSuperAdmin)
	assert.NoError(t, err)
}
