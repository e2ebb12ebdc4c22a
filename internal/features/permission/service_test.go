package permission

import (
	"context"
	"testing"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	common_models "go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockPermissionRepo struct {
	ByKey map[string]*Permission
}

func newMockRepo(keys ...string) *MockPermissionRepo {
	m := &MockPermissionRepo{ByKey: map[string]*Permission{}}
	for _, k := range keys {
		m.ByKey[k] = &Permission{ID: primitive.NewObjectID(), Key: k}
	}
	return m
}

func (m *MockPermissionRepo) Create(ctx context.Context, p *Permission) error {
	if _, ok := m.ByKey[p.Key]; ok {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	m.ByKey[p.Key] = &cp
	return nil
}

func (m *MockPermissionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Permission, error) {
	for _, p := range m.ByKey {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockPermissionRepo) FindByKey(ctx context.Context, key string) (*Permission, error) {
	if p, ok := m.ByKey[key]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockPermissionRepo) List(ctx context.Context, category string) ([]Permission, error) {
	var out []Permission
	for _, p := range m.ByKey {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockPermissionRepo) ExistingKeys(ctx context.Context, keys []string) ([]string, error) {
	var out []string
	for _, k := range keys {
		if _, ok := m.ByKey[k]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *MockPermissionRepo) Update(ctx context.Context, id primitive.ObjectID, p *Permission) error {
	for k, existing := range m.ByKey {
		if existing.ID == id {
			cp := *p
			m.ByKey[k] = &cp
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockPermissionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for k, p := range m.ByKey {
		if p.ID == id {
			delete(m.ByKey, k)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockPermissionRepo) Upsert(ctx context.Context, p *Permission) error {
	if existing, ok := m.ByKey[p.Key]; ok {
		existing.Name = p.Name
		return nil
	}
	return m.Create(ctx, p)
}

func (m *MockPermissionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type nopAudit struct{}

func (nopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(ctx context.Context, filter audit.LogFilter, page, limit int64) (*audit.LogPage, error) {
	return nil, nil
}

func TestValidateKeys(t *testing.T) {
	svc := NewPermissionService(newMockRepo("user:read", "order:read"), nopAudit{})
	ctx := context.Background()

	keys, err := svc.ValidateKeys(ctx, "permissions", []string{"user:read", " order:read ", "user:read", "*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "order:read", "user:read"}, keys)

	_, err = svc.ValidateKeys(ctx, "permissions", []string{"user:read", "ghost:read"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "ghost:read")

	_, err = svc.ValidateKeys(ctx, "permissions", []string{"NotAKey"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	keys, err = svc.ValidateKeys(ctx, "permissions", nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCreatePermission(t *testing.T) {
	svc := NewPermissionService(newMockRepo("user:read"), nopAudit{})
	ctx := context.Background()

	p, err := svc.CreatePermission(ctx, CreatePermissionRequest{Key: "report:export", Name: "Export reports"})
	require.NoError(t, err)
	assert.Equal(t, "report:export", p.Key)

	_, err = svc.CreatePermission(ctx, CreatePermissionRequest{Key: "user:read", Name: "dup"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.CreatePermission(ctx, CreatePermissionRequest{Key: "*", Name: "everything"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateKeepsKey(t *testing.T) {
	repo := newMockRepo("user:read")
	svc := NewPermissionService(repo, nopAudit{})
	ctx := context.Background()

	id := repo.ByKey["user:read"].ID
	p, err := svc.UpdatePermission(ctx, id, UpdatePermissionRequest{Name: "Read users", Category: "users"})
	require.NoError(t, err)
	assert.Equal(t, "user:read", p.Key)
	assert.Equal(t, "Read users", p.Name)

	_, err = svc.UpdatePermission(ctx, primitive.NewObjectID(), UpdatePermissionRequest{Name: "x"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteLeavesKeyUnknown(t *testing.T) {
	repo := newMockRepo("user:read")
	svc := NewPermissionService(repo, nopAudit{})
	ctx := context.Background()

	require.NoError(t, svc.DeletePermission(ctx, repo.ByKey["user:read"].ID))
	_, err := svc.ValidateKeys(ctx, "permissions", []string{"user:read"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSeedBuiltinCoversCatalog(t *testing.T) {
	repo := newMockRepo()
	svc := NewPermissionService(repo, nopAudit{})

	require.NoError(t, svc.SeedBuiltin(context.Background()))
	require.NoError(t, svc.SeedBuiltin(context.Background()))
	assert.Len(t, repo.ByKey, len(authz.BuiltinCatalog))
}
