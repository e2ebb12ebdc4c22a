package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/common/models"
	"go-marketplace/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockAdminFinder struct {
	Admins map[primitive.ObjectID]*models.Admin
	Err    error
}

func (m *MockAdminFinder) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.Admins[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return a, nil
}

type MockGroupFinder struct {
	Groups map[primitive.ObjectID]models.Group
	Calls  int
}

func (m *MockGroupFinder) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	m.Calls++
	var out []models.Group
	for _, id := range ids {
		if g, ok := m.Groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

type MockSessionStore struct {
	Sessions map[string]primitive.ObjectID
	Err      error
}

func (m *MockSessionStore) Create(ctx context.Context, adminID primitive.ObjectID) (string, error) {
	id := primitive.NewObjectID().Hex()
	m.Sessions[id] = adminID
	return id, nil
}

func (m *MockSessionStore) Lookup(ctx context.Context, sessionID string) (primitive.ObjectID, error) {
	if m.Err != nil {
		return primitive.NilObjectID, m.Err
	}
	id, ok := m.Sessions[sessionID]
	if !ok {
		return primitive.NilObjectID, ErrInvalidCredential
	}
	return id, nil
}

func (m *MockSessionStore) Revoke(ctx context.Context, sessionID string) error {
	delete(m.Sessions, sessionID)
	return nil
}

func (m *MockSessionStore) RevokeAll(ctx context.Context, adminID primitive.ObjectID) error {
	for k, v := range m.Sessions {
		if v == adminID {
			delete(m.Sessions, k)
		}
	}
	return nil
}

type fixture struct {
	guard    Guard
	tokens   *utils.TokenIssuer
	admins   *MockAdminFinder
	groups   *MockGroupFinder
	sessions *MockSessionStore
}

func newFixture() *fixture {
	f := &fixture{
		tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
		admins:   &MockAdminFinder{Admins: map[primitive.ObjectID]*models.Admin{}},
		groups:   &MockGroupFinder{Groups: map[primitive.ObjectID]models.Group{}},
		sessions: &MockSessionStore{Sessions: map[string]primitive.ObjectID{}},
	}
	f.guard = NewGuard(NewCredentialVerifier(f.tokens, f.sessions), f.admins, f.groups)
	return f
}

func (f *fixture) addAdmin(role string) *models.Admin {
	a := &models.Admin{ID: primitive.NewObjectID(), Role: role, IsActive: true, Email: "a@example.com"}
	f.admins.Admins[a.ID] = a
	return a
}

func (f *fixture) token(t *testing.T, a *models.Admin) string {
	tok, err := f.tokens.GenerateToken(a.ID, a.Role)
	require.NoError(t, err)
	return tok
}

func TestAuthorizeSupportScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addAdmin(authz.RoleSupport)
	cred := Credential{BearerToken: f.token(t, a)}

	_, err := f.guard.Authorize(ctx, cred, authz.Named("user:write"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	p, err := f.guard.Authorize(ctx, cred, authz.Named("user:read"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, p.Admin.ID)

	// Joining a group takes effect on the next check with the same token
	g := models.Group{ID: primitive.NewObjectID(), Name: "writers", Permissions: []string{"user:write"}}
	f.groups.Groups[g.ID] = g
	a.Groups = append(a.Groups, g.ID)

	p, err = f.guard.Authorize(ctx, cred, authz.Named("user:write"))
	require.NoError(t, err)
	assert.Equal(t, authz.RoleSupport, p.Admin.Role)
	assert.Empty(t, p.Admin.Permissions)
}

func TestAuthorizeWildcardAllowsUncataloguedKeys(t *testing.T) {
	f := newFixture()
	a := f.addAdmin(authz.RoleSuperAdmin)

	for _, key := range []string{"admin:write", "made:up", "category:write"} {
		_, err := f.guard.Authorize(context.Background(), Credential{BearerToken: f.token(t, a)}, authz.Named(key))
		assert.NoError(t, err, key)
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	f := newFixture()
	a := f.addAdmin("retired_role")

	for _, key := range []string{"admin:read", "category:read", "user:read"} {
		_, err := f.guard.Authorize(context.Background(), Credential{BearerToken: f.token(t, a)}, authz.Named(key))
		assert.ErrorIs(t, err, apperr.ErrForbidden, key)
	}
}

func TestAuthorizeDeadIdentityFailsClosed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inactive := f.addAdmin(authz.RoleSuperAdmin)
	inactive.IsActive = false

	deleted := f.addAdmin(authz.RoleSuperAdmin)
	now := time.Now()
	deleted.DeletedAt = &now

	for _, a := range []*models.Admin{inactive, deleted} {
		_, err := f.guard.Authorize(ctx, Credential{BearerToken: f.token(t, a)}, authz.Named("category:read"))
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

		sid, _ := f.sessions.Create(ctx, a.ID)
		_, err = f.guard.Authorize(ctx, Credential{SessionID: sid}, authz.Named("category:read"))
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	}
}

func TestAuthorizeMissingAdminIsUnauthenticated(t *testing.T) {
	f := newFixture()
	ghost := &models.Admin{ID: primitive.NewObjectID(), Role: authz.RoleSuperAdmin}

	_, err := f.guard.Authorize(context.Background(), Credential{BearerToken: f.token(t, ghost)}, authz.Named("admin:read"))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthorizeNoCredential(t *testing.T) {
	f := newFixture()

	_, err := f.guard.Authorize(context.Background(), Credential{}, authz.Named("admin:read"))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.guard.Authorize(context.Background(), Credential{BearerToken: "garbage", SessionID: "nope"}, authz.Named("admin:read"))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthorizeFallsBackToSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addAdmin(authz.RoleManager)
	sid, _ := f.sessions.Create(ctx, a.ID)

	p, err := f.guard.Authorize(ctx, Credential{BearerToken: "expired-or-garbage", SessionID: sid}, authz.Named("category:write"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, p.Admin.ID)
}

func TestAuthorizeTokenWinsOverSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	support := f.addAdmin(authz.RoleSupport)
	root := f.addAdmin(authz.RoleSuperAdmin)
	sid, _ := f.sessions.Create(ctx, root.ID)

	_, err := f.guard.Authorize(ctx, Credential{BearerToken: f.token(t, support), SessionID: sid}, authz.Named("admin:write"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAuthorizeSessionStoreOutageIsInternal(t *testing.T) {
	f := newFixture()
	f.sessions.Err = errors.New("redis: connection refused")

	_, err := f.guard.Authorize(context.Background(), Credential{SessionID: "abc"}, authz.Named("admin:read"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestAuthorizeAdminStoreOutageIsInternal(t *testing.T) {
	f := newFixture()
	a := f.addAdmin(authz.RoleSuperAdmin)
	f.admins.Err = errors.New("server selection timeout")

	_, err := f.guard.Authorize(context.Background(), Credential{BearerToken: f.token(t, a)}, authz.Named("admin:read"))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestAuthorizeDanglingGroupContributesNothing(t *testing.T) {
	f := newFixture()
	a := f.addAdmin(authz.RoleSupport)
	a.Groups = []primitive.ObjectID{primitive.NewObjectID()}

	_, err := f.guard.Authorize(context.Background(), Credential{BearerToken: f.token(t, a)}, authz.Named("tag:write"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestEffectivePermissions(t *testing.T) {
	f := newFixture()
	a := f.addAdmin(authz.RoleSupport)
	a.Permissions = []string{"cms:read"}

	perms, err := f.guard.EffectivePermissions(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cms:read", "order:read", "user:read"}, perms.Keys())
	assert.Equal(t, 0, f.groups.Calls)

	_, err = f.guard.EffectivePermissions(context.Background(), primitive.NewObjectID())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
