package access

import (
	"context"
	"errors"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Credential is what a request presents. Either field may be empty.
type Credential struct {
	BearerToken string
	SessionID   string
}

// Principal is an authenticated admin together with the permissions that
// were resolved for this request.
type Principal struct {
	Admin       *models.Admin
	Permissions authz.Set
}

type AdminFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type GroupFinder interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error)
}

type Guard interface {
	// Authorize authenticates cred and checks it against required. Every
	// protected operation calls it before doing any work.
	Authorize(ctx context.Context, cred Credential, required authz.Key) (*Principal, error)
	// Authenticate identifies the caller without a permission check.
	Authenticate(ctx context.Context, cred Credential) (*Principal, error)
	EffectivePermissions(ctx context.Context, adminID primitive.ObjectID) (authz.Set, error)
}

type GuardImpl struct {
	verifier Verifier
	admins   AdminFinder
	groups   GroupFinder
}

func NewGuard(verifier Verifier, admins AdminFinder, groups GroupFinder) Guard {
	return &GuardImpl{
		verifier: verifier,
		admins:   admins,
		groups:   groups,
	}
}

func (g *GuardImpl) Authorize(ctx context.Context, cred Credential, required authz.Key) (*Principal, error) {
	principal, err := g.Authenticate(ctx, cred)
	if err != nil {
		return nil, err
	}
	if !principal.Permissions.Allows(required) {
		return nil, apperr.ErrForbidden
	}
	return principal, nil
}

func (g *GuardImpl) Authenticate(ctx context.Context, cred Credential) (*Principal, error) {
	adminID, err := g.identify(ctx, cred)
	if err != nil {
		return nil, err
	}

	admin, err := g.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, apperr.Internal("load admin", err)
	}
	if !admin.Usable() {
		return nil, apperr.ErrUnauthenticated
	}

	perms, err := g.resolve(ctx, admin)
	if err != nil {
		return nil, err
	}
	return &Principal{Admin: admin, Permissions: perms}, nil
}

func (g *GuardImpl) EffectivePermissions(ctx context.Context, adminID primitive.ObjectID) (authz.Set, error) {
	admin, err := g.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return authz.Set{}, apperr.NotFound("admin")
		}
		return authz.Set{}, apperr.Internal("load admin", err)
	}
	return g.resolve(ctx, admin)
}

// identify tries the bearer token, then the session. The first method that
// verifies wins; a verified token is never second-guessed by the session.
func (g *GuardImpl) identify(ctx context.Context, cred Credential) (primitive.ObjectID, error) {
	if cred.BearerToken != "" {
		id, err := g.verifier.VerifyBearerToken(cred.BearerToken)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrInvalidCredential) {
			return primitive.NilObjectID, apperr.Internal("verify token", err)
		}
	}
	if cred.SessionID != "" {
		id, err := g.verifier.VerifySession(ctx, cred.SessionID)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrInvalidCredential) {
			return primitive.NilObjectID, apperr.Internal("verify session", err)
		}
	}
	return primitive.NilObjectID, apperr.ErrUnauthenticated
}

func (g *GuardImpl) resolve(ctx context.Context, admin *models.Admin) (authz.Set, error) {
	var groups []models.Group
	if len(admin.Groups) > 0 {
		found, err := g.groups.FindByIDs(ctx, admin.Groups)
		if err != nil {
			return authz.Set{}, apperr.Internal("load groups", err)
		}
		groups = found
	}
	return authz.Resolve(admin, groups), nil
}
