package authz

import (
	"go-marketplace/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolve computes the effective permission set of admin: the defaults of its
// role, its direct grants and the grants of every group it belongs to.
//
// groups may contain entries the admin is not a member of; they are ignored.
// Group ids with no matching entry contribute nothing, and an unknown role
// contributes nothing.
func Resolve(admin *models.Admin, groups []models.Group) Set {
	if admin == nil {
		return NewSet()
	}

	member := make(map[primitive.ObjectID]struct{}, len(admin.Groups))
	for _, id := range admin.Groups {
		member[id] = struct{}{}
	}

	effective := DefaultPermissions(admin.Role).Union(SetOf(admin.Permissions))
	for _, g := range groups {
		if _, ok := member[g.ID]; !ok {
			continue
		}
		effective = effective.Union(SetOf(g.Permissions))
	}
	return effective
}
