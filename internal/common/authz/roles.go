package authz

import "sort"

// Well-known role keys. Their default permissions are part of the deployment
// and are not editable at runtime.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupport    = "support"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
)

type RoleDefinition struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

var defaultRoles = map[string]RoleDefinition{
	RoleSuperAdmin: {
		Key:         RoleSuperAdmin,
		Name:        "Super Admin",
		Description: "Unrestricted access",
		Permissions: []string{wildcard},
	},
	RoleAdmin: {
		Key:         RoleAdmin,
		Name:        "Admin",
		Description: "Manages the marketplace and other admins",
		Permissions: []string{
			PermAdminRead, PermAdminWrite, PermRoleRead, PermGroupRead, PermGroupWrite,
			PermUserRead, PermUserWrite, PermCategoryRead, PermCategoryWrite,
			PermProductRead, PermProductWrite, PermOrderRead, PermOrderWrite,
			PermBidRead, PermBidWrite, PermEnquiryRead, PermEnquiryWrite,
			PermTagRead, PermTagWrite, PermCMSRead, PermCMSWrite,
			PermDashboardRead, PermAuditRead,
		},
	},
	RoleManager: {
		Key:         RoleManager,
		Name:        "Manager",
		Description: "Runs catalog and order operations",
		Permissions: []string{
			PermUserRead, PermCategoryRead, PermCategoryWrite, PermProductRead, PermProductWrite,
			PermOrderRead, PermOrderWrite, PermBidRead, PermBidWrite,
			PermEnquiryRead, PermEnquiryWrite, PermTagRead, PermTagWrite, PermDashboardRead,
		},
	},
	RoleSupport: {
		Key:         RoleSupport,
		Name:        "Support",
		Description: "Looks up customers and their orders",
		Permissions: []string{PermUserRead, PermOrderRead},
	},
	RoleEditor: {
		Key:         RoleEditor,
		Name:        "Editor",
		Description: "Maintains site content and tags",
		Permissions: []string{PermCMSRead, PermCMSWrite, PermTagRead, PermTagWrite, PermCategoryRead, PermProductRead},
	},
	RoleViewer: {
		Key:         RoleViewer,
		Name:        "Viewer",
		Description: "Read-only dashboard access",
		Permissions: []string{PermDashboardRead, PermCategoryRead, PermProductRead, PermOrderRead},
	},
}

// DefaultPermissions returns the code-defined permission set of roleKey.
// Unknown roles get an empty set.
func DefaultPermissions(roleKey string) Set {
	def, ok := defaultRoles[roleKey]
	if !ok {
		return NewSet()
	}
	return SetOf(def.Permissions)
}

func IsKnownRole(roleKey string) bool {
	_, ok := defaultRoles[roleKey]
	return ok
}

// DefaultRoles lists the well-known roles ordered by key.
func DefaultRoles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(defaultRoles))
	for _, def := range defaultRoles {
		perms := make([]string, len(def.Permissions))
		copy(perms, def.Permissions)
		def.Permissions = perms
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
