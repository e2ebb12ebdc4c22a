package authz

const (
	PermAdminRead     = "admin:read"
	PermAdminWrite    = "admin:write"
	PermRoleRead      = "role:read"
	PermRoleWrite     = "role:write"
	PermGroupRead     = "group:read"
	PermGroupWrite    = "group:write"
	PermUserRead      = "user:read"
	PermUserWrite     = "user:write"
	PermCategoryRead  = "category:read"
	PermCategoryWrite = "category:write"
	PermProductRead   = "product:read"
	PermProductWrite  = "product:write"
	PermOrderRead     = "order:read"
	PermOrderWrite    = "order:write"
	PermBidRead       = "bid:read"
	PermBidWrite      = "bid:write"
	PermEnquiryRead   = "enquiry:read"
	PermEnquiryWrite  = "enquiry:write"
	PermTagRead       = "tag:read"
	PermTagWrite      = "tag:write"
	PermCMSRead       = "cms:read"
	PermCMSWrite      = "cms:write"
	PermDashboardRead = "dashboard:read"
	PermAuditRead     = "audit:read"
)

// CatalogEntry describes a permission key shipped with the deployment.
type CatalogEntry struct {
	Key         string
	Name        string
	Description string
	Category    string
}

// BuiltinCatalog is seeded into the permission store on first start.
var BuiltinCatalog = []CatalogEntry{
	{PermAdminRead, "View admins", "List and inspect admin accounts", "Administration"},
	{PermAdminWrite, "Manage admins", "Create, edit and deactivate admin accounts", "Administration"},
	{PermRoleRead, "View roles", "List roles and permission keys", "Administration"},
	{PermRoleWrite, "Manage roles", "Edit roles and the permission catalog", "Administration"},
	{PermGroupRead, "View groups", "List admin groups", "Administration"},
	{PermGroupWrite, "Manage groups", "Create, edit and delete admin groups", "Administration"},
	{PermAuditRead, "View audit log", "Read the change history", "Administration"},
	{PermUserRead, "View users", "List marketplace users", "Users"},
	{PermUserWrite, "Manage users", "Edit and block marketplace users", "Users"},
	{PermCategoryRead, "View categories", "Browse the category tree", "Catalog"},
	{PermCategoryWrite, "Manage categories", "Create, edit, delete and import categories", "Catalog"},
	{PermProductRead, "View products", "Browse products", "Catalog"},
	{PermProductWrite, "Manage products", "Create and edit products", "Catalog"},
	{PermTagRead, "View tags", "Browse tags", "Catalog"},
	{PermTagWrite, "Manage tags", "Create and edit tags", "Catalog"},
	{PermOrderRead, "View orders", "Browse orders", "Sales"},
	{PermOrderWrite, "Manage orders", "Update order state", "Sales"},
	{PermBidRead, "View bids", "Browse bids", "Sales"},
	{PermBidWrite, "Manage bids", "Accept and reject bids", "Sales"},
	{PermEnquiryRead, "View enquiries", "Browse enquiries", "Sales"},
	{PermEnquiryWrite, "Manage enquiries", "Answer and close enquiries", "Sales"},
	{PermCMSRead, "View content", "Read CMS sections", "Content"},
	{PermCMSWrite, "Manage content", "Edit CMS sections", "Content"},
	{PermDashboardRead, "View dashboard", "Read dashboard analytics", "Dashboard"},
}
