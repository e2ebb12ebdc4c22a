package admin

type CreateAdminRequest struct {
	FirstName   string   `json:"firstName" validate:"required,max=100"`
	LastName    string   `json:"lastName" validate:"max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
	Groups      []string `json:"groups"`
	IsActive    *bool    `json:"isActive"`
}

// UpdateAdminRequest fields left nil are not changed
type UpdateAdminRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

type SetGroupsRequest struct {
	Groups []string `json:"groups"`
}

type SetPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}
