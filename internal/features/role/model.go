package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the manageable registry entry for a role key. Authorization uses
// the code-defined defaults for the key, not Permissions stored here.
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Key         string             `json:"key" bson:"key"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Permissions []string           `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// RoleView adds the defaults the resolver actually applies for the key.
type RoleView struct {
	Role
	DefaultPermissions []string `json:"default_permissions"`
	InUse              int64    `json:"in_use"`
}

type CreateRoleRequest struct {
	Key         string   `json:"key" validate:"required,max=50"`
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest may carry a new key; it is refused while admins hold the role.
type UpdateRoleRequest struct {
	Key         string   `json:"key" validate:"omitempty,max=50"`
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions"`
}
