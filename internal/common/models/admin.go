package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a dashboard operator account. Accounts are soft-deleted only.
type Admin struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName    string               `bson:"first_name" json:"firstName"`
	LastName     string               `bson:"last_name" json:"lastName"`
	Email        string               `bson:"email" json:"email"` // stored lower-cased
	PasswordHash string               `bson:"password_hash" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Permissions  []string             `bson:"permissions" json:"permissions"` // direct grants
	Groups       []primitive.ObjectID `bson:"groups" json:"groups"`
	IsActive     bool                 `bson:"is_active" json:"isActive"`
	DeletedAt    *time.Time           `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	LastLogin    *time.Time           `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Usable reports whether the account may authenticate at all.
func (a *Admin) Usable() bool {
	return a != nil && a.IsActive && a.DeletedAt == nil
}

// Group bundles permission grants shared by several admins.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
