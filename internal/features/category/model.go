package category

import (
	"bytes"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxLevel is the deepest level a category may sit at; roots are level 0.
const MaxLevel = 3

type Category struct {
	ID               primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name             string               `json:"name" bson:"name"`
	Slug             string               `json:"slug" bson:"slug"`
	Description      string               `json:"description" bson:"description"`
	ParentCategory   *primitive.ObjectID  `json:"parentCategory" bson:"parent_category"`
	Level            int                  `json:"level" bson:"level"`
	IsActive         bool                 `json:"isActive" bson:"is_active"`
	SortOrder        int                  `json:"sortOrder" bson:"sort_order"`
	Image            string               `json:"image,omitempty" bson:"image,omitempty"`
	Icon             string               `json:"icon,omitempty" bson:"icon,omitempty"`
	MetaTitle        string               `json:"metaTitle,omitempty" bson:"meta_title,omitempty"`
	MetaDescription  string               `json:"metaDescription,omitempty" bson:"meta_description,omitempty"`
	Keywords         []string             `json:"keywords" bson:"keywords"`
	FeaturedProducts []primitive.ObjectID `json:"featuredProducts" bson:"featured_products"`
	CreatedAt        time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updated_at"`
}

// CategoryNode is a category with its children, for the tree view
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

type CreateCategoryRequest struct {
	Name             string   `json:"name" validate:"required,max=100"`
	Slug             string   `json:"slug" validate:"max=120"`
	Description      string   `json:"description" validate:"max=2000"`
	ParentCategory   string   `json:"parentCategory"`
	IsActive         *bool    `json:"isActive"`
	SortOrder        int      `json:"sortOrder"`
	Image            string   `json:"image"`
	Icon             string   `json:"icon"`
	MetaTitle        string   `json:"metaTitle" validate:"max=200"`
	MetaDescription  string   `json:"metaDescription" validate:"max=500"`
	Keywords         []string `json:"keywords"`
	FeaturedProducts []string `json:"featuredProducts"`
}

// UpdateCategoryRequest leaves nil fields unchanged. ParentCategory
// distinguishes "absent" from an explicit null, which moves the category to
// the root.
type UpdateCategoryRequest struct {
	Name             *string    `json:"name" validate:"omitempty,max=100"`
	Slug             *string    `json:"slug" validate:"omitempty,max=120"`
	Description      *string    `json:"description" validate:"omitempty,max=2000"`
	ParentCategory   OptionalID `json:"parentCategory"`
	IsActive         *bool      `json:"isActive"`
	SortOrder        *int       `json:"sortOrder"`
	Image            *string    `json:"image"`
	Icon             *string    `json:"icon"`
	MetaTitle        *string    `json:"metaTitle" validate:"omitempty,max=200"`
	MetaDescription  *string    `json:"metaDescription" validate:"omitempty,max=500"`
	Keywords         []string   `json:"keywords"`
	FeaturedProducts []string   `json:"featuredProducts"`
}

// OptionalID is a JSON field that may be absent, null, or a hex id string
type OptionalID struct {
	Set   bool
	Value string
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type ListFilter struct {
	Parent   *primitive.ObjectID
	RootOnly bool
	Level    *int
	IsActive *bool
	Search   string
}

// RawCategoryRecord is one import row before reconciliation. ParentCategory
// may be an id, a name, or a slug.
type RawCategoryRecord struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug,omitempty"`
	Description     string   `json:"description,omitempty"`
	ParentCategory  string   `json:"parentCategory,omitempty"`
	Level           *int     `json:"level,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
	SortOrder       *int     `json:"sortOrder,omitempty"`
	Image           string   `json:"image,omitempty"`
	Icon            string   `json:"icon,omitempty"`
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`

	// Row is the source line for file imports; zero means use the list position.
	Row int `json:"-"`
	// Invalid holds a cell parse problem found by the file parser.
	Invalid string `json:"-"`
}

type ImportError struct {
	Row   int               `json:"row"`
	Error string            `json:"error"`
	Data  RawCategoryRecord `json:"data"`
}

type ImportReport struct {
	Total        int           `json:"total"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	Skipped      int           `json:"skipped"`
	ParentLinked int           `json:"parentLinked"`
	Errors       []ImportError `json:"errors"`
}

type ImportRequest struct {
	Records        []RawCategoryRecord `json:"records" validate:"required"`
	UpdateExisting bool                `json:"updateExisting"`
}
