package category

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"
	"go-marketplace/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ProductCounter interface {
	CountActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*Category, error)
	ListCategories(ctx context.Context, filter ListFilter) ([]Category, error)
	Tree(ctx context.Context) ([]*CategoryNode, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

type CategoryServiceImpl struct {
	Repo         CategoryRepository
	Products     ProductCounter
	AuditService audit.AuditService
	logger       *zap.Logger
	now          func() time.Time
}

func NewCategoryService(repo CategoryRepository, products ProductCounter, auditService audit.AuditService, logger *zap.Logger) CategoryService {
	return &CategoryServiceImpl{
		Repo:         repo,
		Products:     products,
		AuditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	slug, err := deriveSlug(req.Slug, name)
	if err != nil {
		return nil, err
	}
	featured, err := parseIDs("featuredProducts", req.FeaturedProducts)
	if err != nil {
		return nil, err
	}

	parent, level, err := s.placement(ctx, req.ParentCategory)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.now()
	c := &Category{
		Name:             name,
		Slug:             slug,
		Description:      req.Description,
		ParentCategory:   parent,
		Level:            level,
		IsActive:         active,
		SortOrder:        req.SortOrder,
		Image:            req.Image,
		Icon:             req.Icon,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		Keywords:         cleanKeywords(req.Keywords),
		FeaturedProducts: featured,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, writeError(err, "create category")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "categories", c.ID.Hex(), map[string]models.Change{
		"name":  {New: c.Name},
		"level": {New: c.Level},
	})
	return c, nil
}

func (s *CategoryServiceImpl) GetCategory(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category", "get category")
	}
	return c, nil
}

func (s *CategoryServiceImpl) ListCategories(ctx context.Context, filter ListFilter) ([]Category, error) {
	categories, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("list categories", err)
	}
	return categories, nil
}

// Tree nests every category under its parent. Categories whose parent no
// longer exists are shown as roots.
func (s *CategoryServiceImpl) Tree(ctx context.Context) ([]*CategoryNode, error) {
	all, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal("list categories", err)
	}
	return buildTree(all), nil
}

func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, id primitive.ObjectID, req UpdateCategoryRequest) (*Category, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category", "get category")
	}
	updated := *existing
	changes := map[string]models.Change{}

	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
		if updated.Name == "" {
			return nil, apperr.Validation("name", "name is required")
		}
		changes["name"] = models.Change{Old: existing.Name, New: updated.Name}
	}
	switch {
	case req.Slug != nil:
		slug, err := deriveSlug(*req.Slug, updated.Name)
		if err != nil {
			return nil, err
		}
		updated.Slug = slug
	case req.Name != nil:
		// slug follows the name unless set explicitly
		slug, err := deriveSlug("", updated.Name)
		if err != nil {
			return nil, err
		}
		updated.Slug = slug
	}
	if updated.Slug != existing.Slug {
		changes["slug"] = models.Change{Old: existing.Slug, New: updated.Slug}
	}

	if req.ParentCategory.Set {
		if req.ParentCategory.Value == id.Hex() {
			return nil, apperr.Validation("parentCategory", "a category cannot be its own parent")
		}
		parent, level, err := s.placement(ctx, req.ParentCategory.Value)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			if err := s.checkNotDescendant(ctx, id, *parent); err != nil {
				return nil, err
			}
		}
		updated.ParentCategory = parent
		updated.Level = level
		changes["parentCategory"] = models.Change{Old: existing.ParentCategory, New: parent}
		changes["level"] = models.Change{Old: existing.Level, New: level}
	}

	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
		changes["isActive"] = models.Change{Old: existing.IsActive, New: updated.IsActive}
	}
	if req.SortOrder != nil {
		updated.SortOrder = *req.SortOrder
	}
	if req.Image != nil {
		updated.Image = *req.Image
	}
	if req.Icon != nil {
		updated.Icon = *req.Icon
	}
	if req.MetaTitle != nil {
		updated.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		updated.MetaDescription = *req.MetaDescription
	}
	if req.Keywords != nil {
		updated.Keywords = cleanKeywords(req.Keywords)
	}
	if req.FeaturedProducts != nil {
		featured, err := parseIDs("featuredProducts", req.FeaturedProducts)
		if err != nil {
			return nil, err
		}
		updated.FeaturedProducts = featured
	}
	updated.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("category")
		}
		return nil, writeError(err, "update category")
	}

	if updated.Level != existing.Level {
		s.warnStaleDescendants(ctx, &updated, existing.Level)
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "categories", id.Hex(), changes)
	return &updated, nil
}

// DeleteCategory refuses while children or live products reference the category
func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "category", "get category")
	}

	children, err := s.Repo.CountChildren(ctx, id)
	if err != nil {
		return apperr.Internal("count child categories", err)
	}
	if children > 0 {
		return apperr.ErrHasChildren
	}
	products, err := s.Products.CountActiveByCategory(ctx, id)
	if err != nil {
		return apperr.Internal("count category products", err)
	}
	if products > 0 {
		return apperr.ErrHasProducts
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "category", "delete category")
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "categories", id.Hex(), map[string]models.Change{
		"name": {Old: existing.Name},
	})
	return nil
}

// placement resolves a parent reference into the parent id and the level a
// child of it would have. An empty reference places the category at the root.
func (s *CategoryServiceImpl) placement(ctx context.Context, parentRef string) (*primitive.ObjectID, int, error) {
	parentRef = strings.TrimSpace(parentRef)
	if parentRef == "" {
		return nil, 0, nil
	}
	parentID, err := primitive.ObjectIDFromHex(parentRef)
	if err != nil {
		return nil, 0, apperr.Validation("parentCategory", "invalid parent category ID")
	}
	parent, err := s.Repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, 0, notFoundOr(err, "parentCategory", "get parent category")
	}

	level := parent.Level + 1
	if level > MaxLevel {
		return nil, 0, apperr.ErrMaxDepthExceeded
	}
	return &parent.ID, level, nil
}

// checkNotDescendant walks up from parentID and fails if it reaches id
func (s *CategoryServiceImpl) checkNotDescendant(ctx context.Context, id, parentID primitive.ObjectID) error {
	current := &parentID
	for steps := 0; current != nil && steps <= MaxLevel+1; steps++ {
		if *current == id {
			return apperr.Validation("parentCategory", "a category cannot be moved under its own descendant")
		}
		c, err := s.Repo.FindByID(ctx, *current)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return apperr.Internal("walk category ancestors", err)
		}
		current = c.ParentCategory
	}
	return nil
}

// warnStaleDescendants flags that children keep their old levels; moving a
// subtree does not relevel it.
func (s *CategoryServiceImpl) warnStaleDescendants(ctx context.Context, c *Category, oldLevel int) {
	children, err := s.Repo.CountChildren(ctx, c.ID)
	if err != nil || children == 0 {
		return
	}
	s.logger.Warn("category moved with children; descendant levels not recomputed",
		zap.String("categoryId", c.ID.Hex()),
		zap.Int("oldLevel", oldLevel),
		zap.Int("newLevel", c.Level),
		zap.Int64("children", children),
	)
}

func buildTree(all []Category) []*CategoryNode {
	nodes := make(map[primitive.ObjectID]*CategoryNode, len(all))
	for i := range all {
		nodes[all[i].ID] = &CategoryNode{Category: all[i], Children: []*CategoryNode{}}
	}

	roots := []*CategoryNode{}
	for i := range all {
		n := nodes[all[i].ID]
		if p := all[i].ParentCategory; p != nil {
			if parent, ok := nodes[*p]; ok && *p != all[i].ID {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	var sortNodes func([]*CategoryNode)
	sortNodes = func(list []*CategoryNode) {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].SortOrder != list[j].SortOrder {
				return list[i].SortOrder < list[j].SortOrder
			}
			return list[i].Name < list[j].Name
		})
		for _, n := range list {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)
	return roots
}

func deriveSlug(explicit, name string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = name
	}
	slug := utils.Slugify(source)
	if slug == "" {
		return "", apperr.Validation("slug", "slug cannot be derived from name")
	}
	return slug, nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out
}

func parseIDs(field string, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			return nil, apperr.Validation(field, "invalid ID "+r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeError(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "slug") {
			return apperr.Conflict("slug", "category slug already exists")
		}
		return apperr.ErrDuplicateName
	}
	return apperr.Internal(op, err)
}

func notFoundOr(err error, entity, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(entity)
	}
	return apperr.Internal(op, err)
}
