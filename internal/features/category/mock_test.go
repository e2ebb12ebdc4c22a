package category

import (
	"context"
	"strings"

	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockCategoryRepo keeps categories in memory and enforces the unique
// name (case-insensitive) and slug indexes.
type MockCategoryRepo struct {
	Categories map[primitive.ObjectID]*Category
	order      []primitive.ObjectID
	Writes     int
}

func newMockCategoryRepo() *MockCategoryRepo {
	return &MockCategoryRepo{Categories: map[primitive.ObjectID]*Category{}}
}

func duplicateKey(index string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error index: " + index}}}
}

func (m *MockCategoryRepo) conflict(c *Category) error {
	for id, other := range m.Categories {
		if id == c.ID {
			continue
		}
		if strings.EqualFold(other.Name, c.Name) {
			return duplicateKey("name_1")
		}
		if other.Slug == c.Slug {
			return duplicateKey("slug_1")
		}
	}
	return nil
}

func (m *MockCategoryRepo) Create(ctx context.Context, c *Category) error {
	if err := m.conflict(c); err != nil {
		return err
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	m.Categories[c.ID] = &cp
	m.order = append(m.order, c.ID)
	m.Writes++
	return nil
}

func (m *MockCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	c, ok := m.Categories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	return &cp, nil
}

func (m *MockCategoryRepo) FindByName(ctx context.Context, name string) (*Category, error) {
	for _, c := range m.Categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockCategoryRepo) FindAll(ctx context.Context) ([]Category, error) {
	out := []Category{}
	for _, id := range m.order {
		if c, ok := m.Categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockCategoryRepo) List(ctx context.Context, filter ListFilter) ([]Category, error) {
	all, _ := m.FindAll(ctx)
	out := []Category{}
	for _, c := range all {
		if filter.RootOnly && c.ParentCategory != nil {
			continue
		}
		if filter.Parent != nil && (c.ParentCategory == nil || *c.ParentCategory != *filter.Parent) {
			continue
		}
		if filter.Level != nil && c.Level != *filter.Level {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockCategoryRepo) Update(ctx context.Context, c *Category) error {
	if _, ok := m.Categories[c.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	if err := m.conflict(c); err != nil {
		return err
	}
	cp := *c
	m.Categories[c.ID] = &cp
	m.Writes++
	return nil
}

func (m *MockCategoryRepo) SetParent(ctx context.Context, id primitive.ObjectID, parent *primitive.ObjectID, level int) error {
	c, ok := m.Categories[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.ParentCategory = parent
	c.Level = level
	m.Writes++
	return nil
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.Categories[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.Categories, id)
	m.Writes++
	return nil
}

func (m *MockCategoryRepo) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var n int64
	for _, c := range m.Categories {
		if c.ParentCategory != nil && *c.ParentCategory == id {
			n++
		}
	}
	return n, nil
}

func (m *MockCategoryRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (m *MockCategoryRepo) byName(name string) *Category {
	for _, c := range m.Categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type MockProducts struct {
	Counts map[primitive.ObjectID]int64
}

func (m *MockProducts) CountActiveByCategory(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return m.Counts[id], nil
}

type MockAudit struct {
	Actions []models.AuditAction
}

func (m *MockAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAudit) ListLogs(ctx context.Context, filter audit.LogFilter, page, limit int64) (*audit.LogPage, error) {
	return nil, nil
}
