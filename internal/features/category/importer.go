package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ImportRecorder receives per-import totals; *metrics.Metrics satisfies it
type ImportRecorder interface {
	ObserveImport(created, updated, skipped, linked, failed int, seconds float64)
}

type Importer interface {
	Import(ctx context.Context, records []RawCategoryRecord, updateExisting bool) (*ImportReport, error)
}

type ImporterImpl struct {
	Repo         CategoryRepository
	AuditService audit.AuditService
	Recorder     ImportRecorder
	logger       *zap.Logger
	now          func() time.Time
}

func NewImporter(repo CategoryRepository, auditService audit.AuditService, recorder ImportRecorder, logger *zap.Logger) Importer {
	return &ImporterImpl{
		Repo:         repo,
		AuditService: auditService,
		Recorder:     recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// indexEntry is what the import knows about one category. row is zero for
// categories that existed before the import and were not touched by it.
type indexEntry struct {
	id     primitive.ObjectID
	name   string
	slug   string
	parent *primitive.ObjectID
	level  int
	row    int
}

// importIndex maps normalized names, slugs and ids to categories. It is
// built once per import, grows during materialize and is only read by
// linkParents.
type importIndex struct {
	byName map[string]*indexEntry
	bySlug map[string]*indexEntry
	byID   map[primitive.ObjectID]*indexEntry
}

func newImportIndex(existing []Category) *importIndex {
	idx := &importIndex{
		byName: make(map[string]*indexEntry, len(existing)),
		bySlug: make(map[string]*indexEntry, len(existing)),
		byID:   make(map[primitive.ObjectID]*indexEntry, len(existing)),
	}
	for i := range existing {
		idx.add(entryFor(&existing[i], 0))
	}
	return idx
}

func entryFor(c *Category, row int) *indexEntry {
	return &indexEntry{id: c.ID, name: c.Name, slug: c.Slug, parent: c.ParentCategory, level: c.Level, row: row}
}

func (idx *importIndex) add(e *indexEntry) {
	idx.byName[normalize(e.name)] = e
	idx.bySlug[normalize(e.slug)] = e
	idx.byID[e.id] = e
}

// match finds a category by name, then by slug
func (idx *importIndex) match(name, slug string) *indexEntry {
	if e, ok := idx.byName[normalize(name)]; ok {
		return e
	}
	if e, ok := idx.bySlug[normalize(slug)]; ok {
		return e
	}
	return nil
}

// resolve looks a parent reference up as an id, a name or a slug
func (idx *importIndex) resolve(ref string) *indexEntry {
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		if e, ok := idx.byID[id]; ok {
			return e
		}
	}
	if e, ok := idx.byName[normalize(ref)]; ok {
		return e
	}
	if e, ok := idx.bySlug[normalize(ref)]; ok {
		return e
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// materialized is a record that produced or refreshed a category in the first phase
type materialized struct {
	row    int
	record RawCategoryRecord
	entry  *indexEntry
}

func (i *ImporterImpl) Import(ctx context.Context, records []RawCategoryRecord, updateExisting bool) (*ImportReport, error) {
	started := i.now()

	existing, err := i.Repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal("load categories", err)
	}
	idx := newImportIndex(existing)
	report := &ImportReport{Total: len(records), Errors: []ImportError{}}

	touched, err := i.materialize(ctx, records, updateExisting, idx, report)
	if err != nil {
		return nil, err
	}
	if err := i.linkParents(ctx, touched, idx, report); err != nil {
		return nil, err
	}

	elapsed := i.now().Sub(started)
	if i.Recorder != nil {
		i.Recorder.ObserveImport(report.Created, report.Updated, report.Skipped, report.ParentLinked, len(report.Errors), elapsed.Seconds())
	}
	i.logger.Info("category import finished",
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("parentLinked", report.ParentLinked),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("took", elapsed),
	)
	_ = i.AuditService.LogChange(ctx, models.AuditActionImport, "categories", "", map[string]models.Change{
		"created":      {New: report.Created},
		"updated":      {New: report.Updated},
		"skipped":      {New: report.Skipped},
		"parentLinked": {New: report.ParentLinked},
		"errors":       {New: len(report.Errors)},
	})
	return report, nil
}

// materialize creates or updates one category per record without touching
// parent links. Levels written here are provisional.
func (i *ImporterImpl) materialize(ctx context.Context, records []RawCategoryRecord, updateExisting bool, idx *importIndex, report *ImportReport) ([]materialized, error) {
	var touched []materialized
	for n, rec := range records {
		row := rec.Row
		if row == 0 {
			row = n + 1
		}
		fail := func(msg string) {
			report.Errors = append(report.Errors, ImportError{Row: row, Error: msg, Data: rec})
		}

		if rec.Invalid != "" {
			fail(rec.Invalid)
			continue
		}
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			fail("name is required")
			continue
		}
		slug, err := deriveSlug(rec.Slug, name)
		if err != nil {
			fail(err.Error())
			continue
		}

		if found := idx.match(name, slug); found != nil {
			if !updateExisting {
				report.Skipped++
				continue
			}
			current, err := i.Repo.FindByID(ctx, found.id)
			if err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					fail("category disappeared during import")
					continue
				}
				return nil, apperr.Internal("load category", err)
			}
			applyRecord(current, rec, name, slug)
			current.UpdatedAt = i.now()
			if err := i.Repo.Update(ctx, current); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					fail(writeError(err, "").Error())
					continue
				}
				return nil, apperr.Internal("update category", err)
			}
			report.Updated++

			if found.row == 0 {
				found.row = row
			}
			found.name, found.slug, found.level = current.Name, current.Slug, current.Level
			idx.add(found)
			touched = append(touched, materialized{row: row, record: rec, entry: found})
			continue
		}

		now := i.now()
		c := &Category{
			IsActive:         true,
			Keywords:         []string{},
			FeaturedProducts: []primitive.ObjectID{},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		applyRecord(c, rec, name, slug)
		if err := i.Repo.Create(ctx, c); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				fail(writeError(err, "").Error())
				continue
			}
			return nil, apperr.Internal("create category", err)
		}
		report.Created++

		entry := entryFor(c, row)
		idx.add(entry)
		touched = append(touched, materialized{row: row, record: rec, entry: entry})
	}
	return touched, nil
}

// applyRecord copies the non-parent fields of rec onto c
func applyRecord(c *Category, rec RawCategoryRecord, name, slug string) {
	c.Name = name
	c.Slug = slug
	if rec.Description != "" {
		c.Description = rec.Description
	}
	if rec.Level != nil {
		c.Level = *rec.Level
	}
	if rec.IsActive != nil {
		c.IsActive = *rec.IsActive
	}
	if rec.SortOrder != nil {
		c.SortOrder = *rec.SortOrder
	}
	if rec.Image != "" {
		c.Image = rec.Image
	}
	if rec.Icon != "" {
		c.Icon = rec.Icon
	}
	if rec.MetaTitle != "" {
		c.MetaTitle = rec.MetaTitle
	}
	if rec.MetaDescription != "" {
		c.MetaDescription = rec.MetaDescription
	}
	if rec.Keywords != nil {
		c.Keywords = cleanKeywords(rec.Keywords)
	}
}

// linkParents resolves parent references of the materialized records and
// settles every touched category's level by walking its parent chain. The
// depth limit of interactive edits is not applied here. Unresolvable parents
// leave the child where it is.
func (i *ImporterImpl) linkParents(ctx context.Context, touched []materialized, idx *importIndex, report *ImportReport) error {
	for _, m := range touched {
		ref := strings.TrimSpace(m.record.ParentCategory)
		if ref == "" {
			continue
		}
		parent := idx.resolve(ref)
		if parent == nil {
			found, err := i.lookupParent(ctx, ref)
			if err != nil {
				return err
			}
			if found == nil {
				continue
			}
			parent = entryFor(found, 0)
			idx.byID[parent.id] = parent
		}
		if parent.id == m.entry.id {
			report.Errors = append(report.Errors, ImportError{Row: m.row, Error: "category cannot be its own parent", Data: m.record})
			continue
		}
		if idx.reaches(parent, m.entry.id) {
			report.Errors = append(report.Errors, ImportError{Row: m.row, Error: fmt.Sprintf("parent %q would create a cycle", ref), Data: m.record})
			continue
		}
		id := parent.id
		m.entry.parent = &id
		report.ParentLinked++
	}

	for _, m := range touched {
		level := idx.levelOf(m.entry)
		if err := i.Repo.SetParent(ctx, m.entry.id, m.entry.parent, level); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return apperr.Internal("link category parent", err)
		}
		m.entry.level = level
	}
	return nil
}

// lookupParent finds a parent the index does not know by id or by name
func (i *ImporterImpl) lookupParent(ctx context.Context, ref string) (*Category, error) {
	var (
		c   *Category
		err error
	)
	if id, idErr := primitive.ObjectIDFromHex(ref); idErr == nil {
		c, err = i.Repo.FindByID(ctx, id)
	} else {
		c, err = i.Repo.FindByName(ctx, ref)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("look up parent category", err)
	}
	return c, nil
}

// reaches reports whether walking up from e passes through target
func (idx *importIndex) reaches(e *indexEntry, target primitive.ObjectID) bool {
	seen := map[primitive.ObjectID]bool{}
	for cur := e; cur != nil; {
		if cur.id == target {
			return true
		}
		if seen[cur.id] || cur.parent == nil {
			return false
		}
		seen[cur.id] = true
		cur = idx.byID[*cur.parent]
	}
	return false
}

// levelOf counts the hops to the root. Categories the import did not touch
// contribute their stored level so the walk stops there.
func (idx *importIndex) levelOf(e *indexEntry) int {
	hops := 0
	seen := map[primitive.ObjectID]bool{}
	for cur := e; cur.parent != nil; hops++ {
		seen[cur.id] = true
		parent, ok := idx.byID[*cur.parent]
		if !ok || seen[parent.id] {
			return hops + 1
		}
		if parent.row == 0 {
			return hops + 1 + parent.level
		}
		cur = parent
	}
	return hops
}
