package category

import (
	"context"
	"testing"

	"go-marketplace/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordedImport struct {
	created, updated, skipped, linked, failed int
}

type MockRecorder struct {
	Imports []recordedImport
}

func (m *MockRecorder) ObserveImport(created, updated, skipped, linked, failed int, seconds float64) {
	m.Imports = append(m.Imports, recordedImport{created, updated, skipped, linked, failed})
}

func newImporter() (*ImporterImpl, *MockCategoryRepo, *MockRecorder, *MockAudit) {
	repo := newMockCategoryRepo()
	rec := &MockRecorder{}
	audit := &MockAudit{}
	imp := NewImporter(repo, audit, rec, zap.NewNop()).(*ImporterImpl)
	return imp, repo, rec, audit
}

func intPtr(v int) *int { return &v }

func TestImportResolvesChildBeforeParent(t *testing.T) {
	imp, repo, rec, audit := newImporter()

	report, err := imp.Import(context.Background(), []RawCategoryRecord{
		{Name: "Rifles", ParentCategory: "Weapons"},
		{Name: "Weapons"},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.ParentLinked)
	assert.Empty(t, report.Errors)

	weapons, rifles := repo.byName("Weapons"), repo.byName("Rifles")
	require.NotNil(t, rifles.ParentCategory)
	assert.Equal(t, weapons.ID, *rifles.ParentCategory)
	assert.Equal(t, 1, rifles.Level)
	assert.Equal(t, 0, weapons.Level)

	assert.Equal(t, []recordedImport{{created: 2, linked: 1}}, rec.Imports)
	assert.Equal(t, []models.AuditAction{models.AuditActionImport}, audit.Actions)
}

func TestImportLevelsIndependentOfOrder(t *testing.T) {
	records := []RawCategoryRecord{
		{Name: "Scopes", ParentCategory: "rifles"},
		{Name: "Night Vision", ParentCategory: "Scopes", Level: intPtr(0)},
		{Name: "Rifles", ParentCategory: "weapons"},
		{Name: "Weapons", Level: intPtr(2)},
	}
	for _, reversed := range []bool{false, true} {
		imp, repo, _, _ := newImporter()
		in := append([]RawCategoryRecord(nil), records...)
		if reversed {
			for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
				in[i], in[j] = in[j], in[i]
			}
		}
		report, err := imp.Import(context.Background(), in, false)
		require.NoError(t, err)
		assert.Equal(t, 3, report.ParentLinked)

		assert.Equal(t, 0, repo.byName("Weapons").Level)
		assert.Equal(t, 1, repo.byName("Rifles").Level)
		assert.Equal(t, 2, repo.byName("Scopes").Level)
		assert.Equal(t, 3, repo.byName("Night Vision").Level)
	}
}

func TestImportTwiceSkipsEverything(t *testing.T) {
	imp, repo, _, _ := newImporter()
	records := []RawCategoryRecord{
		{Name: "Rifles", ParentCategory: "Weapons", Description: "long guns"},
		{Name: "Weapons", Keywords: []string{"arms"}},
	}

	first, err := imp.Import(context.Background(), records, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	snapshot, _ := repo.FindAll(context.Background())

	second, err := imp.Import(context.Background(), records, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 0, second.ParentLinked)

	after, _ := repo.FindAll(context.Background())
	assert.Equal(t, snapshot, after)
}

func TestImportUpdatesExisting(t *testing.T) {
	imp, repo, _, _ := newImporter()
	ctx := context.Background()

	_, err := imp.Import(ctx, []RawCategoryRecord{{Name: "Weapons"}, {Name: "Ammo", Description: "old"}}, false)
	require.NoError(t, err)

	report, err := imp.Import(ctx, []RawCategoryRecord{
		{Name: "AMMO", Description: "new", ParentCategory: "weapons", SortOrder: intPtr(5)},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.ParentLinked)

	ammo := repo.byName("AMMO")
	require.NotNil(t, ammo)
	assert.Equal(t, "new", ammo.Description)
	assert.Equal(t, 5, ammo.SortOrder)
	assert.Equal(t, 1, ammo.Level)
}

func TestImportCollectsPerRecordErrors(t *testing.T) {
	imp, repo, _, _ := newImporter()

	report, err := imp.Import(context.Background(), []RawCategoryRecord{
		{Name: "  "},
		{Name: "Good"},
		{Name: "Bad Row", Invalid: "level must be a whole number", Row: 7},
		{Name: "???"},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, 1, report.Errors[0].Row)
	assert.Equal(t, "name is required", report.Errors[0].Error)
	assert.Equal(t, 7, report.Errors[1].Row)
	assert.Equal(t, 4, report.Errors[2].Row)
	assert.NotNil(t, repo.byName("Good"))
}

func TestImportLeavesUnknownParentAsRoot(t *testing.T) {
	imp, repo, _, _ := newImporter()

	report, err := imp.Import(context.Background(), []RawCategoryRecord{
		{Name: "Lonely", ParentCategory: "Nowhere", Level: intPtr(2)},
	}, false)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 0, report.ParentLinked)

	lonely := repo.byName("Lonely")
	assert.Nil(t, lonely.ParentCategory)
	assert.Equal(t, 0, lonely.Level)
}

func TestImportDoesNotEnforceDepthLimit(t *testing.T) {
	imp, repo, _, _ := newImporter()

	_, err := imp.Import(context.Background(), []RawCategoryRecord{
		{Name: "L0"},
		{Name: "L1", ParentCategory: "L0"},
		{Name: "L2", ParentCategory: "L1"},
		{Name: "L3", ParentCategory: "L2"},
		{Name: "L4", ParentCategory: "L3"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.byName("L4").Level)
}

func TestImportReportsCycles(t *testing.T) {
	imp, repo, _, _ := newImporter()

	report, err := imp.Import(context.Background(), []RawCategoryRecord{
		{Name: "A", ParentCategory: "B"},
		{Name: "B", ParentCategory: "A"},
		{Name: "C", ParentCategory: "c"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParentLinked)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, 3, report.Errors[1].Row)

	assert.Equal(t, 1, repo.byName("A").Level)
	assert.Equal(t, 0, repo.byName("B").Level)
	assert.Nil(t, repo.byName("C").ParentCategory)
}

func TestImportLinksToPreexistingParentByID(t *testing.T) {
	imp, repo, _, _ := newImporter()
	ctx := context.Background()

	root := &Category{Name: "Root", Slug: "root"}
	require.NoError(t, repo.Create(ctx, root))
	mid := &Category{Name: "Mid", Slug: "mid", ParentCategory: &root.ID, Level: 1}
	require.NoError(t, repo.Create(ctx, mid))

	report, err := imp.Import(ctx, []RawCategoryRecord{{Name: "Leaf", ParentCategory: mid.ID.Hex()}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParentLinked)
	assert.Equal(t, 2, repo.byName("Leaf").Level)
}

func TestMaterializeAlone(t *testing.T) {
	imp, repo, _, _ := newImporter()
	ctx := context.Background()

	existing := &Category{Name: "Weapons", Slug: "weapons"}
	require.NoError(t, repo.Create(ctx, existing))
	idx := newImportIndex([]Category{*existing})
	report := &ImportReport{}

	touched, err := imp.materialize(ctx, []RawCategoryRecord{
		{Name: "Rifles", Level: intPtr(3), ParentCategory: "Weapons"},
		{Name: "weapons"},
		{Name: "rifles"},
	}, false, idx, report)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, touched, 1)

	// parents are not linked and the provisional level is verbatim
	rifles := repo.byName("Rifles")
	assert.Nil(t, rifles.ParentCategory)
	assert.Equal(t, 3, rifles.Level)
	assert.Same(t, touched[0].entry, idx.resolve("RIFLES"))
	assert.Same(t, touched[0].entry, idx.resolve(rifles.ID.Hex()))
}

func TestLinkParentsAlone(t *testing.T) {
	imp, repo, _, _ := newImporter()
	ctx := context.Background()

	parent := &Category{Name: "Weapons", Slug: "weapons", Level: 1}
	child := &Category{Name: "Rifles", Slug: "rifles", Level: 3}
	require.NoError(t, repo.Create(ctx, parent))
	require.NoError(t, repo.Create(ctx, child))

	idx := newImportIndex(nil)
	parentEntry := entryFor(parent, 0)
	childEntry := entryFor(child, 1)
	idx.add(parentEntry)
	idx.add(childEntry)

	report := &ImportReport{}
	err := imp.linkParents(ctx, []materialized{{row: 1, record: RawCategoryRecord{Name: "Rifles", ParentCategory: "weapons"}, entry: childEntry}}, idx, report)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParentLinked)
	stored := repo.Categories[child.ID]
	assert.Equal(t, &parent.ID, stored.ParentCategory)
	assert.Equal(t, 2, stored.Level)
	assert.Equal(t, 1, repo.Categories[parent.ID].Level)
}

func TestLinkParentsFallsBackToRepository(t *testing.T) {
	imp, repo, _, _ := newImporter()
	ctx := context.Background()

	parent := &Category{Name: "Late Parent", Slug: "late-parent"}
	require.NoError(t, repo.Create(ctx, parent))
	child := &Category{Name: "Child", Slug: "child"}
	require.NoError(t, repo.Create(ctx, child))

	// the index predates the parent
	idx := newImportIndex(nil)
	childEntry := entryFor(child, 1)
	idx.add(childEntry)

	report := &ImportReport{}
	err := imp.linkParents(ctx, []materialized{{row: 1, record: RawCategoryRecord{ParentCategory: "late parent"}, entry: childEntry}}, idx, report)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParentLinked)
	assert.Equal(t, &parent.ID, repo.Categories[child.ID].ParentCategory)
	assert.Equal(t, 1, repo.Categories[child.ID].Level)
}

func TestImportIndexResolve(t *testing.T) {
	id := primitive.NewObjectID()
	idx := newImportIndex([]Category{{ID: id, Name: "Night Vision", Slug: "night-vision"}})

	for _, ref := range []string{id.Hex(), "night vision", " NIGHT VISION ", "night-vision"} {
		e := idx.resolve(ref)
		require.NotNil(t, e, ref)
		assert.Equal(t, id, e.id)
	}
	assert.Nil(t, idx.resolve("thermal"))
}
