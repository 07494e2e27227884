package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/storage"
)

func seed(t *testing.T, g *Gateway) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, g.UpsertModule(ctx, catalog.Module{ID: 1, Name: "m1", Difficulty: catalog.ModuleEasy, URL: "u1"}))
	require.NoError(t, g.UpsertModule(ctx, catalog.Module{ID: 2, Name: "m2", Difficulty: catalog.ModuleHard, URL: "u2"}))
	require.NoError(t, g.UpsertMachine(ctx, catalog.Machine{ID: 42, Name: "Lame", Difficulty: catalog.MachineEasy, OS: catalog.OSLinux}))
	require.NoError(t, g.UpsertExam(ctx, catalog.Exam{ID: 7, Name: "CPTS"}))
	require.NoError(t, g.UpsertVulnerability(ctx, catalog.Vulnerability{ID: 9, Name: "SQLi"}))
}

func TestGateway_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	g := NewGateway()
	seed(t, g)
	before := g.Changes()

	seed(t, g)
	assert.Equal(t, before, g.Changes())

	desc := "new"
	require.NoError(t, g.UpsertModule(context.Background(),
		catalog.Module{ID: 1, Name: "m1", Description: &desc, Difficulty: catalog.ModuleEasy, URL: "u1"}))
	assert.Equal(t, before+1, g.Changes())

	m, ok := g.Module(1)
	require.True(t, ok)
	assert.Equal(t, &desc, m.Description)
}

func TestGateway_ReplaceUnits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := NewGateway()
	seed(t, g)

	require.NoError(t, g.ReplaceUnits(ctx, 1, []catalog.Unit{
		{ID: 10, Sequence: 1, Name: "a", Type: catalog.UnitArticle},
		{ID: 11, Sequence: 2, Name: "b", Type: catalog.UnitInteractive},
	}))

	// Reorder and drop one unit
	require.NoError(t, g.ReplaceUnits(ctx, 1, []catalog.Unit{
		{ID: 12, Sequence: 1, Name: "c", Type: catalog.UnitArticle},
		{ID: 10, Sequence: 2, Name: "a", Type: catalog.UnitArticle},
	}))

	units := g.Units(1)
	require.Len(t, units, 2)
	assert.Equal(t, 12, units[0].ID)
	assert.Equal(t, 10, units[1].ID)
	assert.Equal(t, 1, units[0].ModuleID)
	assert.Empty(t, g.Units(2))

	err := g.ReplaceUnits(ctx, 1, []catalog.Unit{{ID: 1, Sequence: 1}, {ID: 2, Sequence: 1}})
	require.Error(t, err)

	err = g.ReplaceUnits(ctx, 99, nil)
	assert.ErrorIs(t, err, storage.ErrParentNotFound)
}

func TestGateway_ReplaceLinks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := NewGateway()
	seed(t, g)

	n, err := g.ReplaceLinks(ctx, catalog.LinkExamModule, 7, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "module 3 is not stored and must be skipped")
	assert.Equal(t, []int{1, 2}, g.Links(catalog.LinkExamModule, 7))

	changes := g.Changes()
	_, err = g.ReplaceLinks(ctx, catalog.LinkExamModule, 7, []int{2, 1})
	require.NoError(t, err)
	assert.Equal(t, changes, g.Changes())

	_, err = g.ReplaceLinks(ctx, catalog.LinkExamModule, 7, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, g.Links(catalog.LinkExamModule, 7))

	_, err = g.ReplaceLinks(ctx, catalog.LinkExamModule, 7, nil)
	require.NoError(t, err)
	assert.Empty(t, g.Links(catalog.LinkExamModule, 7))

	_, err = g.ReplaceLinks(ctx, catalog.LinkModuleMachine, 5, []int{42})
	assert.ErrorIs(t, err, storage.ErrParentNotFound)

	_, err = g.ReplaceLinks(ctx, catalog.LinkKind("bogus"), 1, nil)
	require.Error(t, err)
}

func TestGateway_ReplaceLabels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := NewGateway()
	seed(t, g)

	require.NoError(t, g.ReplaceLabels(ctx, 42, catalog.LabelLanguage, []string{"PHP", "Bash", "PHP"}))
	assert.Equal(t, []string{"Bash", "PHP"}, g.Labels(42, catalog.LabelLanguage))
	assert.Empty(t, g.Labels(42, catalog.LabelAreaOfInterest))

	changes := g.Changes()
	require.NoError(t, g.ReplaceLabels(ctx, 42, catalog.LabelLanguage, []string{"Bash", "PHP"}))
	assert.Equal(t, changes, g.Changes())

	err := g.ReplaceLabels(ctx, 1, catalog.LabelLanguage, []string{"Go"})
	assert.ErrorIs(t, err, storage.ErrParentNotFound)
}

func TestGateway_Counts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := NewGateway()
	seed(t, g)
	_, err := g.ReplaceLinks(ctx, catalog.LinkMachineVulnerability, 42, []int{9})
	require.NoError(t, err)

	counts := g.Counts()
	assert.Equal(t, 2, counts[catalog.EntityModule])
	assert.Equal(t, 1, counts[catalog.EntityMachine])
	assert.Equal(t, 1, counts[catalog.EntityLink])
}
