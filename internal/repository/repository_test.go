package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

func openDefault(t *testing.T) *Memory {
	t.Helper()
	r, err := Open("")
	require.NoError(t, err)
	return r
}

func TestBridges(t *testing.T) {
	ctx := context.Background()
	r := openDefault(t)

	list, err := r.ListBridges(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "마포대교", list[1].Name)

	b, err := r.GetBridge(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, bim.StatusWarning, b.Status)

	_, err = r.GetBridge(ctx, "99")
	assert.ErrorIs(t, err, bim.ErrNotFound)
}

func TestModels(t *testing.T) {
	ctx := context.Background()
	r := openDefault(t)

	m, err := r.ModelByBridge(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "bim-1", m.Metadata.ID)

	_, err = r.ModelByBridge(ctx, "3")
	assert.ErrorIs(t, err, bim.ErrNotFound)

	m, err = r.Model(ctx, "bim-1")
	require.NoError(t, err)
	assert.Len(t, m.Components, 3)

	_, err = r.Model(ctx, "bim-404")
	assert.ErrorIs(t, err, bim.ErrNotFound)

	metas, err := r.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 5, metas[0].ComponentCount)
}

func TestComponents(t *testing.T) {
	ctx := context.Background()
	r := openDefault(t)

	all, err := r.Components(ctx, "bim-1", bim.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	warn, err := r.Components(ctx, "bim-1", bim.Filter{Status: []bim.Status{bim.StatusWarning}})
	require.NoError(t, err)
	require.Len(t, warn, 1)
	assert.Equal(t, "comp-3", warn[0].ID)

	none, err := r.Components(ctx, "bim-404", bim.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = r.Components(ctx, "bim-1", bim.Filter{
		PropertyFilters: []bim.PropertyFilter{{Key: "height", Operator: "between", Value: bim.Number(1)}},
	})
	assert.ErrorIs(t, err, bim.ErrInvalidFilter)

	c, err := r.Component(ctx, "bim-1", "comp-2")
	require.NoError(t, err)
	assert.Equal(t, "comp-1", c.ParentID)

	_, err = r.Component(ctx, "bim-1", "comp-9")
	assert.ErrorIs(t, err, bim.ErrNotFound)
	_, err = r.Component(ctx, "bim-404", "comp-1")
	assert.ErrorIs(t, err, bim.ErrNotFound)
}

func TestGeometryAndRelationships(t *testing.T) {
	ctx := context.Background()
	r := openDefault(t)

	g, err := r.Geometry(ctx, "bim-1", "comp-1")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{5, 50, 5}, g.BoundingBox.Max)

	_, err = r.Geometry(ctx, "bim-1", "comp-2")
	assert.ErrorIs(t, err, bim.ErrNotFound)

	rels, err := r.Relationships(ctx, "bim-1")
	require.NoError(t, err)
	assert.Len(t, rels, 2)

	rels, err = r.Relationships(ctx, "bim-404")
	require.NoError(t, err)
	assert.NotNil(t, rels)
	assert.Empty(t, rels)
}

func TestNewMemoryRejectsDuplicates(t *testing.T) {
	m := bim.Model{Metadata: bim.Metadata{ID: "dup"}}
	_, err := NewMemory(&bim.Fixtures{Models: []bim.Model{m, m}})
	assert.ErrorIs(t, err, bim.ErrInvalidModel)

	empty, err := NewMemory(nil)
	require.NoError(t, err)
	list, err := empty.ListBridges(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenMissingDir(t *testing.T) {
	r, err := Open(t.TempDir())
	require.NoError(t, err, "an empty directory is an empty fixture set")
	metas, err := r.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metas)
}
