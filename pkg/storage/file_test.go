package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
)

func testDoc(t *testing.T, id string) graph.Document {
	t.Helper()
	g, err := grid.Generate(grid.Params{Origin: []float64{0, 0}, NumEdgeX: 2, Dx: 10})
	require.NoError(t, err)
	d := graph.FromGrid(g)
	d.ID = id
	return d
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	a, b := testDoc(t, "b-grid"), testDoc(t, "a-grid")
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	got, err := s.Load(ctx, "b-grid")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-grid", "b-grid"}, ids)

	// Save replaces.
	a.EPSG = 4326
	require.NoError(t, s.Save(ctx, a))
	got, err = s.Load(ctx, "b-grid")
	require.NoError(t, err)
	assert.Equal(t, 4326, got.EPSG)

	require.NoError(t, s.Delete(ctx, "b-grid"))
	_, err = s.Load(ctx, "b-grid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "b-grid"), ErrNotFound)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		err := s.Save(ctx, testDoc(t, id))
		assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidInput), "id %q: %v", id, err)

		_, err = s.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
	}
}
