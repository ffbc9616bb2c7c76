package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoNodeCollection builds a minimal valid genealogy: one edge spanning
// [0, 10) between a child at time 0 and a parent at time 1.
func twoNodeCollection(t *testing.T) *Collection {
	t.Helper()
	c := &Collection{SequenceLength: 10}
	child := c.Nodes.AddRow(0, 0)
	parent := c.Nodes.AddRow(1, 0)
	c.Edges.AddRow(0, 10, parent, child)
	return c
}

func TestAddRowsAndAccessors(t *testing.T) {
	c := twoNodeCollection(t)

	siteID, err := c.Sites.AddRow(4.2, []byte("0"), []byte("m"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, siteID)

	mutID, err := c.Mutations.AddRow(siteID, 0, NullID, []byte("1"), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, mutID)

	assert.Equal(t, []byte("0"), c.Sites.AncestralState(0))
	assert.Equal(t, []byte("m"), c.Sites.Metadata(0))
	assert.Equal(t, []byte("1"), c.Mutations.DerivedState(0))
	assert.Empty(t, c.Mutations.Metadata(0))

	assert.Equal(t, 1, c.Sites.AncestralStateLength())
	assert.Equal(t, 1, c.Mutations.DerivedStateLength())

	require.NoError(t, c.CheckIntegrity())
}

func TestAddRowValidation(t *testing.T) {
	var sites SiteTable
	_, err := sites.AddRow(-1, nil, nil)
	assert.ErrorIs(t, err, ErrBadRow)

	var muts MutationTable
	_, err = muts.AddRow(-1, 0, NullID, nil, nil)
	assert.ErrorIs(t, err, ErrBadRow)
}

func TestClear(t *testing.T) {
	c := twoNodeCollection(t)
	siteID, err := c.Sites.AddRow(1, []byte("A"), nil)
	require.NoError(t, err)
	_, err = c.Mutations.AddRow(siteID, 0, NullID, []byte("C"), nil)
	require.NoError(t, err)

	c.Sites.Clear()
	c.Mutations.Clear()
	assert.Equal(t, 0, c.Sites.NumRows())
	assert.Equal(t, 0, c.Mutations.NumRows())
	assert.Equal(t, 0, c.Sites.AncestralStateLength())

	// Tables remain usable after Clear.
	_, err = c.Sites.AddRow(2, []byte("G"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("G"), c.Sites.AncestralState(0))
}

func TestCheckIntegrity(t *testing.T) {
	t.Run("bad sequence length", func(t *testing.T) {
		c := &Collection{}
		err := c.CheckIntegrity()
		assert.ErrorIs(t, err, ErrIntegrity)
	})

	t.Run("edge node out of range", func(t *testing.T) {
		c := twoNodeCollection(t)
		c.Edges.AddRow(0, 10, 7, 0)
		err := c.CheckIntegrity()
		require.ErrorIs(t, err, ErrIntegrity)
		var ie *IntegrityError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "edges", ie.Table)
		assert.Equal(t, 1, ie.Row)
	})

	t.Run("parent not older than child", func(t *testing.T) {
		c := twoNodeCollection(t)
		c.Edges.AddRow(0, 10, 0, 1) // reversed
		assert.ErrorIs(t, c.CheckIntegrity(), ErrIntegrity)
	})

	t.Run("edge outside sequence", func(t *testing.T) {
		c := twoNodeCollection(t)
		c.Edges.AddRow(0, 11, 1, 0)
		assert.ErrorIs(t, c.CheckIntegrity(), ErrIntegrity)
	})

	t.Run("mutation site out of range", func(t *testing.T) {
		c := twoNodeCollection(t)
		c.Mutations.Site = append(c.Mutations.Site, 3)
		c.Mutations.Node = append(c.Mutations.Node, 0)
		c.Mutations.Parent = append(c.Mutations.Parent, NullID)
		c.Mutations.derivedState.append(nil)
		c.Mutations.metadata.append(nil)
		assert.ErrorIs(t, c.CheckIntegrity(), ErrIntegrity)
	})

	t.Run("mutation parent must be earlier row", func(t *testing.T) {
		c := twoNodeCollection(t)
		siteID, err := c.Sites.AddRow(1, []byte("0"), nil)
		require.NoError(t, err)
		c.Mutations.Site = append(c.Mutations.Site, siteID)
		c.Mutations.Node = append(c.Mutations.Node, 0)
		c.Mutations.Parent = append(c.Mutations.Parent, 0) // self-reference
		c.Mutations.derivedState.append([]byte("1"))
		c.Mutations.metadata.append(nil)
		assert.ErrorIs(t, c.CheckIntegrity(), ErrIntegrity)
	})

	t.Run("broken offsets", func(t *testing.T) {
		c := twoNodeCollection(t)
		_, err := c.Sites.AddRow(1, []byte("0"), nil)
		require.NoError(t, err)
		c.Sites.ancestralState.offsets[1] = 99
		assert.ErrorIs(t, c.CheckIntegrity(), ErrIntegrity)
	})
}
