package faults

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

func TestNewSectionList_RejectsGaps(t *testing.T) {
	subs := []Subsection{{ID: 0, ParentID: 1}, {ID: 2, ParentID: 1}}
	_, err := NewSectionList(subs)
	if !errors.Is(err, ErrNonContiguousIDs) {
		t.Errorf("expected ErrNonContiguousIDs, got %v", err)
	}
}

func TestNewSectionList_RejectsInterleavedParents(t *testing.T) {
	subs := []Subsection{{ID: 0, ParentID: 1}, {ID: 1, ParentID: 2}, {ID: 2, ParentID: 1}}
	_, err := NewSectionList(subs)
	assert.ErrorIs(t, err, ErrNonContiguousIDs)
}

func TestSectionList_Lookups(t *testing.T) {
	subs := []Subsection{
		{ID: 5, ParentID: 10, ParentName: "A"},
		{ID: 6, ParentID: 10, ParentName: "A"},
		{ID: 7, ParentID: 11, ParentName: "B"},
	}
	list, err := NewSectionList(subs)
	require.NoError(t, err)

	assert.Equal(t, 3, list.Len())
	assert.Equal(t, 8, list.SafeID())
	assert.Equal(t, []int{5, 6}, list.ParentSectionIDs(10))
	assert.Equal(t, []int{7}, list.ParentSectionIDs(11))
	assert.Nil(t, list.ParentSectionIDs(99))

	s, err := list.Get(7)
	require.NoError(t, err)
	assert.Equal(t, 11, s.ParentID)

	_, err = list.Get(4)
	assert.ErrorIs(t, err, ErrUnknownSection)
	_, err = list.Get(8)
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestBuildDownDipGrid(t *testing.T) {
	iface := SyntheticInterface(DefaultInterfaceParentID, "Interface", geo.NewLocation(-40, 178), 30, 4, 10, 10)
	// drop one corner to make the outline irregular
	iface.Tiles = iface.Tiles[:len(iface.Tiles)-1]

	alloc := NewIDAllocator(50)
	grid, subs, err := BuildDownDipGrid(iface, alloc)
	require.NoError(t, err)
	require.Len(t, subs, 39)

	assert.Equal(t, 4, grid.Rows())
	assert.Equal(t, 10, grid.Cols())
	assert.Equal(t, 89, alloc.Peek())

	id, ok := grid.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 50, id)

	id, ok = grid.At(1, 0)
	require.True(t, ok)
	assert.Equal(t, 60, id, "ids are allocated row-major")

	_, ok = grid.At(3, 9)
	assert.False(t, ok, "missing tile must be absent")

	pos, ok := grid.Position(61)
	require.True(t, ok)
	assert.Equal(t, GridPos{Row: 1, Col: 1}, pos)

	assert.True(t, grid.Adjacent(50, 51))
	assert.True(t, grid.Adjacent(50, 60))
	assert.False(t, grid.Adjacent(50, 61))

	ids, cells := grid.Block(2, 8, 2, 2)
	assert.Equal(t, 4, cells)
	assert.Len(t, ids, 3)

	list, err := NewSectionList(subs, grid)
	require.NoError(t, err)
	assert.True(t, list.IsGridParent(DefaultInterfaceParentID))
	assert.Same(t, grid, list.Grid(DefaultInterfaceParentID))
}

func TestBuildDownDipGrid_Errors(t *testing.T) {
	good := SyntheticInterface(1, "I", geo.NewLocation(-40, 178), 30, 2, 2, 10)

	t.Run("no tiles", func(t *testing.T) {
		_, _, err := BuildDownDipGrid(InterfaceFault{Parent: good.Parent}, NewIDAllocator(0))
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("duplicate position", func(t *testing.T) {
		dup := good
		dup.Tiles = append(append([]Tile{}, good.Tiles...), good.Tiles[0])
		_, _, err := BuildDownDipGrid(dup, NewIDAllocator(0))
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("zero width tile", func(t *testing.T) {
		bad := good
		bad.Tiles = append([]Tile{}, good.Tiles...)
		bad.Tiles[1].DownDipWidth = 0
		_, _, err := BuildDownDipGrid(bad, NewIDAllocator(0))
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestSynthetic(t *testing.T) {
	opts := DefaultSyntheticOptions()
	opts.NumFaults = 4
	sections := Synthetic(opts)
	require.Len(t, sections, 4)

	for i, s := range sections {
		assert.Equal(t, i, s.ID)
		assert.InDelta(t, opts.LengthKm, s.Trace.Length(), 0.01)
	}
	for i := 1; i < len(sections); i++ {
		gap := geo.TraceDistance(sections[i-1].Trace, sections[i].Trace)
		assert.Less(t, gap, 5.0, "consecutive synthetic faults must be within jump distance")
		assert.Greater(t, gap, 0.0)
	}
}
