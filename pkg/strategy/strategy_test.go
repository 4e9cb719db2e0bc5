package strategy

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geo"
	"github.com/dd0wney/cluso-rupset/pkg/geometry"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

// catalogue builds three straight faults of four subsections each, plus an
// optional 4x10 interface grid far away from them.
func catalogue(t *testing.T, withGrid bool) *connections.Graph {
	t.Helper()
	opts := faults.DefaultSyntheticOptions()
	opts.NumFaults = 3
	opts.Strike = 90
	opts.LengthKm = 19.6
	opts.DownDipWidth = 10
	opts.OffsetKm = 0

	alloc := faults.NewIDAllocator(0)
	subs, err := faults.SubdivideAll(faults.Synthetic(opts), faults.DefaultLengthFraction, faults.DefaultMinSubsections, alloc)
	require.NoError(t, err)
	require.Len(t, subs, 12)

	var grids []*faults.DownDipGrid
	if withGrid {
		iface := faults.SyntheticInterface(faults.DefaultInterfaceParentID, "Interface", geo.NewLocation(-38, 178), 30, 4, 10, 10)
		grid, gsubs, err := faults.BuildDownDipGrid(iface, alloc)
		require.NoError(t, err)
		subs = append(subs, gsubs...)
		grids = append(grids, grid)
	}
	list, err := faults.NewSectionList(subs, grids...)
	require.NoError(t, err)
	g, err := connections.Build(geometry.NewCalculator(list), connections.DefaultMaxJumpDistance)
	require.NoError(t, err)
	return g
}

func sectionsOf(clusters []rupture.Cluster) [][]int {
	out := make([][]int, len(clusters))
	for i, c := range clusters {
		out[i] = c.Sections
	}
	return out
}

func TestParseKind(t *testing.T) {
	for _, name := range Kinds() {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(k))
	}
	k, err := ParseKind("UCERF3")
	require.NoError(t, err)
	assert.Equal(t, Incremental, k)

	_, err = ParseKind("spiral")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNew_Errors(t *testing.T) {
	g := catalogue(t, false)
	_, err := New("spiral", g, DefaultRectangleOptions())
	assert.ErrorIs(t, err, ErrUnknownKind)

	bad := DefaultRectangleOptions()
	bad.MinAspect = 4
	_, err = New(DownDip, g, bad)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	bad = DefaultRectangleOptions()
	bad.MinFill = 0
	_, err = New(DownDip, g, bad)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestIncremental(t *testing.T) {
	s, err := New(Incremental, catalogue(t, false), DefaultRectangleOptions())
	require.NoError(t, err)
	assert.Equal(t, "incremental", s.Name())

	got := sectionsOf(s.Permutations(0, 1))
	assert.Equal(t, [][]int{{1}, {1, 2}, {1, 2, 3}, {1, 0}}, got)

	got = sectionsOf(s.Permutations(1, 4))
	assert.Equal(t, [][]int{{4}, {4, 5}, {4, 5, 6}, {4, 5, 6, 7}}, got)

	assert.Nil(t, s.Permutations(0, 4), "start must belong to the parent")
	assert.Nil(t, s.Permutations(99, 0))
}

func TestConnectionPoints(t *testing.T) {
	g := catalogue(t, false)
	require.True(t, g.Connected(3, 4))
	require.True(t, g.Connected(7, 8))

	s, err := New(ConnectionPoints, g, DefaultRectangleOptions())
	require.NoError(t, err)

	assert.Equal(t, [][]int{{4}, {4, 5, 6, 7}}, sectionsOf(s.Permutations(1, 4)))
	assert.Equal(t, [][]int{{5, 6, 7}, {5, 4}}, sectionsOf(s.Permutations(1, 5)))
	assert.Equal(t, [][]int{{0}, {0, 1, 2, 3}}, sectionsOf(s.Permutations(0, 0)))
}

func TestStrategiesIgnoreGridsUnlessDownDip(t *testing.T) {
	g := catalogue(t, true)
	start := g.Sections().ParentSectionIDs(faults.DefaultInterfaceParentID)[0]

	for _, kind := range []Kind{Incremental, ConnectionPoints} {
		s, err := New(kind, g, DefaultRectangleOptions())
		require.NoError(t, err)
		assert.Empty(t, s.Permutations(faults.DefaultInterfaceParentID, start), "%s on a grid", kind)
	}

	s, err := New(DownDip, g, DefaultRectangleOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, s.Permutations(faults.DefaultInterfaceParentID, start))
	assert.Len(t, s.Permutations(0, 0), 4, "trace parents fall back to incremental runs")
}

func TestSizes(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Sizes(5, 0))
	assert.Equal(t, []int{1, 2, 3, 4, 6, 9}, Sizes(10, 0.5))
	assert.Empty(t, Sizes(0, 0))
	assert.Equal(t, 1, positionStep(1, 0.5))
	assert.Equal(t, 2, positionStep(4, 0.5))
	assert.Equal(t, 1, positionStep(9, 0))
}

func TestDownDip_TopLeftCount(t *testing.T) {
	g := catalogue(t, true)
	s, err := New(DownDip, g, DefaultRectangleOptions())
	require.NoError(t, err)

	grid := g.Sections().Grid(faults.DefaultInterfaceParentID)
	origin, ok := grid.At(0, 0)
	require.True(t, ok)

	// rows 1: cols 1-3, rows 2: 1-6, rows 3: 1-9, rows 4: 2-10
	assert.Len(t, s.Permutations(faults.DefaultInterfaceParentID, origin), 3+6+9+9)
}

// TestDownDip_GridProperty checks every proposed block on the 4x10 grid against
// the aspect bounds and complete coverage of its bounding rectangle.
func TestDownDip_GridProperty(t *testing.T) {
	g := catalogue(t, true)
	s, err := New(DownDip, g, DefaultRectangleOptions())
	require.NoError(t, err)
	grid := g.Sections().Grid(faults.DefaultInterfaceParentID)

	for _, start := range g.Sections().ParentSectionIDs(faults.DefaultInterfaceParentID) {
		for _, c := range s.Permutations(faults.DefaultInterfaceParentID, start) {
			rows, cols, ok := plausibility.Bounds(grid.Position, c.Sections)
			require.True(t, ok)
			aspect := float64(max(rows, cols)) / float64(min(rows, cols))
			if aspect < 1 || aspect > 3 {
				t.Fatalf("block %v has aspect %v", c.Sections, aspect)
			}
			if len(c.Sections) != rows*cols {
				t.Fatalf("block %v covers %d of %d cells", c.Sections, len(c.Sections), rows*cols)
			}
			assert.Equal(t, start, c.First())
		}
	}
}

func TestDownDip_CoarsenessProperty(t *testing.T) {
	g := catalogue(t, true)
	grid := g.Sections().Grid(faults.DefaultInterfaceParentID)
	ids := g.Sections().ParentSectionIDs(faults.DefaultInterfaceParentID)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("coarse blocks are a subset of fine blocks and respect position steps", prop.ForAll(
		func(startIx int, posEps, sizeEps float64) bool {
			start := ids[startIx]
			opts := DefaultRectangleOptions()
			fine, _ := New(DownDip, g, opts)
			opts.PositionCoarseness = posEps
			opts.SizeCoarseness = sizeEps
			coarse, err := New(DownDip, g, opts)
			if err != nil {
				return false
			}

			fineKeys := map[string]bool{}
			for _, c := range fine.Permutations(faults.DefaultInterfaceParentID, start) {
				fineKeys[rupture.KeyOf(c.Sections)] = true
			}
			pos, _ := grid.Position(start)
			for _, c := range coarse.Permutations(faults.DefaultInterfaceParentID, start) {
				if !fineKeys[rupture.KeyOf(c.Sections)] {
					return false
				}
				rows, cols, _ := plausibility.Bounds(grid.Position, c.Sections)
				if pos.Row%positionStep(rows, posEps) != 0 || pos.Col%positionStep(cols, posEps) != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(ids)-1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

// twoByTwo builds a graph over a 2x2 interface keeping only the tiles at the given row-major indices.
func twoByTwo(t *testing.T, keep ...int) *connections.Graph {
	t.Helper()
	iface := faults.SyntheticInterface(faults.DefaultInterfaceParentID, "Interface", geo.NewLocation(-38, 178), 30, 2, 2, 10)
	var tiles []faults.Tile
	for _, k := range keep {
		tiles = append(tiles, iface.Tiles[k])
	}
	iface.Tiles = tiles
	grid, subs, err := faults.BuildDownDipGrid(iface, faults.NewIDAllocator(0))
	require.NoError(t, err)
	list, err := faults.NewSectionList(subs, grid)
	require.NoError(t, err)
	g, err := connections.Build(geometry.NewCalculator(list), connections.DefaultMaxJumpDistance)
	require.NoError(t, err)
	return g
}

func TestDownDip_PartialFill(t *testing.T) {
	g := twoByTwo(t, 0, 1, 2) // (1,1) missing

	exact, err := New(DownDip, g, DefaultRectangleOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {0, 1}, {0, 2}}, sectionsOf(exact.Permutations(faults.DefaultInterfaceParentID, 0)))

	opts := DefaultRectangleOptions()
	opts.MinFill = 0.75
	partial, err := New(DownDip, g, opts)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {0, 1}, {0, 2}, {0, 1, 2}}, sectionsOf(partial.Permutations(faults.DefaultInterfaceParentID, 0)))
}

func TestDownDip_MissingTopLeft(t *testing.T) {
	// ids: (0,1)=0, (1,0)=1, (1,1)=2
	g := twoByTwo(t, 1, 2, 3)
	opts := DefaultRectangleOptions()
	opts.MinFill = 0.7
	s, err := New(DownDip, g, opts)
	require.NoError(t, err)

	tests := []struct {
		start int
		want  [][]int
	}{
		{0, [][]int{{0}, {0, 2}, {0, 1, 2}}},
		{1, [][]int{{1}, {1, 2}}},
		{2, [][]int{{2}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sectionsOf(s.Permutations(faults.DefaultInterfaceParentID, tt.start)), "start %d", tt.start)
	}
}

func TestDownDip_DisconnectedCells(t *testing.T) {
	g := twoByTwo(t, 0, 3) // opposite corners
	opts := DefaultRectangleOptions()
	opts.MinFill = 0.5
	s, err := New(DownDip, g, opts)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0}}, sectionsOf(s.Permutations(faults.DefaultInterfaceParentID, 0)))
	assert.Equal(t, [][]int{{1}}, sectionsOf(s.Permutations(faults.DefaultInterfaceParentID, 1)))
}
