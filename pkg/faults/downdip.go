package faults

import (
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

// DefaultInterfaceParentID is the parent id used for a subduction interface.
// It sits above the crustal catalogue id range.
const DefaultInterfaceParentID = 10000

// Tile is one cell of a subduction interface, addressed by row (down dip) and column (along strike).
type Tile struct {
	Row          int       `yaml:"row"`
	Col          int       `yaml:"col"`
	Trace        geo.Trace `yaml:"trace"` // upper edge of the tile
	DownDipWidth float64   `yaml:"down_dip_width"`
	Dip          float64   `yaml:"dip"`
	Rake         float64   `yaml:"rake"`
	SlipRate     float64   `yaml:"slip_rate"`
	Aseismicity  float64   `yaml:"aseismicity"`
}

// InterfaceFault is a parent section modelled as a grid of tiles instead of a single trace.
type InterfaceFault struct {
	Parent FaultSection `yaml:"parent"`
	Tiles  []Tile       `yaml:"tiles"`
}

// GridPos is a row/column position in a DownDipGrid
type GridPos struct {
	Row, Col int
}

// DownDipGrid maps a grid parent's subsections to row/column positions.
// Absent cells hold -1, which lets irregular interface outlines be represented.
type DownDipGrid struct {
	ParentID int
	Name     string
	cells    [][]int
	pos      map[int]GridPos
}

// BuildDownDipGrid creates one subsection per tile, allocating ids in row-major order.
func BuildDownDipGrid(iface InterfaceFault, alloc *IDAllocator) (*DownDipGrid, []Subsection, error) {
	parent := iface.Parent
	if len(iface.Tiles) == 0 {
		return nil, nil, fmt.Errorf("%w: interface %d (%s) has no tiles", ErrInvalidGeometry, parent.ID, parent.Name)
	}

	tiles := make([]Tile, len(iface.Tiles))
	copy(tiles, iface.Tiles)
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Row != tiles[j].Row {
			return tiles[i].Row < tiles[j].Row
		}
		return tiles[i].Col < tiles[j].Col
	})

	rows, cols := 0, 0
	for _, t := range tiles {
		if t.Row < 0 || t.Col < 0 {
			return nil, nil, fmt.Errorf("%w: interface %d tile at (%d,%d) has negative index", ErrInvalidGeometry, parent.ID, t.Row, t.Col)
		}
		rows = max(rows, t.Row+1)
		cols = max(cols, t.Col+1)
	}

	g := &DownDipGrid{
		ParentID: parent.ID,
		Name:     parent.Name,
		cells:    make([][]int, rows),
		pos:      make(map[int]GridPos, len(tiles)),
	}
	for r := range g.cells {
		g.cells[r] = make([]int, cols)
		for c := range g.cells[r] {
			g.cells[r][c] = -1
		}
	}

	subs := make([]Subsection, 0, len(tiles))
	for i, t := range tiles {
		if g.cells[t.Row][t.Col] != -1 {
			return nil, nil, fmt.Errorf("%w: interface %d has two tiles at (%d,%d)", ErrInvalidGeometry, parent.ID, t.Row, t.Col)
		}
		length := t.Trace.Length()
		if len(t.Trace) < 2 || length <= 0 || math.IsNaN(length) {
			return nil, nil, fmt.Errorf("%w: interface %d tile (%d,%d) has zero-length trace", ErrInvalidGeometry, parent.ID, t.Row, t.Col)
		}
		if t.DownDipWidth <= 0 || math.IsNaN(t.DownDipWidth) {
			return nil, nil, fmt.Errorf("%w: interface %d tile (%d,%d) has undefined down-dip width", ErrInvalidGeometry, parent.ID, t.Row, t.Col)
		}

		orig, reduced := areas(length, t.DownDipWidth, t.Aseismicity)
		id := alloc.Next()
		subs = append(subs, Subsection{
			ID:           id,
			ParentID:     parent.ID,
			ParentName:   parent.Name,
			Name:         fmt.Sprintf("%s, Subsection %d (row %d, col %d)", parent.Name, i, t.Row, t.Col),
			Index:        i,
			Trace:        t.Trace,
			Dip:          t.Dip,
			DownDipWidth: t.DownDipWidth,
			SlipRate:     t.SlipRate,
			Rake:         t.Rake,
			Aseismicity:  t.Aseismicity,
			AreaOriginal: orig,
			AreaReduced:  reduced,
		})
		g.cells[t.Row][t.Col] = id
		g.pos[id] = GridPos{Row: t.Row, Col: t.Col}
	}
	return g, subs, nil
}

// Rows returns the number of rows
func (g *DownDipGrid) Rows() int { return len(g.cells) }

// Cols returns the number of columns
func (g *DownDipGrid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// At returns the subsection id at (row, col)
func (g *DownDipGrid) At(row, col int) (int, bool) {
	if row < 0 || row >= g.Rows() || col < 0 || col >= g.Cols() {
		return -1, false
	}
	id := g.cells[row][col]
	return id, id >= 0
}

// Position returns the grid position of a subsection id
func (g *DownDipGrid) Position(id int) (GridPos, bool) {
	p, ok := g.pos[id]
	return p, ok
}

// Block returns the present subsection ids of the block with top-left (row, col)
// and the given size in row-major order, plus the number of cells in the block.
func (g *DownDipGrid) Block(row, col, rows, cols int) (ids []int, cells int) {
	ids = make([]int, 0, rows*cols)
	for r := row; r < row+rows; r++ {
		for c := col; c < col+cols; c++ {
			if id, ok := g.At(r, c); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, rows * cols
}

// Adjacent reports whether two subsections share a grid edge.
func (g *DownDipGrid) Adjacent(a, b int) bool {
	pa, okA := g.pos[a]
	pb, okB := g.pos[b]
	if !okA || !okB {
		return false
	}
	dr := pa.Row - pb.Row
	dc := pa.Col - pb.Col
	return (dr == 0 && (dc == 1 || dc == -1)) || (dc == 0 && (dr == 1 || dr == -1))
}
