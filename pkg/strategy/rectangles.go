package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

// ErrInvalidOptions is returned for contradictory rectangle options
var ErrInvalidOptions = errors.New("invalid rectangle options")

// RectangleOptions constrain the blocks enumerated on a down-dip grid.
type RectangleOptions struct {
	MinAspect float64
	MaxAspect float64
	// MinFill is the fraction of a block's cells that must be present; 1 means exact rectangles.
	MinFill float64
	// PositionCoarseness restricts a block of size n to start on multiples of floor(n*eps). 0 disables it.
	PositionCoarseness float64
	// SizeCoarseness grows block sizes geometrically by (1+eps) instead of one at a time. 0 disables it.
	SizeCoarseness float64
}

// DefaultRectangleOptions returns exact rectangles with aspect 1..3 and no coarseness.
func DefaultRectangleOptions() RectangleOptions {
	return RectangleOptions{
		MinAspect: plausibility.DefaultMinAspect,
		MaxAspect: plausibility.DefaultMaxAspect,
		MinFill:   plausibility.DefaultMinFill,
	}
}

func (o RectangleOptions) validate() error {
	switch {
	case !(o.MinAspect >= 1):
		return fmt.Errorf("%w: min aspect %g below 1", ErrInvalidOptions, o.MinAspect)
	case o.MinAspect > o.MaxAspect:
		return fmt.Errorf("%w: min aspect %g above max aspect %g", ErrInvalidOptions, o.MinAspect, o.MaxAspect)
	case !(o.MinFill > 0 && o.MinFill <= 1):
		return fmt.Errorf("%w: min fill %g outside (0, 1]", ErrInvalidOptions, o.MinFill)
	case !(o.PositionCoarseness >= 0), !(o.SizeCoarseness >= 0):
		return fmt.Errorf("%w: coarseness must be non-negative", ErrInvalidOptions)
	}
	return nil
}

// Sizes returns the block sizes 1..limit visited under the given size coarseness.
func Sizes(limit int, eps float64) []int {
	var out []int
	for s := 1; s <= limit; {
		out = append(out, s)
		s = max(s+1, int(math.Floor(float64(s)*(1+eps))))
	}
	return out
}

// positionStep is the spacing of allowed start positions for a block dimension.
func positionStep(size int, eps float64) int {
	return max(1, int(math.Floor(float64(size)*eps)))
}

type rectangles struct {
	sections *faults.SectionList
	opts     RectangleOptions
}

// Permutations returns every block whose first present cell in row-major order is
// start, ordered by rows, columns, then origin. Blocks are tight (their present
// cells span the full block) and edge-connected, so each subsection set is
// proposed exactly once across all starts.
func (s *rectangles) Permutations(parentID, start int) []rupture.Cluster {
	g := s.sections.Grid(parentID)
	if g == nil {
		return nil
	}
	pos, ok := g.Position(start)
	if !ok {
		return nil
	}

	var out []rupture.Cluster
	for _, rows := range Sizes(g.Rows(), s.opts.SizeCoarseness) {
		rowStep := positionStep(rows, s.opts.PositionCoarseness)
		for _, cols := range Sizes(g.Cols(), s.opts.SizeCoarseness) {
			colStep := positionStep(cols, s.opts.PositionCoarseness)
			for row := max(0, pos.Row-rows+1); row <= min(pos.Row, g.Rows()-rows); row++ {
				if row%rowStep != 0 {
					continue
				}
				for col := max(0, pos.Col-cols+1); col <= min(pos.Col, g.Cols()-cols); col++ {
					if col%colStep != 0 {
						continue
					}
					// a present origin other than start comes before it
					if _, present := g.At(row, col); present && (row != pos.Row || col != pos.Col) {
						continue
					}
					if ids, ok := s.block(g, row, col, rows, cols); ok && ids[0] == start {
						out = append(out, rupture.Cluster{ParentID: parentID, Sections: ids})
					}
				}
			}
		}
	}
	return out
}

// block returns the present cells of a block if it passes the shape rules.
func (s *rectangles) block(g *faults.DownDipGrid, row, col, rows, cols int) ([]int, bool) {
	ids, _ := g.Block(row, col, rows, cols)
	if !plausibility.RectangleAllowed(rows, cols, len(ids), s.opts.MinAspect, s.opts.MaxAspect, s.opts.MinFill) {
		return nil, false
	}
	bRows, bCols, ok := plausibility.Bounds(g.Position, ids)
	if !ok || bRows != rows || bCols != cols {
		return nil, false
	}
	if !plausibility.EdgeConnected(g.Adjacent, ids) {
		return nil, false
	}
	return ids, true
}
