package plausibility

import (
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
)

// Bounds returns the rows and columns of the bounding rectangle of ids on a grid.
// ok is false if any id has no grid position.
func Bounds(position func(id int) (faults.GridPos, bool), ids []int) (rows, cols int, ok bool) {
	if len(ids) == 0 {
		return 0, 0, false
	}
	minR, minC := math.MaxInt, math.MaxInt
	maxR, maxC := -1, -1
	for _, id := range ids {
		p, found := position(id)
		if !found {
			return 0, 0, false
		}
		minR, maxR = min(minR, p.Row), max(maxR, p.Row)
		minC, maxC = min(minC, p.Col), max(maxC, p.Col)
	}
	return maxR - minR + 1, maxC - minC + 1, true
}

// RectangleAllowed reports whether a rows x cols rectangle holding present cells
// satisfies the aspect bounds and the minimum fill.
func RectangleAllowed(rows, cols, present int, minAspect, maxAspect, minFill float64) bool {
	if rows < 1 || cols < 1 || present < 1 {
		return false
	}
	aspect := float64(max(rows, cols)) / float64(min(rows, cols))
	if aspect < minAspect-fillTolerance || aspect > maxAspect+fillTolerance {
		return false
	}
	fill := float64(present) / float64(rows*cols)
	return fill >= minFill-fillTolerance
}

// EdgeConnected reports whether ids form one component under adjacent.
// A single cell is connected.
func EdgeConnected(adjacent func(a, b int) bool, ids []int) bool {
	if len(ids) == 0 {
		return false
	}
	seen := make([]bool, len(ids))
	seen[0] = true
	queue := []int{0}
	reached := 1
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for j := range ids {
			if !seen[j] && adjacent(ids[i], ids[j]) {
				seen[j] = true
				reached++
				queue = append(queue, j)
			}
		}
	}
	return reached == len(ids)
}
