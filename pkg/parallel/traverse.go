package parallel

import (
	"cmp"
	"slices"
	"sync"
)

// Traverser walks a graph given by a neighbour function, expanding each
// breadth-first level across a worker pool.
type Traverser[K cmp.Ordered] struct {
	pool      *WorkerPool
	neighbors func(K) []K
}

// NewTraverser creates a traverser. neighbors is called concurrently and must not mutate shared state.
func NewTraverser[K cmp.Ordered](pool *WorkerPool, neighbors func(K) []K) *Traverser[K] {
	return &Traverser[K]{pool: pool, neighbors: neighbors}
}

// BFS returns the starts and every node reachable from them within maxDepth
// hops, level by level with each level sorted. A negative maxDepth is unbounded.
func (t *Traverser[K]) BFS(starts []K, maxDepth int) ([]K, error) {
	visited := &sync.Map{}

	var level []K
	for _, s := range starts {
		if _, seen := visited.LoadOrStore(s, true); !seen {
			level = append(level, s)
		}
	}
	slices.Sort(level)
	result := slices.Clone(level)

	for depth := 0; len(level) > 0 && (maxDepth < 0 || depth < maxDepth); depth++ {
		found, err := Map(t.pool, chunks(level, t.pool.Workers()), func(nodes []K) []K {
			return t.expand(nodes, visited)
		})
		if err != nil {
			return nil, err
		}

		next := make([]K, 0)
		for _, f := range found {
			next = append(next, f...)
		}
		slices.Sort(next)
		result = append(result, next...)
		level = next
	}
	return result, nil
}

func (t *Traverser[K]) expand(nodes []K, visited *sync.Map) []K {
	var found []K
	for _, n := range nodes {
		for _, nb := range t.neighbors(n) {
			if _, seen := visited.LoadOrStore(nb, true); !seen {
				found = append(found, nb)
			}
		}
	}
	return found
}

// Components partitions nodes into groups linked through the neighbour function.
// Each group is sorted and groups are ordered by their smallest node.
func (t *Traverser[K]) Components(nodes []K) ([][]K, error) {
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)

	seen := make(map[K]bool, len(sorted))
	var groups [][]K
	for _, n := range sorted {
		if seen[n] {
			continue
		}
		group, err := t.BFS([]K{n}, -1)
		if err != nil {
			return nil, err
		}
		slices.Sort(group)
		for _, g := range group {
			seen[g] = true
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// chunks splits items into at most workers contiguous pieces
func chunks[K any](items []K, workers int) [][]K {
	size := 1
	if workers > 0 {
		// int64 keeps the intermediate sum from overflowing
		size = int((int64(len(items)) + int64(workers) - 1) / int64(workers))
		if size < 1 {
			size = 1
		}
	}
	out := make([][]K, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		out = append(out, items[i:min(i+size, len(items))])
	}
	return out
}
