package builder

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

var (
	// ErrNotAdjacent is returned by Verify when two consecutive subsections are not joined
	ErrNotAdjacent = errors.New("subsections are not adjacent")
	// ErrImplausible is returned by Verify when the chain rejects an accepted rupture
	ErrImplausible = errors.New("rupture fails plausibility")
)

// Verify re-checks an accepted rupture on its own: every pair of consecutive
// subsections must be trace-adjacent on one parent, edge-adjacent on a grid, or
// joined by a registered connection within the jump cutoff, no subsection may
// appear twice, and no filter in the chain may reject it.
func Verify(conf *plausibility.Configuration, r *rupture.ClusterRupture) error {
	if conf == nil || conf.Connections == nil || conf.Connections.Graph == nil {
		return ErrNoConfiguration
	}
	graph := conf.Connections.Graph

	seen := make(map[int]bool, r.NumSections())
	for _, id := range r.Sections() {
		if seen[id] {
			return fmt.Errorf("%w: subsection %d appears twice", ErrNotAdjacent, id)
		}
		seen[id] = true
	}

	for i := 0; i < r.NumClusters(); i++ {
		if err := verifyCluster(graph, r.Cluster(i)); err != nil {
			return err
		}
	}

	for _, j := range r.Jumps() {
		from, to := r.Cluster(j.FromCluster), r.Cluster(j.ToCluster)
		if !from.Contains(j.From) || to.First() != j.To {
			return fmt.Errorf("%w: jump %d->%d does not join its clusters", ErrNotAdjacent, j.From, j.To)
		}
		conn, err := graph.Lookup(j.From, j.To)
		if err != nil {
			return fmt.Errorf("%w: jump %d->%d: %w", ErrNotAdjacent, j.From, j.To, err)
		}
		if conn.Distance > conf.Connections.MaxJumpDistance {
			return fmt.Errorf("%w: jump %d->%d is %.2f km, cutoff %.2f km",
				ErrNotAdjacent, j.From, j.To, conn.Distance, conf.Connections.MaxJumpDistance)
		}
	}

	if res, filter := conf.Chain.Check(r); res != plausibility.Pass {
		return fmt.Errorf("%w: %s: %s", ErrImplausible, filter, res)
	}
	return nil
}

func verifyCluster(graph *connections.Graph, c rupture.Cluster) error {
	sections := graph.Sections()
	for _, id := range c.Sections {
		if sections.ParentOf(id) != c.ParentID {
			return fmt.Errorf("%w: subsection %d is not on parent %d", ErrNotAdjacent, id, c.ParentID)
		}
	}

	if grid := sections.Grid(c.ParentID); grid != nil {
		if c.Len() == 1 {
			return nil
		}
		for _, a := range c.Sections {
			touches := false
			for _, b := range c.Sections {
				if grid.Adjacent(a, b) {
					touches = true
					break
				}
			}
			if !touches {
				return fmt.Errorf("%w: grid subsection %d touches no other subsection of its cluster", ErrNotAdjacent, a)
			}
		}
		return nil
	}

	for k := 1; k < c.Len(); k++ {
		a, b := c.Sections[k-1], c.Sections[k]
		if b-a != 1 && a-b != 1 {
			return fmt.Errorf("%w: %d and %d on parent %d", ErrNotAdjacent, a, b, c.ParentID)
		}
	}
	return nil
}
