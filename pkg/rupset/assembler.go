package rupset

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/metrics"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
	"github.com/dd0wney/cluso-rupset/pkg/scaling"
)

// Rupture is an accepted rupture with its attributes.
type Rupture struct {
	ID       int
	Sections []int // ordered subsection ids
	Parents  []int // parent ids in cluster order
	Clusters int
	Attributes
}

// AssemblyFailure names a rupture whose attributes could not be computed.
type AssemblyFailure struct {
	RuptureID int
	Sections  []int
	Err       error
}

func (f AssemblyFailure) Error() string {
	return fmt.Sprintf("rupture %d: %v", f.RuptureID, f.Err)
}

func (f AssemblyFailure) Unwrap() error {
	return f.Err
}

// Assembler computes attributes for accepted ruptures in parallel.
type Assembler struct {
	rel     scaling.Relationship
	workers int
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewAssembler creates an assembler. workers below 1 means runtime.NumCPU.
// logger and reg may be nil.
func NewAssembler(rel scaling.Relationship, workers int, logger logging.Logger, reg *metrics.Registry) *Assembler {
	if rel == nil {
		rel = scaling.Default()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Assembler{rel: rel, workers: workers, logger: logger, metrics: reg}
}

// Assemble assigns ids in input order and computes attributes. A rupture whose
// scaling inputs are out of domain is reported as a failure and left out of the
// result; it does not stop the others. Only cancellation returns an error.
func (a *Assembler) Assemble(ctx context.Context, sections *faults.SectionList, ruptures []*rupture.ClusterRupture) ([]Rupture, []AssemblyFailure, error) {
	type slot struct {
		r   Rupture
		err error
	}
	slots := make([]slot, len(ruptures))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, cr := range ruptures {
		i, cr := i, cr
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ids := cr.Sections()
			attrs, err := ComputeAttributes(sections, a.rel, ids)
			slots[i] = slot{
				r: Rupture{
					ID:         i,
					Sections:   ids,
					Parents:    clusterParents(cr),
					Clusters:   cr.NumClusters(),
					Attributes: attrs,
				},
				err: err,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]Rupture, 0, len(ruptures))
	var failures []AssemblyFailure
	for _, s := range slots {
		if s.err != nil {
			failures = append(failures, AssemblyFailure{RuptureID: s.r.ID, Sections: s.r.Sections, Err: s.err})
			a.logger.Warn("rupture attributes failed", logging.RuptureID(s.r.ID), logging.Error(s.err))
			if a.metrics != nil {
				a.metrics.RecordAssemblyFailure()
			}
			continue
		}
		out = append(out, s.r)
	}
	return out, failures, nil
}

func clusterParents(r *rupture.ClusterRupture) []int {
	out := make([]int, 0, r.NumClusters())
	for _, c := range r.Primary() {
		out = append(out, c.ParentID)
	}
	for _, splay := range r.Splays() {
		for _, c := range splay {
			out = append(out, c.ParentID)
		}
	}
	return out
}
