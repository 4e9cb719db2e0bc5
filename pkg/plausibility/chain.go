package plausibility

import (
	"sync/atomic"

	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

// RejectionHook is called once per rejected candidate with the first failing filter.
type RejectionHook func(filter string, result Result)

// Chain evaluates filters in order and stops at the first failure.
// It is safe for concurrent use.
type Chain struct {
	filters    []Filter
	rejections []atomic.Int64
	evaluated  atomic.Int64
	hook       RejectionHook
}

// NewChain creates a chain of the given filters
func NewChain(filters ...Filter) *Chain {
	return &Chain{
		filters:    filters,
		rejections: make([]atomic.Int64, len(filters)),
	}
}

// OnReject installs a hook for rejection diagnostics. It must be set before the
// chain is shared between goroutines.
func (c *Chain) OnReject(hook RejectionHook) {
	c.hook = hook
}

// Evaluate runs the chain against a candidate. It returns Pass if every filter
// passes, otherwise the result of the first filter that failed.
func (c *Chain) Evaluate(r *rupture.ClusterRupture) Result {
	res, _ := c.evaluate(r, true)
	return res
}

// Check runs the chain without touching the diagnostics and names the failing filter.
func (c *Chain) Check(r *rupture.ClusterRupture) (Result, string) {
	return c.evaluate(r, false)
}

func (c *Chain) evaluate(r *rupture.ClusterRupture, record bool) (Result, string) {
	if record {
		c.evaluated.Add(1)
	}
	for i, f := range c.filters {
		res := f.Apply(r)
		if res == Pass {
			continue
		}
		if record {
			c.rejections[i].Add(1)
			if c.hook != nil {
				c.hook(f.Name(), res)
			}
		}
		return res, f.Name()
	}
	return Pass, ""
}

// Filters returns the filters in evaluation order
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Evaluated returns how many candidates Evaluate has seen
func (c *Chain) Evaluated() int64 {
	return c.evaluated.Load()
}

// Rejections returns the number of candidates each filter rejected first.
func (c *Chain) Rejections() map[string]int64 {
	out := make(map[string]int64, len(c.filters))
	for i, f := range c.filters {
		out[f.Name()] += c.rejections[i].Load()
	}
	return out
}
