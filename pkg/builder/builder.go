// Package builder enumerates every plausible multi-fault rupture.
//
// Each subsection is a start point. From a start, the growth strategy proposes
// clusters on the start's parent; every candidate is run through the
// plausibility chain, accepted when it passes, and extended across connections
// while the chain reports that extension could still succeed. Start points run
// as independent tasks on a worker pool and share only the read-only
// connection graph, geometry cache and chain.
package builder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/metrics"
	"github.com/dd0wney/cluso-rupset/pkg/parallel"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
	"github.com/dd0wney/cluso-rupset/pkg/strategy"
)

// ErrNoConfiguration is returned when the builder has no plausibility configuration or strategy.
var ErrNoConfiguration = errors.New("builder requires a plausibility configuration and a strategy")

// ClusterRuptureBuilder grows ruptures from every start subsection in parallel.
type ClusterRuptureBuilder struct {
	conf         *plausibility.Configuration
	strategy     strategy.Strategy
	workers      int
	singleParent bool
	logger       logging.Logger
	metrics      *metrics.Registry
}

// Option configures a ClusterRuptureBuilder
type Option func(*ClusterRuptureBuilder)

// WithWorkers sets the pool size. Values below 1 use runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(b *ClusterRuptureBuilder) {
		b.workers = n
	}
}

// WithSingleParentRuptures controls whether ruptures on one parent are accepted.
func WithSingleParentRuptures(enabled bool) Option {
	return func(b *ClusterRuptureBuilder) {
		b.singleParent = enabled
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(b *ClusterRuptureBuilder) {
		b.logger = l
	}
}

// WithMetrics records candidates, rejections and per-start counts into reg.
// The chain's rejection hook is installed by New, before any worker starts.
func WithMetrics(reg *metrics.Registry) Option {
	return func(b *ClusterRuptureBuilder) {
		b.metrics = reg
	}
}

// New creates a builder for one run
func New(conf *plausibility.Configuration, strat strategy.Strategy, opts ...Option) (*ClusterRuptureBuilder, error) {
	if conf == nil || conf.Chain == nil || conf.Connections == nil || conf.Connections.Graph == nil || strat == nil {
		return nil, ErrNoConfiguration
	}
	b := &ClusterRuptureBuilder{
		conf:         conf,
		strategy:     strat,
		singleParent: true,
		logger:       logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = runtime.NumCPU()
	}
	if b.metrics != nil {
		reg := b.metrics
		conf.Chain.OnReject(func(filter string, result plausibility.Result) {
			reg.RecordRejection(filter, result.String())
		})
	}
	return b, nil
}

// Workers returns the pool size the builder runs with
func (b *ClusterRuptureBuilder) Workers() int {
	return b.workers
}

// Build enumerates every accepted rupture. The result is independent of the
// worker count: duplicates of the same subsection set keep the
// lexicographically smallest ordering, and the set is sorted by section list.
func (b *ClusterRuptureBuilder) Build(ctx context.Context) ([]*rupture.ClusterRupture, error) {
	sections := b.conf.Connections.Graph.Sections()
	starts := make([]int, 0, sections.Len())
	for _, s := range sections.All() {
		starts = append(starts, s.ID)
	}

	log := b.logger.With(logging.Component("builder"), logging.Strategy(b.strategy.Name()))
	timer := logging.StartTimer(log, "ruptures built", logging.Stage("ruptures"), logging.Workers(b.workers))

	pool, err := parallel.NewWorkerPool(b.workers, parallel.WithPanicHandler(func(r any) {
		log.Error("enumeration task panicked", logging.Any("panic", r))
	}))
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	perStart, err := parallel.Map(pool, starts, func(start int) []*rupture.ClusterRupture {
		if ctx.Err() != nil {
			return nil
		}
		found := b.fromStart(start)
		if b.metrics != nil {
			b.metrics.RecordStartSection(len(found))
		}
		log.Debug("start section done", logging.SectionID(start), logging.Count(len(found)))
		return found
	})
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("enumerate ruptures: %w", err)
	}
	if err := ctx.Err(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	out := union(perStart)
	if b.metrics != nil {
		b.metrics.RecordAccepted(len(out))
		b.metrics.ObserveStage("ruptures", timer.Elapsed())
	}
	timer.End(logging.Count(len(out)), logging.Int64("candidates", b.conf.Chain.Evaluated()))
	return out, nil
}

// fromStart grows every rupture whose first cluster begins at start.
func (b *ClusterRuptureBuilder) fromStart(start int) []*rupture.ClusterRupture {
	parentID := b.conf.Connections.Graph.Sections().ParentOf(start)
	var found []*rupture.ClusterRupture
	for _, c := range b.strategy.Permutations(parentID, start) {
		r, err := rupture.New(c)
		if err != nil {
			continue
		}
		found = b.grow(r, found)
	}
	return found
}

func (b *ClusterRuptureBuilder) grow(r *rupture.ClusterRupture, found []*rupture.ClusterRupture) []*rupture.ClusterRupture {
	if b.metrics != nil {
		b.metrics.RecordCandidate(b.strategy.Name())
	}
	res := b.conf.Chain.Evaluate(r)
	if res.Passed() && (b.singleParent || r.NumClusters() > 1) {
		found = append(found, r)
	}
	if !res.CanContinue() {
		return found
	}

	graph := b.conf.Connections.Graph
	for _, conn := range graph.From(r.LastCluster().Last()) {
		if r.ContainsParent(conn.ToParent) {
			continue
		}
		for _, c := range b.strategy.Permutations(conn.ToParent, conn.To) {
			next, err := r.Extend(conn.To, conn.Distance, c)
			if err != nil {
				continue
			}
			found = b.grow(next, found)
		}
	}
	return found
}

// union merges per-start results by content and sorts them into id order.
func union(perStart [][]*rupture.ClusterRupture) []*rupture.ClusterRupture {
	byKey := make(map[string]*rupture.ClusterRupture)
	for _, found := range perStart {
		for _, r := range found {
			key := r.Key()
			if prev, ok := byKey[key]; !ok || slices.Compare(r.Sections(), prev.Sections()) < 0 {
				byKey[key] = r
			}
		}
	}

	out := make([]*rupture.ClusterRupture, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, c *rupture.ClusterRupture) int {
		return slices.Compare(a.Sections(), c.Sections())
	})
	return out
}

// Summary describes a finished enumeration
type Summary struct {
	Ruptures   int
	Candidates int64
	Rejections map[string]int64
	Duration   time.Duration
}

// Summarize reports counts for ruptures built with this builder's chain.
func (b *ClusterRuptureBuilder) Summarize(ruptures []*rupture.ClusterRupture, d time.Duration) Summary {
	return Summary{
		Ruptures:   len(ruptures),
		Candidates: b.conf.Chain.Evaluated(),
		Rejections: b.conf.Chain.Rejections(),
		Duration:   d,
	}
}
