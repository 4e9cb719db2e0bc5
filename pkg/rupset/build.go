package rupset

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/cluso-rupset/pkg/builder"
	"github.com/dd0wney/cluso-rupset/pkg/config"
	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geometry"
	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/metrics"
	"github.com/dd0wney/cluso-rupset/pkg/parallel"
)

// Catalogue is the fault input of a build, as supplied by a loader.
type Catalogue struct {
	Crustal    []faults.FaultSection
	Interfaces []faults.InterfaceFault
}

// Options carries the ambient collaborators of a build. Zero values are valid.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Tracer  trace.Tracer // defaults to the global provider's "rupset" tracer
}

// pipeline threads the ambient collaborators through the stages of one build.
type pipeline struct {
	ctx    context.Context
	log    logging.Logger
	reg    *metrics.Registry
	tracer trace.Tracer
	stats  Stats
}

// stageRun is one timed, traced pipeline stage.
type stageRun struct {
	p     *pipeline
	name  string
	timer *logging.TimedOperation
	span  trace.Span
}

func (p *pipeline) begin(name, msg string, fields ...logging.Field) *stageRun {
	_, span := p.tracer.Start(p.ctx, "rupset."+name)
	fields = append([]logging.Field{logging.Stage(name)}, fields...)
	return &stageRun{p: p, name: name, timer: logging.StartTimer(p.log, msg, fields...), span: span}
}

func (s *stageRun) end(fields ...logging.Field) {
	d := s.timer.End(fields...)
	s.p.stats.Durations[s.name] = d
	if s.p.reg != nil {
		s.p.reg.ObserveStage(s.name, d)
	}
	s.span.End()
}

func (s *stageRun) fail(err error) error {
	s.timer.EndError(err)
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.span.End()
	return err
}

// Build runs the whole pipeline: subsections, connection graph, enumeration and
// attribute assembly. Crustal parents outside the configured window are
// skipped; interface grids take ids after every crustal subsection.
func Build(ctx context.Context, cat Catalogue, cfg *config.Config, opts Options) (*RuptureSet, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("rupset")
	}

	ctx, span := tracer.Start(ctx, "rupset.Build", trace.WithAttributes(
		attribute.Int("catalogue.crustal", len(cat.Crustal)),
		attribute.Int("catalogue.interfaces", len(cat.Interfaces)),
		attribute.String("build.strategy", cfg.Build.Strategy),
	))
	defer span.End()

	p := &pipeline{
		ctx:    ctx,
		log:    log.With(logging.Component("rupset")),
		reg:    opts.Metrics,
		tracer: tracer,
		stats:  Stats{Durations: make(map[string]time.Duration)},
	}
	rs, err := p.run(cat, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("ruptures", rs.NumRuptures()))
	return rs, nil
}

func (p *pipeline) run(cat Catalogue, cfg *config.Config) (*RuptureSet, error) {
	st := p.begin("subsections", "subsections built")
	list, parents, err := subsections(cat, cfg, p.log)
	if err != nil {
		return nil, st.fail(err)
	}
	p.stats.Parents = parents
	p.stats.Subsections = list.Len()
	st.end(logging.Count(list.Len()), logging.Int("parents", parents))

	st = p.begin("connections", "connections built")
	calc := geometry.NewCalculator(list)
	calc.Warm()
	graph, err := connections.Build(calc, cfg.Connections.MaxJumpDistance)
	if err != nil {
		return nil, st.fail(fmt.Errorf("%w: %w", config.ErrConfiguration, err))
	}
	p.stats.Connections = graph.Count()
	if p.reg != nil {
		p.reg.RecordCatalogue(list.Len(), graph.Count())
	}
	systems, err := faultSystems(graph, cfg.Workers())
	if err != nil {
		return nil, st.fail(err)
	}
	p.stats.Systems = len(systems)
	st.end(logging.Count(graph.Count()), logging.Int("systems", len(systems)))

	conf, err := cfg.PlausibilityConfiguration(graph)
	if err != nil {
		return nil, err
	}
	strat, err := cfg.Strategy(graph)
	if err != nil {
		return nil, err
	}
	b, err := builder.New(conf, strat,
		builder.WithWorkers(cfg.Workers()),
		builder.WithSingleParentRuptures(cfg.Build.SingleParentRuptures),
		builder.WithLogger(p.log),
		builder.WithMetrics(p.reg),
	)
	if err != nil {
		return nil, err
	}
	_, span := p.tracer.Start(p.ctx, "rupset.ruptures", trace.WithAttributes(attribute.String("strategy", strat.Name())))
	start := time.Now()
	accepted, err := b.Build(p.ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	summary := b.Summarize(accepted, time.Since(start))
	span.SetAttributes(attribute.Int("accepted", summary.Ruptures), attribute.Int64("candidates", summary.Candidates))
	span.End()
	p.stats.Candidates = summary.Candidates
	p.stats.Rejections = summary.Rejections
	p.stats.Durations["ruptures"] = summary.Duration

	rel, err := cfg.Scaling()
	if err != nil {
		return nil, err
	}
	st = p.begin("attributes", "attributes assembled", logging.String("scaling", rel.Name()))
	ruptures, failures, err := NewAssembler(rel, cfg.Workers(), p.log, p.reg).Assemble(p.ctx, list, accepted)
	if err != nil {
		return nil, st.fail(err)
	}
	st.end(logging.Count(len(ruptures)), logging.Int("failed", len(failures)))

	if p.reg != nil {
		p.reg.UpdateSystemMetrics()
	}
	return newRuptureSet(list, ruptures, failures, conf, cfg, p.stats), nil
}

func subsections(cat Catalogue, cfg *config.Config, log logging.Logger) (*faults.SectionList, int, error) {
	alloc := faults.NewIDAllocator(0)
	var (
		subs    []faults.Subsection
		parents int
	)
	for _, p := range cat.Crustal {
		if !cfg.InWindow(p.ID) {
			continue
		}
		s, err := faults.Subdivide(p, p.DownDipWidth*cfg.Subsections.MaxLengthFraction, cfg.Subsections.MinPerParent, alloc)
		if err != nil {
			return nil, 0, err
		}
		log.Debug("parent subdivided", logging.ParentID(p.ID), logging.Count(len(s)))
		subs = append(subs, s...)
		parents++
	}

	grids := make([]*faults.DownDipGrid, 0, len(cat.Interfaces))
	for _, iface := range cat.Interfaces {
		grid, s, err := faults.BuildDownDipGrid(iface, alloc)
		if err != nil {
			return nil, 0, err
		}
		log.Debug("interface gridded", logging.ParentID(iface.Parent.ID),
			logging.Int("rows", grid.Rows()), logging.Int("cols", grid.Cols()))
		subs = append(subs, s...)
		grids = append(grids, grid)
		parents++
	}

	list, err := faults.NewSectionList(subs, grids...)
	if err != nil {
		return nil, 0, err
	}
	return list, parents, nil
}

// faultSystems groups parents linked by jumps, directly or through other parents.
func faultSystems(graph *connections.Graph, workers int) ([][]int, error) {
	adj := make(map[int][]int)
	for _, c := range graph.All() {
		adj[c.FromParent] = append(adj[c.FromParent], c.ToParent)
		adj[c.ToParent] = append(adj[c.ToParent], c.FromParent)
	}

	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	parents := graph.Sections().Parents()
	ids := make([]int, len(parents))
	for i, p := range parents {
		ids[i] = p.ID
	}
	return parallel.NewTraverser(pool, func(parent int) []int { return adj[parent] }).Components(ids)
}
