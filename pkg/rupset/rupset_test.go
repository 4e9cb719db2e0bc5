package rupset

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dd0wney/cluso-rupset/pkg/config"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geo"
	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/metrics"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
	"github.com/dd0wney/cluso-rupset/pkg/scaling"
)

// straight returns n collinear faults 3 km apart that each split into two 4.9 km subsections.
func straight(n int) []faults.FaultSection {
	opts := faults.DefaultSyntheticOptions()
	opts.NumFaults = n
	opts.Strike = 90
	opts.LengthKm = 9.8
	opts.DownDipWidth = 10
	opts.GapKm = 3
	opts.OffsetKm = 0
	return faults.Synthetic(opts)
}

func sectionList(t *testing.T, parents []faults.FaultSection) *faults.SectionList {
	t.Helper()
	subs, err := faults.SubdivideAll(parents, faults.DefaultLengthFraction, faults.DefaultMinSubsections, faults.NewIDAllocator(0))
	require.NoError(t, err)
	list, err := faults.NewSectionList(subs)
	require.NoError(t, err)
	return list
}

func TestNormalizeRake(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{-180, 180},
		{270, -90},
		{-270, 90},
		{540, 180},
		{-90, -90},
	}
	for _, tt := range tests {
		if got := normalizeRake(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeRake(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeAttributes(t *testing.T) {
	parents := straight(2)
	parents[0].Rake = 170
	parents[1].Rake = -170
	list := sectionList(t, parents)

	a, err := ComputeAttributes(list, scaling.EllsworthB{}, []int{0, 1, 2, 3})
	require.NoError(t, err)

	assert.InDelta(t, 196e6, a.Area, 1e6)
	assert.InDelta(t, a.Area, a.AreaOriginal, 1e-6)
	assert.InDelta(t, 19.6e3, a.Length, 100)
	assert.InDelta(t, 10e3, a.Width, 1)
	// equal areas either side of 180 average to 180, not 0
	assert.InDelta(t, 180, math.Abs(a.Rake), 1e-3)
	assert.InDelta(t, 4.2+math.Log10(a.Area*1e-6), a.Magnitude, 1e-9)
	assert.InDelta(t, scaling.SlipFromMoment(scaling.MomentFromMagnitude(a.Magnitude), a.Area), a.AverageSlip, 1e-9)
}

func TestComputeAttributes_AreaWeightedRake(t *testing.T) {
	parents := straight(2)
	parents[0].Rake = 0
	parents[1].Rake = 90
	parents[1].Aseismicity = 0.5 // half the weight
	list := sectionList(t, parents)

	a, err := ComputeAttributes(list, scaling.Default(), []int{0, 1, 2, 3})
	require.NoError(t, err)
	want := math.Atan2(0.5, 1) * 180 / math.Pi
	assert.InDelta(t, want, a.Rake, 1e-6)
	assert.Less(t, a.Area, a.AreaOriginal)
}

func TestComputeAttributes_Errors(t *testing.T) {
	parents := straight(1)
	parents[0].Aseismicity = 1
	list := sectionList(t, parents)

	_, err := ComputeAttributes(list, scaling.Default(), []int{0, 1})
	assert.ErrorIs(t, err, scaling.ErrScalingDomain)

	_, err = ComputeAttributes(list, scaling.Default(), []int{7})
	assert.ErrorIs(t, err, faults.ErrUnknownSection)
}

func TestAssembler_IsolatesFailures(t *testing.T) {
	parents := straight(2)
	parents[1].Aseismicity = 1
	list := sectionList(t, parents)

	var ruptures []*rupture.ClusterRupture
	for _, c := range []rupture.Cluster{rupture.NewCluster(0, 0, 1), rupture.NewCluster(1, 2, 3)} {
		r, err := rupture.New(c)
		require.NoError(t, err)
		ruptures = append(ruptures, r)
	}

	var logs bytes.Buffer
	reg := metrics.NewRegistry()
	a := NewAssembler(nil, 2, logging.NewJSONLogger(&logs, logging.InfoLevel), reg)
	out, failures, err := a.Assemble(context.Background(), list, ruptures)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].ID)
	assert.Equal(t, []int{0}, out[0].Parents)

	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].RuptureID)
	assert.Equal(t, []int{2, 3}, failures[0].Sections)
	assert.ErrorIs(t, failures[0], scaling.ErrScalingDomain)
	assert.Contains(t, logs.String(), `"rupture_id":1`)
}

func TestBuild_TwoParents(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Workers = 2
	reg := metrics.NewRegistry()

	rs, err := Build(context.Background(), Catalogue{Crustal: straight(2)}, cfg, Options{Metrics: reg})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rs.RunID)
	require.Equal(t, 3, rs.NumRuptures())
	assert.Empty(t, rs.Failures)

	want := [][]int{{0, 1}, {0, 1, 2, 3}, {2, 3}}
	for i, r := range rs.Ruptures {
		assert.Equal(t, i, r.ID)
		assert.Equal(t, want[i], r.Sections)
	}
	joint, ok := rs.Rupture(1)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, joint.Parents)
	assert.Equal(t, 2, joint.Clusters)
	assert.Greater(t, joint.Magnitude, rs.Ruptures[0].Magnitude)
	assert.InDelta(t, 5.97, rs.Ruptures[0].Magnitude, 0.01)

	lo, hi := rs.MagnitudeRange()
	assert.InDelta(t, rs.Ruptures[0].Magnitude, lo, 1e-6)
	assert.Equal(t, joint.Magnitude, hi)

	assert.Equal(t, []int{0, 1}, rs.RupturesFor(0))
	assert.Equal(t, []int{1, 2}, rs.RupturesFor(3))

	require.Len(t, rs.SlipRates(), 4)
	assert.InDelta(t, 0.005, rs.SlipRates()[0], 1e-12)
	assert.InDelta(t, 49e6, rs.SectionAreas(true)[0], 1e6)

	assert.Equal(t, 2, rs.Stats.Parents)
	assert.Equal(t, 4, rs.Stats.Subsections)
	assert.Equal(t, 2, rs.Stats.Connections)
	assert.Equal(t, 1, rs.Stats.Systems)
	assert.Positive(t, rs.Stats.Candidates)
	assert.Contains(t, rs.Stats.Durations, "ruptures")
	assert.True(t, strings.Contains(rs.Info, "filters: max_splays, jump_azimuth_change"))

	samples, err := reg.Snapshot("rupset_ruptures_accepted")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 3.0, samples[0].Value)
}

func TestBuild_WorkerIndependent(t *testing.T) {
	cat := Catalogue{Crustal: straight(5)}
	var previous [][]int
	for _, workers := range []int{1, 3, 8} {
		cfg := config.Default()
		cfg.Build.Workers = workers
		rs, err := Build(context.Background(), cat, cfg, Options{})
		require.NoError(t, err)

		var got [][]int
		for _, r := range rs.Ruptures {
			got = append(got, r.Sections)
		}
		if previous != nil {
			assert.Equal(t, previous, got, "workers=%d", workers)
		}
		previous = got
	}
	// every contiguous run of whole faults
	assert.Len(t, previous, 15)
}

func TestBuild_Window(t *testing.T) {
	cfg := config.Default()
	cfg.Subsections.MaxFaultSections = 2
	cfg.Subsections.SkipFaultSections = 1

	rs, err := Build(context.Background(), Catalogue{Crustal: straight(4)}, cfg, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, rs.Stats.Parents)
	var ids []int
	for _, p := range rs.Sections.Parents() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{1, 2}, ids)
}

func TestBuild_InterfaceAfterCrustal(t *testing.T) {
	iface := faults.SyntheticInterface(faults.DefaultInterfaceParentID, "Interface", geo.NewLocation(-38, 178), 30, 2, 3, 10)
	cfg := config.Default()
	cfg.Build.Strategy = "downdip"

	rs, err := Build(context.Background(), Catalogue{Crustal: straight(2), Interfaces: []faults.InterfaceFault{iface}}, cfg, Options{})
	require.NoError(t, err)

	require.Equal(t, 10, rs.Sections.Len())
	p, ok := rs.Sections.Parent(faults.DefaultInterfaceParentID)
	require.True(t, ok)
	assert.Equal(t, 4, p.First)
	assert.Equal(t, 6, p.Count)
	assert.Contains(t, rs.Info, "rectangularity")
	assert.Equal(t, 2, rs.Stats.Systems, "the interface is far from the crustal chain")

	var gridRuptures int
	for _, r := range rs.Ruptures {
		if r.Parents[0] == faults.DefaultInterfaceParentID {
			gridRuptures++
		}
	}
	assert.Equal(t, 12, gridRuptures)
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.DownDip.MinAspect = 5
	_, err := Build(context.Background(), Catalogue{Crustal: straight(2)}, cfg, Options{})
	assert.ErrorIs(t, err, config.ErrConfiguration)

	bad := straight(1)
	bad[0].DownDipWidth = 0
	_, err = Build(context.Background(), Catalogue{Crustal: bad}, nil, Options{})
	assert.ErrorIs(t, err, faults.ErrInvalidGeometry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, Catalogue{Crustal: straight(2)}, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, err := Build(context.Background(), Catalogue{Crustal: straight(2)}, nil, Options{Tracer: tp.Tracer("test")})
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{
		"rupset.subsections", "rupset.connections", "rupset.ruptures", "rupset.attributes", "rupset.Build",
	}, names)

	bad := straight(1)
	bad[0].DownDipWidth = 0
	recorder = tracetest.NewSpanRecorder()
	tp = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, err = Build(context.Background(), Catalogue{Crustal: bad}, nil, Options{Tracer: tp.Tracer("test")})
	require.Error(t, err)
	for _, span := range recorder.Ended() {
		assert.Equal(t, codes.Error, span.Status().Code, span.Name())
	}
}
