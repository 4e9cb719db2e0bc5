package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-rupset/pkg/config"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geo"
	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/metrics"
	"github.com/dd0wney/cluso-rupset/pkg/rupset"
)

type buildFlags struct {
	configPath    string
	cataloguePath string

	faults   int
	strike   float64
	length   float64
	gap      float64
	offset   float64
	bend     float64
	ifRows   int
	ifCols   int
	ifTileKm float64

	workers  int
	strategy string
	scaling  string
	logLevel string

	list        bool
	showMetrics bool
}

func buildCmd() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a rupture set",
		Long: `Build a rupture set from a YAML catalogue (--catalogue) or from a
synthetic chain of straight faults described by the geometry flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "configuration file (defaults apply when empty)")
	fl.StringVar(&f.cataloguePath, "catalogue", "", "YAML fault catalogue")

	defaults := faults.DefaultSyntheticOptions()
	fl.IntVar(&f.faults, "faults", defaults.NumFaults, "number of synthetic faults")
	fl.Float64Var(&f.strike, "strike", defaults.Strike, "synthetic fault strike in degrees")
	fl.Float64Var(&f.length, "length", defaults.LengthKm, "synthetic fault length in km")
	fl.Float64Var(&f.gap, "gap", defaults.GapKm, "along-strike gap between synthetic faults in km")
	fl.Float64Var(&f.offset, "offset", defaults.OffsetKm, "across-strike offset of every second synthetic fault in km")
	fl.Float64Var(&f.bend, "bend", defaults.BendDeg, "strike change per synthetic fault in degrees")
	fl.IntVar(&f.ifRows, "interface-rows", 0, "rows of a synthetic subduction interface (0 for none)")
	fl.IntVar(&f.ifCols, "interface-cols", 0, "columns of a synthetic subduction interface")
	fl.Float64Var(&f.ifTileKm, "interface-tile", 10, "synthetic interface tile size in km")

	fl.IntVarP(&f.workers, "workers", "w", 0, "worker count (overrides config, 0 keeps it)")
	fl.StringVar(&f.strategy, "strategy", "", "growth strategy: incremental, points or downdip")
	fl.StringVar(&f.scaling, "scaling", "", "scaling relationship: shaw09mod, ellsworth_b or hanks_bakun08")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	fl.BoolVar(&f.list, "list", false, "print every rupture")
	fl.BoolVar(&f.showMetrics, "metrics", false, "print the collected metrics")
	return cmd
}

func runBuild(cmd *cobra.Command, f *buildFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	cat, err := loadCatalogue(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.Level())
	reg := metrics.NewRegistry()

	rs, err := rupset.Build(ctx, cat, cfg, rupset.Options{Logger: log, Metrics: reg})
	if err != nil {
		log.Error("build failed", logging.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSummary(rs))
	if f.list {
		printRuptures(out, rs)
	}
	if f.showMetrics {
		if err := printMetrics(out, reg); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(f *buildFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.workers > 0 {
		cfg.Build.Workers = f.workers
	}
	if f.strategy != "" {
		cfg.Build.Strategy = f.strategy
	}
	if f.scaling != "" {
		cfg.Build.Scaling = f.scaling
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

// catalogueFile is the on-disk layout read by --catalogue.
type catalogueFile struct {
	Crustal    []faults.FaultSection   `yaml:"crustal"`
	Interfaces []faults.InterfaceFault `yaml:"interfaces"`
}

func loadCatalogue(f *buildFlags) (rupset.Catalogue, error) {
	if f.cataloguePath != "" {
		data, err := os.ReadFile(f.cataloguePath)
		if err != nil {
			return rupset.Catalogue{}, fmt.Errorf("read catalogue: %w", err)
		}
		return parseCatalogue(data)
	}

	opts := faults.DefaultSyntheticOptions()
	opts.NumFaults = f.faults
	opts.Strike = f.strike
	opts.LengthKm = f.length
	opts.GapKm = f.gap
	opts.OffsetKm = f.offset
	opts.BendDeg = f.bend
	cat := rupset.Catalogue{Crustal: faults.Synthetic(opts)}

	if f.ifRows > 0 && f.ifCols > 0 {
		origin := geo.NewLocation(opts.Origin.Lat-1, opts.Origin.Lon+2)
		cat.Interfaces = append(cat.Interfaces,
			faults.SyntheticInterface(faults.DefaultInterfaceParentID, "Synthetic interface", origin, opts.Strike, f.ifRows, f.ifCols, f.ifTileKm))
	}
	return cat, nil
}

func parseCatalogue(data []byte) (rupset.Catalogue, error) {
	var file catalogueFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return rupset.Catalogue{}, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(file.Crustal) == 0 && len(file.Interfaces) == 0 {
		return rupset.Catalogue{}, fmt.Errorf("catalogue has no faults")
	}
	return rupset.Catalogue{Crustal: file.Crustal, Interfaces: file.Interfaces}, nil
}

func printRuptures(w io.Writer, rs *rupset.RuptureSet) {
	for _, r := range rs.Ruptures {
		fmt.Fprintf(w, "%6d  M%.2f  rake %7.1f  area %8.1f km²  parents %v  sections %v\n",
			r.ID, r.Magnitude, r.Rake, r.Area*1e-6, r.Parents, r.Sections)
	}
	for _, fail := range rs.Failures {
		fmt.Fprintf(w, "%6d  failed: %v\n", fail.RuptureID, fail.Err)
	}
}

func printMetrics(w io.Writer, reg *metrics.Registry) error {
	samples, err := reg.Snapshot("rupset_")
	if err != nil {
		return err
	}
	for _, s := range samples {
		fmt.Fprintf(w, "%s%s %g\n", s.Name, formatLabels(s.Labels), s.Value)
	}
	return nil
}

func formatLabels(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}
