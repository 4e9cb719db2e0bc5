// Package config is the configuration surface of a rupture set build.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/logging"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
	"github.com/dd0wney/cluso-rupset/pkg/scaling"
	"github.com/dd0wney/cluso-rupset/pkg/strategy"
	"github.com/dd0wney/cluso-rupset/pkg/validation"
)

// ErrConfiguration is returned when a configuration cannot be loaded or is invalid.
var ErrConfiguration = errors.New("invalid configuration")

// Config holds every tunable of a build
type Config struct {
	Subsections  SubsectionConfig   `yaml:"subsections"`
	Connections  ConnectionConfig   `yaml:"connections"`
	Plausibility PlausibilityConfig `yaml:"plausibility"`
	DownDip      DownDipConfig      `yaml:"down_dip"`
	Build        BuildConfig        `yaml:"build"`
	LogLevel     string             `yaml:"log_level"`
}

// SubsectionConfig controls subdivision of parent sections.
type SubsectionConfig struct {
	// MaxLengthFraction is the maximum subsection length as a fraction of down-dip width.
	MaxLengthFraction float64 `yaml:"max_length_fraction" validate:"gt=0"`
	MinPerParent      int     `yaml:"min_per_parent" validate:"min=1"`
	// MaxFaultSections and SkipFaultSections keep only parents with
	// skip <= id < skip+max. Zero MaxFaultSections keeps every parent.
	MaxFaultSections  int `yaml:"max_fault_sections" validate:"min=0"`
	SkipFaultSections int `yaml:"skip_fault_sections" validate:"min=0"`
}

// ConnectionConfig controls the connection graph
type ConnectionConfig struct {
	MaxJumpDistance float64 `yaml:"max_jump_distance_km" validate:"gt=0"`
}

// PlausibilityConfig controls the filter chain
type PlausibilityConfig struct {
	MaxAzimuthChange           float64        `yaml:"max_azimuth_change" validate:"gt=0"`
	MaxTotalAzimuthChange      float64        `yaml:"max_total_azimuth_change" validate:"gt=0"`
	MaxCumulativeAzimuthChange float64        `yaml:"max_cumulative_azimuth_change" validate:"gt=0"`
	MinSubSectsPerParent       int            `yaml:"min_sub_sects_per_parent" validate:"min=1"`
	MaxSplays                  int            `yaml:"max_splays" validate:"min=0"`
	FaultIDs                   *FaultIDConfig `yaml:"fault_ids,omitempty"`
}

// FaultIDConfig enables the fault id filter
type FaultIDConfig struct {
	Mode string `yaml:"mode"`
	IDs  []int  `yaml:"ids"`
}

// DownDipConfig constrains rectangles on down-dip grids
type DownDipConfig struct {
	MinAspect          float64 `yaml:"min_aspect" validate:"gte=1"`
	MaxAspect          float64 `yaml:"max_aspect"`
	MinFill            float64 `yaml:"min_fill" validate:"gt=0,lte=1"`
	PositionCoarseness float64 `yaml:"position_coarseness" validate:"gte=0"`
	SizeCoarseness     float64 `yaml:"size_coarseness" validate:"gte=0"`
}

// BuildConfig controls enumeration and assembly
type BuildConfig struct {
	Strategy             string `yaml:"strategy"`
	Workers              int    `yaml:"workers" validate:"min=0"`
	SingleParentRuptures bool   `yaml:"single_parent_ruptures"`
	Scaling              string `yaml:"scaling"`
}

// Default returns the standard build configuration
func Default() *Config {
	return &Config{
		Subsections: SubsectionConfig{
			MaxLengthFraction: faults.DefaultLengthFraction,
			MinPerParent:      faults.DefaultMinSubsections,
		},
		Connections: ConnectionConfig{
			MaxJumpDistance: connections.DefaultMaxJumpDistance,
		},
		Plausibility: PlausibilityConfig{
			MaxAzimuthChange:           plausibility.DefaultMaxAzimuthChange,
			MaxTotalAzimuthChange:      plausibility.DefaultMaxTotalAzimuthChange,
			MaxCumulativeAzimuthChange: plausibility.DefaultMaxCumulativeAzimuthChange,
			MinSubSectsPerParent:       plausibility.DefaultMinSectsPerParent,
			MaxSplays:                  plausibility.DefaultMaxSplays,
		},
		DownDip: DownDipConfig{
			MinAspect: plausibility.DefaultMinAspect,
			MaxAspect: plausibility.DefaultMaxAspect,
			MinFill:   plausibility.DefaultMinFill,
		},
		Build: BuildConfig{
			Strategy:             string(strategy.Incremental),
			SingleParentRuptures: true,
			Scaling:              scaling.Shaw09ModName,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfiguration, path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode: %w", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks field ranges and cross-field rules
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	cv := validation.NewConfigValidator("Config")
	cv.OrderedFloat("DownDip.MinAspect", c.DownDip.MinAspect, "DownDip.MaxAspect", c.DownDip.MaxAspect).
		Finite("DownDip.MaxAspect", c.DownDip.MaxAspect).
		Custom("Build.Strategy", func() error {
			_, err := strategy.ParseKind(c.Build.Strategy)
			return err
		}).
		Custom("Build.Scaling", func() error {
			_, err := scaling.Parse(c.Build.Scaling)
			return err
		}).
		When(c.LogLevel != "", func(cv *validation.ConfigValidator) {
			cv.OneOf("LogLevel", c.LogLevel, logging.LevelNames())
		}).
		When(c.Plausibility.FaultIDs != nil, func(cv *validation.ConfigValidator) {
			cv.NotEmpty("Plausibility.FaultIDs.IDs", len(c.Plausibility.FaultIDs.IDs)).
				Custom("Plausibility.FaultIDs.Mode", func() error {
					_, err := plausibility.ParseFaultIDMode(c.Plausibility.FaultIDs.Mode)
					return err
				})
		})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// Workers returns the configured pool size, or the number of CPUs when unset
func (c *Config) Workers() int {
	if c.Build.Workers > 0 {
		return c.Build.Workers
	}
	return runtime.NumCPU()
}

// Level returns the configured log level
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// RectangleOptions returns the down-dip block constraints
func (c *Config) RectangleOptions() strategy.RectangleOptions {
	return strategy.RectangleOptions{
		MinAspect:          c.DownDip.MinAspect,
		MaxAspect:          c.DownDip.MaxAspect,
		MinFill:            c.DownDip.MinFill,
		PositionCoarseness: c.DownDip.PositionCoarseness,
		SizeCoarseness:     c.DownDip.SizeCoarseness,
	}
}

// Strategy builds the configured growth strategy over graph
func (c *Config) Strategy(graph *connections.Graph) (strategy.Strategy, error) {
	kind, err := strategy.ParseKind(c.Build.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	s, err := strategy.New(kind, graph, c.RectangleOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return s, nil
}

// Scaling returns the configured scaling relationship
func (c *Config) Scaling() (scaling.Relationship, error) {
	rel, err := scaling.Parse(c.Build.Scaling)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return rel, nil
}

// PlausibilityConfiguration freezes the filter chain for graph. Rectangularity
// is added when the catalogue contains a down-dip grid.
func (c *Config) PlausibilityConfiguration(graph *connections.Graph) (*plausibility.Configuration, error) {
	p := c.Plausibility
	b := plausibility.NewBuilder(graph).
		JumpAzimuthChange(p.MaxAzimuthChange).
		TotalAzimuthChange(p.MaxTotalAzimuthChange).
		CumulativeAzimuthChange(p.MaxCumulativeAzimuthChange).
		MinSectsPerParent(p.MinSubSectsPerParent).
		MaxSplays(p.MaxSplays)
	if p.FaultIDs != nil {
		mode, err := plausibility.ParseFaultIDMode(p.FaultIDs.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		b.FaultIDs(mode, p.FaultIDs.IDs)
	}
	if graph != nil && len(graph.Sections().Grids()) > 0 {
		b.Rectangularity(c.DownDip.MinAspect, c.DownDip.MaxAspect, c.DownDip.MinFill)
	}
	conf, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return conf, nil
}

// InWindow reports whether a parent id passes the MaxFaultSections/SkipFaultSections window.
func (c *Config) InWindow(parentID int) bool {
	s := c.Subsections
	if parentID < s.SkipFaultSections {
		return false
	}
	return s.MaxFaultSections == 0 || parentID < s.SkipFaultSections+s.MaxFaultSections
}
