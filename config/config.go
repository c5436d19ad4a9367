// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"time"

	"github.com/rzzju/Unicycler/internal/align"
	"github.com/rzzju/Unicycler/internal/bridge"
	"github.com/rzzju/Unicycler/internal/mapping"
	"github.com/rzzju/Unicycler/internal/traverse"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// eg ASM_BRIDGING_MIN_IDENTITY
const EnvPrefix = "ASM"

// AlignmentConfig is settings for the alignment primitive
type AlignmentConfig struct {
	align.Scoring `mapstructure:",squash"`

	// the longest query or reference that will be aligned
	MaxSequenceLength int `mapstructure:"max-sequence-length"`

	// the most DP cells a single alignment may fill
	MaxCells int64 `mapstructure:"max-cells"`

	// starting half-width of the traceback band
	BandPadding int `mapstructure:"band-padding"`
}

// AnchorConfig is settings for picking anchors and placing reads on them
type AnchorConfig struct {
	// the shortest segment that can be an anchor
	MinLength int `mapstructure:"min-length"`

	// anchors are at most this many times the median depth
	MaxDepthRatio float64 `mapstructure:"max-depth-ratio"`

	mapping.Options `mapstructure:",squash"`
}

// BridgingConfig is settings for voting on bridges
type BridgingConfig struct {
	bridge.Thresholds `mapstructure:",squash"`

	// the number of alignment workers
	Threads int `mapstructure:"threads"`

	// extra anchor sequence kept on either side of a path reference
	RefSlop int `mapstructure:"ref-slop"`
}

// PassConfig bounds the bridging loop
type PassConfig struct {
	// the maximum number of bridging passes
	Max int `mapstructure:"max"`

	// wall clock budget for the whole loop, zero for none
	TimeBudget time.Duration `mapstructure:"time-budget"`

	// closed cycles at least this long are completed replicons
	MinRepliconLength int `mapstructure:"min-replicon-length"`
}

// OutputConfig is settings for what's written at the end of a run
type OutputConfig struct {
	// merge non-branching chains in the final graph
	Merge bool `mapstructure:"merge"`

	// indent the JSON report
	Indent bool `mapstructure:"indent"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file and those
// available from the command line
type Config struct {
	// Alignment scoring and resource bounds
	Alignment AlignmentConfig `mapstructure:"alignment"`

	// Anchors selection and read mapping
	Anchors AnchorConfig `mapstructure:"anchors"`

	// Paths bounds candidate path generation
	Paths traverse.Limits `mapstructure:"paths"`

	// Bridging vote thresholds and workers
	Bridging BridgingConfig `mapstructure:"bridging"`

	// Passes bounds the loop
	Passes PassConfig `mapstructure:"passes"`

	// Output settings
	Output OutputConfig `mapstructure:"output"`
}

func init() {
	SetDefaults(viper.GetViper())
}

// SetDefaults registers every setting's default on v
func SetDefaults(v *viper.Viper) {
	s := align.DefaultScoring()
	v.SetDefault("alignment.match", s.Match)
	v.SetDefault("alignment.mismatch", s.Mismatch)
	v.SetDefault("alignment.gap-open", s.GapOpen)
	v.SetDefault("alignment.gap-extend", s.GapExtend)
	v.SetDefault("alignment.max-sequence-length", 200000)
	v.SetDefault("alignment.max-cells", int64(2e9))
	v.SetDefault("alignment.band-padding", 64)

	v.SetDefault("anchors.min-length", 1000)
	v.SetDefault("anchors.max-depth-ratio", 1.5)
	v.SetDefault("anchors.k", 15)
	v.SetDefault("anchors.flank", 500)
	v.SetDefault("anchors.min-seed-hits", 8)
	v.SetDefault("anchors.band", 50)
	v.SetDefault("anchors.max-kmer-occurrences", 8)

	v.SetDefault("paths.max-length", 50000)
	v.SetDefault("paths.max-depth", 50)
	v.SetDefault("paths.max-repeat-visits", 2)
	v.SetDefault("paths.max-candidates", 64)

	v.SetDefault("bridging.min-identity", 75.0)
	v.SetDefault("bridging.min-support-reads", 3)
	v.SetDefault("bridging.dominance-margin", 0.6)
	v.SetDefault("bridging.threads", 4)
	v.SetDefault("bridging.ref-slop", 100)

	v.SetDefault("passes.max", 5)
	v.SetDefault("passes.time-budget", "0s")
	v.SetDefault("passes.min-replicon-length", 1000)

	v.SetDefault("output.merge", true)
	v.SetDefault("output.indent", true)
}

// New returns a new Config struct populated by the global Viper's
// settings (settings file, environment and command line flags)
func New() (*Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper decodes a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	return &c, nil
}

// Default returns the Config with every setting at its default
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	c, err := FromViper(v)
	if err != nil {
		panic(err) // only the defaults above, which decode
	}
	return c
}

// Validate checks that every setting is in range
func (c *Config) Validate() error {
	if err := c.Alignment.Scoring.Validate(); err != nil {
		return fmt.Errorf("alignment: %w", err)
	}
	if c.Alignment.MaxSequenceLength < 1 || c.Alignment.MaxCells < 1 {
		return fmt.Errorf("alignment: sequence and cell bounds must be positive")
	}
	if c.Alignment.BandPadding < 1 {
		return fmt.Errorf("alignment: band padding must be positive, got %d", c.Alignment.BandPadding)
	}

	if c.Anchors.MinLength < 1 {
		return fmt.Errorf("anchors: min length must be positive, got %d", c.Anchors.MinLength)
	}
	if c.Anchors.MaxDepthRatio < 0 {
		return fmt.Errorf("anchors: max depth ratio can't be negative, got %v", c.Anchors.MaxDepthRatio)
	}
	if err := c.Anchors.Options.Validate(); err != nil {
		return fmt.Errorf("anchors: %w", err)
	}
	if c.Anchors.Flank > c.Anchors.MinLength/2 {
		return fmt.Errorf("anchors: flank %d is more than half the min anchor length %d", c.Anchors.Flank, c.Anchors.MinLength)
	}

	p := c.Paths
	if p.MaxLength < 1 || p.MaxDepth < 1 || p.MaxRepeatVisits < 1 || p.MaxCandidates < 1 {
		return fmt.Errorf("paths: bounds must be positive: %+v", p)
	}

	if err := c.Bridging.Thresholds.Validate(); err != nil {
		return fmt.Errorf("bridging: %w", err)
	}
	if c.Bridging.Threads < 1 {
		return fmt.Errorf("bridging: threads must be positive, got %d", c.Bridging.Threads)
	}
	if c.Bridging.RefSlop < 0 {
		return fmt.Errorf("bridging: ref slop can't be negative, got %d", c.Bridging.RefSlop)
	}

	if c.Passes.Max < 1 {
		return fmt.Errorf("passes: max must be positive, got %d", c.Passes.Max)
	}
	if c.Passes.TimeBudget < 0 {
		return fmt.Errorf("passes: time budget can't be negative, got %v", c.Passes.TimeBudget)
	}
	if c.Passes.MinRepliconLength < 1 {
		return fmt.Errorf("passes: min replicon length must be positive, got %d", c.Passes.MinRepliconLength)
	}
	return nil
}

// Aligner returns a new aligner with the alignment settings
func (c *Config) Aligner() *align.Aligner {
	a := c.Alignment
	return align.New(a.Scoring, a.MaxSequenceLength, a.MaxCells, a.BandPadding)
}
