package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Alignment.Match != 3 || c.Alignment.Mismatch != -6 || c.Alignment.GapOpen != -5 || c.Alignment.GapExtend != -2 {
		t.Errorf("Default() scoring = %+v", c.Alignment.Scoring)
	}
	if c.Alignment.MaxCells != 2e9 {
		t.Errorf("Default() max cells = %d, want %d", c.Alignment.MaxCells, int64(2e9))
	}
	if c.Anchors.MinLength != 1000 || c.Anchors.K != 15 || c.Anchors.Flank != 500 {
		t.Errorf("Default() anchors = %+v", c.Anchors)
	}
	if c.Paths.MaxLength != 50000 || c.Paths.MaxDepth != 50 || c.Paths.MaxCandidates != 64 {
		t.Errorf("Default() paths = %+v", c.Paths)
	}
	if c.Bridging.MinIdentity != 75 || c.Bridging.MinSupportReads != 3 || c.Bridging.DominanceMargin != 0.6 {
		t.Errorf("Default() bridging = %+v", c.Bridging)
	}
	if c.Passes.Max != 5 || c.Passes.TimeBudget != 0 {
		t.Errorf("Default() passes = %+v", c.Passes)
	}
	if !c.Output.Merge {
		t.Error("Default() doesn't merge the output")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	t.Setenv("ASM_BRIDGING_MIN_SUPPORT_READS", "9")
	v.Set("passes.time-budget", "90s")
	v.Set("alignment.match", 2)

	c, err := FromViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Bridging.MinSupportReads != 9 {
		t.Errorf("FromViper() min support = %d, want %d", c.Bridging.MinSupportReads, 9)
	}
	if c.Passes.TimeBudget != 90*time.Second {
		t.Errorf("FromViper() time budget = %v, want %v", c.Passes.TimeBudget, 90*time.Second)
	}
	if c.Alignment.Match != 2 || c.Alignment.Mismatch != -6 {
		t.Errorf("FromViper() scoring = %+v", c.Alignment.Scoring)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"positive mismatch", func(c *Config) { c.Alignment.Mismatch = 1 }, true},
		{"zero band padding", func(c *Config) { c.Alignment.BandPadding = 0 }, true},
		{"zero min anchor", func(c *Config) { c.Anchors.MinLength = 0 }, true},
		{"negative depth ratio", func(c *Config) { c.Anchors.MaxDepthRatio = -1 }, true},
		{"k too large", func(c *Config) { c.Anchors.K = 32 }, true},
		{"flank past half anchor", func(c *Config) { c.Anchors.Flank = 501 }, true},
		{"flank at half anchor", func(c *Config) { c.Anchors.Flank = 500 }, false},
		{"zero path depth", func(c *Config) { c.Paths.MaxDepth = 0 }, true},
		{"identity over 100", func(c *Config) { c.Bridging.MinIdentity = 101 }, true},
		{"zero margin", func(c *Config) { c.Bridging.DominanceMargin = 0 }, true},
		{"zero threads", func(c *Config) { c.Bridging.Threads = 0 }, true},
		{"negative ref slop", func(c *Config) { c.Bridging.RefSlop = -1 }, true},
		{"zero passes", func(c *Config) { c.Passes.Max = 0 }, true},
		{"negative budget", func(c *Config) { c.Passes.TimeBudget = -time.Second }, true},
		{"zero replicon length", func(c *Config) { c.Passes.MinRepliconLength = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.edit(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Aligner(t *testing.T) {
	r, err := Default().Aligner().Align([]byte("ACGTACGTAC"), []byte("TTTACGTACGTACTTT"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Identity != 100 {
		t.Errorf("Aligner().Align() identity = %v, want %v", r.Identity, 100.0)
	}
}
