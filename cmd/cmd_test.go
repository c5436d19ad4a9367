package cmd

import (
	"testing"

	"github.com/rzzju/Unicycler/config"
	"github.com/spf13/viper"
)

func Test_filePrepender(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			"root",
			"docs/unicycler.md",
			"---\nlayout: default\ntitle: unicycler\nnav_order: 0\nhas_children: true\npermalink: /\n---\n",
		},
		{
			"child",
			"docs/unicycler_bridge.md",
			"---\nlayout: default\ntitle: bridge\nparent: unicycler\nnav_order: 1\n---\n",
		},
		{
			"child with children",
			"docs/unicycler_graph.md",
			"---\nlayout: default\ntitle: graph\nparent: unicycler\nnav_order: 2\nhas_children: true\n---\n",
		},
		{
			"grandchild",
			"docs/unicycler_graph_stats.md",
			"---\nlayout: default\ntitle: stats\nparent: graph\ngrand_parent: unicycler\nnav_order: 1\n---\n",
		},
		{
			"unknown",
			"docs/other.md",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filePrepender(tt.filename); got != tt.want {
				t.Errorf("filePrepender() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_linkHandler(t *testing.T) {
	if got := linkHandler("unicycler.md"); got != "/" {
		t.Errorf("linkHandler() = %v, want %v", got, "/")
	}
	if got := linkHandler("unicycler_bridge.md"); got != "unicycler_bridge" {
		t.Errorf("linkHandler() = %v, want %v", got, "unicycler_bridge")
	}
}

func Test_bridgeFlags(t *testing.T) {
	// unset flags fall through to the defaults
	c, err := config.New()
	if err != nil {
		t.Fatal(err)
	}
	if c.Bridging.DominanceMargin != 0.6 || c.Bridging.MinSupportReads != 3 {
		t.Errorf("config.New() bridging = %+v", c.Bridging)
	}

	if err := bridgeCmd.Flags().Set("min-support", "7"); err != nil {
		t.Fatal(err)
	}
	defer bridgeCmd.Flags().Set("min-support", "3")

	if got := viper.GetInt("bridging.min-support-reads"); got != 7 {
		t.Errorf("bridging.min-support-reads = %v, want %v", got, 7)
	}
}
