package cmd

import (
	"github.com/rzzju/Unicycler/internal/exec"
	"github.com/spf13/cobra"
)

// bridgeCmd is for resolving an assembly graph with long reads
var bridgeCmd = &cobra.Command{
	Use:                        "bridge",
	Short:                      "Bridge an assembly graph's repeats with long reads",
	SuggestionsMinimumDistance: 4,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exec.Execute(cmd, args, logger)
	},
	Long: `
Bridge the anchor segments of a short read assembly graph with long reads.

Anchors are long segments at single copy depth. For each pair of anchors
that long reads run between, every path through the graph between them is
aligned against each read, and reads vote for the path they align to best.
A path with enough support, and a dominant share of the votes, replaces the
region between its anchors. Passes repeat until no more bridges are made.

Outputs are written to the --out directory: the bridged graph (GFA), its
segments (FASTA) and a JSON report of every anchor pair.`,
}

// set flags
func init() {
	RootCmd.AddCommand(bridgeCmd)

	// Flags for specifying the paths to the input files and output directory
	bridgeCmd.Flags().StringP("graph", "g", "", "short read assembly graph (GFA)")
	bridgeCmd.Flags().StringP("reads", "r", "", "long reads (FASTA, FASTQ, SAM or BAM)")
	bridgeCmd.Flags().StringP("out", "o", ".", "output directory")
	bridgeCmd.Flags().String("compress", "", "compress the graph and FASTA outputs (gz or zst)")
	bridgeCmd.Flags().Int("min-read-length", 1000, "drop shorter long reads")
	bridgeCmd.Flags().Bool("dot", false, "also write the bridged graph in DOT")

	bridgeCmd.MarkFlagRequired("graph")
	bridgeCmd.MarkFlagRequired("reads")

	// Flags that override settings
	bridgeCmd.Flags().Float64("min-identity", 75, "lowest alignment identity (%) that counts as a vote")
	bridgeCmd.Flags().Int("min-support", 3, "fewest votes an accepted bridge needs")
	bridgeCmd.Flags().Float64("dominance-margin", 0.6, "share of the votes an accepted bridge needs to exceed")
	bridgeCmd.Flags().Int("max-path-length", 50000, "longest candidate path (bp)")
	bridgeCmd.Flags().Int("max-path-depth", 50, "most links in a candidate path")
	bridgeCmd.Flags().Int("max-passes", 5, "most bridging passes")
	bridgeCmd.Flags().Duration("time-budget", 0, "stop bridging after this long, 0 for no limit")
	bridgeCmd.Flags().Int("min-anchor-length", 1000, "shortest anchor segment (bp)")
	bridgeCmd.Flags().Int("min-replicon-length", 1000, "shortest circular replicon (bp)")
	bridgeCmd.Flags().IntP("threads", "t", 4, "alignment threads")
	bridgeCmd.Flags().Int("match", 3, "alignment match score")
	bridgeCmd.Flags().Int("mismatch", -6, "alignment mismatch score")
	bridgeCmd.Flags().Int("gap-open", -5, "alignment gap open score")
	bridgeCmd.Flags().Int("gap-extend", -2, "alignment gap extend score")
	bridgeCmd.Flags().Bool("merge", true, "merge non-branching chains in the bridged graph")

	// Bind the settings to viper
	bind(bridgeCmd, "bridging.min-identity", "min-identity")
	bind(bridgeCmd, "bridging.min-support-reads", "min-support")
	bind(bridgeCmd, "bridging.dominance-margin", "dominance-margin")
	bind(bridgeCmd, "bridging.threads", "threads")
	bind(bridgeCmd, "paths.max-length", "max-path-length")
	bind(bridgeCmd, "paths.max-depth", "max-path-depth")
	bind(bridgeCmd, "passes.max", "max-passes")
	bind(bridgeCmd, "passes.time-budget", "time-budget")
	bind(bridgeCmd, "passes.min-replicon-length", "min-replicon-length")
	bind(bridgeCmd, "anchors.min-length", "min-anchor-length")
	bind(bridgeCmd, "alignment.match", "match")
	bind(bridgeCmd, "alignment.mismatch", "mismatch")
	bind(bridgeCmd, "alignment.gap-open", "gap-open")
	bind(bridgeCmd, "alignment.gap-extend", "gap-extend")
	bind(bridgeCmd, "output.merge", "merge")
}
