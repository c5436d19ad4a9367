package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/io"
	"github.com/spf13/cobra"
)

// graphCmd is the parent of the graph inspection commands
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect assembly graphs",
}

// statsCmd prints a graph's summary
var statsCmd = &cobra.Command{
	Use:   "stats [graph.gfa]...",
	Short: "Print the segment, link and length stats of graphs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "graph\tsegments\tlinks\tlength\tN50\tlargest\tcomponents\tdead ends\tcircular")
		for _, path := range args {
			g, err := io.ReadGraph(path)
			if err != nil {
				return err
			}
			s := g.Stats()
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
				path, s.Segments, s.Links, s.TotalLength, s.N50, s.Largest, s.Components, s.DeadEnds, s.Circular)
		}
		return tw.Flush()
	},
}

// dotCmd converts a graph to DOT
var dotCmd = &cobra.Command{
	Use:   "dot [graph.gfa]",
	Short: "Write a graph in DOT, for graphviz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := io.ReadGraph(args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return graph.WriteDOT(os.Stdout, g)
		}
		return io.WriteDOT(out, g)
	},
}

func init() {
	RootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(statsCmd)
	graphCmd.AddCommand(dotCmd)

	dotCmd.Flags().StringP("out", "o", "", "output file, stdout if unset")
}
