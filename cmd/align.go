package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rzzju/Unicycler/config"
	"github.com/rzzju/Unicycler/internal/align"
	"github.com/rzzju/Unicycler/internal/io"
	"github.com/rzzju/Unicycler/internal/sequence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// alignCmd is for checking how the aligner scores sequences
var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align query sequences against reference sequences",
	Long: `
Align every query sequence semi-globally against every reference sequence
with the aligner used for bridging: the whole query is aligned, and the
reference's flanks are free. Both strands of the query are tried and the
better one is reported.`,
	RunE: alignRun,
}

func init() {
	RootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringP("query", "q", "", "query sequences (FASTA, FASTQ, SAM or BAM)")
	alignCmd.Flags().StringP("ref", "r", "", "reference sequences (FASTA or FASTQ)")
	alignCmd.MarkFlagRequired("query")
	alignCmd.MarkFlagRequired("ref")
}

func alignRun(cmd *cobra.Command, args []string) error {
	conf, err := config.New()
	if err != nil {
		return err
	}
	if err = conf.Alignment.Scoring.Validate(); err != nil {
		return err
	}

	queryPath, _ := cmd.Flags().GetString("query")
	refPath, _ := cmd.Flags().GetString("ref")
	queries, err := io.ReadReads(queryPath, 0)
	if err != nil {
		return err
	}
	refs, err := io.ReadReads(refPath, 0)
	if err != nil {
		return err
	}

	aligner := conf.Aligner()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "query\tref\tstrand\tscore\tidentity\tref start\tref end")
	for _, q := range queries {
		for _, r := range refs {
			best, strand, err := alignBoth(aligner, q.Seq, r.Seq)
			if err != nil {
				logger.Warn("skipped alignment",
					zap.String("query", q.Name),
					zap.String("ref", r.Name),
					zap.Error(err))
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%d\t%d\n",
				q.Name, r.Name, strand, best.Score, best.Identity, best.RefStart, best.RefEnd)
		}
	}
	return tw.Flush()
}

// alignBoth aligns the query and its reverse complement and returns the
// better alignment
func alignBoth(a *align.Aligner, query, ref []byte) (align.Result, string, error) {
	fwd, err := a.Align(query, ref)
	if err != nil {
		return align.Result{}, "", err
	}
	rev, err := a.Align(sequence.ReverseComplement(query), ref)
	if err == nil && rev.Better(fwd) {
		return rev, "-", nil
	}
	return fwd, "+", nil
}
