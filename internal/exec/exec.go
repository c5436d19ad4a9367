// Package exec is the root of the bridge command: it reads the inputs, runs
// the bridging passes and writes the outputs
package exec

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rzzju/Unicycler/config"
	"github.com/rzzju/Unicycler/internal/assemble"
	"github.com/rzzju/Unicycler/internal/io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flags are the bridge command's input and output paths
type Flags struct {
	// Graph is the short read assembly graph, GFA
	Graph string

	// Reads is the long reads, FASTA, FASTQ, SAM or BAM
	Reads string

	// Out is the directory outputs are written to
	Out string

	// Compress is "", "gz" or "zst", added to the graph output's name
	Compress string

	// MinReadLength drops shorter reads when they're loaded
	MinReadLength int

	// DOT also writes the final graph in DOT
	DOT bool
}

// Outputs are the files a run writes
type Outputs struct {
	Graph  string
	FASTA  string
	Report string
	DOT    string
}

// parseFlags gathers the paths from a cobra command's flags
func parseFlags(cmd *cobra.Command) (Flags, error) {
	var (
		f   Flags
		err error
	)
	if f.Graph, err = cmd.Flags().GetString("graph"); err != nil || f.Graph == "" {
		return f, fmt.Errorf("no input graph, set --graph")
	}
	if f.Reads, err = cmd.Flags().GetString("reads"); err != nil || f.Reads == "" {
		return f, fmt.Errorf("no long reads, set --reads")
	}
	if f.Out, err = cmd.Flags().GetString("out"); err != nil || f.Out == "" {
		f.Out = "."
	}
	if f.Compress, err = cmd.Flags().GetString("compress"); err != nil {
		return f, err
	}
	if f.MinReadLength, err = cmd.Flags().GetInt("min-read-length"); err != nil {
		return f, err
	}
	if f.DOT, err = cmd.Flags().GetBool("dot"); err != nil {
		return f, err
	}
	return f, nil
}

// outputs returns the output paths in the flags' out directory
func (f Flags) outputs() (Outputs, error) {
	out := Outputs{
		Graph:  filepath.Join(f.Out, "assembly.gfa"),
		FASTA:  filepath.Join(f.Out, "assembly.fasta"),
		Report: filepath.Join(f.Out, "report.json"),
	}
	switch f.Compress {
	case "":
	case "gz", "zst":
		out.Graph += "." + f.Compress
		out.FASTA += "." + f.Compress
	default:
		return out, fmt.Errorf("unknown compression %q, use gz or zst", f.Compress)
	}
	if f.DOT {
		out.DOT = filepath.Join(f.Out, "assembly.dot")
	}
	return out, nil
}

// Execute is the root of the bridge command.
//
// Unreadable or malformed inputs, and invalid settings, fail before any
// bridging starts. After that the run always finishes and writes its
// outputs, an interrupt stops the passes early like the time budget does.
func Execute(cmd *cobra.Command, args []string, log *zap.Logger) error {
	flags, err := parseFlags(cmd)
	if err != nil {
		return err
	}

	conf, err := config.New()
	if err != nil {
		return err
	}
	if err = conf.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, err = Run(ctx, flags, conf, log)
	return err
}

// Run reads the inputs, bridges and writes the outputs
func Run(ctx context.Context, flags Flags, conf *config.Config, log *zap.Logger) (*assemble.Report, error) {
	outs, err := flags.outputs()
	if err != nil {
		return nil, err
	}

	g, err := io.ReadGraph(flags.Graph)
	if err != nil {
		return nil, err
	}
	reads, err := io.ReadReads(flags.Reads, flags.MinReadLength)
	if err != nil {
		return nil, err
	}
	log.Info("loaded inputs",
		zap.String("graph", flags.Graph),
		zap.Int("segments", g.Len()),
		zap.Int("links", len(g.Links())),
		zap.String("reads", flags.Reads),
		zap.Int("count", len(reads)))

	final, rep, err := assemble.Run(ctx, g, reads, conf, log)
	if err != nil {
		return nil, err
	}

	if err = io.WriteGraph(outs.Graph, final); err != nil {
		return rep, err
	}
	if err = io.WriteFASTA(outs.FASTA, final); err != nil {
		return rep, err
	}
	if err = io.WriteReport(outs.Report, rep, conf.Output.Indent); err != nil {
		return rep, err
	}
	if outs.DOT != "" {
		if err = io.WriteDOT(outs.DOT, final); err != nil {
			return rep, err
		}
	}

	log.Info("wrote outputs",
		zap.String("graph", outs.Graph),
		zap.String("fasta", outs.FASTA),
		zap.String("report", outs.Report))
	return rep, nil
}
