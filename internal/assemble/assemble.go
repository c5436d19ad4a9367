// Package assemble runs the bridging passes over a fragment-overlap graph.
//
// Each pass places the long reads on the graph's anchors, builds a bridge for
// every anchor pair with reads across it and applies the accepted bridges one
// at a time. Completed circular replicons are closed between passes and
// never bridged again. Passes repeat until nothing changes, the pass limit is
// hit or the time budget runs out, and the graph is then merged into as few
// segments as it can be.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rzzju/Unicycler/config"
	"github.com/rzzju/Unicycler/internal/bridge"
	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/mapping"
	"go.uber.org/zap"
)

// assembler is the state carried between passes. It's the graph's only
// owner for the length of a run
type assembler struct {
	conf    *config.Config
	log     *zap.Logger
	builder *bridge.Builder

	// terminal segments are in closed replicons
	terminal map[int]bool

	// resolved pairs have their bridge in the graph, or are short closures,
	// they're never built again
	resolved map[mapping.Pair]bool

	pairs     map[mapping.Pair]*PairReport
	replicons []Replicon
	placed    *placement
}

// Run bridges g with the long reads and returns the simplified graph along
// with a report of every anchor pair.
//
// g is modified. Bridging problems are never fatal, they're left in the
// report, so the only errors are for an invalid configuration. When ctx is
// done, or the configured time budget passes, the loop stops and the graph
// is returned as it is.
func Run(ctx context.Context, g *graph.Graph, reads []mapping.Read, conf *config.Config, log *zap.Logger) (*graph.Graph, *Report, error) {
	if err := conf.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	if conf.Passes.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Passes.TimeBudget)
		defer cancel()
	}

	a := &assembler{
		conf: conf,
		log:  log,
		builder: &bridge.Builder{
			Aligner:    conf.Aligner(),
			Thresholds: conf.Bridging.Thresholds,
			Limits:     conf.Paths,
			Threads:    conf.Bridging.Threads,
			Flank:      conf.Anchors.Flank,
			RefSlop:    conf.Bridging.RefSlop,
			Log:        log,
		},
		terminal: make(map[int]bool),
		resolved: make(map[mapping.Pair]bool),
		pairs:    make(map[mapping.Pair]*PairReport),
	}

	rep := &Report{
		RunID: uuid.NewString(),
		Time:  start.Format("2006/01/02 15:04:05"),
		Input: g.Stats(),
		Stop:  StopMaxPasses,
	}

	a.closeReplicons(g, 0)
	for pass := 1; pass <= conf.Passes.Max; pass++ {
		if ctx.Err() != nil {
			rep.Stop = StopBudget
			break
		}

		sum := a.pass(ctx, g, reads, pass)
		rep.Passes = append(rep.Passes, sum)
		if ctx.Err() != nil {
			rep.Stop = StopBudget
			break
		}
		if sum.Applied == 0 {
			rep.Stop = StopConverged
			break
		}
	}

	final := g
	if conf.Output.Merge {
		merged, err := g.MergeLinearChains(conf.Passes.MinRepliconLength)
		if err != nil {
			log.Warn("failed to merge the final graph, keeping it unmerged", zap.Error(err))
		} else {
			final = merged
		}
	} else {
		g.MaterializeBridges()
	}

	rep.Output = final.Stats()
	rep.Pairs = sortedPairs(a.pairs)
	rep.Replicons = a.replicons
	rep.Execution = time.Since(start).Seconds()

	log.Info("finished bridging",
		zap.String("run", rep.RunID),
		zap.String("stop", string(rep.Stop)),
		zap.Int("passes", len(rep.Passes)),
		zap.Int("segmentsIn", rep.Input.Segments),
		zap.Int("segmentsOut", rep.Output.Segments),
		zap.Int("replicons", len(rep.Replicons)))
	return final, rep, nil
}

// pass is one round of anchor selection, read placement, bridge building and
// consolidation
func (a *assembler) pass(ctx context.Context, g *graph.Graph, reads []mapping.Read, pass int) PassSummary {
	sum := PassSummary{Pass: pass}

	anchors := mapping.SelectAnchors(g, a.conf.Anchors.MinLength, a.conf.Anchors.MaxDepthRatio, a.terminal)
	sum.Anchors = len(anchors)
	if len(anchors) == 0 {
		return sum
	}

	placed, err := a.place(ctx, g, anchors, reads)
	if err != nil {
		a.log.Warn("failed to place reads on anchors", zap.Int("pass", pass), zap.Error(err))
		return sum
	}
	sum.Reads = placed.reads

	var todo []bridge.PairSpans
	for _, ps := range placed.pairs {
		if !a.resolved[ps.Pair] {
			todo = append(todo, ps)
		}
	}
	sum.Pairs = len(todo)

	results := a.builder.Build(ctx, g, anchors, todo)
	for _, r := range results {
		a.pairs[r.Pair] = newPairReport(g, pass, r)
		if r.Outcome.Accepted {
			sum.Accepted++
		}
	}

	sum.Applied, sum.Stale = a.consolidate(g, results)
	sum.Replicons = a.closeReplicons(g, pass)

	a.log.Info("finished pass",
		zap.Int("pass", sum.Pass),
		zap.Int("anchors", sum.Anchors),
		zap.Int("pairs", sum.Pairs),
		zap.Int("accepted", sum.Accepted),
		zap.Int("applied", sum.Applied),
		zap.Int("stale", sum.Stale),
		zap.Int("replicons", sum.Replicons))
	return sum
}

// consolidate applies the accepted bridges one at a time, best supported
// first. Each is checked against the graph as the bridges before it left it,
// and one that no longer fits is stale: it's dropped and left for the next
// pass to build again
func (a *assembler) consolidate(g *graph.Graph, results []bridge.Result) (applied, stale int) {
	var accepted []bridge.Result
	for _, r := range results {
		if r.Outcome.Accepted {
			accepted = append(accepted, r)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		oi, oj := accepted[i].Outcome, accepted[j].Outcome
		if oi.Support != oj.Support {
			return oi.Support > oj.Support
		}
		if oi.MeanIdentity != oj.MeanIdentity {
			return oi.MeanIdentity > oj.MeanIdentity
		}
		return accepted[i].Pair.Less(accepted[j].Pair)
	})

	for _, r := range accepted {
		p, _ := r.Bridge()
		rep := a.pairs[r.Pair]

		if r.Circular {
			if n := g.CircularLength(p[:len(p)-1]); n < a.conf.Passes.MinRepliconLength {
				// building it again can't make it longer
				rep.Reason = bridge.ShortClosure
				a.resolved[r.Pair] = true
				a.log.Debug("dropped short closure",
					zap.String("path", rep.Path),
					zap.Int("length", n))
				continue
			}
		}

		changed, err := a.apply(g, p)
		if err != nil {
			stale++
			rep.Stale = true
			a.log.Debug("dropped stale bridge",
				zap.String("pair", rep.From+" -> "+rep.To),
				zap.String("path", rep.Path),
				zap.Error(err))
			continue
		}

		rep.Resolved = true
		a.resolved[r.Pair] = true
		if changed {
			applied++
		}
	}
	return applied, stale
}

// apply re-validates a bridge against the current graph and replaces its region
func (a *assembler) apply(g *graph.Graph, p graph.Path) (bool, error) {
	for _, n := range []graph.Node{p[0], p[len(p)-1]} {
		if a.terminal[n.Segment] {
			return false, fmt.Errorf("%w: %s is in a closed replicon", graph.ErrGraphInconsistency, g.NodeName(n))
		}
	}
	if !g.ValidPath(p) {
		return false, fmt.Errorf("%w: path %s is no longer in the graph", graph.ErrGraphInconsistency, g.PathString(p))
	}

	changed, err := g.ReplaceRegion(p)
	if err != nil && !errors.Is(err, graph.ErrGraphInconsistency) {
		return false, fmt.Errorf("%w: %v", graph.ErrGraphInconsistency, err)
	}
	return changed, err
}
