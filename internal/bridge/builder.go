// Package bridge builds long read bridges between pairs of anchor segments.
//
// For each anchor pair every candidate path through the graph is aligned
// against every read that spans the pair. Each read votes for the path it
// aligns to best, and the votes are classified into an accepted bridge or
// an unresolved pair with a reason.
package bridge

import (
	"context"
	"errors"

	"github.com/rzzju/Unicycler/internal/align"
	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/mapping"
	"github.com/rzzju/Unicycler/internal/traverse"
	"go.uber.org/zap"
)

// PairSpans is an anchor pair with the read spans across it
type PairSpans struct {
	Pair  mapping.Pair
	Spans []mapping.Span
}

// Result is the bridge building outcome for a single anchor pair
type Result struct {
	Pair mapping.Pair

	// Paths are the candidate paths, in the order they were generated
	Paths []graph.Path

	// Truncated is set when there may have been more candidate paths
	Truncated bool

	// Circular is set for a pair that starts and ends on the same anchor
	// node, its bridge closes a cycle rather than joining two anchors
	Circular bool

	Tally   Tally
	Outcome Outcome
}

// Bridge returns the accepted path
func (r Result) Bridge() (graph.Path, bool) {
	if !r.Outcome.Accepted {
		return nil, false
	}
	return r.Paths[r.Outcome.Winner], true
}

// Builder aligns spanning reads to candidate paths and classifies the votes
type Builder struct {
	Aligner    *align.Aligner
	Thresholds Thresholds
	Limits     traverse.Limits

	// Threads is the size of the alignment worker pool
	Threads int

	// Flank is how much of each anchor is kept in the path reference, it
	// should match the mapping index's flank
	Flank int

	// RefSlop is extra anchor sequence added to either end of the reference
	RefSlop int

	Log *zap.Logger
}

// slot is one alignment job's result
type slot struct {
	res align.Result
	err error
}

// vote is a read's best alignment so far
type vote struct {
	path int
	res  align.Result
	tie  bool
}

// Build finds and classifies the bridge for each anchor pair. Candidate
// paths never pass through one of the anchors.
//
// Alignments run on the worker pool, everything else (including all graph
// reads) happens on the calling goroutine. If ctx is done before every
// alignment has run, the pairs missing alignments are unresolved for Budget.
func (b *Builder) Build(ctx context.Context, g *graph.Graph, anchors []int, pairs []PairSpans) []Result {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]Result, len(pairs))
	refs := make([][][]byte, len(pairs))
	for i, ps := range pairs {
		res := &results[i]
		res.Pair = ps.Pair
		res.Tally.Reads = len(ps.Spans)

		gen := traverse.New(g, ps.Pair.From, ps.Pair.To, b.Limits, anchors)
		res.Circular = gen.Circular
		res.Paths, res.Truncated = traverse.Collect(gen)
		res.Tally.Paths = len(res.Paths)
		res.Tally.Votes = make([]int, len(res.Paths))
		res.Tally.IdentitySum = make([]float64, len(res.Paths))

		for _, p := range res.Paths {
			refs[i] = append(refs[i], b.reference(g, p))
		}
	}

	type job struct {
		pair, path, span int
	}
	var jobs []job
	for i, ps := range pairs {
		for p := range results[i].Paths {
			for s := range ps.Spans {
				jobs = append(jobs, job{pair: i, path: p, span: s})
			}
		}
	}

	slots := make([]slot, len(jobs))
	ran := Parallel(ctx, b.Threads, len(jobs), func(j int) {
		jb := jobs[j]
		res, err := b.Aligner.Align(pairs[jb.pair].Spans[jb.span].Query, refs[jb.pair][jb.path])
		slots[j] = slot{res: res, err: err}
	})

	// merge, jobs are ordered by pair then path then span
	votes := make([][]vote, len(pairs))
	for i, ps := range pairs {
		votes[i] = make([]vote, len(ps.Spans))
		for s := range votes[i] {
			votes[i][s].path = -1
		}
	}
	for j, jb := range jobs {
		if !ran[j] {
			results[jb.pair].Tally.Incomplete = true
			continue
		}

		sl := slots[j]
		switch {
		case errors.Is(sl.err, align.ErrResourceExhausted):
			results[jb.pair].Tally.Exhausted++
			continue
		case sl.err != nil:
			results[jb.pair].Tally.Invalid++
			continue
		}

		v := &votes[jb.pair][jb.span]
		switch {
		case v.path < 0 || sl.res.Better(v.res):
			*v = vote{path: jb.path, res: sl.res}
		case sl.res.Equivalent(v.res):
			v.tie = true
		}
	}

	for i := range pairs {
		res := &results[i]
		for _, v := range votes[i] {
			if v.path < 0 || v.res.Identity < b.Thresholds.MinIdentity {
				continue
			}
			if v.tie {
				res.Tally.Ties++
				continue
			}
			res.Tally.Votes[v.path]++
			res.Tally.IdentitySum[v.path] += v.res.Identity
		}
		res.Outcome = Classify(res.Tally, b.Thresholds)

		if res.Tally.Invalid > 0 || res.Tally.Exhausted > 0 {
			log.Debug("skipped alignments",
				zap.Stringer("pair", pairName{g, res.Pair}),
				zap.Int("invalid", res.Tally.Invalid),
				zap.Int("exhausted", res.Tally.Exhausted))
		}
		log.Debug("classified pair",
			zap.Stringer("pair", pairName{g, res.Pair}),
			zap.Int("paths", res.Tally.Paths),
			zap.Int("reads", res.Tally.Reads),
			zap.Ints("votes", res.Tally.Votes),
			zap.Bool("accepted", res.Outcome.Accepted),
			zap.String("reason", string(res.Outcome.Reason)))
	}
	return results
}

// reference is the path's sequence trimmed to Flank+RefSlop bases of each
// anchor
func (b *Builder) reference(g *graph.Graph, p graph.Path) []byte {
	full, err := g.PathSequence(p)
	if err != nil {
		return nil
	}

	lo := len(g.Seq(p[0])) - b.Flank - b.RefSlop
	if lo < 0 {
		lo = 0
	}
	hi := len(full) - len(g.Seq(p[len(p)-1])) + b.Flank + b.RefSlop
	if hi > len(full) {
		hi = len(full)
	}
	if hi <= lo {
		return full
	}
	return full[lo:hi]
}

// pairName prints a pair with its segment names, eg "3+ -> 7-"
type pairName struct {
	g *graph.Graph
	p mapping.Pair
}

func (n pairName) String() string {
	return n.g.NodeName(n.p.From) + " -> " + n.g.NodeName(n.p.To)
}

// PairName is a pair with its segment names, eg "3+ -> 7-"
func PairName(g *graph.Graph, p mapping.Pair) string {
	return pairName{g, p}.String()
}
