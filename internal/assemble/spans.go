package assemble

import (
	"context"
	"sort"

	"github.com/rzzju/Unicycler/internal/bridge"
	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/mapping"
	"go.uber.org/zap"
)

// placement is the reads mapped to one set of anchors
type placement struct {
	anchors []int
	pairs   []bridge.PairSpans
	reads   int
}

// matches returns whether the placement was made for these anchors
func (p *placement) matches(anchors []int) bool {
	if p == nil || len(p.anchors) != len(anchors) {
		return false
	}
	for i := range anchors {
		if p.anchors[i] != anchors[i] {
			return false
		}
	}
	return true
}

// place maps every read to the anchors on the worker pool and groups the
// spans by anchor pair, in pair order. Spans of one pair keep the reads'
// input order. Placing reads doesn't depend on the graph's links, so the
// last placement is reused while the anchors stay the same
func (a *assembler) place(ctx context.Context, g *graph.Graph, anchors []int, reads []mapping.Read) (*placement, error) {
	if a.placed.matches(anchors) {
		return a.placed, nil
	}

	idx, err := mapping.NewIndex(g, anchors, a.conf.Anchors.Options)
	if err != nil {
		return nil, err
	}

	perRead := make([][]mapping.Span, len(reads))
	ran := bridge.Parallel(ctx, a.conf.Bridging.Threads, len(reads), func(i int) {
		perRead[i] = idx.Spans(reads[i])
	})

	p := &placement{anchors: append([]int{}, anchors...)}
	complete := true
	byPair := make(map[mapping.Pair][]mapping.Span)
	for i, spans := range perRead {
		if !ran[i] {
			complete = false
			continue
		}
		if len(spans) > 0 {
			p.reads++
		}
		for _, s := range spans {
			byPair[s.Pair] = append(byPair[s.Pair], s)
		}
	}

	for pair, spans := range byPair {
		p.pairs = append(p.pairs, bridge.PairSpans{Pair: pair, Spans: spans})
	}
	sort.Slice(p.pairs, func(i, j int) bool { return p.pairs[i].Pair.Less(p.pairs[j].Pair) })

	a.log.Debug("placed reads",
		zap.Int("anchors", len(anchors)),
		zap.Int("reads", len(reads)),
		zap.Int("spanning", p.reads),
		zap.Int("pairs", len(p.pairs)),
		zap.Bool("complete", complete))

	if complete {
		a.placed = p
	}
	return p, nil
}
