// Package mapping places long reads on the graph's anchor segments.
//
// Anchors are long single-copy segments. Their head and tail flanks are
// k-mer indexed on both strands, and a read's k-mer hits are clustered on
// their diagonal to find where each anchor enters and leaves the read. Two
// consecutive anchors on a read give a span: the read region the bridge
// between them has to explain.
package mapping

import (
	"sort"

	"github.com/rzzju/Unicycler/internal/graph"
)

// Read is a single long read
type Read struct {
	Name string
	Seq  []byte
}

// Pair is an ordered pair of anchor nodes, from the end of From to the start
// of To. Pair{a, b} is the same connection as Pair{b', a'}
type Pair struct {
	From graph.Node
	To   graph.Node
}

// Flip returns the pair read along the opposite strand
func (p Pair) Flip() Pair {
	return Pair{From: p.To.Flip(), To: p.From.Flip()}
}

// Canonical returns the one of the pair and its flip that sorts first, and
// whether that's the flip
func (p Pair) Canonical() (Pair, bool) {
	if f := p.Flip(); f.Less(p) {
		return f, true
	}
	return p, false
}

// Circular returns whether the pair runs from an anchor back to itself
func (p Pair) Circular() bool {
	return p.From == p.To
}

// Less orders pairs by their From node, then their To node
func (p Pair) Less(o Pair) bool {
	if p.From != o.From {
		return nodeLess(p.From, o.From)
	}
	return nodeLess(p.To, o.To)
}

func nodeLess(a, b graph.Node) bool {
	if a.Segment != b.Segment {
		return a.Segment < b.Segment
	}
	return !a.Reverse && b.Reverse
}

// SelectAnchors returns the segments that are long enough, and shallow
// enough relative to the graph's median depth, to be single-copy. Excluded
// segments are never anchors
func SelectAnchors(g *graph.Graph, minLength int, maxDepthRatio float64, exclude map[int]bool) []int {
	median := g.MedianDepth()

	var anchors []int
	for _, i := range g.Segments() {
		s := g.Segment(i)
		if exclude[i] || s.Len() < minLength {
			continue
		}
		if maxDepthRatio > 0 && median > 0 && s.Depth > maxDepthRatio*median {
			continue
		}
		anchors = append(anchors, i)
	}
	sort.Ints(anchors)
	return anchors
}
