// Package traverse is for walking the graph between two anchor segments
// and creating a list of the candidate paths that could bridge them
package traverse

import (
	"github.com/rzzju/Unicycler/internal/graph"
)

// Limits bound the search for candidate paths. Zero or negative values are
// unbounded, except MaxRepeatVisits which is at least 1
type Limits struct {
	// MaxLength is the most bases a path can spell between its two ends
	MaxLength int `mapstructure:"max-length"`

	// MaxDepth is the most links in a path
	MaxDepth int `mapstructure:"max-depth"`

	// MaxRepeatVisits is how many times a path can pass through one segment
	MaxRepeatVisits int `mapstructure:"max-repeat-visits"`

	// MaxCandidates is the most paths a single search yields
	MaxCandidates int `mapstructure:"max-candidates"`
}

// frame is a node on the DFS stack with the links still to try out of it
type frame struct {
	node   graph.Node
	length int
	links  []graph.Link
	next   int
}

// Generator lazily yields the paths from a start node to an end node in
// depth-first order. It must not be used after the graph is mutated
type Generator struct {
	// Circular is set when the start and end are the same node, so every
	// path is a cycle back to the start
	Circular bool

	g      *graph.Graph
	start  graph.Node
	end    graph.Node
	limits Limits
	avoid  map[int]bool
	dist   map[graph.Node]int

	stack     []frame
	visits    map[int]int
	emitted   int
	truncated bool
}

// New returns a generator of paths from start to end that never enter one
// of the avoided segments
func New(g *graph.Graph, start, end graph.Node, limits Limits, avoid []int) *Generator {
	if limits.MaxRepeatVisits < 1 {
		limits.MaxRepeatVisits = 1
	}

	avoidSet := make(map[int]bool, len(avoid))
	for _, a := range avoid {
		if a != start.Segment && a != end.Segment {
			avoidSet[a] = true
		}
	}

	gen := &Generator{
		Circular: start == end,
		g:        g,
		start:    start,
		end:      end,
		limits:   limits,
		avoid:    avoidSet,
		visits:   map[int]int{start.Segment: 1},
	}
	if !g.Has(start.Segment) || !g.Has(end.Segment) {
		return gen
	}

	bound := 0
	if limits.MaxLength > 0 {
		bound = limits.MaxLength + len(g.Seq(end))
	}
	gen.dist = distanceToEnd(g, end, avoidSet, bound)
	gen.stack = []frame{{node: start, links: g.Neighbors(start, graph.Forward)}}
	return gen
}

// Next returns the next candidate path, false once there are no more
func (gen *Generator) Next() (graph.Path, bool) {
	endLen := len(gen.g.Seq(gen.end))

	for len(gen.stack) > 0 {
		if gen.limits.MaxCandidates > 0 && gen.emitted >= gen.limits.MaxCandidates {
			gen.truncated = true
			gen.stack = nil
			return nil, false
		}

		top := &gen.stack[len(gen.stack)-1]
		if top.next >= len(top.links) {
			gen.visits[top.node.Segment]--
			gen.stack = gen.stack[:len(gen.stack)-1]
			continue
		}
		l := top.links[top.next]
		top.next++
		steps := len(gen.stack) // links in the path once l is taken
		if gen.limits.MaxDepth > 0 && steps > gen.limits.MaxDepth {
			continue
		}

		m := l.To
		length := top.length + weight(gen.g, l)
		if m == gen.end {
			if gen.limits.MaxLength > 0 && length-endLen > gen.limits.MaxLength {
				continue
			}
			gen.emitted++
			return gen.path(m), true
		}

		// interior nodes can't be another anchor, or either end's segment
		if gen.avoid[m.Segment] || m.Segment == gen.start.Segment || m.Segment == gen.end.Segment {
			continue
		}
		if gen.visits[m.Segment] >= gen.limits.MaxRepeatVisits {
			continue
		}
		if gen.limits.MaxDepth > 0 && steps >= gen.limits.MaxDepth {
			continue // no link left to reach the end
		}
		d, reachable := gen.dist[m]
		if !reachable {
			continue
		}
		if gen.limits.MaxLength > 0 && length+d-endLen > gen.limits.MaxLength {
			continue
		}

		gen.visits[m.Segment]++
		gen.stack = append(gen.stack, frame{node: m, length: length, links: gen.g.Neighbors(m, graph.Forward)})
	}
	return nil, false
}

// path is the nodes on the stack followed by last
func (gen *Generator) path(last graph.Node) graph.Path {
	p := make(graph.Path, 0, len(gen.stack)+1)
	for _, f := range gen.stack {
		p = append(p, f.node)
	}
	return append(p, last)
}

// Truncated returns whether the search stopped at the candidate limit, so
// there may be more paths
func (gen *Generator) Truncated() bool {
	return gen.truncated
}

// Collect drains a generator
func Collect(gen *Generator) (paths []graph.Path, truncated bool) {
	for {
		p, ok := gen.Next()
		if !ok {
			return paths, gen.Truncated()
		}
		paths = append(paths, p)
	}
}
