// Package graph is the fragment-overlap graph built from the short read
// assembly.
//
// Segments live in an arena and are referenced by their index, which stays
// stable for the life of the graph (removed segments leave a tombstone).
// Every segment contributes two nodes, one per strand, and every link is
// stored together with its complement on the opposite strand.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rzzju/Unicycler/internal/sequence"
)

var (
	// ErrGraphInconsistency is for stale or invalid references to graph state
	ErrGraphInconsistency = errors.New("graph inconsistency")

	// ErrInvalidLink is for links that break the overlap invariant
	ErrInvalidLink = errors.New("invalid link")
)

// Segment is a contiguous sequence produced by the short read assembler
type Segment struct {
	// ID is the segment's unique name, eg "12" in a GFA S line
	ID string

	// Seq is the forward strand sequence, upper-case
	Seq []byte

	// Depth is the segment's read depth (coverage)
	Depth float64

	// Circular marks a completed circular replicon
	Circular bool

	// rc is the cached reverse complement of Seq
	rc []byte
}

// Len is the segment's length in bp
func (s *Segment) Len() int {
	return len(s.Seq)
}

// Node is one strand of a segment
type Node struct {
	// Segment is the arena index of the segment
	Segment int

	// Reverse is true for the reverse complement strand
	Reverse bool
}

// Flip returns the node on the opposite strand
func (n Node) Flip() Node {
	return Node{Segment: n.Segment, Reverse: !n.Reverse}
}

// key is the node's index into the adjacency lists
func (n Node) key() int {
	if n.Reverse {
		return 2*n.Segment + 1
	}
	return 2 * n.Segment
}

// Direction selects outgoing or incoming links
type Direction int

const (
	// Forward links leave the end of a node
	Forward Direction = iota

	// Backward links enter the start of a node
	Backward
)

// Link is a directed overlap from the end of one node to the start of another
type Link struct {
	From    Node
	To      Node
	Overlap int

	// Seq is sequence inserted between From and To (bridge links only)
	Seq []byte

	// Bridge is set for links created from long read evidence
	Bridge bool
}

// complement is the same link read on the opposite strand
func (l Link) complement() Link {
	c := Link{
		From:    l.To.Flip(),
		To:      l.From.Flip(),
		Overlap: l.Overlap,
		Bridge:  l.Bridge,
	}
	if l.Seq != nil {
		c.Seq = sequence.ReverseComplement(l.Seq)
	}
	return c
}

// Graph is the arena of segments and their links
type Graph struct {
	segments []*Segment
	ids      map[string]int
	out      [][]Link
	in       [][]Link
	live     int
}

// New returns an empty graph
func New() *Graph {
	return &Graph{ids: make(map[string]int)}
}

// AddSegment adds a segment to the arena and returns its index
func (g *Graph) AddSegment(id string, seq []byte, depth float64) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("segment with an empty id")
	}
	if _, exists := g.ids[id]; exists {
		return 0, fmt.Errorf("duplicate segment %s", id)
	}

	seq = sequence.Normalize(seq)
	s := &Segment{
		ID:    id,
		Seq:   seq,
		Depth: depth,
		rc:    sequence.ReverseComplement(seq),
	}

	i := len(g.segments)
	g.segments = append(g.segments, s)
	g.ids[id] = i
	g.out = append(g.out, nil, nil)
	g.in = append(g.in, nil, nil)
	g.live++
	return i, nil
}

// AddLink adds an overlap link and its complement. Re-adding an existing
// link is a no-op
func (g *Graph) AddLink(from, to Node, overlap int) error {
	if !g.Has(from.Segment) || !g.Has(to.Segment) {
		return fmt.Errorf("%w: link references a missing segment (%d -> %d)", ErrInvalidLink, from.Segment, to.Segment)
	}

	minLen := g.segments[from.Segment].Len()
	if l := g.segments[to.Segment].Len(); l < minLen {
		minLen = l
	}
	if overlap < 0 || overlap > minLen {
		return fmt.Errorf("%w: overlap of %d between %s and %s (min length %d)",
			ErrInvalidLink, overlap, g.NodeName(from), g.NodeName(to), minLen)
	}

	g.addLink(Link{From: from, To: to, Overlap: overlap})
	return nil
}

// addLink stores a link and its complement, skipping duplicates
func (g *Graph) addLink(l Link) {
	if _, exists := g.link(l.From, l.To); exists {
		return
	}
	g.out[l.From.key()] = append(g.out[l.From.key()], l)
	g.in[l.To.key()] = append(g.in[l.To.key()], l)

	c := l.complement()
	if c.From == l.From && c.To == l.To {
		return // a link that is its own complement, eg 1+ -> 1-
	}
	g.out[c.From.key()] = append(g.out[c.From.key()], c)
	g.in[c.To.key()] = append(g.in[c.To.key()], c)
}

// removeLink drops a link and its complement
func (g *Graph) removeLink(l Link) {
	drop := func(links []Link, from, to Node) []Link {
		for i, other := range links {
			if other.From == from && other.To == to {
				return append(links[:i:i], links[i+1:]...)
			}
		}
		return links
	}

	c := l.complement()
	for _, x := range []Link{l, c} {
		g.out[x.From.key()] = drop(g.out[x.From.key()], x.From, x.To)
		g.in[x.To.key()] = drop(g.in[x.To.key()], x.From, x.To)
	}
}

// link returns the link between two nodes if there is one
func (g *Graph) link(from, to Node) (Link, bool) {
	if !g.Has(from.Segment) {
		return Link{}, false
	}
	for _, l := range g.out[from.key()] {
		if l.To == to {
			return l, true
		}
	}
	return Link{}, false
}

// Link returns the link between two nodes if there is one
func (g *Graph) Link(from, to Node) (Link, bool) {
	return g.link(from, to)
}

// RemoveSegment drops a segment and all of its links. Its index is not reused
func (g *Graph) RemoveSegment(i int) {
	if !g.Has(i) {
		return
	}
	for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
		for _, l := range append([]Link{}, g.out[n.key()]...) {
			g.removeLink(l)
		}
		for _, l := range append([]Link{}, g.in[n.key()]...) {
			g.removeLink(l)
		}
	}
	delete(g.ids, g.segments[i].ID)
	g.segments[i] = nil
	g.live--
}

// Has returns whether the index refers to a live segment
func (g *Graph) Has(i int) bool {
	return i >= 0 && i < len(g.segments) && g.segments[i] != nil
}

// Segment returns the segment at an arena index, nil if removed
func (g *Graph) Segment(i int) *Segment {
	if !g.Has(i) {
		return nil
	}
	return g.segments[i]
}

// Index returns the arena index of a segment ID
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.ids[id]
	return i, ok
}

// Node parses names like "12+" or "12-" into a node
func (g *Graph) Node(name string) (Node, error) {
	if len(name) < 2 {
		return Node{}, fmt.Errorf("bad node name %q", name)
	}
	id, strand := name[:len(name)-1], name[len(name)-1]
	i, ok := g.ids[id]
	if !ok {
		return Node{}, fmt.Errorf("no segment %s", id)
	}
	switch strand {
	case '+':
		return Node{Segment: i}, nil
	case '-':
		return Node{Segment: i, Reverse: true}, nil
	}
	return Node{}, fmt.Errorf("bad strand in node name %q", name)
}

// NodeName is the node's segment ID with its strand, eg "12-"
func (g *Graph) NodeName(n Node) string {
	id := fmt.Sprintf("#%d", n.Segment)
	if s := g.Segment(n.Segment); s != nil {
		id = s.ID
	}
	if n.Reverse {
		return id + "-"
	}
	return id + "+"
}

// Len is the number of live segments
func (g *Graph) Len() int {
	return g.live
}

// Segments returns the arena indexes of live segments in arena order
func (g *Graph) Segments() []int {
	indexes := make([]int, 0, g.live)
	for i, s := range g.segments {
		if s != nil {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// Links returns every link once (not its complement) in arena order
func (g *Graph) Links() []Link {
	var links []Link
	for _, i := range g.Segments() {
		for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
			for _, l := range g.out[n.key()] {
				if c := l.complement(); linkLess(c, l) {
					continue // the complement is listed instead
				}
				links = append(links, l)
			}
		}
	}
	return links
}

// linkLess orders links by their endpoints
func linkLess(a, b Link) bool {
	if a.From.key() != b.From.key() {
		return a.From.key() < b.From.key()
	}
	return a.To.key() < b.To.key()
}

// Neighbors returns the links leaving (Forward) or entering (Backward) a node
func (g *Graph) Neighbors(n Node, dir Direction) []Link {
	if !g.Has(n.Segment) {
		return nil
	}
	var links []Link
	if dir == Forward {
		links = append(links, g.out[n.key()]...)
	} else {
		links = append(links, g.in[n.key()]...)
	}
	sort.SliceStable(links, func(i, j int) bool { return linkLess(links[i], links[j]) })
	return links
}

// degree is the count of links leaving or entering n
func (g *Graph) degree(n Node, dir Direction) int {
	if dir == Forward {
		return len(g.out[n.key()])
	}
	return len(g.in[n.key()])
}

// Seq returns the node's sequence on its strand. It must not be modified
func (g *Graph) Seq(n Node) []byte {
	s := g.Segment(n.Segment)
	if s == nil {
		return nil
	}
	if n.Reverse {
		return s.rc
	}
	return s.Seq
}

// Connected returns whether there's a path of at most maxSteps links from
// one node to the other. maxSteps <= 0 is unbounded
func (g *Graph) Connected(from, to Node, maxSteps int) bool {
	if !g.Has(from.Segment) || !g.Has(to.Segment) {
		return false
	}

	seen := map[Node]bool{from: true}
	frontier := []Node{from}
	for steps := 0; len(frontier) > 0 && (maxSteps <= 0 || steps < maxSteps); steps++ {
		var next []Node
		for _, n := range frontier {
			for _, l := range g.out[n.key()] {
				if l.To == to {
					return true
				}
				if !seen[l.To] {
					seen[l.To] = true
					next = append(next, l.To)
				}
			}
		}
		frontier = next
	}
	return false
}

// String is a short description of the graph
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph with %d segments and %d links", g.Len(), len(g.Links()))
	return b.String()
}
