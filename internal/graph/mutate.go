package graph

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/rzzju/Unicycler/internal/sequence"
)

// ReplaceRegion replaces the sub-graph between the ends of a bridging path
// with a single bridge link that carries the path's interior sequence.
//
// Every other link leaving the path's first node, and every other link
// entering its last node, is removed. Interior segments left in a component
// of their own, made only of path segments, are removed with them.
//
// Replacing a region that's already bridged is a no-op and changed is false.
// It fails with ErrGraphInconsistency if the path is no longer valid.
func (g *Graph) ReplaceRegion(p Path) (changed bool, err error) {
	if len(p) < 2 {
		return false, fmt.Errorf("%w: bridging path needs two nodes, got %d", ErrGraphInconsistency, len(p))
	}
	from, to := p[0], p[len(p)-1]
	if !g.Has(from.Segment) || !g.Has(to.Segment) {
		return false, fmt.Errorf("%w: bridge anchors %s and %s aren't both in the graph", ErrGraphInconsistency, g.NodeName(from), g.NodeName(to))
	}

	if out := g.out[from.key()]; len(out) == 1 && out[0].To == to && out[0].Bridge && len(g.in[to.key()]) == 1 {
		return false, nil
	}
	if !g.Connected(from, to, 0) {
		return false, fmt.Errorf("%w: no path from %s to %s", ErrGraphInconsistency, g.NodeName(from), g.NodeName(to))
	}

	seq, overlap, err := g.Bridging(p)
	if err != nil {
		return false, err
	}

	// a path can pass through its own ends' segments on the other strand,
	// those are never interior
	interior := make(map[int]bool)
	for _, n := range p.Interior() {
		if n.Segment != from.Segment && n.Segment != to.Segment {
			interior[n.Segment] = true
		}
	}
	touched := make(map[int]bool)
	for n := range interior {
		touched[n] = true
	}

	var stale []Link
	stale = append(stale, g.out[from.key()]...)
	stale = append(stale, g.in[to.key()]...)
	for _, l := range stale {
		touched[l.From.Segment] = true
		touched[l.To.Segment] = true
		g.removeLink(l)
	}

	g.addLink(Link{From: from, To: to, Overlap: overlap, Seq: seq, Bridge: true})

	// drop the now detached remains of the bridged region
	for _, i := range sortedKeys(touched) {
		if !g.Has(i) || i == from.Segment || i == to.Segment {
			continue
		}
		comp := g.Component(i)
		orphaned := true
		for _, c := range comp {
			if !interior[c] {
				orphaned = false
				break
			}
		}
		if orphaned {
			for _, c := range comp {
				g.RemoveSegment(c)
			}
		}
	}
	return true, nil
}

// MaterializeBridges turns bridge links that carry sequence into segments of
// their own, linked with zero overlap on both sides
func (g *Graph) MaterializeBridges() {
	count := 0
	for _, l := range g.Links() {
		if len(l.Seq) == 0 {
			continue
		}

		id := ""
		for {
			count++
			id = "bridge" + strconv.Itoa(count)
			if _, taken := g.ids[id]; !taken {
				break
			}
		}

		depth := (g.segments[l.From.Segment].Depth + g.segments[l.To.Segment].Depth) / 2
		g.removeLink(l)
		i, _ := g.AddSegment(id, l.Seq, depth)
		g.addLink(Link{From: l.From, To: Node{Segment: i}, Bridge: true})
		g.addLink(Link{From: Node{Segment: i}, To: l.To, Bridge: true})
	}
}

// chain is a maximal run of nodes joined by unambiguous links
type chain struct {
	nodes Path
	cycle bool
}

// mergeNext returns the link out of a when it's a's only link out and its
// target's only link in
func (g *Graph) mergeNext(a Node) (Link, bool) {
	out := g.out[a.key()]
	if len(out) != 1 || len(g.in[out[0].To.key()]) != 1 {
		return Link{}, false
	}
	return out[0], true
}

// mergePrev is mergeNext in the other direction
func (g *Graph) mergePrev(a Node) (Link, bool) {
	in := g.in[a.key()]
	if len(in) != 1 || len(g.out[in[0].From.key()]) != 1 {
		return Link{}, false
	}
	return in[0], true
}

// chains partitions the live segments into maximal unambiguous chains
func (g *Graph) chains() []chain {
	inChain := make([]bool, len(g.segments))
	var chains []chain

	for _, i := range g.Segments() {
		if inChain[i] {
			continue
		}

		n := Node{Segment: i}
		start := n
		seen := map[int]bool{i: true}
		for {
			l, ok := g.mergePrev(start)
			if !ok {
				break
			}
			if l.From == n {
				start = n // a cycle, start it here
				break
			}
			if seen[l.From.Segment] || inChain[l.From.Segment] {
				break
			}
			seen[l.From.Segment] = true
			start = l.From
		}

		c := chain{nodes: Path{start}}
		members := map[int]bool{start.Segment: true}
		for cur := start; ; {
			l, ok := g.mergeNext(cur)
			if !ok {
				break
			}
			if l.To == start {
				c.cycle = true
				break
			}
			if members[l.To.Segment] || inChain[l.To.Segment] {
				break
			}
			members[l.To.Segment] = true
			c.nodes = append(c.nodes, l.To)
			cur = l.To
		}

		for _, nd := range c.nodes {
			inChain[nd.Segment] = true
		}
		chains = append(chains, c)
	}
	return chains
}

// MergeLinearChains returns a new graph where every maximal unambiguous chain
// of segments is merged into one. A chain that closes on itself becomes a
// single segment with a self link, and is flagged Circular at minCircular bp
// or longer, in its canonical rotation.
//
// Segments are renumbered from 1 by decreasing length. Bridge links in g are
// materialized first, so g itself is modified.
func (g *Graph) MergeLinearChains(minCircular int) (*Graph, error) {
	g.MaterializeBridges()

	type merged struct {
		chain    chain
		seq      []byte
		depth    float64
		circular bool
		name     string
	}

	var ms []merged
	for _, c := range g.chains() {
		m := merged{chain: c, name: g.NodeName(c.nodes[0])}
		if c.cycle {
			full, err := g.PathSequence(append(append(Path{}, c.nodes...), c.nodes[0]))
			if err != nil {
				return nil, err
			}
			m.seq = full[:len(full)-len(g.Seq(c.nodes[0]))]
			if len(m.seq) == 0 {
				m.chain.cycle = false // overlaps consume the whole cycle
			}
		}
		if !m.chain.cycle {
			seq, err := g.PathSequence(c.nodes)
			if err != nil {
				return nil, err
			}
			m.seq = seq
		}

		var weighted, total float64
		flagged := false
		for _, n := range c.nodes {
			s := g.segments[n.Segment]
			weighted += s.Depth * float64(s.Len())
			total += float64(s.Len())
			flagged = flagged || s.Circular
		}
		if total > 0 {
			m.depth = weighted / total
		}

		if m.chain.cycle && (flagged || len(m.seq) >= minCircular) {
			m.circular = true
			m.seq, _ = sequence.CanonicalCircular(m.seq)
		}
		ms = append(ms, m)
	}

	sort.SliceStable(ms, func(i, j int) bool {
		if len(ms[i].seq) != len(ms[j].seq) {
			return len(ms[i].seq) > len(ms[j].seq)
		}
		if c := bytes.Compare(ms[i].seq, ms[j].seq); c != 0 {
			return c < 0
		}
		return ms[i].name < ms[j].name
	})

	ng := New()
	startOf := make(map[Node]Node)
	endOf := make(map[Node]Node)
	internal := make(map[[2]Node]bool)
	for k, m := range ms {
		i, err := ng.AddSegment(strconv.Itoa(k+1), m.seq, m.depth)
		if err != nil {
			return nil, err
		}
		ng.segments[i].Circular = m.circular

		nodes := m.chain.nodes
		first, last := nodes[0], nodes[len(nodes)-1]
		fwd, rev := Node{Segment: i}, Node{Segment: i, Reverse: true}
		startOf[first], endOf[last] = fwd, fwd
		startOf[last.Flip()], endOf[first.Flip()] = rev, rev

		for j := 1; j < len(nodes); j++ {
			internal[[2]Node{nodes[j-1], nodes[j]}] = true
			internal[[2]Node{nodes[j].Flip(), nodes[j-1].Flip()}] = true
		}
		if m.chain.cycle {
			internal[[2]Node{last, first}] = true
			internal[[2]Node{first.Flip(), last.Flip()}] = true
			ng.addLink(Link{From: fwd, To: fwd})
		}
	}

	for _, l := range g.Links() {
		if internal[[2]Node{l.From, l.To}] {
			continue
		}
		from, okFrom := endOf[l.From]
		to, okTo := startOf[l.To]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("%w: link %s -> %s doesn't join chain ends", ErrGraphInconsistency, g.NodeName(l.From), g.NodeName(l.To))
		}
		ng.addLink(Link{From: from, To: to, Overlap: l.Overlap, Bridge: l.Bridge})
	}
	return ng, nil
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
