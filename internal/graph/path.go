package graph

import (
	"fmt"
	"strings"
)

// Path is a walk through the graph, node to node along links
type Path []Node

// Equal returns whether two paths visit the same nodes in the same order
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Flip returns the path read along the opposite strand
func (p Path) Flip() Path {
	flipped := make(Path, len(p))
	for i, n := range p {
		flipped[len(p)-1-i] = n.Flip()
	}
	return flipped
}

// Interior is the path without its first and last nodes
func (p Path) Interior() Path {
	if len(p) < 3 {
		return nil
	}
	return p[1 : len(p)-1]
}

// PathString is a comma separated list of node names, eg "1+,5-,3+"
func (g *Graph) PathString(p Path) string {
	names := make([]string, len(p))
	for i, n := range p {
		names[i] = g.NodeName(n)
	}
	return strings.Join(names, ",")
}

// ParsePath is the inverse of PathString
func (g *Graph) ParsePath(s string) (Path, error) {
	var p Path
	for _, name := range strings.Split(s, ",") {
		n, err := g.Node(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		p = append(p, n)
	}
	return p, nil
}

// ValidPath returns whether every consecutive pair of nodes is linked
func (g *Graph) ValidPath(p Path) bool {
	if len(p) == 0 {
		return false
	}
	for _, n := range p {
		if !g.Has(n.Segment) {
			return false
		}
	}
	for i := 1; i < len(p); i++ {
		if _, ok := g.link(p[i-1], p[i]); !ok {
			return false
		}
	}
	return true
}

// PathSequence spells the path: each node's sequence after its incoming
// link's overlap, with any sequence carried by the link in between
func (g *Graph) PathSequence(p Path) ([]byte, error) {
	if !g.ValidPath(p) {
		return nil, fmt.Errorf("%w: invalid path %s", ErrGraphInconsistency, g.PathString(p))
	}

	seq := append([]byte{}, g.Seq(p[0])...)
	for i := 1; i < len(p); i++ {
		l, _ := g.link(p[i-1], p[i])
		seq = append(seq, l.Seq...)
		seq = append(seq, g.Seq(p[i])[l.Overlap:]...)
	}
	return seq, nil
}

// PathLength is the length of the sequence PathSequence would return, or -1
// if the path is invalid
func (g *Graph) PathLength(p Path) int {
	if !g.ValidPath(p) {
		return -1
	}
	length := len(g.Seq(p[0]))
	for i := 1; i < len(p); i++ {
		l, _ := g.link(p[i-1], p[i])
		length += len(l.Seq) + len(g.Seq(p[i])) - l.Overlap
	}
	return length
}

// Bridging returns the sequence a path spells between the end of its first
// node and the start of its last. When the two ends overlap there's no
// bridging sequence and the overlap is returned instead
func (g *Graph) Bridging(p Path) (seq []byte, overlap int, err error) {
	if len(p) < 2 {
		return nil, 0, fmt.Errorf("%w: bridging path needs two nodes, got %d", ErrGraphInconsistency, len(p))
	}
	full, err := g.PathSequence(p)
	if err != nil {
		return nil, 0, err
	}

	head, tail := len(g.Seq(p[0])), len(g.Seq(p[len(p)-1]))
	interior := len(full) - head - tail
	if interior < 0 {
		return nil, -interior, nil
	}
	return append([]byte{}, full[head:len(full)-tail]...), 0, nil
}
