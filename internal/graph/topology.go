package graph

import (
	"sort"
)

// Cycle returns the nodes of the simple cycle through a segment's forward
// node when the segment's whole component is that cycle
func (g *Graph) Cycle(seg int) (Path, bool) {
	if !g.Has(seg) {
		return nil, false
	}

	start := Node{Segment: seg}
	p := Path{start}
	seen := map[int]bool{seg: true}
	for cur := start; ; {
		if g.degree(cur, Forward) != 1 || g.degree(cur, Backward) != 1 {
			return nil, false
		}
		next := g.out[cur.key()][0].To
		if next == start {
			return p, true
		}
		if seen[next.Segment] {
			return nil, false // re-entered on the other strand
		}
		seen[next.Segment] = true
		p = append(p, next)
		cur = next
	}
}

// IsCircularComponent returns whether the segment's component is a single
// simple cycle
func (g *Graph) IsCircularComponent(seg int) bool {
	_, ok := g.Cycle(seg)
	return ok
}

// CircularLength is the length of the circular sequence spelled by a cycle
func (g *Graph) CircularLength(cycle Path) int {
	if len(cycle) == 0 {
		return 0
	}
	closed := append(append(Path{}, cycle...), cycle[0])
	return g.PathLength(closed) - len(g.Seq(cycle[0]))
}

// Component returns the sorted indexes of every segment connected to seg,
// over links in either direction on either strand
func (g *Graph) Component(seg int) []int {
	if !g.Has(seg) {
		return nil
	}

	seen := map[int]bool{seg: true}
	queue := []int{seg}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
			for _, l := range g.out[n.key()] {
				if !seen[l.To.Segment] {
					seen[l.To.Segment] = true
					queue = append(queue, l.To.Segment)
				}
			}
			for _, l := range g.in[n.key()] {
				if !seen[l.From.Segment] {
					seen[l.From.Segment] = true
					queue = append(queue, l.From.Segment)
				}
			}
		}
	}
	return sortedKeys(seen)
}

// Components groups the live segments into connected components, each
// sorted, ordered by their lowest index
func (g *Graph) Components() [][]int {
	done := make(map[int]bool)
	var comps [][]int
	for _, i := range g.Segments() {
		if done[i] {
			continue
		}
		comp := g.Component(i)
		for _, c := range comp {
			done[c] = true
		}
		comps = append(comps, comp)
	}
	sort.SliceStable(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// DeadEnds counts nodes with no links leaving them
func (g *Graph) DeadEnds() int {
	count := 0
	for _, i := range g.Segments() {
		for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
			if g.degree(n, Forward) == 0 {
				count++
			}
		}
	}
	return count
}
