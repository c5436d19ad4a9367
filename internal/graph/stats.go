package graph

import (
	"sort"
)

// Stats summarizes a graph
type Stats struct {
	Segments    int `json:"segments"`
	Links       int `json:"links"`
	TotalLength int `json:"totalLength"`
	N50         int `json:"n50"`
	Largest     int `json:"largest"`
	Components  int `json:"components"`
	DeadEnds    int `json:"deadEnds"`
	Circular    int `json:"circular"`
}

// Stats counts the graph's segments, links and lengths
func (g *Graph) Stats() Stats {
	s := Stats{
		Segments:   g.Len(),
		Links:      len(g.Links()),
		Components: len(g.Components()),
		DeadEnds:   g.DeadEnds(),
	}

	var lengths []int
	for _, i := range g.Segments() {
		seg := g.segments[i]
		lengths = append(lengths, seg.Len())
		s.TotalLength += seg.Len()
		if seg.Circular {
			s.Circular++
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	if len(lengths) > 0 {
		s.Largest = lengths[0]
	}
	acc := 0
	for _, l := range lengths {
		acc += l
		if 2*acc >= s.TotalLength {
			s.N50 = l
			break
		}
	}
	return s
}

// MedianDepth is the length-weighted median depth of the live segments: half
// the graph's bases are in segments at or below it
func (g *Graph) MedianDepth() float64 {
	type weighted struct {
		depth  float64
		length int
	}

	var all []weighted
	total := 0
	for _, i := range g.Segments() {
		seg := g.segments[i]
		all = append(all, weighted{seg.Depth, seg.Len()})
		total += seg.Len()
	}
	if total == 0 {
		return 0
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].depth < all[j].depth })
	acc := 0
	for _, w := range all {
		acc += w.length
		if 2*acc >= total {
			return w.depth
		}
	}
	return all[len(all)-1].depth
}
