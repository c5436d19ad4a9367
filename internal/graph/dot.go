package graph

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// WriteDOT writes the graph in graphviz DOT format, one vertex per node
// (both strands) and one edge per link
func WriteDOT(w io.Writer, g *Graph) error {
	dot := gographviz.NewGraph()
	if err := dot.SetName("G"); err != nil {
		return err
	}
	if err := dot.SetDir(true); err != nil {
		return err
	}

	quote := func(n Node) string { return strconv.Quote(g.NodeName(n)) }
	for _, i := range g.Segments() {
		s := g.segments[i]
		for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
			attrs := map[string]string{
				"label": strconv.Quote(fmt.Sprintf("%s len:%d depth:%.1f", g.NodeName(n), s.Len(), s.Depth)),
				"shape": "box",
			}
			if s.Circular {
				attrs["color"] = "Green"
			}
			if err := dot.AddNode("G", quote(n), attrs); err != nil {
				return err
			}
		}
	}

	for _, i := range g.Segments() {
		for _, n := range []Node{{Segment: i}, {Segment: i, Reverse: true}} {
			for _, l := range g.Neighbors(n, Forward) {
				attrs := map[string]string{"label": strconv.Quote(fmt.Sprintf("%dM", l.Overlap))}
				if l.Bridge {
					attrs["color"] = "Blue"
					attrs["label"] = strconv.Quote(fmt.Sprintf("bridge %dbp", len(l.Seq)))
				}
				if err := dot.AddEdge(quote(l.From), quote(l.To), true, attrs); err != nil {
					return err
				}
			}
		}
	}

	_, err := io.WriteString(w, dot.String())
	return err
}
