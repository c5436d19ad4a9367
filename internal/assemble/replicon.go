package assemble

import (
	"github.com/rzzju/Unicycler/internal/graph"
	"go.uber.org/zap"
)

// closeReplicons finds components that are a single cycle at least the
// minimum replicon length, flags their segments circular and makes them
// terminal so they're never anchors again
func (a *assembler) closeReplicons(g *graph.Graph, pass int) int {
	closed := 0
	for _, comp := range g.Components() {
		if a.terminal[comp[0]] {
			continue
		}
		cycle, ok := g.Cycle(comp[0])
		if !ok {
			continue
		}
		length := g.CircularLength(cycle)
		if length < a.conf.Passes.MinRepliconLength {
			continue
		}

		var weighted, total float64
		for _, n := range cycle {
			s := g.Segment(n.Segment)
			s.Circular = true
			a.terminal[n.Segment] = true
			weighted += s.Depth * float64(s.Len())
			total += float64(s.Len())
		}

		r := Replicon{Pass: pass, Path: g.PathString(cycle), Length: length}
		if total > 0 {
			r.Depth = weighted / total
		}
		a.replicons = append(a.replicons, r)
		closed++

		a.log.Info("closed circular replicon",
			zap.Int("pass", pass),
			zap.String("path", r.Path),
			zap.Int("length", r.Length))
	}
	return closed
}
