package traverse

import (
	"container/heap"

	"github.com/rzzju/Unicycler/internal/graph"
)

// weight is the number of bases a link and its target add to a path
func weight(g *graph.Graph, l graph.Link) int {
	return len(l.Seq) + len(g.Seq(l.To)) - l.Overlap
}

// distanceToEnd is the fewest bases any path from the end of each node to
// the end of the target node can add, found by Dijkstra over the links in
// reverse. Nodes that can't reach end, or only through avoided segments or
// by more than bound bases (when bound > 0), are missing from the map.
//
// Paths longer than the bound can be pruned early using it: a node reached
// with n bases already in the path is only worth entering when n plus its
// distance is still within the length limit.
func distanceToEnd(g *graph.Graph, end graph.Node, avoid map[int]bool, bound int) map[graph.Node]int {
	dist := map[graph.Node]int{end: 0}
	done := make(map[graph.Node]bool)

	q := &nodeHeap{{node: end, dist: 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(nodeDist)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true

		for _, l := range g.Neighbors(cur.node, graph.Backward) {
			if avoid[l.From.Segment] {
				continue
			}
			d := cur.dist + weight(g, l)
			if bound > 0 && d > bound {
				continue
			}
			if old, seen := dist[l.From]; !seen || d < old {
				dist[l.From] = d
				heap.Push(q, nodeDist{node: l.From, dist: d})
			}
		}
	}
	return dist
}

// nodeDist is a node with its distance to the end node
type nodeDist struct {
	node graph.Node
	dist int
}

// nodeHeap is a min-heap of node distances
type nodeHeap []nodeDist

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x interface{}) {
	*h = append(*h, x.(nodeDist))
}

func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
