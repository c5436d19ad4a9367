package traverse

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/rzzju/Unicycler/internal/graph"
)

// mockGraph builds a graph from segment lengths and "a+,b+" link names
func mockGraph(t *testing.T, lengths map[string]int, links [][2]string) *graph.Graph {
	g := graph.New()
	for _, id := range []string{"s", "a", "b", "c", "e", "r", "x"} {
		if n, ok := lengths[id]; ok {
			if _, err := g.AddSegment(id, bytes.Repeat([]byte("A"), n), 1); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, l := range links {
		from, err := g.Node(l[0])
		if err != nil {
			t.Fatal(err)
		}
		to, err := g.Node(l[1])
		if err != nil {
			t.Fatal(err)
		}
		if err := g.AddLink(from, to, 0); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func node(t *testing.T, g *graph.Graph, name string) graph.Node {
	n, err := g.Node(name)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func pathStrings(g *graph.Graph, paths []graph.Path) []string {
	var out []string
	for _, p := range paths {
		out = append(out, g.PathString(p))
	}
	return out
}

func TestGenerator(t *testing.T) {
	lengths := map[string]int{"s": 100, "a": 10, "b": 30, "c": 500, "e": 100, "x": 100}

	// s -> a -> e, s -> b -> e, s -> c -> e, s -> x -> e
	links := [][2]string{
		{"s+", "a+"}, {"a+", "e+"},
		{"s+", "b+"}, {"b+", "e+"},
		{"s+", "c+"}, {"c+", "e+"},
		{"s+", "x+"}, {"x+", "e+"},
	}

	type args struct {
		limits Limits
		avoid  []string
	}
	tests := []struct {
		name          string
		args          args
		want          []string
		wantTruncated bool
	}{
		{
			"all paths in DFS order",
			args{limits: Limits{}},
			[]string{"s+,a+,e+", "s+,b+,e+", "s+,c+,e+", "s+,x+,e+"},
			false,
		},
		{
			"length bound",
			args{limits: Limits{MaxLength: 100}},
			[]string{"s+,a+,e+", "s+,b+,e+", "s+,x+,e+"},
			false,
		},
		{
			"avoid an anchor",
			args{limits: Limits{MaxLength: 100}, avoid: []string{"x"}},
			[]string{"s+,a+,e+", "s+,b+,e+"},
			false,
		},
		{
			"candidate bound",
			args{limits: Limits{MaxCandidates: 2}},
			[]string{"s+,a+,e+", "s+,b+,e+"},
			true,
		},
		{
			"depth bound",
			args{limits: Limits{MaxDepth: 1}},
			nil,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mockGraph(t, lengths, links)
			var avoid []int
			for _, id := range tt.args.avoid {
				i, _ := g.Index(id)
				avoid = append(avoid, i)
			}

			gen := New(g, node(t, g, "s+"), node(t, g, "e+"), tt.args.limits, avoid)
			paths, truncated := Collect(gen)
			if got := pathStrings(g, paths); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("Collect() truncated = %v, want %v", truncated, tt.wantTruncated)
			}
			for _, p := range paths {
				if !g.ValidPath(p) {
					t.Errorf("invalid path %s", g.PathString(p))
				}
			}
		})
	}
}

func TestGenerator_repeatVisits(t *testing.T) {
	lengths := map[string]int{"s": 100, "r": 20, "e": 100}
	links := [][2]string{{"s+", "r+"}, {"r+", "r+"}, {"r+", "e+"}}

	tests := []struct {
		name   string
		visits int
		want   []string
	}{
		{"once", 1, []string{"s+,r+,e+"}},
		{"twice", 2, []string{"s+,r+,e+", "s+,r+,r+,e+"}},
		{"three times", 3, []string{"s+,r+,e+", "s+,r+,r+,e+", "s+,r+,r+,r+,e+"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mockGraph(t, lengths, links)
			gen := New(g, node(t, g, "s+"), node(t, g, "e+"), Limits{MaxRepeatVisits: tt.visits}, nil)
			paths, _ := Collect(gen)
			if got := pathStrings(g, paths); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerator_circular(t *testing.T) {
	lengths := map[string]int{"s": 100, "a": 20, "b": 20}
	links := [][2]string{{"s+", "a+"}, {"a+", "s+"}, {"s+", "b-"}, {"b-", "s+"}}

	g := mockGraph(t, lengths, links)
	s := node(t, g, "s+")
	gen := New(g, s, s, Limits{MaxLength: 1000}, nil)
	if !gen.Circular {
		t.Error("New() with start == end should be circular")
	}

	paths, _ := Collect(gen)
	want := []string{"s+,a+,s+", "s+,b-,s+"}
	if got := pathStrings(g, paths); !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}
}

func TestGenerator_noPath(t *testing.T) {
	g := mockGraph(t, map[string]int{"s": 100, "e": 100, "a": 10}, [][2]string{{"s+", "a+"}})
	gen := New(g, node(t, g, "s+"), node(t, g, "e+"), Limits{}, nil)
	if p, ok := gen.Next(); ok {
		t.Errorf("Next() = %v, want no path", p)
	}
}

func Test_distanceToEnd(t *testing.T) {
	lengths := map[string]int{"s": 100, "a": 10, "b": 30, "e": 100}
	links := [][2]string{{"s+", "a+"}, {"a+", "b+"}, {"b+", "e+"}, {"s+", "e+"}}
	g := mockGraph(t, lengths, links)

	dist := distanceToEnd(g, node(t, g, "e+"), nil, 0)
	tests := []struct {
		node string
		want int
	}{
		{"e+", 0},
		{"b+", 100},
		{"a+", 130},
		{"s+", 100}, // the direct link
	}
	for _, tt := range tests {
		if got := dist[node(t, g, tt.node)]; got != tt.want {
			t.Errorf("distanceToEnd()[%s] = %d, want %d", tt.node, got, tt.want)
		}
	}
	if _, ok := dist[node(t, g, "e-")]; ok {
		t.Error("distanceToEnd() e- can't reach e+")
	}
}
