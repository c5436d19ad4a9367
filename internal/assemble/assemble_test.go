package assemble

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/rzzju/Unicycler/config"
	"github.com/rzzju/Unicycler/internal/bridge"
	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/mapping"
	"github.com/rzzju/Unicycler/internal/sequence"
	"go.uber.org/zap"
)

func randSeq(r *rand.Rand, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = "ACGT"[r.Intn(4)]
	}
	return s
}

// mutate adds substitutions, insertions and deletions at the given rate
func mutate(r *rand.Rand, s []byte, rate float64) []byte {
	out := make([]byte, 0, len(s))
	for _, b := range s {
		if r.Float64() >= rate {
			out = append(out, b)
			continue
		}
		switch r.Intn(3) {
		case 0:
			out = append(out, "ACGT"[r.Intn(4)])
		case 1:
			out = append(out, b, "ACGT"[r.Intn(4)])
		case 2: // deletion
		}
	}
	return out
}

// simulate makes noisy reads along each path, on a random strand
func simulate(t *testing.T, g *graph.Graph, seed int64, paths ...graph.Path) []mapping.Read {
	r := rand.New(rand.NewSource(seed))
	var reads []mapping.Read
	for i, p := range paths {
		seq, err := g.PathSequence(p)
		expect.NoError(t, err)
		seq = mutate(r, seq, 0.02)
		if r.Intn(2) == 0 {
			seq = sequence.ReverseComplement(seq)
		}
		reads = append(reads, mapping.Read{Name: fmt.Sprintf("read%d", i), Seq: seq})
	}
	return reads
}

func testConfig() *config.Config {
	c := config.Default()
	c.Anchors.MinLength = 1000
	c.Anchors.Flank = 200
	c.Anchors.K = 15
	c.Anchors.MinSeedHits = 5
	c.Anchors.Band = 30
	c.Bridging.RefSlop = 50
	c.Bridging.Threads = 4
	c.Passes.Max = 5
	c.Passes.MinRepliconLength = 1000
	return c
}

// repeat is X -> Y -> Z with a direct X -> Z link the short reads couldn't
// rule out
func repeat(t *testing.T) (g *graph.Graph, x, y, z graph.Node) {
	r := rand.New(rand.NewSource(11))
	g = graph.New()
	xi, _ := g.AddSegment("X", randSeq(r, 1500), 10)
	yi, _ := g.AddSegment("Y", randSeq(r, 300), 10)
	zi, _ := g.AddSegment("Z", randSeq(r, 1500), 10)
	x, y, z = graph.Node{Segment: xi}, graph.Node{Segment: yi}, graph.Node{Segment: zi}

	expect.NoError(t, g.AddLink(x, y, 0))
	expect.NoError(t, g.AddLink(y, z, 0))
	expect.NoError(t, g.AddLink(x, z, 0))
	return g, x, y, z
}

func repeatReads(t *testing.T, g *graph.Graph, x, y, z graph.Node) []mapping.Read {
	var paths []graph.Path
	for i := 0; i < 8; i++ {
		paths = append(paths, graph.Path{x, y, z})
	}
	paths = append(paths, graph.Path{x, z}, graph.Path{x, z})
	return simulate(t, g, 12, paths...)
}

func TestRun(t *testing.T) {
	g, x, y, z := repeat(t)
	want, err := g.PathSequence(graph.Path{x, y, z})
	expect.NoError(t, err)
	reads := repeatReads(t, g, x, y, z)

	final, rep, err := Run(context.Background(), g, reads, testConfig(), zap.NewNop())
	expect.NoError(t, err)

	// the repeat's direct link and Y are gone from the bridged graph
	_, direct := g.Link(x, z)
	expect.False(t, direct)
	expect.False(t, g.Has(y.Segment))

	expect.EQ(t, final.Len(), 1)
	expect.EQ(t, len(final.Links()), 0)
	expect.EQ(t, string(final.Segment(final.Segments()[0]).Seq), string(want))

	expect.EQ(t, rep.Stop, StopConverged)
	expect.EQ(t, len(rep.Passes), 2)
	expect.EQ(t, rep.Passes[0].Applied, 1)
	expect.EQ(t, rep.Input.Segments, 3)
	expect.EQ(t, rep.Output.Segments, 1)
	expect.True(t, rep.RunID != "")

	expect.EQ(t, len(rep.Pairs), 1)
	pr := rep.Pairs[0]
	expect.EQ(t, pr.From, "X+")
	expect.EQ(t, pr.To, "Z+")
	expect.True(t, pr.Resolved)
	expect.False(t, pr.Circular)
	expect.EQ(t, pr.Path, "X+,Y+,Z+")
	expect.EQ(t, pr.Candidates, 2)
	expect.EQ(t, pr.Reads, 10)
	expect.EQ(t, pr.Support, 8)
	expect.True(t, pr.MeanIdentity >= 95, "identity %v", pr.MeanIdentity)
}

func TestRun_deterministic(t *testing.T) {
	var out [2]bytes.Buffer
	for i := range out {
		g, x, y, z := repeat(t)
		final, _, err := Run(context.Background(), g, repeatReads(t, g, x, y, z), testConfig(), zap.NewNop())
		expect.NoError(t, err)
		expect.NoError(t, graph.WriteGFA(&out[i], final))
	}
	expect.True(t, out[0].Len() > 0)
	expect.EQ(t, out[0].String(), out[1].String())
}

func TestRun_unresolved(t *testing.T) {
	g, x, y, z := repeat(t)
	reads := simulate(t, g, 13, graph.Path{x, y, z}, graph.Path{x, z}, graph.Path{x, y, z}, graph.Path{x, z})

	final, rep, err := Run(context.Background(), g, reads, testConfig(), zap.NewNop())
	expect.NoError(t, err)

	expect.EQ(t, rep.Stop, StopConverged)
	expect.EQ(t, len(rep.Pairs), 1)
	expect.False(t, rep.Pairs[0].Resolved)
	expect.EQ(t, rep.Pairs[0].Reason, bridge.AmbiguousSupport)

	// the ambiguity is left as it was
	expect.EQ(t, final.Len(), 3)
	expect.EQ(t, len(final.Links()), 3)
}

// plasmid is a single anchor A with two variants of a repeat, A -> S1 -> A
// and A -> S2 -> A
func plasmid(t *testing.T) (g *graph.Graph, a, s1, s2 graph.Node) {
	r := rand.New(rand.NewSource(21))
	g = graph.New()
	ai, _ := g.AddSegment("A", randSeq(r, 1500), 10)
	s1i, _ := g.AddSegment("S1", randSeq(r, 120), 10)
	s2i, _ := g.AddSegment("S2", randSeq(r, 160), 10)
	a, s1, s2 = graph.Node{Segment: ai}, graph.Node{Segment: s1i}, graph.Node{Segment: s2i}

	for _, l := range [][2]graph.Node{{a, s1}, {s1, a}, {a, s2}, {s2, a}} {
		expect.NoError(t, g.AddLink(l[0], l[1], 0))
	}
	return g, a, s1, s2
}

func TestRun_circular(t *testing.T) {
	g, a, s1, _ := plasmid(t)
	var paths []graph.Path
	for i := 0; i < 6; i++ {
		paths = append(paths, graph.Path{a, s1, a})
	}
	reads := simulate(t, g, 22, paths...)

	final, rep, err := Run(context.Background(), g, reads, testConfig(), zap.NewNop())
	expect.NoError(t, err)

	expect.EQ(t, len(rep.Replicons), 1)
	expect.EQ(t, rep.Replicons[0].Pass, 1)
	expect.EQ(t, rep.Replicons[0].Length, 1620)
	expect.True(t, g.Segment(a.Segment).Circular)

	// closed replicons are never anchors, so the next pass has nothing to do
	expect.EQ(t, len(rep.Passes), 2)
	expect.EQ(t, rep.Passes[1].Anchors, 0)

	expect.EQ(t, len(rep.Pairs), 1)
	expect.EQ(t, rep.Pairs[0].Path, "A+,S1+,A+")
	expect.True(t, rep.Pairs[0].Circular)
	expect.True(t, rep.Pairs[0].Resolved)

	var circular *graph.Segment
	for _, i := range final.Segments() {
		if s := final.Segment(i); s.Circular {
			circular = s
		}
	}
	expect.True(t, circular != nil)
	expect.EQ(t, circular.Len(), 1620)
	_, self := final.Link(graph.Node{Segment: final.Segments()[0]}, graph.Node{Segment: final.Segments()[0]})
	expect.True(t, self)
}

func TestRun_shortClosure(t *testing.T) {
	g, a, s1, s2 := plasmid(t)
	var paths []graph.Path
	for i := 0; i < 6; i++ {
		paths = append(paths, graph.Path{a, s1, a})
	}
	reads := simulate(t, g, 22, paths...)

	c := testConfig()
	c.Passes.MinRepliconLength = 2000 // the closure is 1620
	_, rep, err := Run(context.Background(), g, reads, c, zap.NewNop())
	expect.NoError(t, err)

	expect.EQ(t, rep.Stop, StopConverged)
	expect.EQ(t, len(rep.Replicons), 0)
	expect.EQ(t, len(rep.Pairs), 1)

	pr := rep.Pairs[0]
	expect.True(t, pr.Circular)
	expect.False(t, pr.Resolved)
	expect.EQ(t, pr.Reason, bridge.ShortClosure)
	expect.EQ(t, pr.Path, "A+,S1+,A+")

	// the loops are left as they were
	expect.False(t, g.Segment(a.Segment).Circular)
	expect.True(t, g.Has(s1.Segment))
	expect.True(t, g.Has(s2.Segment))
	_, direct := g.Link(a, a)
	expect.False(t, direct)
}

func TestRun_closedInput(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	g := graph.New()
	i, _ := g.AddSegment("P", randSeq(r, 2000), 10)
	p := graph.Node{Segment: i}
	expect.NoError(t, g.AddLink(p, p, 0))

	_, rep, err := Run(context.Background(), g, nil, testConfig(), zap.NewNop())
	expect.NoError(t, err)
	expect.EQ(t, len(rep.Replicons), 1)
	expect.EQ(t, rep.Replicons[0].Pass, 0)
	expect.EQ(t, rep.Passes[0].Anchors, 0)
}

func TestRun_budget(t *testing.T) {
	g, x, y, z := repeat(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final, rep, err := Run(ctx, g, repeatReads(t, g, x, y, z), testConfig(), zap.NewNop())
	expect.NoError(t, err)
	expect.EQ(t, rep.Stop, StopBudget)
	expect.EQ(t, len(rep.Passes), 0)
	expect.True(t, g.Has(y.Segment))
	expect.EQ(t, final.Len(), 3)
}

func TestRun_invalidSettings(t *testing.T) {
	g, _, _, _ := repeat(t)
	c := testConfig()
	c.Bridging.DominanceMargin = 2

	_, _, err := Run(context.Background(), g, nil, c, zap.NewNop())
	expect.True(t, err != nil)
}
