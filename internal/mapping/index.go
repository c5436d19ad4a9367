package mapping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/sequence"
)

// ErrBadOptions is for index options that can't be used
var ErrBadOptions = errors.New("bad mapping options")

// Options for the anchor index
type Options struct {
	// K is the k-mer length, at most 31
	K int `mapstructure:"k"`

	// Flank is how much of each anchor end is indexed, and how much of an
	// anchor is kept on each side of a span's query
	Flank int `mapstructure:"flank"`

	// MinSeedHits is the fewest k-mer hits that place an anchor end
	MinSeedHits int `mapstructure:"min-seed-hits"`

	// Band is the widest diagonal drift between hits in one cluster
	Band int `mapstructure:"band"`

	// MaxKmerOccurrences drops k-mers found in more places than this
	MaxKmerOccurrences int `mapstructure:"max-kmer-occurrences"`
}

// Validate checks the options can index anything
func (o Options) Validate() error {
	if o.K < 1 || o.K > 31 {
		return fmt.Errorf("%w: k must be in [1, 31], got %d", ErrBadOptions, o.K)
	}
	if o.Flank < o.K {
		return fmt.Errorf("%w: flank %d is shorter than k %d", ErrBadOptions, o.Flank, o.K)
	}
	if o.MinSeedHits < 1 {
		return fmt.Errorf("%w: min seed hits must be positive, got %d", ErrBadOptions, o.MinSeedHits)
	}
	if o.Band < 0 {
		return fmt.Errorf("%w: band must not be negative, got %d", ErrBadOptions, o.Band)
	}
	return nil
}

// hit is one k-mer occurrence in an anchor flank
type hit struct {
	node graph.Node
	tail bool
	pos  int
}

// Index is a k-mer index of anchor flanks on both strands. It's read-only
// once built and safe for concurrent use
type Index struct {
	g       *graph.Graph
	opts    Options
	anchors map[int]bool
	kmers   map[uint64][]hit
}

// NewIndex indexes the head and tail flanks of each anchor
func NewIndex(g *graph.Graph, anchors []int, opts Options) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	idx := &Index{
		g:       g,
		opts:    opts,
		anchors: make(map[int]bool, len(anchors)),
		kmers:   make(map[uint64][]hit),
	}
	for _, a := range anchors {
		if !g.Has(a) {
			return nil, fmt.Errorf("%w: anchor %d", graph.ErrGraphInconsistency, a)
		}
		idx.anchors[a] = true

		for _, n := range []graph.Node{{Segment: a}, {Segment: a, Reverse: true}} {
			seq := g.Seq(n)
			f := opts.Flank
			if f > len(seq) {
				f = len(seq)
			}
			eachKmer(seq[:f], opts.K, func(pos int, km uint64) {
				idx.kmers[km] = append(idx.kmers[km], hit{node: n, pos: pos})
			})
			tailStart := len(seq) - f
			eachKmer(seq[tailStart:], opts.K, func(pos int, km uint64) {
				idx.kmers[km] = append(idx.kmers[km], hit{node: n, tail: true, pos: tailStart + pos})
			})
		}
	}

	if opts.MaxKmerOccurrences > 0 {
		for km, hits := range idx.kmers {
			if len(hits) > opts.MaxKmerOccurrences {
				delete(idx.kmers, km)
			}
		}
	}
	return idx, nil
}

// Options returns the options the index was built with
func (idx *Index) Options() Options {
	return idx.opts
}

// IsAnchor returns whether a segment is indexed
func (idx *Index) IsAnchor(seg int) bool {
	return idx.anchors[seg]
}

// Anchors returns the indexed segments, sorted
func (idx *Index) Anchors() []int {
	anchors := make([]int, 0, len(idx.anchors))
	for a := range idx.anchors {
		anchors = append(anchors, a)
	}
	sort.Ints(anchors)
	return anchors
}

// Event is an anchor end found on a read: where the anchor's head starts on
// the read, or where its tail ends
type Event struct {
	Node graph.Node
	Tail bool

	// Coord is the read position of the anchor's start (head events) or end
	// (tail events). It can fall outside the read
	Coord int

	// Mid is the mean read position of the event's hits
	Mid int

	// Hits is the number of read positions with a k-mer hit
	Hits int
}

// candidate is one k-mer hit projected onto a read's diagonal
type candidate struct {
	diag    int
	readPos int
}

// groupKey is an anchor end on one strand
type groupKey struct {
	node graph.Node
	tail bool
}

// Events returns the anchor ends found on a read, ordered by position
func (idx *Index) Events(read []byte) []Event {
	groups := make(map[groupKey][]candidate)
	eachKmer(read, idx.opts.K, func(r int, km uint64) {
		for _, h := range idx.kmers[km] {
			diag := r - h.pos
			if h.tail {
				diag = r + len(idx.g.Seq(h.node)) - h.pos
			}
			key := groupKey{node: h.node, tail: h.tail}
			groups[key] = append(groups[key], candidate{diag: diag, readPos: r})
		}
	})

	var events []Event
	for key, cands := range groups {
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].diag != cands[j].diag {
				return cands[i].diag < cands[j].diag
			}
			return cands[i].readPos < cands[j].readPos
		})

		start := 0
		for i := 1; i <= len(cands); i++ {
			if i < len(cands) && cands[i].diag-cands[i-1].diag <= idx.opts.Band {
				continue
			}
			if e, ok := idx.cluster(key, cands[start:i]); ok {
				events = append(events, e)
			}
			start = i
		}
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Mid != b.Mid {
			return a.Mid < b.Mid
		}
		if a.Tail != b.Tail {
			return !a.Tail // heads first
		}
		if a.Node != b.Node {
			return nodeLess(a.Node, b.Node)
		}
		return a.Coord < b.Coord
	})
	return events
}

// cluster turns a run of hits on one diagonal into an event if there are
// enough of them
func (idx *Index) cluster(key groupKey, cands []candidate) (Event, bool) {
	positions := make(map[int]bool, len(cands))
	sum := 0
	for _, c := range cands {
		if !positions[c.readPos] {
			positions[c.readPos] = true
			sum += c.readPos
		}
	}
	if len(positions) < idx.opts.MinSeedHits {
		return Event{}, false
	}

	return Event{
		Node:  key.node,
		Tail:  key.tail,
		Coord: cands[len(cands)/2].diag,
		Mid:   sum/len(positions) + idx.opts.K/2,
		Hits:  len(positions),
	}, true
}

// eachKmer calls fn with the start and 2-bit encoding of every k-mer in seq
// that has no N in it
func eachKmer(seq []byte, k int, fn func(pos int, km uint64)) {
	if k < 1 || len(seq) < k {
		return
	}
	mask := uint64(1)<<(2*uint(k)) - 1

	var km uint64
	valid := 0 // bases since the last N
	for i, b := range seq {
		code, ok := sequence.Code(b)
		if !ok {
			valid = 0
			km = 0
			continue
		}
		km = (km<<2 | uint64(code)) & mask
		valid++
		if valid >= k {
			fn(i-k+1, km)
		}
	}
}
