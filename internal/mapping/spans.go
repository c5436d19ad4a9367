package mapping

import (
	"github.com/rzzju/Unicycler/internal/sequence"
)

// Span is the region of a read between two consecutive anchors, from Flank
// bases before the first anchor's end to Flank bases after the second
// anchor's start
type Span struct {
	// Pair is the canonical anchor pair the span connects
	Pair Pair

	// Read is the name of the read the span came from
	Read string

	// Query is the read region, on the strand of the canonical pair
	Query []byte

	// Flipped is set when Query was reverse complemented to match Pair
	Flipped bool
}

// Spans places a read's anchors and returns a span for every pair of
// consecutive ones: an anchor's tail followed by the next anchor head
func (idx *Index) Spans(read Read) []Span {
	events := idx.Events(read.Seq)
	flank := idx.opts.Flank

	var spans []Span
	for i, e := range events {
		if !e.Tail {
			continue
		}

		for _, next := range events[i+1:] {
			if next.Tail {
				break // another anchor ends before one starts
			}
			if next.Node == e.Node && next.Coord < e.Coord {
				continue // the head of this same placement
			}

			start, end := e.Coord-flank, next.Coord+flank
			if start < 0 {
				start = 0
			}
			if end > len(read.Seq) {
				end = len(read.Seq)
			}
			if end-start < idx.opts.K {
				break
			}

			pair, flipped := Pair{From: e.Node, To: next.Node}.Canonical()
			query := append([]byte{}, read.Seq[start:end]...)
			if flipped {
				query = sequence.ReverseComplement(query)
			}
			spans = append(spans, Span{Pair: pair, Read: read.Name, Query: query, Flipped: flipped})
			break
		}
	}
	return spans
}
