// Package align is the semi-global alignment primitive used to score long
// reads against candidate bridging paths.
//
// The whole query must align (internal gaps are allowed) to a sub-range of
// the reference, and the reference's unaligned flanks are free. The score
// and the aligned span are found in linear space. Identity is counted from a
// banded traceback over the aligned span only.
package align

import (
	"errors"
	"fmt"

	"github.com/rzzju/Unicycler/internal/sequence"
)

var (
	// ErrInvalidInput is returned for empty sequences or sequences over the size bound
	ErrInvalidInput = errors.New("invalid alignment input")

	// ErrResourceExhausted is returned when a pairing would exceed the DP cell bound
	ErrResourceExhausted = errors.New("alignment resource bound exceeded")
)

// negInf is low enough to never win a max, and high enough that adding
// penalties along a row or column can't overflow an int32
const negInf = int32(-1 << 30)

// Scoring holds the match/mismatch/gap weights. A gap of length k scores
// GapOpen + (k-1)*GapExtend. Penalties are negative
type Scoring struct {
	Match     int `mapstructure:"match"`
	Mismatch  int `mapstructure:"mismatch"`
	GapOpen   int `mapstructure:"gap-open"`
	GapExtend int `mapstructure:"gap-extend"`
}

// DefaultScoring is the weighting used for noisy long reads
func DefaultScoring() Scoring {
	return Scoring{Match: 3, Mismatch: -6, GapOpen: -5, GapExtend: -2}
}

// Validate checks that the scoring can produce meaningful alignments
func (s Scoring) Validate() error {
	if s.Match <= 0 {
		return fmt.Errorf("match score must be positive, got %d", s.Match)
	}
	if s.Mismatch > 0 || s.GapOpen > 0 || s.GapExtend > 0 {
		return fmt.Errorf("mismatch and gap scores must not be positive: %+v", s)
	}
	return nil
}

// Result is a single semi-global alignment of a query against a reference
type Result struct {
	// Score of the alignment
	Score int

	// Identity is the percentage of alignment columns that are matches
	Identity float64

	// RefStart and RefEnd bound the aligned span of the reference [RefStart, RefEnd)
	RefStart int
	RefEnd   int

	// column counts from the traceback
	Matches    int
	Mismatches int
	Gaps       int
	Columns    int
}

// Span is the number of reference bases covered by the alignment
func (r Result) Span() int {
	return r.RefEnd - r.RefStart
}

// Better returns whether r beats o: higher score, then higher identity,
// then the shorter aligned span
func (r Result) Better(o Result) bool {
	if r.Score != o.Score {
		return r.Score > o.Score
	}
	if r.Identity != o.Identity {
		return r.Identity > o.Identity
	}
	return r.Span() < o.Span()
}

// Equivalent returns whether neither result is better than the other
func (r Result) Equivalent(o Result) bool {
	return r.Score == o.Score && r.Identity == o.Identity && r.Span() == o.Span()
}

// Aligner aligns queries against references. It holds no mutable state and
// is safe for concurrent use
type Aligner struct {
	Scoring

	// MaxSequenceLength is the hard size bound for either sequence (0 is unbounded)
	MaxSequenceLength int

	// MaxCells bounds len(query)*len(ref), and the banded traceback's cell count
	MaxCells int64

	// BandPadding is added to the length difference to get the initial traceback band
	BandPadding int
}

// New returns an Aligner with the given scoring and bounds
func New(s Scoring, maxSeqLength int, maxCells int64, bandPadding int) *Aligner {
	if bandPadding < 1 {
		bandPadding = 1
	}
	return &Aligner{
		Scoring:           s,
		MaxSequenceLength: maxSeqLength,
		MaxCells:          maxCells,
		BandPadding:       bandPadding,
	}
}

// Align returns the best semi-global alignment of query within ref.
//
// Among equal scoring end columns the leftmost is kept, and among equal
// scoring starts for that end, the shortest span. Only that one alignment is
// traced back, so identity breaks ties between results (see Better), not
// between co-optimal placements inside a single reference.
func (a *Aligner) Align(query, ref []byte) (Result, error) {
	if len(query) == 0 || len(ref) == 0 {
		return Result{}, fmt.Errorf("%w: empty sequence (query %d bp, ref %d bp)", ErrInvalidInput, len(query), len(ref))
	}
	if a.MaxSequenceLength > 0 && (len(query) > a.MaxSequenceLength || len(ref) > a.MaxSequenceLength) {
		return Result{}, fmt.Errorf("%w: query %d bp, ref %d bp, limit %d bp", ErrInvalidInput, len(query), len(ref), a.MaxSequenceLength)
	}
	if cells := int64(len(query)) * int64(len(ref)); a.MaxCells > 0 && cells > a.MaxCells {
		return Result{}, fmt.Errorf("%w: %d cells, limit %d", ErrResourceExhausted, cells, a.MaxCells)
	}

	// forward pass: best score and its (leftmost) end column
	score, end := a.lastRow(query, ref, true)

	// reverse pass over the reference up to end, with that end fixed,
	// to find the start of the aligned span
	_, length := a.lastRow(sequence.Reverse(query), sequence.Reverse(ref[:end]), false)
	start := end - length

	res, err := a.traceback(query, ref[start:end], score)
	if err != nil {
		return Result{}, err
	}
	res.Score = int(score)
	res.RefStart = start
	res.RefEnd = end
	return res, nil
}

// sub scores a single column. N never matches
func (a *Aligner) sub(q, r byte) int32 {
	if q == r && q != 'N' {
		return int32(a.Match)
	}
	return int32(a.Mismatch)
}

// lastRow runs affine gap DP (Gotoh) over query x ref in linear space and
// returns the best score in the final row with its leftmost column.
//
// with freeStart the alignment may begin at any ref column, otherwise it
// begins at column zero
func (a *Aligner) lastRow(q, r []byte, freeStart bool) (best int32, bestJ int) {
	n := len(r)
	open, ext := int32(a.GapOpen), int32(a.GapExtend)

	prevH := make([]int32, n+1)
	curH := make([]int32, n+1)
	F := make([]int32, n+1)

	for j := 0; j <= n; j++ {
		F[j] = negInf
		if freeStart || j == 0 {
			prevH[j] = 0
		} else {
			prevH[j] = open + int32(j-1)*ext
		}
	}

	for i := 1; i <= len(q); i++ {
		curH[0] = open + int32(i-1)*ext
		F[0] = curH[0]
		e := negInf
		qi := q[i-1]

		for j := 1; j <= n; j++ {
			if eo := curH[j-1] + open; eo > e+ext {
				e = eo
			} else {
				e += ext
			}

			f := F[j] + ext
			if fo := prevH[j] + open; fo > f {
				f = fo
			}
			F[j] = f

			h := prevH[j-1] + a.sub(qi, r[j-1])
			if e > h {
				h = e
			}
			if f > h {
				h = f
			}
			curH[j] = h
		}
		prevH, curH = curH, prevH
	}

	best, bestJ = prevH[0], 0
	for j := 1; j <= n; j++ {
		if prevH[j] > best {
			best, bestJ = prevH[j], j
		}
	}
	return best, bestJ
}
