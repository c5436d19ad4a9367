package bridge

import (
	"fmt"
)

// Thresholds decide whether a pair's votes are enough to accept a bridge
type Thresholds struct {
	// MinIdentity is the lowest alignment identity (percent) that counts as a vote
	MinIdentity float64 `mapstructure:"min-identity"`

	// MinSupportReads is the fewest votes the winning path needs
	MinSupportReads int `mapstructure:"min-support-reads"`

	// DominanceMargin is the share of all votes the winning path has to exceed
	DominanceMargin float64 `mapstructure:"dominance-margin"`
}

// Validate checks the thresholds are in range
func (t Thresholds) Validate() error {
	if t.MinIdentity <= 0 || t.MinIdentity > 100 {
		return fmt.Errorf("min identity must be in (0, 100], got %v", t.MinIdentity)
	}
	if t.MinSupportReads < 1 {
		return fmt.Errorf("min support reads must be positive, got %d", t.MinSupportReads)
	}
	if t.DominanceMargin <= 0 || t.DominanceMargin > 1 {
		return fmt.Errorf("dominance margin must be in (0, 1], got %v", t.DominanceMargin)
	}
	return nil
}

// Reason is why a pair was left unresolved
type Reason string

const (
	// NoCandidatePath is for pairs with no path between them in the graph
	NoCandidatePath Reason = "no-candidate-path"

	// NoSpanningReads is for pairs with no read across them
	NoSpanningReads Reason = "no-spanning-reads"

	// AmbiguousSupport is for votes split without a dominant path
	AmbiguousSupport Reason = "ambiguous-support"

	// InsufficientSupport is for a dominant path with too few votes
	InsufficientSupport Reason = "insufficient-support"

	// LowIdentity is for pairs where no read aligned well enough to vote
	LowIdentity Reason = "low-identity"

	// Budget is for pairs cut off by the time budget
	Budget Reason = "budget"

	// SkippedAlignments is for pairs where every alignment was invalid or
	// over the resource bound
	SkippedAlignments Reason = "skipped-alignments"

	// ShortClosure is for an accepted circular closure shorter than the
	// minimum replicon length
	ShortClosure Reason = "short-closure"
)

// Tally is the vote count for one anchor pair
type Tally struct {
	// Paths is the number of candidate paths
	Paths int

	// Reads is the number of reads spanning the pair
	Reads int

	// Votes and IdentitySum are per path, indexed like the candidates
	Votes       []int
	IdentitySum []float64

	// Ties is the number of reads that aligned equally well to more than
	// one path, they cast no vote
	Ties int

	// Invalid and Exhausted count the alignments skipped for bad input and
	// for the resource bound
	Invalid   int
	Exhausted int

	// Incomplete is set when some alignments were never run
	Incomplete bool
}

// Outcome is the classification of a tally
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`

	// Winner is the index of the winning path, -1 if there's none
	Winner int `json:"winner"`

	Support      int     `json:"support"`
	TotalVotes   int     `json:"totalVotes"`
	MeanIdentity float64 `json:"meanIdentity"`
}

// Classify decides whether the tally's leading path is accepted as the bridge.
//
// It's accepted only when it has at least MinSupportReads votes, more than
// DominanceMargin of all votes, strictly more votes than the runner up, and
// a mean identity of at least MinIdentity. Ties are never broken.
func Classify(t Tally, th Thresholds) Outcome {
	out := Outcome{Winner: -1}
	switch {
	case t.Paths == 0:
		out.Reason = NoCandidatePath
		return out
	case t.Reads == 0:
		out.Reason = NoSpanningReads
		return out
	case t.Incomplete:
		out.Reason = Budget
		return out
	}

	winner, runnerUp := -1, 0
	for i, v := range t.Votes {
		out.TotalVotes += v
		if winner < 0 || v > t.Votes[winner] {
			if winner >= 0 {
				runnerUp = t.Votes[winner]
			}
			winner = i
		} else if v > runnerUp {
			runnerUp = v
		}
	}
	if out.TotalVotes == 0 {
		switch {
		case t.Invalid+t.Exhausted >= t.Paths*t.Reads:
			out.Reason = SkippedAlignments
		case t.Ties > 0:
			out.Reason = AmbiguousSupport
		default:
			out.Reason = LowIdentity
		}
		return out
	}

	support := t.Votes[winner]
	out.Support = support
	out.MeanIdentity = t.IdentitySum[winner] / float64(support)

	share := float64(support) / float64(out.TotalVotes)
	switch {
	case support <= runnerUp || share <= th.DominanceMargin:
		out.Reason = AmbiguousSupport
	case support < th.MinSupportReads:
		out.Reason = InsufficientSupport
	case out.MeanIdentity < th.MinIdentity:
		out.Reason = LowIdentity
	default:
		out.Accepted = true
		out.Winner = winner
	}
	return out
}
