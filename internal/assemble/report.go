package assemble

import (
	"sort"

	"github.com/rzzju/Unicycler/internal/bridge"
	"github.com/rzzju/Unicycler/internal/graph"
	"github.com/rzzju/Unicycler/internal/mapping"
)

// Stop is why the bridging loop ended
type Stop string

const (
	// StopConverged is a pass that applied no bridges
	StopConverged Stop = "converged"

	// StopMaxPasses is hitting the pass limit
	StopMaxPasses Stop = "max-passes"

	// StopBudget is running out of time
	StopBudget Stop = "budget"
)

// Report is the outcome of a run, for the reporting layer to render
type Report struct {
	// RunID is unique to every run
	RunID string `json:"runId"`

	// Time the run started, ex: "2018/01/01 20:41:00"
	Time string `json:"time"`

	// Execution is the number of seconds the run took
	Execution float64 `json:"execution"`

	// Stop is why the loop ended
	Stop Stop `json:"stop"`

	// Input and Output summarize the graph before and after
	Input  graph.Stats `json:"input"`
	Output graph.Stats `json:"output"`

	// Passes is one summary per bridging pass
	Passes []PassSummary `json:"passes"`

	// Pairs is the last outcome of every anchor pair that had reads across it
	Pairs []PairReport `json:"pairs"`

	// Replicons are the circular replicons that were completed
	Replicons []Replicon `json:"replicons"`
}

// PassSummary counts what happened in a single pass
type PassSummary struct {
	Pass      int `json:"pass"`
	Anchors   int `json:"anchors"`
	Reads     int `json:"reads"`
	Pairs     int `json:"pairs"`
	Accepted  int `json:"accepted"`
	Applied   int `json:"applied"`
	Stale     int `json:"stale"`
	Replicons int `json:"replicons"`
}

// PairReport is the resolution of one anchor pair
type PairReport struct {
	// From and To are the anchor nodes, eg "3+" and "7-"
	From string `json:"from"`
	To   string `json:"to"`

	// Pass is the pass the pair was last built in
	Pass int `json:"pass"`

	// Resolved is set once the pair's bridge is in the graph
	Resolved bool `json:"resolved"`

	// Stale is set when an accepted bridge no longer fit the graph
	Stale bool `json:"stale,omitempty"`

	// Circular is set for a closure candidate, a path from an anchor back
	// onto itself
	Circular bool `json:"circular,omitempty"`

	// Reason is why the pair is unresolved
	Reason bridge.Reason `json:"reason,omitempty"`

	// Path is the accepted bridge, eg "3+,12-,7-"
	Path string `json:"path,omitempty"`

	// Candidates is the number of candidate paths
	Candidates int  `json:"candidates"`
	Truncated  bool `json:"truncated,omitempty"`

	// Reads is the number of reads spanning the pair
	Reads int `json:"reads"`

	// Votes per candidate path, in generation order
	Votes []int `json:"votes"`

	Support      int     `json:"support"`
	MeanIdentity float64 `json:"meanIdentity"`

	// Ties are reads that fit more than one path equally well
	Ties int `json:"ties,omitempty"`

	// Invalid and Exhausted are the skipped alignments
	Invalid   int `json:"invalid,omitempty"`
	Exhausted int `json:"exhausted,omitempty"`

	pair mapping.Pair
}

// Replicon is a circular replicon closed during the run
type Replicon struct {
	// Pass it was closed after, 0 if it was already closed in the input
	Pass int `json:"pass"`

	// Path is the cycle's nodes, eg "4+,9+"
	Path string `json:"path"`

	// Length of the circular sequence
	Length int `json:"length"`

	// Depth is the cycle's length-weighted mean depth
	Depth float64 `json:"depth"`
}

// newPairReport summarizes a result, naming nodes in g as it is before the
// result's bridge is applied
func newPairReport(g *graph.Graph, pass int, r bridge.Result) *PairReport {
	rep := &PairReport{
		From:         g.NodeName(r.Pair.From),
		To:           g.NodeName(r.Pair.To),
		Pass:         pass,
		Circular:     r.Circular,
		Reason:       r.Outcome.Reason,
		Candidates:   len(r.Paths),
		Truncated:    r.Truncated,
		Reads:        r.Tally.Reads,
		Votes:        r.Tally.Votes,
		Support:      r.Outcome.Support,
		MeanIdentity: r.Outcome.MeanIdentity,
		Ties:         r.Tally.Ties,
		Invalid:      r.Tally.Invalid,
		Exhausted:    r.Tally.Exhausted,
		pair:         r.Pair,
	}
	if p, ok := r.Bridge(); ok {
		rep.Path = g.PathString(p)
	}
	return rep
}

// sortedPairs returns the reports in pair order
func sortedPairs(reports map[mapping.Pair]*PairReport) []PairReport {
	out := make([]PairReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pair.Less(out[j].pair) })
	return out
}
