package bridge

import (
	"reflect"
	"testing"
)

var testThresholds = Thresholds{MinIdentity: 80, MinSupportReads: 3, DominanceMargin: 0.6}

func tally(identity float64, votes ...int) Tally {
	t := Tally{Paths: len(votes), Votes: votes, IdentitySum: make([]float64, len(votes))}
	for i, v := range votes {
		t.Reads += v
		t.IdentitySum[i] = identity * float64(v)
	}
	return t
}

func TestClassify(t *testing.T) {
	type args struct {
		t  Tally
		th Thresholds
	}
	tests := []struct {
		name string
		args args
		want Outcome
	}{
		{
			"nine to one is accepted",
			args{tally(95, 9, 1), testThresholds},
			Outcome{Accepted: true, Winner: 0, Support: 9, TotalVotes: 10, MeanIdentity: 95},
		},
		{
			"five to five is ambiguous",
			args{tally(95, 5, 5), testThresholds},
			Outcome{Reason: AmbiguousSupport, Winner: -1, Support: 5, TotalVotes: 10, MeanIdentity: 95},
		},
		{
			"winner under the margin",
			args{tally(95, 6, 3, 1), testThresholds},
			Outcome{Reason: AmbiguousSupport, Winner: -1, Support: 6, TotalVotes: 10, MeanIdentity: 95},
		},
		{
			"share exactly at the margin",
			args{tally(95, 3, 2), testThresholds},
			Outcome{Reason: AmbiguousSupport, Winner: -1, Support: 3, TotalVotes: 5, MeanIdentity: 95},
		},
		{
			"too few votes",
			args{tally(95, 2), testThresholds},
			Outcome{Reason: InsufficientSupport, Winner: -1, Support: 2, TotalVotes: 2, MeanIdentity: 95},
		},
		{
			"low identity",
			args{tally(70, 0, 4), testThresholds},
			Outcome{Reason: LowIdentity, Winner: -1, Support: 4, TotalVotes: 4, MeanIdentity: 70},
		},
		{
			"second path wins",
			args{tally(90, 1, 9), testThresholds},
			Outcome{Accepted: true, Winner: 1, Support: 9, TotalVotes: 10, MeanIdentity: 90},
		},
		{
			"no paths",
			args{Tally{Reads: 4}, testThresholds},
			Outcome{Reason: NoCandidatePath, Winner: -1},
		},
		{
			"no reads",
			args{Tally{Paths: 2, Votes: []int{0, 0}, IdentitySum: []float64{0, 0}}, testThresholds},
			Outcome{Reason: NoSpanningReads, Winner: -1},
		},
		{
			"no votes",
			args{Tally{Paths: 2, Reads: 3, Votes: []int{0, 0}, IdentitySum: []float64{0, 0}}, testThresholds},
			Outcome{Reason: LowIdentity, Winner: -1},
		},
		{
			"every alignment skipped",
			args{Tally{Paths: 2, Reads: 3, Votes: []int{0, 0}, IdentitySum: []float64{0, 0}, Invalid: 2, Exhausted: 4}, testThresholds},
			Outcome{Reason: SkippedAlignments, Winner: -1},
		},
		{
			"some alignments skipped",
			args{Tally{Paths: 2, Reads: 3, Votes: []int{0, 0}, IdentitySum: []float64{0, 0}, Exhausted: 3}, testThresholds},
			Outcome{Reason: LowIdentity, Winner: -1},
		},
		{
			"every read tied",
			args{Tally{Paths: 2, Reads: 3, Votes: []int{0, 0}, IdentitySum: []float64{0, 0}, Ties: 3}, testThresholds},
			Outcome{Reason: AmbiguousSupport, Winner: -1},
		},
		{
			"cut off",
			args{Tally{Paths: 1, Reads: 3, Votes: []int{3}, IdentitySum: []float64{270}, Incomplete: true}, testThresholds},
			Outcome{Reason: Budget, Winner: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.args.t, tt.args.th); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"valid", testThresholds, false},
		{"identity over 100", Thresholds{MinIdentity: 101, MinSupportReads: 1, DominanceMargin: 0.5}, true},
		{"no support", Thresholds{MinIdentity: 80, DominanceMargin: 0.5}, true},
		{"margin over 1", Thresholds{MinIdentity: 80, MinSupportReads: 1, DominanceMargin: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.th.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Thresholds.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
