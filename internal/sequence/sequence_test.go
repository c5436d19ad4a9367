package sequence

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"upper-cases", "acgt", "ACGT"},
		{"iupac to N", "ACRYGT", "ACNNGT"},
		{"drops whitespace", "AC\nGT \t", "ACGT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Normalize([]byte(tt.in))); got != tt.want {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ACGT", "ACGT"},
		{"AAAC", "GTTT"},
		{"ACNG", "CNGT"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(ReverseComplement([]byte(tt.in))); got != tt.want {
			t.Errorf("ReverseComplement(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// bruteLeastRotation checks every rotation
func bruteLeastRotation(s []byte) int {
	best := 0
	for i := 1; i < len(s); i++ {
		if bytes.Compare(Rotate(s, i), Rotate(s, best)) < 0 {
			best = i
		}
	}
	return best
}

func TestLeastRotation(t *testing.T) {
	if got := LeastRotation([]byte("GCA")); got != 2 {
		t.Errorf("LeastRotation(GCA) = %d, want 2", got)
	}
	if got := LeastRotation([]byte("AAAA")); got != 0 {
		t.Errorf("LeastRotation(AAAA) = %d, want 0", got)
	}

	r := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		s := make([]byte, 1+r.Intn(40))
		for i := range s {
			s[i] = "ACGT"[r.Intn(2)] // small alphabet to force repeats
		}
		got := Rotate(s, LeastRotation(s))
		want := Rotate(s, bruteLeastRotation(s))
		if !bytes.Equal(got, want) {
			t.Fatalf("LeastRotation(%s) rotation = %s, want %s", s, got, want)
		}
	}
}

func TestCanonicalCircular(t *testing.T) {
	seq := []byte("TTGCAGGT")

	want, _ := CanonicalCircular(seq)
	for i := range seq {
		rotated := Rotate(seq, i)
		if got, _ := CanonicalCircular(rotated); !bytes.Equal(got, want) {
			t.Errorf("rotation %d canonical = %s, want %s", i, got, want)
		}
		if got, _ := CanonicalCircular(ReverseComplement(rotated)); !bytes.Equal(got, want) {
			t.Errorf("rc rotation %d canonical = %s, want %s", i, got, want)
		}
	}
}
