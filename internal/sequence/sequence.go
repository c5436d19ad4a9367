// Package sequence is for small nucleotide helpers shared by the aligner,
// the graph and the read mapper
package sequence

import (
	"bytes"
)

// complement maps each upper-case base to its complement. anything that
// isn't ACGT is mapped to N
var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
}

// Normalize upper-cases a sequence and converts non-ACGT characters to N.
// Whitespace is dropped. It returns a new slice
func Normalize(seq []byte) []byte {
	out := make([]byte, 0, len(seq))
	for _, b := range seq {
		switch {
		case b == ' ' || b == '\n' || b == '\r' || b == '\t':
			continue
		case b >= 'a' && b <= 'z':
			b -= 'a' - 'A'
		}

		switch b {
		case 'A', 'C', 'G', 'T':
			out = append(out, b)
		default:
			out = append(out, 'N')
		}
	}
	return out
}

// ReverseComplement returns the reverse complement of seq in a new slice
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement[b]
	}
	return out
}

// Code is the 2-bit code of a base, false for anything but ACGT (any case)
func Code(b byte) (uint8, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	}
	return 0, false
}

// Reverse returns seq reversed in a new slice
func Reverse(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = b
	}
	return out
}

// Rotate returns seq rotated so it starts at index start
func Rotate(seq []byte, start int) []byte {
	if len(seq) == 0 {
		return []byte{}
	}
	start %= len(seq)
	out := make([]byte, 0, len(seq))
	out = append(out, seq[start:]...)
	return append(out, seq[:start]...)
}

// LeastRotation returns the start index of the lexicographically smallest
// rotation of seq (Booth's algorithm, linear time)
func LeastRotation(seq []byte) int {
	n := len(seq)
	if n < 2 {
		return 0
	}

	s := make([]byte, 0, 2*n)
	s = append(s, seq...)
	s = append(s, seq...)

	f := make([]int, len(s))
	for i := range f {
		f[i] = -1
	}

	k := 0
	for j := 1; j < len(s); j++ {
		sj := s[j]
		i := f[j-k-1]
		for i != -1 && sj != s[k+i+1] {
			if sj < s[k+i+1] {
				k = j - i - 1
			}
			i = f[i]
		}
		if sj != s[k+i+1] { // i == -1
			if sj < s[k] {
				k = j
			}
			f[j-k] = -1
		} else {
			f[j-k] = i + 1
		}
	}
	return k % n
}

// CanonicalCircular returns the canonical representation of a circular
// sequence: the smallest rotation among both strands. flipped reports
// whether the reverse complement strand was chosen
func CanonicalCircular(seq []byte) (canonical []byte, flipped bool) {
	fwd := Rotate(seq, LeastRotation(seq))
	rc := ReverseComplement(seq)
	rev := Rotate(rc, LeastRotation(rc))

	if bytes.Compare(rev, fwd) < 0 {
		return rev, true
	}
	return fwd, false
}
