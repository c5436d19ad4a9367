package align

import (
	"fmt"
)

// traceback source bits for a single banded DP cell
const (
	fromDiag byte = 0
	fromE    byte = 1 // horizontal gap, consumes reference
	fromF    byte = 2 // vertical gap, consumes query
	srcMask  byte = 3
	extendE  byte = 1 << 2
	extendF  byte = 1 << 3
)

// traceback states
const (
	stateH = iota
	stateE
	stateF
)

// band is a banded global DP matrix of traceback bytes. Row i holds the
// cells for columns [lo[i], hi[i]]
type band struct {
	lo, hi []int
	offset []int
	cells  []byte
}

func (b *band) at(i, j int) byte {
	return b.cells[b.offset[i]+j-b.lo[i]]
}

// traceback globally aligns q against s (the aligned reference span) inside a
// diagonal band, doubling the band until the banded score matches want
func (a *Aligner) traceback(q, s []byte, want int32) (Result, error) {
	m, l := len(q), len(s)
	w := l - m
	if w < 0 {
		w = -w
	}
	w += a.BandPadding
	if slope := l/m + 2; w < slope {
		w = slope
	}

	for {
		if w > l {
			w = l
		}
		if cells := int64(m+1) * int64(2*w+1); a.MaxCells > 0 && cells > a.MaxCells {
			return Result{}, fmt.Errorf("%w: traceback band of %d cells, limit %d", ErrResourceExhausted, cells, a.MaxCells)
		}

		score, b := a.fillBand(q, s, w)
		if score == want || w >= l {
			return walk(q, s, b), nil
		}
		w *= 2
	}
}

// fillBand runs global affine gap DP inside the band and returns the score
// of the bottom right cell with the traceback matrix
func (a *Aligner) fillBand(q, s []byte, w int) (int32, *band) {
	m, l := len(q), len(s)
	open, ext := int32(a.GapOpen), int32(a.GapExtend)

	b := &band{
		lo:     make([]int, m+1),
		hi:     make([]int, m+1),
		offset: make([]int, m+1),
	}
	total := 0
	for i := 0; i <= m; i++ {
		c := int(int64(i) * int64(l) / int64(m))
		lo, hi := c-w, c+w
		if lo < 0 {
			lo = 0
		}
		if hi > l {
			hi = l
		}
		b.lo[i], b.hi[i], b.offset[i] = lo, hi, total
		total += hi - lo + 1
	}
	b.cells = make([]byte, total)

	prevH, curH := make([]int32, l+1), make([]int32, l+1)
	prevF, curF := make([]int32, l+1), make([]int32, l+1)
	curE := make([]int32, l+1)
	for j := range prevH {
		prevH[j], prevF[j] = negInf, negInf
	}

	// row zero is a leading horizontal gap
	prevH[0] = 0
	for j := 1; j <= b.hi[0]; j++ {
		prevH[j] = open + int32(j-1)*ext
		tb := fromE
		if j > 1 {
			tb |= extendE
		}
		b.cells[b.offset[0]+j-b.lo[0]] = tb
	}

	for i := 1; i <= m; i++ {
		for j := range curH {
			curH[j], curE[j], curF[j] = negInf, negInf, negInf
		}

		qi := q[i-1]
		for j := b.lo[i]; j <= b.hi[i]; j++ {
			var tb byte
			if j == 0 {
				curH[0] = open + int32(i-1)*ext
				curF[0] = curH[0]
				tb = fromF
				if i > 1 {
					tb |= extendF
				}
				b.cells[b.offset[i]-b.lo[i]] = tb
				continue
			}

			e := curH[j-1] + open
			if ee := curE[j-1] + ext; ee > e {
				e = ee
				tb |= extendE
			}
			curE[j] = e

			f := prevH[j] + open
			if fe := prevF[j] + ext; fe > f {
				f = fe
				tb |= extendF
			}
			curF[j] = f

			h := prevH[j-1] + a.sub(qi, s[j-1])
			src := fromDiag
			if e > h {
				h, src = e, fromE
			}
			if f > h {
				h, src = f, fromF
			}
			curH[j] = h
			b.cells[b.offset[i]+j-b.lo[i]] = tb | src
		}
		prevH, curH = curH, prevH
		prevF, curF = curF, prevF
	}
	return prevH[l], b
}

// walk follows the traceback from the bottom right cell and counts columns
func walk(q, s []byte, b *band) Result {
	var res Result
	i, j := len(q), len(s)
	state := stateH

	for i > 0 || j > 0 {
		cell := b.at(i, j)
		switch state {
		case stateH:
			switch cell & srcMask {
			case fromE:
				state = stateE
				continue
			case fromF:
				state = stateF
				continue
			}
			if q[i-1] == s[j-1] && q[i-1] != 'N' {
				res.Matches++
			} else {
				res.Mismatches++
			}
			i--
			j--
		case stateE:
			res.Gaps++
			if cell&extendE == 0 {
				state = stateH
			}
			j--
		case stateF:
			res.Gaps++
			if cell&extendF == 0 {
				state = stateH
			}
			i--
		}
		res.Columns++
	}

	if res.Columns > 0 {
		res.Identity = 100 * float64(res.Matches) / float64(res.Columns)
	}
	return res
}
