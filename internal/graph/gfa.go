package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedGFA is for GFA input that can't be read into a graph
var ErrMalformedGFA = errors.New("malformed GFA")

// maxGFALine bounds a single GFA line, segments can be megabases long
const maxGFALine = 1 << 30

// gfaLink is an L line waiting for every S line to be read
type gfaLink struct {
	line           int
	from, to       string
	fromRev, toRev bool
	overlap        int
}

// ReadGFA reads a GFA1 graph. S lines need a sequence. Depth is taken from a
// DP:f tag, or from KC:i (k-mer count) divided by the segment length.
// L lines may reference segments defined after them
func ReadGFA(r io.Reader) (*Graph, error) {
	g := New()
	var links []gfaLink

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), maxGFALine)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || text[0] == '#' {
			continue
		}

		fields := strings.Split(text, "\t")
		switch fields[0] {
		case "S":
			if err := readSegment(g, fields, line); err != nil {
				return nil, err
			}
		case "L":
			l, err := readLink(fields, line)
			if err != nil {
				return nil, err
			}
			links = append(links, l)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GFA: %w", err)
	}

	for _, l := range links {
		from, ok := g.Index(l.from)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: link from unknown segment %s", ErrMalformedGFA, l.line, l.from)
		}
		to, ok := g.Index(l.to)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: link to unknown segment %s", ErrMalformedGFA, l.line, l.to)
		}
		err := g.AddLink(Node{Segment: from, Reverse: l.fromRev}, Node{Segment: to, Reverse: l.toRev}, l.overlap)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGFA, l.line, err)
		}
	}
	return g, nil
}

func readSegment(g *Graph, fields []string, line int) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: line %d: S line needs a name and sequence", ErrMalformedGFA, line)
	}
	id, seq := fields[1], fields[2]
	if seq == "*" || seq == "" {
		return fmt.Errorf("%w: line %d: segment %s has no sequence", ErrMalformedGFA, line, id)
	}

	depth := 0.0
	haveDepth := false
	circular := false
	for _, tag := range fields[3:] {
		parts := strings.SplitN(tag, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("%w: line %d: bad tag %q", ErrMalformedGFA, line, tag)
		}
		switch strings.ToUpper(parts[0]) {
		case "DP":
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: bad depth %q", ErrMalformedGFA, line, tag)
			}
			depth, haveDepth = v, true
		case "KC":
			if haveDepth {
				continue
			}
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: bad k-mer count %q", ErrMalformedGFA, line, tag)
			}
			depth = v / float64(len(seq))
		case "CR":
			circular = parts[2] == "1"
		}
	}

	i, err := g.AddSegment(id, []byte(seq), depth)
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrMalformedGFA, line, err)
	}
	g.segments[i].Circular = circular
	return nil
}

func readLink(fields []string, line int) (gfaLink, error) {
	if len(fields) < 6 {
		return gfaLink{}, fmt.Errorf("%w: line %d: L line needs 6 fields", ErrMalformedGFA, line)
	}

	l := gfaLink{line: line, from: fields[1], to: fields[3]}
	var err error
	if l.fromRev, err = parseOrientation(fields[2]); err != nil {
		return gfaLink{}, fmt.Errorf("%w: line %d: %v", ErrMalformedGFA, line, err)
	}
	if l.toRev, err = parseOrientation(fields[4]); err != nil {
		return gfaLink{}, fmt.Errorf("%w: line %d: %v", ErrMalformedGFA, line, err)
	}
	if l.overlap, err = parseOverlap(fields[5]); err != nil {
		return gfaLink{}, fmt.Errorf("%w: line %d: %v", ErrMalformedGFA, line, err)
	}
	return l, nil
}

func parseOrientation(s string) (reverse bool, err error) {
	switch s {
	case "+":
		return false, nil
	case "-":
		return true, nil
	}
	return false, fmt.Errorf("bad orientation %q", s)
}

// parseOverlap reads a CIGAR of only matches, eg "55M", or "*" for none
func parseOverlap(s string) (int, error) {
	if s == "*" || s == "0M" {
		return 0, nil
	}
	if !strings.HasSuffix(s, "M") {
		return 0, fmt.Errorf("unsupported overlap %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "M"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad overlap %q", s)
	}
	return n, nil
}

// WriteGFA writes the graph as GFA1, segments and links in arena order.
// Bridge links that carry sequence must be materialized first
func WriteGFA(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "H\tVN:Z:1.0")

	for _, i := range g.Segments() {
		s := g.segments[i]
		fmt.Fprintf(bw, "S\t%s\t%s\tLN:i:%d\tDP:f:%s", s.ID, s.Seq, s.Len(), strconv.FormatFloat(s.Depth, 'f', -1, 64))
		if s.Circular {
			fmt.Fprint(bw, "\tcr:i:1")
		}
		fmt.Fprintln(bw)
	}

	for _, l := range g.Links() {
		if len(l.Seq) > 0 {
			return fmt.Errorf("%w: bridge link %s -> %s carries sequence", ErrGraphInconsistency, g.NodeName(l.From), g.NodeName(l.To))
		}
		fmt.Fprintf(bw, "L\t%s\t%s\t%s\t%s\t%dM\n",
			g.segments[l.From.Segment].ID, strand(l.From),
			g.segments[l.To.Segment].ID, strand(l.To),
			l.Overlap)
	}
	return bw.Flush()
}

func strand(n Node) string {
	if n.Reverse {
		return "-"
	}
	return "+"
}
