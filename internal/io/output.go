package io

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/rzzju/Unicycler/internal/graph"
)

// fastaWidth is the line width of written FASTA
const fastaWidth = 70

// ReadGraph reads a GFA graph, compressed or not
func ReadGraph(path string) (*graph.Graph, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	g, err := graph.ReadGFA(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	return g, nil
}

// WriteGraph writes a graph as GFA
func WriteGraph(path string, g *graph.Graph) error {
	return write(path, func(w io.Writer) error { return graph.WriteGFA(w, g) })
}

// WriteDOT writes a graph as DOT
func WriteDOT(path string, g *graph.Graph) error {
	return write(path, func(w io.Writer) error { return graph.WriteDOT(w, g) })
}

// WriteFASTA writes every segment of a graph as a FASTA record, with its
// length and depth (and whether it's circular) in the description
func WriteFASTA(path string, g *graph.Graph) error {
	return write(path, func(w io.Writer) error {
		fw := fasta.NewWriter(w, fastaWidth)
		for _, i := range g.Segments() {
			s := g.Segment(i)
			rec := linear.NewSeq(s.ID, alphabet.BytesToLetters(s.Seq), alphabet.DNAredundant)
			rec.Desc = "length=" + strconv.Itoa(s.Len()) + " depth=" + strconv.FormatFloat(s.Depth, 'f', 2, 64) + "x"
			if s.Circular {
				rec.Desc += " circular=true"
			}
			if _, err := fw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteReport writes a run's report as JSON
func WriteReport(path string, report interface{}, indent bool) error {
	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(report, "", "  ")
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize the report: %w", err)
	}

	return write(path, func(w io.Writer) error {
		_, err := w.Write(append(out, '\n'))
		return err
	})
}

// write creates path and calls fn with it, closing it after
func write(path string, fn func(io.Writer) error) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
