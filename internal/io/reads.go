package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/rzzju/Unicycler/internal/mapping"
	"github.com/rzzju/Unicycler/internal/sequence"
)

var (
	// ErrUnknownFormat is for read files that aren't FASTA, FASTQ, SAM or BAM
	ErrUnknownFormat = errors.New("unknown read format")

	// ErrNoReads is for read files without a single usable read
	ErrNoReads = errors.New("no reads")
)

// Format is a long read file format
type Format int

const (
	// FASTA is ".fa", ".fasta", ".fna"
	FASTA Format = iota

	// FASTQ is ".fq", ".fastq"
	FASTQ

	// SAM is ".sam", only unaligned reads are expected but any are read
	SAM

	// BAM is ".bam"
	BAM
)

func (f Format) String() string {
	return [...]string{"fasta", "fastq", "sam", "bam"}[f]
}

// DetectFormat guesses a read file's format from its extension (ignoring a
// compression extension), falling back to its first character
func DetectFormat(path string) (Format, error) {
	_, base := compression(path)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".fa", ".fasta", ".fna", ".fas":
		return FASTA, nil
	case ".fq", ".fastq":
		return FASTQ, nil
	case ".sam":
		return SAM, nil
	case ".bam":
		return BAM, nil
	}

	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	first, err := bufio.NewReader(r).ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: %s is empty", ErrUnknownFormat, path)
	}
	switch first {
	case '>':
		return FASTA, nil
	case '@':
		return FASTQ, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ReadReads reads the long reads in a FASTA, FASTQ, SAM or BAM file. Reads
// shorter than minLength are dropped. Sequences are upper-cased with
// non-ACGT bases as N
func ReadReads(path string, minLength int) ([]mapping.Read, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var reads []mapping.Read
	keep := func(name string, s []byte) {
		if len(s) >= minLength && len(s) > 0 {
			reads = append(reads, mapping.Read{Name: name, Seq: sequence.Normalize(s)})
		}
	}

	switch format {
	case FASTA, FASTQ:
		err = readSeqio(path, format, keep)
	case SAM, BAM:
		err = readAlignments(path, format, keep)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s reads from %s: %w", format, path, err)
	}
	if len(reads) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReads, path)
	}
	return reads, nil
}

// readSeqio scans FASTA or FASTQ records with biogo
func readSeqio(path string, format Format, keep func(string, []byte)) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var reader seqio.Reader
	if format == FASTQ {
		reader = fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
	} else {
		reader = fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	}

	sc := seqio.NewScanner(reader)
	for sc.Next() {
		s := sc.Seq()
		keep(s.Name(), letters(s))
	}
	return sc.Error()
}

// letters copies a biogo sequence's bases
func letters(s seq.Sequence) []byte {
	b := make([]byte, s.Len())
	for i := range b {
		b[i] = byte(s.At(i).L)
	}
	return b
}

// readAlignments reads primary records from SAM or BAM with biogo/hts.
// Records on the reverse strand are flipped back to the read's own strand
func readAlignments(path string, format Format, keep func(string, []byte)) error {
	var next func() (*sam.Record, error)
	if format == BAM {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		br, err := bam.NewReader(f, 1)
		if err != nil {
			return err
		}
		defer br.Close()
		next = br.Read
	} else {
		r, err := Open(path)
		if err != nil {
			return err
		}
		defer r.Close()

		sr, err := sam.NewReader(r)
		if err != nil {
			return err
		}
		next = sr.Read
	}

	for {
		rec, err := next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}

		s := rec.Seq.Expand()
		if rec.Flags&sam.Reverse != 0 {
			s = sequence.ReverseComplement(sequence.Normalize(s))
		}
		keep(rec.Name, s)
	}
}
