// Package io is for reading the input graph and long reads from the file
// system, and writing the bridged graph and its report back out
package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is a file's compression, from its extension
type Compression int

const (
	// None is an uncompressed file
	None Compression = iota

	// Gzip is a ".gz" file
	Gzip

	// Zstd is a ".zst" or ".zstd" file
	Zstd
)

// compression returns the file's compression and its name without the
// compression extension
func compression(path string) (Compression, string) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".gzip":
		return Gzip, strings.TrimSuffix(path, filepath.Ext(path))
	case ".zst", ".zstd":
		return Zstd, strings.TrimSuffix(path, filepath.Ext(path))
	}
	return None, path
}

// readCloser closes a decompressor before the file under it
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a file for reading, decompressing it if its extension says it's
// gzip or zstd compressed
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	c, _ := compression(path)
	switch c {
	case Gzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read gzip %s: %w", path, err)
		}
		return &readCloser{Reader: gz, closers: []func() error{gz.Close, f.Close}}, nil
	case Zstd:
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read zstd %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	}
	return f, nil
}

// writeCloser flushes and closes a compressor before the file under it
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create creates or truncates a file for writing, compressing what's written
// if its extension is for gzip or zstd. Close must be called to flush it
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to make output dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	c, _ := compression(path)
	switch c {
	case Gzip:
		gz := gzip.NewWriter(f)
		return &writeCloser{Writer: gz, closers: []func() error{gz.Close, f.Close}}, nil
	case Zstd:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write zstd %s: %w", path, err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	}
	return f, nil
}
