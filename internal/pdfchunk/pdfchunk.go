// Package pdfchunk splits a source PDF into contiguous page-range chunks,
// each materialized as a standalone mini-PDF suitable for a single model
// upload.
package pdfchunk

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Common chunking errors
var (
	// ErrEmptyDocument is returned when the PDF has no pages.
	ErrEmptyDocument = errors.New("PDF has 0 pages")

	// ErrBadPageRange is returned for a malformed pages argument.
	ErrBadPageRange = errors.New("pages must be N or N-M (1-based)")
)

// Spec is a contiguous page range in the PDF.
type Spec struct {
	Start int // 1-based inclusive
	End   int // 1-based inclusive
	Index int // 1-based chunk index
}

// ID is the chunk identifier used in filenames and parse issues, e.g. "chunk1-5".
func (s Spec) ID() string {
	return fmt.Sprintf("chunk%d-%d", s.Start, s.End)
}

// PageRange renders the range as "a-b".
func (s Spec) PageRange() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// ParsePageRange parses a pages argument:
//
//	""    → the full document, 1..total
//	"N"   → page N only
//	"A-B" → pages A..B, swapped if reversed
//
// Results are clamped to [1, total].
func ParsePageRange(arg string, total int) (int, int, error) {
	s := strings.TrimSpace(arg)
	if s == "" {
		return 1, total, nil
	}
	if !strings.Contains(s, "-") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadPageRange, arg)
		}
		n = clamp(n, 1, total)
		return n, n, nil
	}
	first, second, _ := strings.Cut(s, "-")
	a, errA := strconv.Atoi(strings.TrimSpace(first))
	b, errB := strconv.Atoi(strings.TrimSpace(second))
	if errA != nil || errB != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPageRange, arg)
	}
	if b < a {
		a, b = b, a
	}
	return clamp(a, 1, total), clamp(b, 1, total), nil
}

// MakeChunks splits [start, end] into non-overlapping specs of at most
// pagesPerChunk pages. A non-positive pagesPerChunk yields one chunk for the
// whole range.
func MakeChunks(start, end, pagesPerChunk int) []Spec {
	if pagesPerChunk <= 0 {
		return []Spec{{Start: start, End: end, Index: 1}}
	}
	var chunks []Spec
	idx := 1
	p := start
	for p <= end {
		q := p + pagesPerChunk - 1
		if q > end {
			q = end
		}
		chunks = append(chunks, Spec{Start: p, End: q, Index: idx})
		idx++
		p = q + 1
	}
	return chunks
}

// Document is an opened source PDF.
type Document struct {
	path  string
	pages int
}

// Open validates the PDF and counts its pages.
func Open(path string) (*Document, error) {
	const op = "Open"

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfchunk: %s: %s: %w", op, path, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("pdfchunk: %s: %s: %w", op, path, ErrEmptyDocument)
	}
	return &Document{path: path, pages: count}, nil
}

// PageCount returns the total number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// ExtractChunk builds a mini-PDF containing only pages start..end (1-based
// inclusive) and returns it as bytes.
func (d *Document) ExtractChunk(start, end int) ([]byte, error) {
	const op = "ExtractChunk"

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("pdfchunk: %s: %w", op, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	pages := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.Trim(f, &buf, pages, nil); err != nil {
		return nil, fmt.Errorf("pdfchunk: %s: pages %d-%d: %w", op, start, end, err)
	}
	return buf.Bytes(), nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
