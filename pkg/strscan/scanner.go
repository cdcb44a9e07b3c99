// Package strscan extracts null-terminated text strings from binary streams.
//
// The scanner makes a single forward pass over the stream, one byte at a time.
// Accepted strings are not buffered while scanning: once a terminator is found
// the scanner seeks back and reads the string's bytes again, so memory use does
// not depend on the size of the input or the number of strings in it.
package strscan

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
)

// EmitFunc receives accepted records in stream order.
type EmitFunc func(Record) error

// Scanner drives the classifier over a Source.
type Scanner struct {
	src        Source
	classifier Classifier
	stats      Stats
}

// NewScanner returns a scanner reading from src.
func NewScanner(src Source, opts Options) (*Scanner, error) {
	c, err := NewClassifier(opts)
	if err != nil {
		return nil, err
	}
	return &Scanner{src: src, classifier: c}, nil
}

// Stats returns the counters of the last scan.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Scan reads the source until it is exhausted and calls emit for every accepted string.
// A candidate that is still open when the stream ends is discarded.
func (s *Scanner) Scan(emit EmitFunc) error {
	s.stats = Stats{}

	cur := Cursor{Start: s.src.Offset()}
	state := Building

	for {
		b, ok, err := s.src.Next()
		if err != nil {
			return fmt.Errorf("read at 0x%x: %w", s.src.Offset(), err)
		}
		if !ok {
			break
		}
		s.stats.BytesRead++

		t := s.classifier.Step(cur, state, b)
		cur, state = t.Cursor, t.State
		if t.Abandoned {
			s.stats.Abandoned++
		}
		if t.Dropped {
			s.stats.Dropped++
		}
		if !t.Accept {
			continue
		}

		rec, err := s.materialize(cur)
		if err != nil {
			return err
		}
		if err := emit(rec); err != nil {
			return fmt.Errorf("emit string at 0x%x: %w", rec.Offset, err)
		}
		s.stats.Accepted++
		cur = cur.advance(rec.ByteLength + rec.TrailingNulls + 1)
	}

	if !cur.empty() || state.Remaining() > 0 {
		log.Trace().Uint64("offset", cur.Start).Uint64("bytes", cur.ByteLength).Str("state", state.String()).Msg("Discarding unterminated string at end of stream")
		s.stats.Unterminated++
	}
	return nil
}

// materialize counts the null run after the terminator, then reads the candidate's
// bytes again and leaves the source at the first byte after the null run.
func (s *Scanner) materialize(cur Cursor) (Record, error) {
	for {
		b, ok, err := s.src.Next()
		if err != nil {
			return Record{}, fmt.Errorf("read at 0x%x: %w", s.src.Offset(), err)
		}
		if !ok || b != 0x00 {
			break
		}
		s.stats.BytesRead++
		cur.TrailingNulls++
	}

	if err := s.src.SeekAbsolute(cur.Start); err != nil {
		return Record{}, err
	}
	raw, err := s.src.ReadExact(cur.ByteLength)
	if err != nil {
		return Record{}, err
	}
	if err := s.src.SeekRelative(int64(cur.TrailingNulls + 1)); err != nil {
		return Record{}, err
	}

	return Record{
		Offset:        cur.Start,
		ByteLength:    cur.ByteLength,
		CharCount:     cur.CharCount,
		TrailingNulls: cur.TrailingNulls,
		Text:          decodeText(raw),
	}, nil
}

// decodeText replaces invalid sequences instead of failing. Bytes reaching this point
// have already been validated, so replacements only show up if the file changed underneath us.
func decodeText(raw []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(text)
}

// ScanFile opens path read-only and scans it.
func ScanFile(path string, opts Options, emit EmitFunc) (Stats, error) {
	// #nosec G304 - Scanning a user-provided input file is the purpose of the tool
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sc, err := NewScanner(NewReaderSource(f), opts)
	if err != nil {
		return Stats{}, err
	}
	if err := sc.Scan(emit); err != nil {
		return sc.Stats(), fmt.Errorf("scan %s: %w", path, err)
	}
	return sc.Stats(), nil
}
