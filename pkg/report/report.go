// Package report writes accepted strings to a text sink.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/CompassSecurity/binstrings/pkg/strscan"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Entry is a record together with the name of the input it was found in.
type Entry struct {
	Source string
	strscan.Record
}

// Writer consumes entries in the order they were found.
type Writer interface {
	Write(Entry) error
	Flush() error
}

// Options control how entries are rendered.
type Options struct {
	// ShowSource prefixes text lines with the source name.
	ShowSource bool
}

// New returns a writer for the named format.
func New(format string, w io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(w, opts), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected %s or %s)", format, FormatText, FormatJSON)
	}
}

// TextWriter writes one line per record: offset and byte length in hex, character
// count and trailing null count in decimal, then the quoted text.
type TextWriter struct {
	w    *bufio.Writer
	opts Options
	line []byte
}

func NewTextWriter(w io.Writer, opts Options) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w), opts: opts}
}

func (t *TextWriter) Write(e Entry) error {
	line := t.line[:0]
	if t.opts.ShowSource {
		line = append(line, e.Source...)
		line = append(line, ": "...)
	}
	line = fmt.Appendf(line, "0x%08x  0x%04x  %d  %d  ", e.Offset, e.ByteLength, e.CharCount, e.TrailingNulls)
	line = strconv.AppendQuote(line, e.Text)
	line = append(line, '\n')
	t.line = line

	if _, err := t.w.Write(line); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (t *TextWriter) Flush() error {
	return t.w.Flush()
}

type jsonEntry struct {
	File string `json:"file"`
	strscan.Record
}

// JSONWriter writes newline delimited JSON.
type JSONWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONWriter{w: bw, enc: enc}
}

func (j *JSONWriter) Write(e Entry) error {
	if err := j.enc.Encode(jsonEntry{File: e.Source, Record: e.Record}); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

func (j *JSONWriter) Flush() error {
	return j.w.Flush()
}
