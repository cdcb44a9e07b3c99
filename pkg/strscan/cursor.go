package strscan

import "fmt"

// DefaultMinLength is the minimum number of characters a string needs before it is reported.
const DefaultMinLength = 3

// Options configures a scan. They are supplied when a Scanner is constructed.
type Options struct {
	// MinLength is the minimum character count a terminated candidate needs to be emitted.
	MinLength uint64
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{MinLength: DefaultMinLength}
}

// Validate checks that the options describe a usable scan.
func (o Options) Validate() error {
	if o.MinLength < 1 {
		return fmt.Errorf("minimum string length must be at least 1, got %d", o.MinLength)
	}
	return nil
}

// Cursor is the accounting for the candidate string currently being built.
// ByteLength only ever contains bytes confirmed to be part of a valid text run,
// with the exception of a multi-byte leading byte which is counted as soon as it
// is seen and discarded together with the rest of the candidate if the sequence fails.
type Cursor struct {
	Start         uint64
	ByteLength    uint64
	CharCount     uint64
	TrailingNulls uint64
}

// advance returns a fresh cursor starting n bytes after the current start.
func (c Cursor) advance(n uint64) Cursor {
	return Cursor{Start: c.Start + n}
}

// empty reports whether no characters have been accumulated yet.
func (c Cursor) empty() bool {
	return c.CharCount == 0
}

// Record is an accepted string.
type Record struct {
	Offset        uint64 `json:"offset"`
	ByteLength    uint64 `json:"byte_length"`
	CharCount     uint64 `json:"char_count"`
	TrailingNulls uint64 `json:"trailing_nulls"`
	Text          string `json:"text"`
}

// End returns the offset of the terminator that ended the string.
func (r Record) End() uint64 {
	return r.Offset + r.ByteLength
}

// Stats are counters collected during a scan.
type Stats struct {
	BytesRead    uint64
	Accepted     uint64
	Dropped      uint64
	Abandoned    uint64
	Unterminated uint64
}
