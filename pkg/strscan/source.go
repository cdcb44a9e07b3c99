package strscan

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Source is a seekable byte stream.
type Source interface {
	// Next returns the next byte. ok is false once the stream is exhausted.
	Next() (b byte, ok bool, err error)
	// SeekAbsolute moves to offset from the start of the stream.
	SeekAbsolute(offset uint64) error
	// SeekRelative moves delta bytes from the current position.
	SeekRelative(delta int64) error
	// ReadExact reads exactly n bytes at the current position.
	ReadExact(n uint64) ([]byte, error)
	// Offset returns the position of the next byte.
	Offset() uint64
}

// ReaderSource is a Source over an io.ReadSeeker. Forward reads are buffered,
// every seek discards the buffer.
type ReaderSource struct {
	rs  io.ReadSeeker
	br  *bufio.Reader
	pos uint64
}

// NewReaderSource wraps rs. The stream is assumed to be positioned at offset 0.
func NewReaderSource(rs io.ReadSeeker) *ReaderSource {
	return &ReaderSource{rs: rs, br: bufio.NewReader(rs)}
}

func (s *ReaderSource) Next() (byte, bool, error) {
	b, err := s.br.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	s.pos++
	return b, true, nil
}

func (s *ReaderSource) SeekAbsolute(offset uint64) error {
	if offset > math.MaxInt64 {
		return fmt.Errorf("seek offset 0x%x out of range", offset)
	}
	if _, err := s.rs.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("seek to 0x%x: %w", offset, err)
	}
	s.br.Reset(s.rs)
	s.pos = offset
	return nil
}

func (s *ReaderSource) SeekRelative(delta int64) error {
	target := int64(s.pos) + delta
	if target < 0 {
		return fmt.Errorf("seek by %d from 0x%x goes before start of stream", delta, s.pos)
	}
	return s.SeekAbsolute(uint64(target))
}

// ReadExact reads exactly n bytes and advances the position.
func (s *ReaderSource) ReadExact(n uint64) ([]byte, error) {
	if n > math.MaxInt32 {
		return nil, fmt.Errorf("read of %d bytes at 0x%x too large", n, s.pos)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", n, s.pos, err)
	}
	s.pos += n
	return buf, nil
}

func (s *ReaderSource) Offset() uint64 {
	return s.pos
}
