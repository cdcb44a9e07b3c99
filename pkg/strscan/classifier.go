package strscan

import "fmt"

// State is the position of the classifier inside a character.
// The zero value is Building.
type State struct {
	remaining uint8
}

// Building is the state between characters.
var Building = State{}

// InMultibyte returns the state of a multi-byte character still waiting for n continuation bytes.
func InMultibyte(n uint8) State {
	return State{remaining: n}
}

// Remaining returns the number of continuation bytes still expected.
func (s State) Remaining() int {
	return int(s.remaining)
}

func (s State) String() string {
	if s.remaining == 0 {
		return "Building"
	}
	return fmt.Sprintf("InMultibyte(%d)", s.remaining)
}

// Transition is the result of classifying one byte.
type Transition struct {
	Cursor Cursor
	State  State

	// Accept is set when a terminator ends a candidate with enough characters.
	// The cursor is left untouched so the caller can materialize the string.
	Accept bool
	// Dropped is set when a terminator ends a candidate that is too short.
	Dropped bool
	// Abandoned is set when a candidate was discarded because of an invalid byte or sequence.
	Abandoned bool
}

// Classifier maps a byte and the current cursor onto the next cursor.
type Classifier struct {
	minLength uint64
}

// NewClassifier returns a classifier for the given options.
func NewClassifier(opts Options) (Classifier, error) {
	if err := opts.Validate(); err != nil {
		return Classifier{}, err
	}
	return Classifier{minLength: opts.MinLength}, nil
}

// Step classifies b against cur and state.
func (c Classifier) Step(cur Cursor, state State, b byte) Transition {
	if state.remaining > 0 {
		if isContinuation(b) {
			cur.ByteLength++
			return Transition{Cursor: cur, State: InMultibyte(state.remaining - 1)}
		}
		// The broken sequence is dropped as a whole and b opens the next candidate.
		t := c.Step(cur.advance(cur.ByteLength), Building, b)
		t.Abandoned = true
		return t
	}

	switch {
	case b == 0x00:
		if cur.empty() {
			return Transition{Cursor: cur.advance(1), State: Building}
		}
		if cur.CharCount >= c.minLength {
			return Transition{Cursor: cur, State: Building, Accept: true}
		}
		return Transition{Cursor: cur.advance(cur.ByteLength + 1), State: Building, Dropped: true}

	case isAllowedASCII(b):
		cur.ByteLength++
		cur.CharCount++
		return Transition{Cursor: cur, State: Building}
	}

	if n, ok := continuationCount(b); ok {
		cur.ByteLength++
		cur.CharCount++
		return Transition{Cursor: cur, State: InMultibyte(n)}
	}

	return Transition{Cursor: cur.advance(cur.ByteLength + 1), State: Building, Abandoned: true}
}

// isAllowedASCII accepts printable ASCII plus line feed and carriage return.
func isAllowedASCII(b byte) bool {
	return (b >= 0x20 && b <= 0x7E) || b == '\n' || b == '\r'
}

// continuationCount returns how many continuation bytes follow a UTF-8 leading byte.
// Overlong and surrogate encodings are not rejected.
func continuationCount(b byte) (uint8, bool) {
	switch {
	case b >= 0xC2 && b <= 0xDF:
		return 1, true
	case b >= 0xE0 && b <= 0xEF:
		return 2, true
	case b >= 0xF0 && b <= 0xF4:
		return 3, true
	}
	return 0, false
}

func isContinuation(b byte) bool {
	return b&0b1100_0000 == 0b1000_0000
}
