package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/CompassSecurity/binstrings/pkg/strscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Source: "image.bin", Record: strscan.Record{Offset: 0, ByteLength: 5, CharCount: 5, TrailingNulls: 2, Text: "Hello"}},
		{Source: "image.bin", Record: strscan.Record{Offset: 0x1234, ByteLength: 6, CharCount: 4, TrailingNulls: 0, Text: "a\r\né€"}},
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, Options{})
	for _, e := range sampleEntries() {
		require.NoError(t, w.Write(e))
	}
	require.NoError(t, w.Flush())

	expected := "0x00000000  0x0005  5  2  \"Hello\"\n" +
		"0x00001234  0x0006  4  0  \"a\\r\\né€\"\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextWriter_ShowSource(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, Options{ShowSource: true})
	require.NoError(t, w.Write(sampleEntries()[0]))
	require.NoError(t, w.Flush())

	assert.Equal(t, "image.bin: 0x00000000  0x0005  5  2  \"Hello\"\n", buf.String())
}

func TestTextWriter_OneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, Options{})
	require.NoError(t, w.Write(Entry{Record: strscan.Record{ByteLength: 7, CharCount: 7, Text: "a\nb\nc\rd"}}))
	require.NoError(t, w.Flush())

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	for _, e := range sampleEntries() {
		require.NoError(t, w.Write(e))
	}
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, "image.bin", decoded["file"])
	assert.Equal(t, float64(0x1234), decoded["offset"])
	assert.Equal(t, float64(6), decoded["byte_length"])
	assert.Equal(t, float64(4), decoded["char_count"])
	assert.Equal(t, float64(0), decoded["trailing_nulls"])
	assert.Equal(t, "a\r\né€", decoded["text"])
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	w, err := New(FormatText, &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &TextWriter{}, w)

	w, err = New("", &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &TextWriter{}, w)

	w, err = New(FormatJSON, &buf, Options{})
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	_, err = New("xml", &buf, Options{})
	assert.Error(t, err)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTextWriter_FlushError(t *testing.T) {
	w := NewTextWriter(brokenWriter{}, Options{})
	require.NoError(t, w.Write(sampleEntries()[0]))
	assert.Error(t, w.Flush())
}
