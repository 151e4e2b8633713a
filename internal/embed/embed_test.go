package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddedBytesPlainTextIsTwoQuoteChars(t *testing.T) {
	raw := []byte("hello world")
	assert.Equal(t, 2, AddedBytes(PythonEscaper{}, raw))
}

func TestOverheadBitsIsEightTimesAddedBytes(t *testing.T) {
	raw := []byte("hello")
	assert.Equal(t, 8*AddedBytes(PythonEscaper{}, raw), OverheadBits(PythonEscaper{}, raw))
}

func TestAddedBytesNeverNegative(t *testing.T) {
	for _, raw := range [][]byte{
		[]byte(""),
		[]byte("\x00\x01\x02"),
		[]byte("a\nb\rc\\d'e\"f"),
		[]byte("'''triple'''\"\"\"quote\"\"\""),
	} {
		assert.GreaterOrEqual(t, AddedBytes(PythonEscaper{}, raw), 0, "raw=%q", raw)
	}
}

func TestQuoteAlwaysReturnsAtLeastOneCandidate(t *testing.T) {
	candidates := PythonEscaper{}.Quote([]byte("anything\x00at\nall"))
	assert.NotEmpty(t, candidates)
}

func TestQuoteCandidatesAreValidPythonDelimitedStrings(t *testing.T) {
	candidates := PythonEscaper{}.Quote([]byte("plain"))
	for _, c := range candidates {
		valid := (len(c) >= 2 && c[0] == '\'' && c[len(c)-1] == '\'') ||
			(len(c) >= 2 && c[0] == '"' && c[len(c)-1] == '"')
		assert.True(t, valid, "candidate %q does not start/end with a matching quote", c)
	}
}

func TestAddedBytesEscapesBackslash(t *testing.T) {
	raw := []byte(`a\b`)
	// A lone backslash must cost at least one extra escaping byte on top
	// of the two quote characters.
	assert.Greater(t, AddedBytes(PythonEscaper{}, raw), 2)
}
