// Package embed implements the embed-aware cost model (component L):
// given a raw emitted byte sequence, compute how many extra bytes a
// host-language string literal escaping the sequence would need, so the
// optimizer can minimize post-escape size rather than raw bit length.
// The specific escape rules are delegated to an Escaper; the core only
// consumes its byte-length output, per spec.md §4.L.
package embed

import "bytes"

// Escaper turns a raw byte sequence into the bytes of a valid quoted
// string literal in some host language.
type Escaper interface {
	// Quote returns the escaped candidate for each of the host
	// language's available quoting styles (e.g. single/double/triple
	// quotes). At least one candidate is always returned.
	Quote(raw []byte) [][]byte
}

// AddedBytes returns the fewest extra bytes any of escaper's quoting
// candidates adds over raw, clamped at zero.
func AddedBytes(escaper Escaper, raw []byte) int {
	best := -1
	for _, candidate := range escaper.Quote(raw) {
		extra := len(candidate) - len(raw)
		if best == -1 || extra < best {
			best = extra
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// OverheadBits returns the embed-aware cost overhead in bits: 8 times
// the extra bytes escaping introduces.
func OverheadBits(escaper Escaper, raw []byte) int {
	return 8 * AddedBytes(escaper, raw)
}

// PythonEscaper reproduces the C++ original's compute_python_embed_string:
// four candidate quotings (single/double/triple-single/triple-double),
// escaping backslashes, the standard short escape codes, embedded quote
// characters, newlines, and bare carriage returns. Grounded in
// blocks.hpp's compute_python_embed_string.
type PythonEscaper struct{}

var shouldEscape = [][]byte{
	[]byte(`\"`), []byte(`\'`), []byte("\\0"), []byte("\\1"),
	[]byte("\\2"), []byte("\\3"), []byte("\\4"), []byte("\\5"),
	[]byte("\\6"), []byte("\\7"), []byte("\\N"), []byte("\\U"),
	[]byte("\\a"), []byte("\\b"), []byte("\\f"), []byte("\\n"),
	[]byte("\\r"), []byte("\\t"), []byte("\\u"), []byte("\\v"),
	[]byte("\\x"),
}

const doubleEscapePlaceholder = "%DOUBLE_ESCAPE%"

func (PythonEscaper) Quote(raw []byte) [][]byte {
	b := bytes.ReplaceAll(raw, []byte(`\\`), []byte(doubleEscapePlaceholder))
	for _, esc := range shouldEscape {
		b = bytes.ReplaceAll(b, esc, append([]byte(`\`), esc...))
	}

	// \0..\7 immediately followed by a digit is ambiguous as an octal
	// escape; disambiguate by expanding to \000<digit>.
	for i := byte('0'); i <= '7'; i++ {
		suffix := []byte{i}
		pattern1 := append([]byte(`\`), append([]byte{0}, suffix...)...)
		replacement1 := append([]byte(`\\\000`), suffix...)
		b = bytes.ReplaceAll(b, pattern1, replacement1)

		pattern2 := append([]byte{0}, suffix...)
		replacement2 := append([]byte(`\000`), suffix...)
		b = bytes.ReplaceAll(b, pattern2, replacement2)
	}

	b = bytes.ReplaceAll(b, []byte("\\\x00"), []byte(`\\\0`))
	b = bytes.ReplaceAll(b, []byte{0}, []byte(`\0`))
	b = bytes.ReplaceAll(b, []byte("\\\r"), []byte(`\\\r`))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte(`\r`))

	if len(b) > 0 && b[len(b)-1] == '\\' {
		b = append(b, '\\')
	}

	var candidates [][]byte

	addSingle := func(sepChar byte) {
		t := append([]byte(nil), b...)
		t = bytes.ReplaceAll(t, []byte("\\\n"), []byte(`\\\n`))
		t = bytes.ReplaceAll(t, []byte("\n"), []byte(`\n`))
		sep := []byte{sepChar}
		t = bytes.ReplaceAll(t, sep, append([]byte(`\`), sepChar))
		t = bytes.ReplaceAll(t, []byte(doubleEscapePlaceholder), []byte(`\\\\`))
		candidate := append(append(append([]byte{}, sep...), t...), sep...)
		candidates = append(candidates, candidate)
	}
	addSingle('\'')
	addSingle('"')

	addTriple := func(sep []byte) {
		if bytes.Contains(b, sep) {
			return
		}
		t := append([]byte(nil), b...)
		t = bytes.ReplaceAll(t, []byte("\\\n"), []byte("\\\\\n"))
		t = bytes.ReplaceAll(t, []byte(doubleEscapePlaceholder), []byte(`\\\\`))
		if len(t) > 0 && t[len(t)-1] == sep[0] {
			t = append(t[:len(t)-1], append([]byte(`\`), t[len(t)-1])...)
		}
		candidate := append(append(append([]byte{}, sep...), t...), sep...)
		candidates = append(candidates, candidate)
	}
	addTriple([]byte(`'''`))
	addTriple([]byte(`"""`))

	if len(candidates) == 0 {
		return [][]byte{[]byte("''")}
	}
	return candidates
}
