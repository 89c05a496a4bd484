package outline

import (
	"bytes"

	"github.com/gren-lang/compiler/internal/errs"
)

// regionAt converts a byte offset into src into a (row, col) region suitable
// for snippet rendering. Rows and columns are 1-indexed.
func regionAt(src []byte, offset int) errs.Region {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	row := 1 + bytes.Count(src[:offset], []byte("\n"))
	col := offset + 1
	if idx := bytes.LastIndexByte(src[:offset], '\n'); idx >= 0 {
		col = offset - idx
	}
	return errs.Region{StartRow: row, StartCol: col, EndRow: row, EndCol: col}
}

// findKey returns the byte offset of the first occurrence of a JSON object
// key `"name"` in src, or -1 if not found. This is a best-effort locator for
// snippet regions — it does not parse JSON structure, so it can be fooled by
// a string value that happens to contain the same key text, which is an
// acceptable tradeoff for a value carried only for human-facing error
// rendering.
func findKey(src []byte, name string) int {
	needle := []byte("\"" + name + "\"")
	return bytes.Index(src, needle)
}

// regionForKey finds the region of a named key, falling back to the start
// of the document if the key can't be located.
func regionForKey(src []byte, name string) errs.Region {
	if idx := findKey(src, name); idx >= 0 {
		return regionAt(src, idx)
	}
	return regionAt(src, 0)
}
