package sheet

import (
	"regexp"
	"strconv"
	"strings"
)

// addressPattern matches a complete cell reference: one or more column
// letters followed by a 1-based row number, nothing else
var addressPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// ColumnLabel converts a 0-based column index to its letter form using
// bijective base-26 with no zero digit (0 -> "A", 25 -> "Z", 26 -> "AA").
func ColumnLabel(col int) string {
	if col < 0 {
		return ""
	}
	var b []byte
	for col >= 0 {
		b = append(b, byte('A'+col%26))
		col = col/26 - 1
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// RenderAddress converts 0-based (col, row) coordinates to the canonical
// uppercase "A1" form.
func RenderAddress(col, row int) string {
	return ColumnLabel(col) + strconv.Itoa(row+1)
}

// ParseAddress parses an "A1"-style reference into 0-based (col, row)
// coordinates. Matching is case-insensitive and strict: trailing garbage,
// missing digits, or a zero row all fail. ParseAddress is the inverse of
// RenderAddress for every valid address, including multi-letter columns.
func ParseAddress(ref string) (col, row int, ok bool) {
	m := addressPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, false
	}

	for _, ch := range strings.ToUpper(m[1]) {
		col = col*26 + int(ch-'A') + 1
	}
	col--

	rowNum, err := strconv.Atoi(m[2])
	if err != nil || rowNum < 1 {
		return 0, 0, false
	}
	row = rowNum - 1

	return col, row, true
}

// Canonicalize normalizes a reference to its canonical uppercase form,
// collapsing forms like "a01" to "A1".
func Canonicalize(ref string) (string, bool) {
	col, row, ok := ParseAddress(ref)
	if !ok {
		return "", false
	}
	return RenderAddress(col, row), true
}
