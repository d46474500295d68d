package sheet

import (
	"iter"
	"strings"
)

// Range is the inclusive rectangular span between two cell addresses
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseRange parses a "REF:REF" range string into a normalized Range.
// Either endpoint failing the address codec makes the whole range
// malformed.
func ParseRange(spec string) (Range, bool) {
	start, end, found := strings.Cut(spec, ":")
	if !found {
		return Range{}, false
	}

	startCol, startRow, ok := ParseAddress(start)
	if !ok {
		return Range{}, false
	}
	endCol, endRow, ok := ParseAddress(end)
	if !ok {
		return Range{}, false
	}

	// normalize so start is always less than or equal to end
	return Range{
		StartCol: min(startCol, endCol),
		StartRow: min(startRow, endRow),
		EndCol:   max(startCol, endCol),
		EndRow:   max(startRow, endRow),
	}, true
}

// Addresses returns an iterator over every canonical address in the
// bounding box, row-major, regardless of sparsity.
func (r Range) Addresses() iter.Seq[string] {
	return func(yield func(string) bool) {
		for row := r.StartRow; row <= r.EndRow; row++ {
			for col := r.StartCol; col <= r.EndCol; col++ {
				if !yield(RenderAddress(col, row)) {
					return
				}
			}
		}
	}
}

// Contains reports whether the 0-based (col, row) coordinate falls inside
// the range.
func (r Range) Contains(col, row int) bool {
	return row >= r.StartRow && row <= r.EndRow &&
		col >= r.StartCol && col <= r.EndCol
}

// Size returns the number of addresses the bounding box covers
func (r Range) Size() int {
	return (r.EndRow - r.StartRow + 1) * (r.EndCol - r.StartCol + 1)
}
