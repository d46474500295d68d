package sheet

import "maps"

// Sheet is a sparse snapshot mapping canonical address strings to cells.
// An absent key denotes an empty cell. The engine only ever reads it;
// edits are whole-snapshot replacements produced by the caller.
type Sheet map[string]Cell

// Evaluate resolves the cell at ref and returns its value. Each call is
// one independent top-level resolution with a fresh visited set, so two
// sibling cells referencing the same upstream cell both resolve cleanly;
// only a path that revisits an address already on its own active call
// stack is a cycle.
func (s Sheet) Evaluate(ref string) Value {
	addr, ok := Canonicalize(ref)
	if !ok {
		return ErrorValue(ErrorCodeRef)
	}

	cell, exists := s[addr]
	if !exists {
		return TextValue("")
	}

	visited := make(map[string]struct{})
	return resolve(cell.input(), s, visited)
}

// Display returns the display string for the cell at ref
func (s Sheet) Display(ref string) string {
	return s.Evaluate(ref).Display()
}

// EvaluateAll computes the display value for every populated cell. Every
// cell is an independent evaluation that re-walks its dependency chain
// from scratch.
func (s Sheet) EvaluateAll() map[string]string {
	values := make(map[string]string, len(s))
	for addr := range s {
		values[addr] = s.Display(addr)
	}
	return values
}

// With returns a copy of the snapshot with the cell at ref replaced. An
// empty cell removes the entry. The receiver is left untouched; this is
// how the surrounding application applies an edit.
func (s Sheet) With(ref string, c Cell) Sheet {
	addr, ok := Canonicalize(ref)
	if !ok {
		addr = ref
	}

	next := make(Sheet, len(s)+1)
	maps.Copy(next, s)
	if c.Raw == "" && c.Formula == "" {
		delete(next, addr)
	} else {
		next[addr] = c
	}
	return next
}
