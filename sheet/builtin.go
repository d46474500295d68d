package sheet

import (
	"math"
	"strconv"
)

// aggregateNames lists the recognized functions in dispatch priority
// order: first match wins, no user-defined functions.
var aggregateNames = [...]string{"SUM", "AVERAGE", "COUNT", "MAX", "MIN"}

// evalAggregate evaluates one aggregate function over a range. The visited
// set is the one threaded from the enclosing resolve call, so a range that
// indirectly loops back on itself is still caught.
func evalAggregate(name string, s Sheet, r Range, visited map[string]struct{}) Value {
	nums, errv := rangeNumbers(s, r, visited)
	if errv != nil {
		return *errv
	}

	switch name {
	case "SUM":
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return NumberValue(sum)

	case "AVERAGE":
		// zero numeric values averages to 0, not NaN and not an error
		if len(nums) == 0 {
			return NumberValue(0)
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return NumberValue(sum / float64(len(nums)))

	case "COUNT":
		return NumberValue(float64(len(nums)))

	case "MAX":
		// a range with no numeric cell yields 0, not -infinity
		best := math.Inf(-1)
		hasValues := false
		for _, n := range nums {
			if n > best {
				best = n
			}
			hasValues = true
		}
		if !hasValues {
			return NumberValue(0)
		}
		return NumberValue(best)

	case "MIN":
		best := math.Inf(1)
		hasValues := false
		for _, n := range nums {
			if n < best {
				best = n
			}
			hasValues = true
		}
		if !hasValues {
			return NumberValue(0)
		}
		return NumberValue(best)

	default:
		return ErrorValue(ErrorCodeValue)
	}
}

// rangeNumbers walks every address in the inclusive rectangle and collects
// the numeric values. Absent cells contribute nothing. Formula cells are
// resolved through resolve with the same visited set; a revisited address
// aborts the scan with #CIRCULAR!. Resolved values that do not parse as a
// finite number are silently excluded.
func rangeNumbers(s Sheet, r Range, visited map[string]struct{}) ([]float64, *Value) {
	var nums []float64

	for addr := range r.Addresses() {
		cell, exists := s[addr]
		if !exists {
			continue
		}

		var raw string
		if cell.Formula != "" {
			if _, seen := visited[addr]; seen {
				circ := ErrorValue(ErrorCodeCircular)
				return nil, &circ
			}
			visited[addr] = struct{}{}

			v := resolve(cell.Formula, s, visited)
			delete(visited, addr)
			if v.IsError() {
				if v.Code == ErrorCodeCircular {
					return nil, &v
				}
				// other error markers are non-numeric, skip them
				continue
			}
			if v.Kind == ValueNumber {
				nums = append(nums, v.Number)
				continue
			}
			raw = v.Text
		} else {
			raw = cell.Raw
		}

		if n, ok := parseFinite(raw); ok {
			nums = append(nums, n)
		}
	}

	return nums, nil
}

// parseFinite parses text as a finite float64, rejecting NaN and the
// infinities that strconv accepts
func parseFinite(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
