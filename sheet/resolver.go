package sheet

import (
	"regexp"
	"strconv"
	"strings"
)

// aggregatePattern matches the fixed function-call shapes FUNC(REF:REF).
// Endpoint validation happens afterwards through the address codec, so a
// shape match with a bad endpoint still reports #REF! rather than falling
// through to expression evaluation.
var aggregatePattern = regexp.MustCompile(
	`^(` + strings.Join(aggregateNames[:], "|") + `)\(([^:()]+):([^:()]+)\)$`)

// cellTokenPattern matches cell reference tokens inside an expression.
// the body is uppercased before scanning, which makes matching
// case-insensitive.
var cellTokenPattern = regexp.MustCompile(`[A-Z]+[0-9]+`)

// resolve converts a formula into its final value. Anything without the
// "=" prefix is a literal and passes through unresolved. The visited set
// carries every address on the active resolution path; it is shared by
// reference through all recursive calls and aggregate range scans of one
// top-level evaluation, and never reused across independent evaluations.
func resolve(input string, s Sheet, visited map[string]struct{}) Value {
	if !strings.HasPrefix(input, "=") {
		return TextValue(input)
	}

	body := strings.ToUpper(strings.TrimSpace(input[1:]))

	if m := aggregatePattern.FindStringSubmatch(body); m != nil {
		r, ok := ParseRange(m[2] + ":" + m[3])
		if !ok {
			return ErrorValue(ErrorCodeRef)
		}
		return evalAggregate(m[1], s, r, visited)
	}

	expr, errv := substituteRefs(body, s, visited)
	if errv != nil {
		return *errv
	}
	return evalExpression(expr)
}

// substituteRefs replaces every cell reference token in the expression
// text with its resolved value. Tokens resolve in order of first
// appearance; a token whose address is already on the active resolution
// path aborts the whole substitution with #CIRCULAR! before any remaining
// token is touched. Replacement splices resolved text over the matched
// spans, so a reference that is a prefix of another ("A1" inside "A11")
// never mismatches.
func substituteRefs(body string, s Sheet, visited map[string]struct{}) (string, *Value) {
	spans := cellTokenPattern.FindAllStringIndex(body, -1)
	if spans == nil {
		return body, nil
	}

	resolved := make(map[string]string, len(spans))
	for _, span := range spans {
		tok := body[span[0]:span[1]]
		if _, done := resolved[tok]; done {
			continue
		}
		text, errv := resolveToken(tok, s, visited)
		if errv != nil {
			return "", errv
		}
		resolved[tok] = text
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(body[last:span[0]])
		b.WriteString(resolved[body[span[0]:span[1]]])
		last = span[1]
	}
	b.WriteString(body[last:])

	return b.String(), nil
}

// resolveToken resolves a single reference token to its substitution
// text. Absent cells substitute the literal 0; formula cells recurse with
// the same visited set, and any error they produce propagates immediately.
func resolveToken(tok string, s Sheet, visited map[string]struct{}) (string, *Value) {
	addr, ok := Canonicalize(tok)
	if !ok {
		// a token like "A0" addresses no cell, substitute 0
		return "0", nil
	}

	if _, seen := visited[addr]; seen {
		circ := ErrorValue(ErrorCodeCircular)
		return "", &circ
	}
	// the visited set holds exactly the addresses on the active resolution
	// path: push before descending, pop once this address is fully
	// resolved. A completed sibling must not poison later references to
	// the same upstream cell.
	visited[addr] = struct{}{}
	defer delete(visited, addr)

	cell, exists := s[addr]
	if !exists {
		return "0", nil
	}

	if cell.Formula != "" {
		v := resolve(cell.Formula, s, visited)
		if v.IsError() {
			return "", &v
		}
		if v.Kind == ValueNumber {
			return formatSubstitution(v.Number), nil
		}
		return v.Text, nil
	}

	return cell.Raw, nil
}

// formatSubstitution renders a number for textual substitution. The 'f'
// format never emits an exponent, keeping the result inside the expression
// evaluator's character whitelist.
func formatSubstitution(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// formatNumber renders a number for display, without unnecessary decimals
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
