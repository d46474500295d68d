// Package sheet implements the formula evaluation engine behind the grid
// view: cell address encoding, range resolution, a small set of aggregate
// functions, and recursive, cycle-safe evaluation of cell formulas that
// reference other formulas.
//
// The engine works on an immutable Sheet snapshot. It never mutates the
// snapshot it is given; edits are applied by the surrounding application
// producing a new one. There is no caching: every read re-walks its
// dependency chain from scratch, so a computed view is always consistent
// with the snapshot it came from.
package sheet

// ErrorCode identifies the evaluation errors a cell can display
type ErrorCode uint8

const (
	ErrorCodeRef      ErrorCode = 1 // #REF! - a range endpoint failed address parsing
	ErrorCodeCircular ErrorCode = 2 // #CIRCULAR! - reference chain revisits its own resolution path
	ErrorCodeValue    ErrorCode = 3 // #ERROR! - unsafe or non-numeric expression
)

// errorMarkers maps error codes to their in-cell string representations.
// these three markers are the engine's entire error vocabulary; evaluation
// errors are plain in-band values, never Go errors.
var errorMarkers = map[ErrorCode]string{
	ErrorCodeRef:      "#REF!",
	ErrorCodeCircular: "#CIRCULAR!",
	ErrorCodeValue:    "#ERROR!",
}

// ValueKind discriminates the variants of Value
type ValueKind uint8

const (
	ValueText   ValueKind = 0
	ValueNumber ValueKind = 1
	ValueError  ValueKind = 2
)

// Value is the result of resolving a cell: a number, a passthrough text
// literal, or one of the fixed error markers
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
	Code   ErrorCode
}

func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Number: n}
}

func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

func ErrorValue(code ErrorCode) Value {
	return Value{Kind: ValueError, Code: code}
}

// IsError reports whether the value is one of the error markers
func (v Value) IsError() bool {
	return v.Kind == ValueError
}

// Display renders the value the way the grid shows it. numbers drop
// unnecessary decimals, errors render as their fixed markers.
func (v Value) Display() string {
	switch v.Kind {
	case ValueNumber:
		return formatNumber(v.Number)
	case ValueError:
		return errorMarkers[v.Code]
	default:
		return v.Text
	}
}

// Cell holds a raw input value and an optional formula (text beginning
// with "="). The computed value is never stored; it is derived on every
// read.
type Cell struct {
	Raw     string `json:"raw"`
	Formula string `json:"formula,omitempty"`
}

// input returns the text the resolver should evaluate for this cell
func (c Cell) input() string {
	if c.Formula != "" {
		return c.Formula
	}
	return c.Raw
}
