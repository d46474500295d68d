package sheet

import (
	"math"
	"strconv"
)

// evalExpression evaluates a fully-substituted arithmetic string. Every
// cell reference has already been replaced with literal decimal text, so
// the input may only contain digits, whitespace, and + - * / ( ) . - the
// whitelist is checked before any evaluation is attempted. Division by
// zero, overflow, and malformed input all map to #ERROR!.
func evalExpression(input string) Value {
	for _, ch := range input {
		if !allowedExprChar(ch) {
			return ErrorValue(ErrorCodeValue)
		}
	}

	p := exprParser{input: input}
	result, ok := p.parseAddSub()
	if !ok {
		return ErrorValue(ErrorCodeValue)
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return ErrorValue(ErrorCodeValue)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return ErrorValue(ErrorCodeValue)
	}
	return NumberValue(result)
}

func allowedExprChar(ch rune) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '+', '-', '*', '/', '(', ')', '.':
		return true
	}
	return ch >= '0' && ch <= '9'
}

// exprParser is a recursive-descent evaluator for infix arithmetic with
// conventional precedence and parentheses. All arithmetic is float64; no
// variables, no function calls.
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) parseAddSub() (float64, bool) {
	val, ok := p.parseMulDiv()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return val, true
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			return val, true
		}
		p.pos++
		right, ok := p.parseMulDiv()
		if !ok {
			return 0, false
		}
		if op == '+' {
			val += right
		} else {
			val -= right
		}
	}
}

func (p *exprParser) parseMulDiv() (float64, bool) {
	val, ok := p.parseUnary()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return val, true
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			return val, true
		}
		p.pos++
		right, ok := p.parseUnary()
		if !ok {
			return 0, false
		}
		if op == '*' {
			val *= right
		} else {
			// division by zero produces an infinity here and fails the
			// finiteness check at the top level
			val /= right
		}
	}
}

func (p *exprParser) parseUnary() (float64, bool) {
	p.skipSpaces()
	if p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '-':
			p.pos++
			val, ok := p.parseUnary()
			return -val, ok
		case '+':
			p.pos++
			return p.parseUnary()
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}

	if p.input[p.pos] == '(' {
		p.pos++
		val, ok := p.parseAddSub()
		if !ok {
			return 0, false
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, false
		}
		p.pos++
		return val, true
	}

	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, false
	}

	val, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}
