package filter

import (
	"strconv"
	"strings"
	"time"
)

// Record exposes field values to the in-memory evaluator. Values are string,
// float64, int, bool or time.Time; ok is false for unknown or null fields.
type Record interface {
	FieldValue(field string) (value any, ok bool)
}

// Matches reports whether r satisfies every clause.
func (p Predicate) Matches(r Record) bool {
	for _, c := range p.Clauses {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// Matches evaluates a single clause. Missing fields never match.
func (c Clause) Matches(r Record) bool {
	if c.Op == OpAnyOf {
		for _, child := range c.AnyOf {
			if child.Matches(r) {
				return true
			}
		}
		return false
	}

	value, ok := r.FieldValue(c.Field)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEquals:
		return strings.EqualFold(textOf(value), c.Text)
	case OpContains:
		return strings.Contains(strings.ToLower(textOf(value)), strings.ToLower(c.Text))
	case OpIn:
		text := strings.ToLower(textOf(value))
		for _, v := range c.Values {
			if text == v {
				return true
			}
		}
		return false
	case OpBool:
		b, isBool := value.(bool)
		return isBool && b == c.Bool
	case OpLiteral:
		return textOf(value) == c.Text
	case OpRange:
		return c.matchesRange(value)
	}
	return false
}

func (c Clause) matchesRange(value any) bool {
	operand, ok := operandOf(value)
	if !ok {
		return false
	}
	if c.Lower != nil {
		if operand.Kind != c.Lower.Value.Kind {
			return false
		}
		cmp := operand.compare(c.Lower.Value)
		if cmp < 0 || (cmp == 0 && !c.Lower.Inclusive) {
			return false
		}
	}
	if c.Upper != nil {
		if operand.Kind != c.Upper.Value.Kind {
			return false
		}
		cmp := operand.compare(c.Upper.Value)
		if cmp > 0 || (cmp == 0 && !c.Upper.Inclusive) {
			return false
		}
	}
	return true
}

func operandOf(value any) (Operand, bool) {
	switch v := value.(type) {
	case float64:
		return NumberOperand(v), true
	case int:
		return NumberOperand(float64(v)), true
	case int64:
		return NumberOperand(float64(v)), true
	case time.Time:
		return TimeOperand(v), true
	}
	return Operand{}, false
}

func textOf(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return ""
}
