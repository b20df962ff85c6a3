// Package filter compiles the flat query-string filters of the leads API
// (score_gt, status_in, created_between, ...) into a predicate tree that the
// lead stores execute.
//
// Compilation never fails. Values that cannot be coerced drop their clause,
// so a request always yields a valid (possibly unhelpful) predicate.
package filter

import "time"

// Spec maps a filter key to its raw, already URL-decoded value.
type Spec map[string]string

// Op identifies the comparison a Clause performs.
type Op string

const (
	// OpEquals is a case-insensitive full-string match.
	OpEquals Op = "equals"
	// OpContains is a case-insensitive substring match.
	OpContains Op = "contains"
	// OpIn matches when the lowercased field value is one of Values.
	OpIn Op = "in"
	// OpRange bounds a numeric or timestamp field on one or both sides.
	OpRange Op = "range"
	// OpBool compares a boolean field.
	OpBool Op = "bool"
	// OpLiteral compares the raw value verbatim.
	OpLiteral Op = "literal"
	// OpAnyOf matches when any child clause matches.
	OpAnyOf Op = "any_of"
)

// OperandKind tells numeric bounds apart from timestamp bounds.
type OperandKind int

const (
	KindNumber OperandKind = iota + 1
	KindTime
)

// Operand is a typed range endpoint.
type Operand struct {
	Kind OperandKind
	Num  float64
	Time time.Time
}

// NumberOperand wraps a numeric endpoint.
func NumberOperand(v float64) Operand {
	return Operand{Kind: KindNumber, Num: v}
}

// TimeOperand wraps a timestamp endpoint.
func TimeOperand(t time.Time) Operand {
	return Operand{Kind: KindTime, Time: t}
}

// Value returns the operand as float64 or time.Time.
func (o Operand) Value() any {
	if o.Kind == KindTime {
		return o.Time
	}
	return o.Num
}

// compare returns -1, 0 or 1. Operands of different kinds are not comparable
// and callers must check Kind first.
func (o Operand) compare(other Operand) int {
	if o.Kind == KindTime {
		return o.Time.Compare(other.Time)
	}
	switch {
	case o.Num < other.Num:
		return -1
	case o.Num > other.Num:
		return 1
	}
	return 0
}

// Bound is one side of a range.
type Bound struct {
	Value     Operand
	Inclusive bool
}

// Clause is a single field-level constraint.
type Clause struct {
	Field  string
	Op     Op
	Text   string   // OpEquals, OpContains, OpLiteral
	Values []string // OpIn, lowercased
	Bool   bool     // OpBool
	Lower  *Bound   // OpRange
	Upper  *Bound   // OpRange
	AnyOf  []Clause // OpAnyOf
}

// Predicate is the AND of its clauses. The zero value matches everything.
type Predicate struct {
	Clauses []Clause
}

// IsEmpty reports whether the predicate places no constraint.
func (p Predicate) IsEmpty() bool {
	return len(p.Clauses) == 0
}
