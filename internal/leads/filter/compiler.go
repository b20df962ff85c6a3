package filter

import (
	"sort"
	"strings"
)

type suffix int

const (
	suffixNone suffix = iota
	suffixEquals
	suffixContains
	suffixIn
	suffixGt
	suffixLt
	suffixGte
	suffixLte
	suffixBetween
	suffixOn
	suffixBefore
	suffixAfter
)

// operator suffixes recognised after the last underscore of a key
var suffixes = map[string]suffix{
	"equals":   suffixEquals,
	"contains": suffixContains,
	"in":       suffixIn,
	"gt":       suffixGt,
	"lt":       suffixLt,
	"gte":      suffixGte,
	"lte":      suffixLte,
	"between":  suffixBetween,
	"on":       suffixOn,
	"before":   suffixBefore,
	"after":    suffixAfter,
}

// resolveKey splits key into a canonical field name and its operator suffix.
func resolveKey(key string) (string, suffix) {
	if idx := strings.LastIndex(key, "_"); idx > 0 {
		if s, ok := suffixes[key[idx+1:]]; ok {
			return canonicalField(key[:idx]), s
		}
	}
	return canonicalField(key), suffixNone
}

// Compile turns filters into a Predicate. Keys are visited in sorted order so
// the result is deterministic; bounds on the same field are merged into one
// range clause regardless of order.
func Compile(spec Spec) Predicate {
	keys := make([]string, 0, len(spec))
	for key := range spec {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	c := &compiler{ranges: newRangeAccumulator()}
	for _, key := range keys {
		value := strings.TrimSpace(spec[key])
		if value == "" {
			continue
		}
		c.compileKey(key, value)
	}

	clauses := append(c.clauses, c.ranges.clauses()...)
	return Predicate{Clauses: clauses}
}

type compiler struct {
	clauses []Clause
	ranges  *rangeAccumulator
}

func (c *compiler) add(clause Clause) {
	c.clauses = append(c.clauses, clause)
}

func (c *compiler) compileKey(key, value string) {
	if key == SearchKey {
		c.add(searchClause(value))
		return
	}

	field, op := resolveKey(key)
	if ownerFields[field] {
		return
	}
	fieldType, known := TypeOf(field)

	switch op {
	case suffixEquals:
		c.compileEquals(field, fieldType, value)
	case suffixContains:
		c.add(Clause{Field: field, Op: OpContains, Text: value})
	case suffixIn:
		if known && fieldType != FieldText {
			c.compileBare(key, value)
			return
		}
		if values := splitList(value); len(values) > 0 {
			c.add(Clause{Field: field, Op: OpIn, Values: values})
		}
	case suffixGt, suffixGte, suffixLt, suffixLte:
		operand, ok := parseOperand(fieldType, value)
		if !ok {
			return
		}
		b := Bound{Value: operand, Inclusive: op == suffixGte || op == suffixLte}
		if op == suffixGt || op == suffixGte {
			c.ranges.add(field, &b, nil)
		} else {
			c.ranges.add(field, nil, &b)
		}
	case suffixBetween:
		c.compileBetween(field, fieldType, value)
	case suffixOn, suffixBefore, suffixAfter:
		if fieldType != FieldTime {
			c.compileBare(key, value)
			return
		}
		d, ok := parseDate(value)
		if !ok {
			return
		}
		switch op {
		case suffixOn:
			c.ranges.add(field, inclusive(TimeOperand(d)), exclusive(TimeOperand(d.Add(day))))
		case suffixAfter:
			c.ranges.add(field, inclusive(TimeOperand(d)), nil)
		case suffixBefore:
			c.ranges.add(field, nil, exclusive(TimeOperand(d.Add(day))))
		}
	default:
		c.compileBare(key, value)
	}
}

func (c *compiler) compileEquals(field string, fieldType FieldType, value string) {
	switch fieldType {
	case FieldNumber:
		if v, ok := parseNumber(value); ok {
			c.ranges.add(field, inclusive(NumberOperand(v)), inclusive(NumberOperand(v)))
		}
	case FieldTime:
		if d, ok := parseDate(value); ok {
			c.ranges.add(field, inclusive(TimeOperand(d)), exclusive(TimeOperand(d.Add(day))))
		}
	case FieldBool:
		c.add(Clause{Field: field, Op: OpBool, Bool: parseBool(value)})
	default:
		c.add(Clause{Field: field, Op: OpEquals, Text: value})
	}
}

// compileBetween reads "min,max". Timestamp fields include the whole of the
// max day; other fields are numeric when both ends parse as numbers and
// inclusive dates otherwise. Reversed bounds are kept as given.
func (c *compiler) compileBetween(field string, fieldType FieldType, value string) {
	lo, hi, ok := splitPair(value)
	if !ok {
		return
	}

	if fieldType == FieldTime {
		start, okStart := parseDate(lo)
		end, okEnd := parseDate(hi)
		if okStart && okEnd {
			c.ranges.add(field, inclusive(TimeOperand(start)), exclusive(TimeOperand(end.Add(day))))
		}
		return
	}

	minNum, okMin := parseNumber(lo)
	maxNum, okMax := parseNumber(hi)
	if okMin && okMax {
		c.ranges.add(field, inclusive(NumberOperand(minNum)), inclusive(NumberOperand(maxNum)))
		return
	}
	if fieldType == FieldNumber {
		return
	}

	start, okStart := parseDate(lo)
	end, okEnd := parseDate(hi)
	if okStart && okEnd {
		c.ranges.add(field, inclusive(TimeOperand(start)), inclusive(TimeOperand(end)))
	}
}

// compileBare handles keys without a usable operator suffix.
func (c *compiler) compileBare(key, value string) {
	field := canonicalField(key)
	if ownerFields[field] {
		return
	}
	switch {
	case field == "is_qualified":
		c.add(Clause{Field: field, Op: OpBool, Bool: parseBool(value)})
	case bareEqualsFields[field]:
		c.add(Clause{Field: field, Op: OpEquals, Text: value})
	default:
		c.add(Clause{Field: field, Op: OpLiteral, Text: value})
	}
}

func searchClause(value string) Clause {
	children := make([]Clause, 0, len(SearchFields))
	for _, field := range SearchFields {
		children = append(children, Clause{Field: field, Op: OpContains, Text: value})
	}
	return Clause{Op: OpAnyOf, AnyOf: children}
}

// parseOperand coerces a comparison value by the field's type. Unknown and
// text fields compare numerically.
func parseOperand(fieldType FieldType, value string) (Operand, bool) {
	if fieldType == FieldTime {
		d, ok := parseDate(value)
		return TimeOperand(d), ok
	}
	v, ok := parseNumber(value)
	return NumberOperand(v), ok
}

func inclusive(o Operand) *Bound {
	return &Bound{Value: o, Inclusive: true}
}

func exclusive(o Operand) *Bound {
	return &Bound{Value: o}
}
