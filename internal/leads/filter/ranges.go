package filter

import "sort"

// fieldRange collects every bound seen for one field.
type fieldRange struct {
	kind  OperandKind
	lower *Bound
	upper *Bound
}

// rangeAccumulator merges lower and upper bounds per field so that score_gt
// and score_lt end up in a single clause no matter which key came first.
type rangeAccumulator struct {
	fields map[string]*fieldRange
}

func newRangeAccumulator() *rangeAccumulator {
	return &rangeAccumulator{fields: make(map[string]*fieldRange)}
}

// add records the given bounds. The first bound fixes the operand kind for the
// field; later bounds of another kind are ignored. When two bounds compete on
// the same side the tighter one wins.
func (a *rangeAccumulator) add(field string, lower, upper *Bound) {
	r, ok := a.fields[field]
	if !ok {
		r = &fieldRange{}
		if lower != nil {
			r.kind = lower.Value.Kind
		} else if upper != nil {
			r.kind = upper.Value.Kind
		}
		a.fields[field] = r
	}

	if lower != nil && lower.Value.Kind == r.kind {
		r.lower = tighterLower(r.lower, lower)
	}
	if upper != nil && upper.Value.Kind == r.kind {
		r.upper = tighterUpper(r.upper, upper)
	}
}

func (a *rangeAccumulator) clauses() []Clause {
	names := make([]string, 0, len(a.fields))
	for name, r := range a.fields {
		if r.lower != nil || r.upper != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]Clause, 0, len(names))
	for _, name := range names {
		r := a.fields[name]
		out = append(out, Clause{Field: name, Op: OpRange, Lower: r.lower, Upper: r.upper})
	}
	return out
}

func tighterLower(current, next *Bound) *Bound {
	if current == nil {
		return next
	}
	switch cmp := next.Value.compare(current.Value); {
	case cmp > 0:
		return next
	case cmp == 0 && !next.Inclusive:
		return next
	}
	return current
}

func tighterUpper(current, next *Bound) *Bound {
	if current == nil {
		return next
	}
	switch cmp := next.Value.compare(current.Value); {
	case cmp < 0:
		return next
	case cmp == 0 && !next.Inclusive:
		return next
	}
	return current
}
