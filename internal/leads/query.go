package leads

import (
	"strconv"
	"strings"

	"github.com/wolfman30/leadflow/internal/leads/filter"
)

// whereBuilder renders a predicate as a parameterized Postgres WHERE clause.
// Field names are only emitted when they are known lead columns; clauses on
// unknown fields render as FALSE, mirroring a document store that has no
// such field.
type whereBuilder struct {
	args []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// buildWhere always leads with the owner constraint.
func buildWhere(userID string, pred filter.Predicate) (string, []any) {
	b := &whereBuilder{}
	parts := []string{"user_id = " + b.arg(userID)}
	for _, c := range pred.Clauses {
		parts = append(parts, b.clause(c))
	}
	return strings.Join(parts, " AND "), b.args
}

func (b *whereBuilder) clause(c filter.Clause) string {
	if c.Op == filter.OpAnyOf {
		if len(c.AnyOf) == 0 {
			return "FALSE"
		}
		children := make([]string, 0, len(c.AnyOf))
		for _, child := range c.AnyOf {
			children = append(children, b.clause(child))
		}
		return "(" + strings.Join(children, " OR ") + ")"
	}

	fieldType, ok := filter.TypeOf(c.Field)
	if !ok {
		return "FALSE"
	}
	column := c.Field
	text := textExpr(column, fieldType)

	switch c.Op {
	case filter.OpEquals:
		return "lower(" + text + ") = lower(" + b.arg(c.Text) + ")"
	case filter.OpContains:
		return text + " ILIKE " + b.arg("%"+escapeLike(c.Text)+"%")
	case filter.OpIn:
		return "lower(" + text + ") = ANY(" + b.arg(c.Values) + ")"
	case filter.OpBool:
		if fieldType != filter.FieldBool {
			return "FALSE"
		}
		return column + " = " + b.arg(c.Bool)
	case filter.OpLiteral:
		return text + " = " + b.arg(c.Text)
	case filter.OpRange:
		return b.rangeClause(column, fieldType, c)
	}
	return "FALSE"
}

func (b *whereBuilder) rangeClause(column string, fieldType filter.FieldType, c filter.Clause) string {
	want := filter.KindNumber
	if fieldType == filter.FieldTime {
		want = filter.KindTime
	} else if fieldType != filter.FieldNumber {
		return "FALSE"
	}

	var parts []string
	if c.Lower != nil {
		if c.Lower.Value.Kind != want {
			return "FALSE"
		}
		op := " > "
		if c.Lower.Inclusive {
			op = " >= "
		}
		parts = append(parts, column+op+b.operand(c.Lower.Value))
	}
	if c.Upper != nil {
		if c.Upper.Value.Kind != want {
			return "FALSE"
		}
		op := " < "
		if c.Upper.Inclusive {
			op = " <= "
		}
		parts = append(parts, column+op+b.operand(c.Upper.Value))
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func (b *whereBuilder) operand(o filter.Operand) string {
	if o.Kind == filter.KindNumber {
		return b.arg(o.Num) + "::double precision"
	}
	return b.arg(o.Time)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside ILIKE.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// textExpr renders a column as the text the in-memory evaluator compares
// against. Timestamps use whole-second RFC3339 in UTC.
func textExpr(column string, fieldType filter.FieldType) string {
	switch fieldType {
	case filter.FieldText:
		return column
	case filter.FieldTime:
		return `to_char(` + column + ` AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`
	default:
		return column + "::text"
	}
}
