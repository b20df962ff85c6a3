package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type record map[string]any

func (r record) FieldValue(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func lead(overrides record) record {
	base := record{
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"email":        "ada@example.com",
		"phone":        "5551234567",
		"company":      "Analytical Engines",
		"city":         "London",
		"state":        "Greater London",
		"source":       "website",
		"status":       "new",
		"score":        50,
		"lead_value":   1500.5,
		"is_qualified": false,
		"created_at":   time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		"updated_at":   time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	for k, v := range overrides {
		base[k] = v
	}
	return base
}

func matches(spec Spec, r record) bool {
	return Compile(spec).Matches(r)
}

func TestMatches_EmptyPredicateMatchesAll(t *testing.T) {
	assert.True(t, Predicate{}.Matches(lead(nil)))
}

func TestMatches_ContainsIsCaseInsensitive(t *testing.T) {
	for _, field := range SearchFields {
		t.Run(field, func(t *testing.T) {
			r := lead(record{field: "Prefix MiXeD Suffix"})
			assert.True(t, matches(Spec{field + "_contains": "mixed"}, r))
			assert.True(t, matches(Spec{field + "_contains": "MIXED suf"}, r))
			assert.False(t, matches(Spec{field + "_contains": "absent"}, r))
		})
	}
}

func TestMatches_EqualsIsExact(t *testing.T) {
	assert.True(t, matches(Spec{"company_equals": "acme"}, lead(record{"company": "Acme"})))
	assert.False(t, matches(Spec{"company_equals": "Acme"}, lead(record{"company": "Acme Inc"})))
	assert.True(t, matches(Spec{"status": "NEW"}, lead(nil)))
}

func TestMatches_StrictVersusInclusiveBounds(t *testing.T) {
	at50 := lead(record{"score": 50})

	assert.False(t, matches(Spec{"score_gt": "50", "score_lt": "90"}, at50))
	assert.True(t, matches(Spec{"score_between": "50,90"}, at50))
	assert.True(t, matches(Spec{"score_gte": "50"}, at50))
	assert.False(t, matches(Spec{"score_lt": "50"}, at50))
	assert.True(t, matches(Spec{"score_lte": "50"}, at50))

	at70 := lead(record{"score": 70})
	assert.Equal(t,
		matches(Spec{"score_gt": "50", "score_lt": "90"}, at70),
		matches(Spec{"score_between": "50,90"}, at70),
	)
}

func TestMatches_StatusIn(t *testing.T) {
	assert.True(t, matches(Spec{"status_in": "new,qualified"}, lead(record{"status": "new"})))
	assert.True(t, matches(Spec{"status_in": "new,qualified"}, lead(record{"status": "Qualified"})))
	assert.False(t, matches(Spec{"status_in": "new,qualified"}, lead(record{"status": "lost"})))
	assert.False(t, matches(Spec{"status_in": "bogus"}, lead(nil)))
}

func TestMatches_CreatedBeforeIncludesWholeDay(t *testing.T) {
	spec := Spec{"created_before": "2024-01-15"}
	assert.True(t, matches(spec, lead(record{"created_at": time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)})))
	assert.False(t, matches(spec, lead(record{"created_at": time.Date(2024, 1, 16, 0, 0, 1, 0, time.UTC)})))
}

func TestMatches_CreatedOnAndBetween(t *testing.T) {
	at := func(d, h int) record {
		return lead(record{"created_at": time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)})
	}

	assert.True(t, matches(Spec{"created_on": "2024-01-15"}, at(15, 0)))
	assert.True(t, matches(Spec{"created_on": "2024-01-15"}, at(15, 23)))
	assert.False(t, matches(Spec{"created_on": "2024-01-15"}, at(16, 0)))
	assert.False(t, matches(Spec{"created_on": "2024-01-15"}, at(14, 23)))

	between := Spec{"created_between": "2024-01-10,2024-01-15"}
	assert.True(t, matches(between, at(10, 0)))
	assert.True(t, matches(between, at(15, 23)))
	assert.False(t, matches(between, at(16, 0)))
	assert.False(t, matches(between, at(9, 23)))

	assert.True(t, matches(Spec{"created_after": "2024-01-15"}, at(15, 0)))
	assert.False(t, matches(Spec{"created_after": "2024-01-15"}, at(14, 23)))
}

func TestMatches_NullLastActivityNeverMatchesDateFilters(t *testing.T) {
	assert.False(t, matches(Spec{"last_activity_after": "2000-01-01"}, lead(nil)))
	assert.True(t, matches(Spec{"last_activity_after": "2000-01-01"}, lead(record{"last_activity_at": time.Now().UTC()})))
}

func TestMatches_SearchIsAndCombined(t *testing.T) {
	acme := lead(record{"company": "Acme Corp", "status": "new", "source": "referral"})

	assert.True(t, matches(Spec{"search": "acme"}, acme))
	assert.True(t, matches(Spec{"search": "acme", "status": "new", "source": "referral"}, acme))
	assert.False(t, matches(Spec{"search": "acme", "status": "won"}, acme))
	assert.False(t, matches(Spec{"search": "globex"}, acme))
}

func TestMatches_ReversedBetweenMatchesNothing(t *testing.T) {
	for _, score := range []int{0, 50, 70, 90, 100} {
		assert.False(t, matches(Spec{"score_between": "90,50"}, lead(record{"score": score})))
	}
	assert.False(t, matches(Spec{"created_between": "2024-02-01,2024-01-01"}, lead(nil)))
}

func TestMatches_QualifiedAndLiteral(t *testing.T) {
	qualified := lead(record{"is_qualified": true})
	assert.True(t, matches(Spec{"is_qualified": "true"}, qualified))
	assert.False(t, matches(Spec{"is_qualified": "false"}, qualified))
	assert.True(t, matches(Spec{"is_qualified": "false"}, lead(nil)))

	assert.True(t, matches(Spec{"phone": "5551234567"}, lead(nil)))
	assert.False(t, matches(Spec{"unknown_field": "x"}, lead(nil)))
}

func TestMatches_LeadValueDecimal(t *testing.T) {
	assert.True(t, matches(Spec{"lead_value_gt": "1500"}, lead(nil)))
	assert.True(t, matches(Spec{"lead_value_equals": "1500.5"}, lead(nil)))
	assert.False(t, matches(Spec{"lead_value_lte": "1500"}, lead(nil)))
}

func TestMatches_ScoreScenario(t *testing.T) {
	a := lead(record{"first_name": "A", "score": 40})
	b := lead(record{"first_name": "B", "score": 60})
	c := lead(record{"first_name": "C", "score": 80})

	pick := func(spec Spec) []string {
		pred := Compile(spec)
		var names []string
		for _, r := range []record{a, b, c} {
			if pred.Matches(r) {
				names = append(names, r["first_name"].(string))
			}
		}
		return names
	}

	assert.Equal(t, []string{"B", "C"}, pick(Spec{"score_gte": "50", "score_lte": "80"}))
	assert.Equal(t, []string{"B", "C"}, pick(Spec{"score_between": "50,80"}))
}
