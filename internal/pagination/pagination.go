// Package pagination turns raw page/limit query values into a skip/limit plan.
package pagination

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Result is a validated page plan. Skip is always (Page-1)*Limit.
type Result struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

// Plan parses rawPage and rawLimit. Missing, non-numeric, zero or negative
// values fall back to DefaultPage and DefaultLimit. Limit has no upper bound
// and pages past the end simply produce empty results downstream.
func Plan(rawPage, rawLimit string) Result {
	return PlanWithDefault(rawPage, rawLimit, DefaultLimit)
}

// PlanWithDefault is Plan with a caller-chosen fallback limit.
func PlanWithDefault(rawPage, rawLimit string, defaultLimit int) Result {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	page := parsePositive(rawPage, DefaultPage)
	limit := parsePositive(rawLimit, defaultLimit)
	return Result{
		Skip:  (page - 1) * limit,
		Limit: limit,
		Page:  page,
	}
}

// TotalPages is ceil(total/limit); zero when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// parsePositive reads a leading integer the way query strings are usually
// parsed by browsers' parseInt: optional sign, digits, trailing junk ignored.
func parsePositive(raw string, fallback int) int {
	s := strings.TrimSpace(raw)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		// clamp instead of overflowing on absurd inputs
		if n > (1<<31)/10 {
			n = 1 << 31
			digits++
			continue
		}
		n = n*10 + int(ch-'0')
		digits++
	}

	if digits == 0 || negative || n == 0 {
		return fallback
	}
	return n
}
