package filter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseDate reads a timestamp or calendar date; values without a zone are UTC.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// splitPair returns the first two comma-separated parts of raw.
func splitPair(raw string) (string, string, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return "", "", false
	}
	first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		return "", "", false
	}
	return first, second, true
}

// splitList splits a comma-delimited set, trimming and lowercasing members.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBool follows the API contract: only "true" is true.
func parseBool(raw string) bool {
	return strings.TrimSpace(raw) == "true"
}
