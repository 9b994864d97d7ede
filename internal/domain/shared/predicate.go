package shared

import (
	"fmt"
	"strings"
	"time"
)

// MatchesSearch reports whether term occurs, case-insensitively, in any field.
// An empty term matches everything.
func MatchesSearch(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// MatchesValue compares a filter value against an entity attribute.
// A missing key matches everything; values are compared by their string form.
func (f Filter) MatchesValue(key string, actual any) bool {
	want, ok := f.Filters[key]
	if !ok || want == nil {
		return true
	}
	if s, isString := want.(string); isString && s == "" {
		return true
	}
	return fmt.Sprint(want) == fmt.Sprint(actual)
}

// MatchesDate reports whether t falls in the filter's [From, To] range (inclusive, day granularity on To)
func (f Filter) MatchesDate(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Before(EndOfDay(*f.To)) {
		return false
	}
	return true
}

// EndOfDay returns the first instant of the following day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
