package shared

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter is the list query every repository accepts. Filters holds exact-match
// field filters keyed by query parameter name; From and To bound the
// aggregate's business date, To inclusive.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
	From     *time.Time
	To       *time.Time
}

// DefaultFilter is page 1 of 20, newest first
func DefaultFilter() Filter {
	return Filter{}.Normalize()
}

// Normalize clamps paging to [1, MaxPageSize] and fills the sort defaults.
// Sort fields are checked against a whitelist by the repository.
func (f Filter) Normalize() Filter {
	f.Page = max(f.Page, 1)
	switch {
	case f.PageSize < 1:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
	if f.Filters == nil {
		f.Filters = map[string]any{}
	}
	return f
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// WithFilter adds an exact-match filter. Nil and "" are treated as absent so
// optional query parameters can be passed straight through.
func (f Filter) WithFilter(key string, value any) Filter {
	if value == nil {
		return f
	}
	if s, ok := value.(string); ok && s == "" {
		return f
	}
	filters := make(map[string]any, len(f.Filters)+1)
	for k, v := range f.Filters {
		filters[k] = v
	}
	filters[key] = value
	f.Filters = filters
	return f
}
