package persistence

import (
	"slices"
	"strings"
)

// sortSpec whitelists the columns a list endpoint may be ordered by. Column
// names come from clients, so anything outside the list falls back to the default.
type sortSpec struct {
	columns      []string
	defaultField string
}

func newSortSpec(defaultField string, columns ...string) sortSpec {
	return sortSpec{
		columns:      append([]string{"id", "created_at", "updated_at"}, columns...),
		defaultField: defaultField,
	}
}

// field returns orderBy if it is whitelisted, otherwise the default column
func (s sortSpec) field(orderBy string) string {
	orderBy = strings.ToLower(strings.TrimSpace(orderBy))
	if slices.Contains(s.columns, orderBy) {
		return orderBy
	}
	return s.defaultField
}

// direction normalizes a client direction. Lists default to newest first.
func direction(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// orderClause builds the ORDER BY expression. id breaks ties so pages are stable.
func (s sortSpec) orderClause(orderBy, dir string) string {
	field := s.field(orderBy)
	d := direction(dir)
	if field == "id" {
		return "id " + d
	}
	return field + " " + d + ", id " + d
}

var (
	customerSort            = newSortSpec("created_at", "code", "name", "type", "status")
	relationshipManagerSort = newSortSpec("created_at", "code", "name", "role", "status", "default_share_percent")
	bankAccountSort         = newSortSpec("created_at", "bank_name", "account_name", "currency", "status")
	productSort             = newSortSpec("created_at", "code", "name", "category", "provider", "risk_level", "commission_rate", "status")
	expenseSort             = newSortSpec("incurred_at", "expense_number", "category", "amount", "incurred_at", "status")
	profitSharingSort       = newSortSpec("period_date", "record_number", "period_date", "gross_revenue", "shareable_amount", "shareable_amount_base", "status")
	assetTransactionSort    = newSortSpec("trade_date", "transaction_number", "trade_date", "type", "amount", "status")
	exchangeRateSort        = newSortSpec("effective_date", "from_currency", "to_currency", "effective_date")
)
