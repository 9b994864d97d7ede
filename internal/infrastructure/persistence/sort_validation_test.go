package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortSpec_OrderClause(t *testing.T) {
	tests := []struct {
		name    string
		spec    sortSpec
		orderBy string
		dir     string
		want    string
	}{
		{"default column and direction", customerSort, "", "", "created_at DESC, id DESC"},
		{"whitelisted column ascending", customerSort, "name", "asc", "name ASC, id ASC"},
		{"column is case-insensitive", productSort, " Risk_Level ", "ASC", "risk_level ASC, id ASC"},
		{"unknown column falls back", expenseSort, "password_hash", "asc", "incurred_at ASC, id ASC"},
		{"column of another entity falls back", bankAccountSort, "amount", "", "created_at DESC, id DESC"},
		{"id needs no tie-breaker", exchangeRateSort, "id", "asc", "id ASC"},
		{"unknown direction is descending", profitSharingSort, "gross_revenue", "sideways", "gross_revenue DESC, id DESC"},
		{"injected column is rejected", assetTransactionSort, "amount; DROP TABLE customers;--", "asc", "trade_date ASC, id ASC"},
		{"injected direction is rejected", relationshipManagerSort, "code", "ASC; DELETE FROM products", "code DESC, id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.orderClause(tt.orderBy, tt.dir))
		})
	}
}

func TestSortSpecs_AllowAuditColumns(t *testing.T) {
	for name, spec := range map[string]sortSpec{
		"customer":             customerSort,
		"relationship_manager": relationshipManagerSort,
		"bank_account":         bankAccountSort,
		"product":              productSort,
		"expense":              expenseSort,
		"profit_sharing":       profitSharingSort,
		"asset_transaction":    assetTransactionSort,
		"exchange_rate":        exchangeRateSort,
	} {
		for _, column := range []string{"id", "created_at", "updated_at"} {
			assert.Equal(t, column, spec.field(column), "%s by %s", name, column)
		}
		assert.Contains(t, spec.columns, spec.defaultField, name)
	}
}
