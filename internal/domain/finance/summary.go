package finance

import (
	"sort"

	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is a customer's net position in one product and currency
type Holding struct {
	ProductID        uuid.UUID
	Currency         valueobject.Currency
	Quantity         decimal.Decimal
	NetInvested      decimal.Decimal
	TransactionCount int
}

// ComputeHoldings nets settled transactions per product and currency. Subscriptions and
// transfers in add, redemptions and transfers out subtract, dividends and fees are ignored.
func ComputeHoldings(txs []AssetTransaction) []Holding {
	type key struct {
		product  uuid.UUID
		currency valueobject.Currency
	}
	idx := make(map[key]int)
	var holdings []Holding
	for _, t := range txs {
		dir := t.Type.Direction()
		if t.Status != TransactionStatusSettled || dir == 0 {
			continue
		}
		k := key{t.ProductID, t.Currency}
		i, ok := idx[k]
		if !ok {
			holdings = append(holdings, Holding{ProductID: t.ProductID, Currency: t.Currency})
			i = len(holdings) - 1
			idx[k] = i
		}
		sign := decimal.NewFromInt(int64(dir))
		holdings[i].Quantity = holdings[i].Quantity.Add(t.Quantity.Mul(sign))
		holdings[i].NetInvested = holdings[i].NetInvested.Add(t.Amount.Mul(sign))
		holdings[i].TransactionCount++
	}
	sort.Slice(holdings, func(a, b int) bool {
		if holdings[a].ProductID != holdings[b].ProductID {
			return holdings[a].ProductID.String() < holdings[b].ProductID.String()
		}
		return holdings[a].Currency < holdings[b].Currency
	})
	return holdings
}

// ExpenseTotal aggregates expenses sharing a category, status and currency
type ExpenseTotal struct {
	Category ExpenseCategory
	Status   ExpenseStatus
	Currency valueobject.Currency
	Count    int
	Total    decimal.Decimal
}

// SummarizeExpenses totals expenses by category, status and currency
func SummarizeExpenses(expenses []Expense) []ExpenseTotal {
	type key struct {
		category ExpenseCategory
		status   ExpenseStatus
		currency valueobject.Currency
	}
	idx := make(map[key]int)
	var totals []ExpenseTotal
	for _, e := range expenses {
		k := key{e.Category, e.Status, e.Currency}
		i, ok := idx[k]
		if !ok {
			totals = append(totals, ExpenseTotal{Category: e.Category, Status: e.Status, Currency: e.Currency})
			i = len(totals) - 1
			idx[k] = i
		}
		totals[i].Count++
		totals[i].Total = totals[i].Total.Add(e.Amount)
	}
	sort.Slice(totals, func(a, b int) bool {
		x, y := totals[a], totals[b]
		if x.Category != y.Category {
			return x.Category < y.Category
		}
		if x.Status != y.Status {
			return x.Status < y.Status
		}
		return x.Currency < y.Currency
	})
	return totals
}

// PartyTotal aggregates allocations for one party and manager in the base currency
type PartyTotal struct {
	Party       Party
	ManagerID   *uuid.UUID
	RecordCount int
	TotalBase   decimal.Decimal
}

// ProfitSharingSummary totals confirmed and paid records in the organization's base currency
type ProfitSharingSummary struct {
	BaseCurrency       valueobject.Currency
	RecordCount        int
	TotalShareableBase decimal.Decimal
	Parties            []PartyTotal
}

// SummarizeProfitSharing totals non-draft records by party and manager.
// Records whose base currency differs from baseCurrency are skipped.
func SummarizeProfitSharing(records []ProfitSharingRecord, baseCurrency valueobject.Currency) ProfitSharingSummary {
	type key struct {
		party   Party
		manager uuid.UUID
	}
	summary := ProfitSharingSummary{BaseCurrency: baseCurrency, TotalShareableBase: decimal.Zero}
	idx := make(map[key]int)
	for _, r := range records {
		if r.Status == ProfitSharingStatusDraft || r.BaseCurrency != baseCurrency {
			continue
		}
		summary.RecordCount++
		summary.TotalShareableBase = summary.TotalShareableBase.Add(r.ShareableAmountBase)
		for _, a := range r.Allocations {
			k := key{party: a.Party}
			if a.ManagerID != nil {
				k.manager = *a.ManagerID
			}
			i, ok := idx[k]
			if !ok {
				summary.Parties = append(summary.Parties, PartyTotal{Party: a.Party, ManagerID: a.ManagerID, TotalBase: decimal.Zero})
				i = len(summary.Parties) - 1
				idx[k] = i
			}
			summary.Parties[i].RecordCount++
			summary.Parties[i].TotalBase = summary.Parties[i].TotalBase.Add(a.AmountBase)
		}
	}
	order := make(map[Party]int, len(Parties))
	for i, p := range Parties {
		order[p] = i
	}
	sort.SliceStable(summary.Parties, func(a, b int) bool {
		x, y := summary.Parties[a], summary.Parties[b]
		if x.Party != y.Party {
			return order[x.Party] < order[y.Party]
		}
		return x.TotalBase.GreaterThan(y.TotalBase)
	})
	return summary
}
