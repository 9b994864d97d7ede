package finance

import (
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(t *testing.T, customerID, productID uuid.UUID, typ TransactionType, qty, amount string) *AssetTransaction {
	t.Helper()
	tx, err := NewAssetTransaction(uuid.New(), "AT-2024-"+uuid.NewString()[:5], customerID, productID, TransactionDetails{
		Type:      typ,
		TradeDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Quantity:  dec(qty),
		Amount:    dec(amount),
		Currency:  "USD",
	})
	require.NoError(t, err)
	return tx
}

func TestNewAssetTransaction(t *testing.T) {
	tx, err := NewAssetTransaction(uuid.New(), "AT-2024-00001", uuid.New(), uuid.New(), TransactionDetails{
		Type:      TransactionTypeSubscription,
		TradeDate: time.Now(),
		Quantity:  dec("100"),
		Price:     dec("1.2345"),
		Currency:  "usd",
	})
	require.NoError(t, err)
	assertDecimal(t, "123.45", tx.Amount)
	assert.Equal(t, TransactionStatusPending, tx.Status)

	_, err = NewAssetTransaction(uuid.New(), "AT-1", uuid.New(), uuid.New(), TransactionDetails{
		Type: TransactionType("swap"), TradeDate: time.Now(), Currency: "USD",
	})
	assertCode(t, err, "INVALID_TYPE")

	_, err = NewAssetTransaction(uuid.New(), "AT-1", uuid.New(), uuid.New(), TransactionDetails{
		Type: TransactionTypeFee, TradeDate: time.Now(), Quantity: dec("-1"), Currency: "USD",
	})
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)
}

func TestAssetTransactionLifecycle(t *testing.T) {
	tx := newTx(t, uuid.New(), uuid.New(), TransactionTypeRedemption, "10", "100")

	require.NoError(t, tx.Settle())
	assert.NotNil(t, tx.SettledAt)
	assert.False(t, tx.CanDelete())
	assert.Error(t, tx.Cancel())
	assert.Error(t, tx.Update(TransactionDetails{Type: TransactionTypeFee, TradeDate: time.Now(), Currency: "USD"}))
	require.Len(t, tx.GetDomainEvents(), 1)

	other := newTx(t, uuid.New(), uuid.New(), TransactionTypeFee, "0", "5")
	require.NoError(t, other.Cancel())
	assert.True(t, other.CanDelete())
	assert.Error(t, other.Settle())
}

func TestAssetTransactionMatches(t *testing.T) {
	customer := uuid.New()
	tx := newTx(t, customer, uuid.New(), TransactionTypeDividend, "0", "12.5")

	assert.True(t, tx.Matches(shared.DefaultFilter().WithFilter("type", "dividend")))
	assert.False(t, tx.Matches(shared.DefaultFilter().WithFilter("type", "fee")))
	assert.True(t, tx.Matches(shared.DefaultFilter().WithFilter("customer_id", customer.String())))
	assert.True(t, tx.Matches(shared.DefaultFilter().WithFilter("currency", "USD")))
	assert.False(t, tx.Matches(shared.DefaultFilter().WithFilter("currency", "SGD")))
	after := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.False(t, tx.Matches(shared.Filter{From: &after}))
}

func TestComputeHoldings(t *testing.T) {
	customer, fund := uuid.New(), uuid.New()

	sub := newTx(t, customer, fund, TransactionTypeSubscription, "100", "1000")
	require.NoError(t, sub.Settle())
	red := newTx(t, customer, fund, TransactionTypeRedemption, "30", "300")
	require.NoError(t, red.Settle())
	div := newTx(t, customer, fund, TransactionTypeDividend, "0", "40")
	require.NoError(t, div.Settle())
	pending := newTx(t, customer, fund, TransactionTypeSubscription, "500", "5000")

	holdings := ComputeHoldings([]AssetTransaction{*sub, *red, *div, *pending})
	require.Len(t, holdings, 1)
	assert.Equal(t, fund, holdings[0].ProductID)
	assert.Equal(t, valueobject.USD, holdings[0].Currency)
	assertDecimal(t, "70", holdings[0].Quantity)
	assertDecimal(t, "700", holdings[0].NetInvested)
	assert.Equal(t, 2, holdings[0].TransactionCount)

	assert.Empty(t, ComputeHoldings(nil))
}

func TestSummarizeExpenses(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	mk := func(cat ExpenseCategory, amount string) Expense {
		e, err := NewExpense(uuid.New(), "EXP", cat, "x", dec(amount), "USD", date)
		require.NoError(t, err)
		return *e
	}
	totals := SummarizeExpenses([]Expense{
		mk(ExpenseCategoryTravel, "100"),
		mk(ExpenseCategoryTravel, "50.25"),
		mk(ExpenseCategoryOffice, "20"),
	})
	require.Len(t, totals, 2)
	assert.Equal(t, ExpenseCategoryOffice, totals[0].Category)
	assert.Equal(t, ExpenseCategoryTravel, totals[1].Category)
	assert.Equal(t, 2, totals[1].Count)
	assertDecimal(t, "150.25", totals[1].Total)
}

func TestSummarizeProfitSharing(t *testing.T) {
	rm := idPtr()
	tenantID := uuid.New()

	confirmed, err := NewProfitSharingRecord(tenantID, "PS-1", sampleTerms(rm, idPtr()))
	require.NoError(t, err)
	require.NoError(t, confirmed.Confirm())

	paid, err := NewProfitSharingRecord(tenantID, "PS-2", sampleTerms(rm, idPtr()))
	require.NoError(t, err)
	require.NoError(t, paid.Confirm())
	require.NoError(t, paid.MarkPaid())

	draft, err := NewProfitSharingRecord(tenantID, "PS-3", sampleTerms(rm, idPtr()))
	require.NoError(t, err)

	s := SummarizeProfitSharing([]ProfitSharingRecord{*confirmed, *paid, *draft}, valueobject.SGD)
	assert.Equal(t, 2, s.RecordCount)
	assertDecimal(t, "2700", s.TotalShareableBase)

	require.NotEmpty(t, s.Parties)
	assert.Equal(t, PartyCompany, s.Parties[0].Party)
	assertDecimal(t, "1350", s.Parties[0].TotalBase)
	assert.Equal(t, 2, s.Parties[0].RecordCount)

	var rmTotal decimal.Decimal
	for _, p := range s.Parties {
		if p.Party == PartyRM1 {
			assert.Equal(t, *rm, *p.ManagerID)
			rmTotal = p.TotalBase
		}
	}
	assertDecimal(t, "810", rmTotal)
	// company, one RM, two distinct finders
	assert.Len(t, s.Parties, 4)
}
