package finance

import (
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTerms(rm, finder *uuid.UUID) ProfitSharingTerms {
	return ProfitSharingTerms{
		CustomerID:      uuid.New(),
		PeriodDate:      time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
		Currency:        "USD",
		GrossRevenue:    dec("5000"),
		ShareableAmount: dec("1000"),
		BaseCurrency:    "SGD",
		ExchangeRate:    dec("1.35"),
		Shares: []Share{
			{Party: PartyCompany, Percent: dec("50")},
			{Party: PartyRM1, ManagerID: rm, Percent: dec("30")},
			{Party: PartyFinder1, ManagerID: finder, Percent: dec("20")},
		},
	}
}

func TestNewProfitSharingRecord(t *testing.T) {
	rm, finder := idPtr(), idPtr()
	r, err := NewProfitSharingRecord(uuid.New(), "PS-2024-00001", sampleTerms(rm, finder))
	require.NoError(t, err)

	assert.Equal(t, ProfitSharingStatusDraft, r.Status)
	assert.Equal(t, valueobject.SGD, r.BaseCurrency)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), r.PeriodDate)
	assertDecimal(t, "1350", r.ShareableAmountBase)
	require.Len(t, r.Allocations, 3)
	assertDecimal(t, "500", r.Allocations[0].Amount)
	assertDecimal(t, "675", r.Allocations[0].AmountBase)
	assertDecimal(t, "300", r.Allocations[1].Amount)
	assertDecimal(t, "405", r.Allocations[1].AmountBase)
	assertDecimal(t, "270", r.Allocations[2].AmountBase)
	assert.ElementsMatch(t, []uuid.UUID{*rm, *finder}, r.ManagerIDs())
}

func TestCalculateProfitSharing(t *testing.T) {
	t.Run("same currency forces rate 1", func(t *testing.T) {
		terms := sampleTerms(idPtr(), idPtr())
		terms.BaseCurrency = "USD"
		terms.ExchangeRate = dec("0")
		calc, err := CalculateProfitSharing(terms)
		require.NoError(t, err)
		assertDecimal(t, "1", calc.ExchangeRate)
		assertDecimal(t, "1000", calc.ShareableAmountBase)
		assertDecimal(t, "100", calc.TotalPercent)
	})

	t.Run("shareable cannot exceed gross", func(t *testing.T) {
		terms := sampleTerms(idPtr(), idPtr())
		terms.ShareableAmount = dec("6000")
		_, err := CalculateProfitSharing(terms)
		assertCode(t, err, "SHAREABLE_EXCEEDS_GROSS")
	})

	t.Run("negative gross", func(t *testing.T) {
		terms := sampleTerms(idPtr(), idPtr())
		terms.GrossRevenue = dec("-1")
		_, err := CalculateProfitSharing(terms)
		assert.ErrorIs(t, err, shared.ErrNegativeAmount)
	})

	t.Run("cross currency needs a positive rate", func(t *testing.T) {
		terms := sampleTerms(idPtr(), idPtr())
		terms.ExchangeRate = dec("0")
		_, err := CalculateProfitSharing(terms)
		assertCode(t, err, "INVALID_RATE")
	})

	t.Run("bad split", func(t *testing.T) {
		terms := sampleTerms(idPtr(), idPtr())
		terms.Shares[0].Percent = dec("40")
		_, err := CalculateProfitSharing(terms)
		assertCode(t, err, "PERCENT_SUM_INVALID")
	})
}

func TestProfitSharingLifecycle(t *testing.T) {
	r, err := NewProfitSharingRecord(uuid.New(), "PS-2024-00002", sampleTerms(idPtr(), idPtr()))
	require.NoError(t, err)

	assert.Error(t, r.MarkPaid())

	terms := sampleTerms(idPtr(), idPtr())
	terms.ShareableAmount = dec("2000")
	require.NoError(t, r.Recalculate(terms))
	assertDecimal(t, "2700", r.ShareableAmountBase)

	require.NoError(t, r.Confirm())
	assert.False(t, r.CanDelete())
	assertCode(t, r.Recalculate(terms), "INVALID_STATE")
	assert.Error(t, r.Confirm())
	require.NoError(t, r.MarkPaid())

	events := r.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeProfitSharingConfirmed, events[0].EventType())
	confirmed, ok := events[0].(*ProfitSharingEvent)
	require.True(t, ok)
	assert.Len(t, confirmed.Allocations, 3)
}

func TestProfitSharingMatches(t *testing.T) {
	rm := idPtr()
	r, err := NewProfitSharingRecord(uuid.New(), "PS-2024-00003", sampleTerms(rm, idPtr()))
	require.NoError(t, err)

	assert.True(t, r.Matches(shared.DefaultFilter()))
	assert.True(t, r.Matches(shared.DefaultFilter().WithFilter("rm_id", rm.String())))
	assert.False(t, r.Matches(shared.DefaultFilter().WithFilter("rm_id", uuid.New().String())))
	assert.True(t, r.Matches(shared.DefaultFilter().WithFilter("customer_id", r.CustomerID)))
	assert.False(t, r.Matches(shared.DefaultFilter().WithFilter("status", "paid")))
	assert.True(t, r.Matches(shared.DefaultFilter().WithFilter("currency", "USD")))
	assert.False(t, r.Matches(shared.DefaultFilter().WithFilter("currency", "SGD")), "base currency is not the record currency")
	assert.True(t, r.Matches(shared.Filter{Search: "00003"}))
}
