package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/fintermediary/backoffice/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var rateDate = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

func createTestRate(t *testing.T, tenantID uuid.UUID, from, to, rate string) *finance.ExchangeRate {
	t.Helper()
	r, err := finance.NewExchangeRate(tenantID, from, to, dec(rate), rateDate, finance.RateSourceManual)
	require.NoError(t, err)
	return r
}

func TestExchangeRateService_Rate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("identity", func(t *testing.T) {
		observer := &recordingObserver{}
		service := NewExchangeRateService(new(MockExchangeRateRepository), new(MockOrganizationRepository))
		service.SetObserver(observer)

		rate, source, err := service.Rate(ctx, tenantID, valueobject.SGD, valueobject.SGD, rateDate)

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(rate))
		assert.Equal(t, RateSourceIdentity, source)
		assert.Equal(t, []string{RateSourceIdentity}, observer.sources)
	})

	t.Run("direct then cached", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		observer := &recordingObserver{}
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))
		service.SetCache(cache.NewInMemoryRateCache(), time.Minute)
		service.SetObserver(observer)

		rates.On("FindLatest", ctx, tenantID, valueobject.USD, valueobject.SGD, rateDate).
			Return(createTestRate(t, tenantID, "USD", "SGD", "1.35"), nil).Once()

		rate, source, err := service.Rate(ctx, tenantID, valueobject.USD, valueobject.SGD, rateDate.Add(15*time.Hour))
		require.NoError(t, err)
		assert.True(t, dec("1.35").Equal(rate))
		assert.Equal(t, RateSourceDirect, source)

		rate, source, err = service.Rate(ctx, tenantID, valueobject.USD, valueobject.SGD, rateDate)
		require.NoError(t, err)
		assert.True(t, dec("1.35").Equal(rate))
		assert.Equal(t, RateSourceCache, source)
		assert.Equal(t, []string{RateSourceDirect, RateSourceCache}, observer.sources)
		rates.AssertExpectations(t)
	})

	t.Run("inverse", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))

		rates.On("FindLatest", ctx, tenantID, valueobject.SGD, valueobject.USD, rateDate).Return(nil, shared.ErrNotFound)
		rates.On("FindLatest", ctx, tenantID, valueobject.USD, valueobject.SGD, rateDate).
			Return(createTestRate(t, tenantID, "USD", "SGD", "1.25"), nil)

		rate, source, err := service.Rate(ctx, tenantID, valueobject.SGD, valueobject.USD, rateDate)

		require.NoError(t, err)
		assert.True(t, dec("0.8").Equal(rate))
		assert.Equal(t, RateSourceInverse, source)
	})

	t.Run("miss", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		observer := &recordingObserver{}
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))
		service.SetObserver(observer)

		rates.On("FindLatest", ctx, tenantID, mock.Anything, mock.Anything, rateDate).Return(nil, shared.ErrNotFound)

		_, _, err := service.Rate(ctx, tenantID, valueobject.EUR, valueobject.SGD, rateDate)

		assert.ErrorIs(t, err, finance.ErrExchangeRateNotFound)
		assert.Equal(t, []string{RateSourceMiss}, observer.sources)
	})

	t.Run("repository failure", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))
		rates.On("FindLatest", ctx, tenantID, mock.Anything, mock.Anything, rateDate).Return(nil, errors.New("db down"))

		_, _, err := service.Rate(ctx, tenantID, valueobject.EUR, valueobject.SGD, rateDate)

		assert.EqualError(t, err, "db down")
	})
}

func TestExchangeRateService_Convert(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "SGD")
	rates := new(MockExchangeRateRepository)
	orgs := new(MockOrganizationRepository)
	service := NewExchangeRateService(rates, orgs)

	orgs.On("FindByID", ctx, org.ID).Return(org, nil)
	rates.On("FindLatest", ctx, org.ID, valueobject.USD, valueobject.SGD, rateDate).
		Return(createTestRate(t, org.ID, "USD", "SGD", "1.3456"), nil)

	resp, err := service.Convert(ctx, org.ID, ConvertQuery{
		ExchangeRateQuery: ExchangeRateQuery{From: "usd", To: "SGD", Date: "2026-03-31"},
		Amount:            dec("1000"),
	})

	require.NoError(t, err)
	assert.True(t, dec("1345.6").Equal(resp.ConvertedAmount))
	assert.Equal(t, "USD", resp.From)
	assert.NotEmpty(t, resp.Formatted)
}

func TestExchangeRateService_Upsert(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("updates existing and invalidates cache", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		rateCache := cache.NewInMemoryRateCache()
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))
		service.SetCache(rateCache, time.Hour)
		existing := createTestRate(t, tenantID, "USD", "SGD", "1.30")
		key := cache.RateKey(tenantID, valueobject.USD, valueobject.SGD, rateDate)
		require.NoError(t, rateCache.Set(ctx, key, dec("1.30"), time.Hour))

		rates.On("FindByPairAndDate", ctx, tenantID, valueobject.USD, valueobject.SGD, rateDate).Return(existing, nil)
		rates.On("Save", ctx, existing).Return(nil)

		resp, err := service.Upsert(ctx, tenantID, UpsertExchangeRateRequest{
			FromCurrency: "USD", ToCurrency: "SGD", Rate: dec("1.32"), EffectiveDate: "2026-03-31",
		})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
		assert.True(t, dec("1.32").Equal(resp.Rate))
		_, ok, err := rateCache.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("creates new", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		service := NewExchangeRateService(rates, new(MockOrganizationRepository))
		rates.On("FindByPairAndDate", ctx, tenantID, valueobject.EUR, valueobject.SGD, rateDate).Return(nil, shared.ErrNotFound)
		rates.On("Save", ctx, mock.AnythingOfType("*finance.ExchangeRate")).Return(nil)

		resp, err := service.Upsert(ctx, tenantID, UpsertExchangeRateRequest{
			FromCurrency: "eur", ToCurrency: "sgd", Rate: dec("1.45"), EffectiveDate: "2026-03-31",
		})

		require.NoError(t, err)
		assert.Equal(t, "EUR", resp.FromCurrency)
		assert.Equal(t, "manual", resp.Source)
	})

	t.Run("same currency rejected", func(t *testing.T) {
		service := NewExchangeRateService(new(MockExchangeRateRepository), new(MockOrganizationRepository))

		_, err := service.Upsert(ctx, tenantID, UpsertExchangeRateRequest{FromCurrency: "SGD", ToCurrency: "SGD", Rate: dec("1")})

		requireCode(t, err, "INVALID_CURRENCY_PAIR")
	})

	t.Run("non-positive rate rejected", func(t *testing.T) {
		service := NewExchangeRateService(new(MockExchangeRateRepository), new(MockOrganizationRepository))

		_, err := service.Upsert(ctx, tenantID, UpsertExchangeRateRequest{FromCurrency: "USD", ToCurrency: "SGD", Rate: dec("0")})

		requireCode(t, err, "INVALID_RATE")
	})
}

func TestExchangeRateService_RefreshRates(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "SGD")

	t.Run("stores provider quotes", func(t *testing.T) {
		rates := new(MockExchangeRateRepository)
		orgs := new(MockOrganizationRepository)
		provider := new(MockRateProvider)
		service := NewExchangeRateService(rates, orgs)
		service.SetProvider(provider)

		orgs.On("FindByID", ctx, org.ID).Return(org, nil)
		provider.On("LatestRates", ctx, valueobject.SGD).Return(&RateQuote{
			Base: valueobject.SGD,
			Date: rateDate,
			Rates: map[valueobject.Currency]decimal.Decimal{
				valueobject.USD: dec("0.74"),
				valueobject.EUR: dec("0.68"),
				valueobject.SGD: dec("1"),
				valueobject.JPY: dec("0"),
			},
		}, nil)
		rates.On("FindByPairAndDate", ctx, org.ID, valueobject.SGD, mock.Anything, rateDate).Return(nil, shared.ErrNotFound)
		rates.On("Save", ctx, mock.MatchedBy(func(r *finance.ExchangeRate) bool {
			return r.Source == finance.RateSourceProvider && r.FromCurrency == valueobject.SGD
		})).Return(nil)

		n, err := service.RefreshRates(ctx, org.ID)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		rates.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("no provider", func(t *testing.T) {
		service := NewExchangeRateService(new(MockExchangeRateRepository), new(MockOrganizationRepository))

		_, err := service.RefreshRates(ctx, org.ID)

		requireCode(t, err, "PROVIDER_UNAVAILABLE")
	})
}
