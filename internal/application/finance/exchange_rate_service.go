package finance

import (
	"context"
	"errors"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/fintermediary/backoffice/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Rate lookup sources reported to the observer
const (
	RateSourceCache    = "cache"
	RateSourceIdentity = "identity"
	RateSourceDirect   = "direct"
	RateSourceInverse  = "inverse"
	RateSourceMiss     = "miss"
)

// DefaultRateCacheTTL is used when no cache TTL is configured
const DefaultRateCacheTTL = time.Hour

// ExchangeRateService stores per-organization exchange rates and resolves conversions
type ExchangeRateService struct {
	rateRepo finance.ExchangeRateRepository
	orgRepo  organization.Repository
	cache    cache.RateCache
	cacheTTL time.Duration
	provider RateProvider
	observer RateLookupObserver
	logger   *zap.Logger
}

// NewExchangeRateService creates a new ExchangeRateService
func NewExchangeRateService(rateRepo finance.ExchangeRateRepository, orgRepo organization.Repository) *ExchangeRateService {
	return &ExchangeRateService{
		rateRepo: rateRepo,
		orgRepo:  orgRepo,
		cacheTTL: DefaultRateCacheTTL,
		logger:   zap.NewNop(),
	}
}

// SetCache enables caching of resolved rates
func (s *ExchangeRateService) SetCache(c cache.RateCache, ttl time.Duration) {
	s.cache = c
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// SetProvider enables RefreshRates
func (s *ExchangeRateService) SetProvider(provider RateProvider) {
	s.provider = provider
}

// SetObserver reports where each lookup was answered from
func (s *ExchangeRateService) SetObserver(observer RateLookupObserver) {
	s.observer = observer
}

// SetLogger sets the logger used for non-fatal failures
func (s *ExchangeRateService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Rate resolves from→to on date: cached value, 1 for identical currencies, the latest direct
// rate on or before date, or the inverse of the latest reverse rate. The second result names
// the source that answered.
func (s *ExchangeRateService) Rate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, string, error) {
	date = finance.TruncateDate(date)
	if from == to {
		s.observe(RateSourceIdentity)
		return decimal.NewFromInt(1), RateSourceIdentity, nil
	}

	key := cache.RateKey(tenantID, from, to, date)
	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Rate cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			s.observe(RateSourceCache)
			return rate, RateSourceCache, nil
		}
	}

	direct, err := s.findLatest(ctx, tenantID, from, to, date)
	if err != nil {
		return decimal.Zero, "", err
	}
	var inverse *finance.ExchangeRate
	if direct == nil {
		if inverse, err = s.findLatest(ctx, tenantID, to, from, date); err != nil {
			return decimal.Zero, "", err
		}
	}
	rate, err := finance.ResolveRate(from, to, direct, inverse)
	if err != nil {
		s.observe(RateSourceMiss)
		return decimal.Zero, "", err
	}

	source := RateSourceDirect
	if direct == nil {
		source = RateSourceInverse
	}
	s.observe(source)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rate, s.cacheTTL); err != nil {
			s.logger.Warn("Rate cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rate, source, nil
}

// Lookup resolves a rate for the API
func (s *ExchangeRateService) Lookup(ctx context.Context, tenantID uuid.UUID, q ExchangeRateQuery) (*ExchangeRateLookupResponse, error) {
	from, to, date, err := parseRateQuery(q)
	if err != nil {
		return nil, err
	}
	rate, source, err := s.Rate(ctx, tenantID, from, to, date)
	if err != nil {
		return nil, err
	}
	return &ExchangeRateLookupResponse{
		From:   from.String(),
		To:     to.String(),
		Date:   date,
		Rate:   rate,
		Source: source,
	}, nil
}

// Convert converts an amount and formats the result in the organization's locale
func (s *ExchangeRateService) Convert(ctx context.Context, tenantID uuid.UUID, q ConvertQuery) (*ConvertResponse, error) {
	from, to, date, err := parseRateQuery(q.ExchangeRateQuery)
	if err != nil {
		return nil, err
	}
	amount, err := valueobject.NewMoney(q.Amount, from)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rate, _, err := s.Rate(ctx, tenantID, from, to, date)
	if err != nil {
		return nil, err
	}

	converted := amount.Convert(rate, to)
	return &ConvertResponse{
		From:            from.String(),
		To:              to.String(),
		Date:            finance.TruncateDate(date),
		Rate:            rate,
		Amount:          amount.Amount(),
		ConvertedAmount: converted.Amount(),
		Formatted:       converted.Format(org.Locale),
	}, nil
}

// List retrieves stored rates with filtering and pagination
func (s *ExchangeRateService) List(ctx context.Context, tenantID uuid.UUID, filter ExchangeRateListFilter) ([]ExchangeRateResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	rates, err := s.rateRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rateRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToExchangeRateResponses(rates), total, nil
}

// Upsert sets a manual rate for a pair on a date, replacing any existing value
func (s *ExchangeRateService) Upsert(ctx context.Context, tenantID uuid.UUID, req UpsertExchangeRateRequest) (*ExchangeRateResponse, error) {
	date := time.Now()
	if req.EffectiveDate != "" {
		var err error
		if date, err = parseDate("effective_date", req.EffectiveDate); err != nil {
			return nil, err
		}
	}
	rate, err := s.upsert(ctx, tenantID, req.FromCurrency, req.ToCurrency, req.Rate, date, finance.RateSourceManual)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	response := ToExchangeRateResponse(rate)
	return &response, nil
}

// RefreshRates fetches the provider's latest quotes against the organization's base currency
// and stores them with source "provider". It returns the number of rates written.
func (s *ExchangeRateService) RefreshRates(ctx context.Context, tenantID uuid.UUID) (int, error) {
	if s.provider == nil {
		return 0, shared.NewDomainError("PROVIDER_UNAVAILABLE", "Exchange rate provider is not configured")
	}
	org, err := s.orgRepo.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	quote, err := s.provider.LatestRates(ctx, org.BaseCurrency)
	if err != nil {
		return 0, err
	}

	date := quote.Date
	if date.IsZero() {
		date = time.Now()
	}
	written := 0
	for cur, rate := range quote.Rates {
		if cur == quote.Base || !rate.IsPositive() {
			continue
		}
		if _, err := s.upsert(ctx, tenantID, quote.Base.String(), cur.String(), rate, date, finance.RateSourceProvider); err != nil {
			s.logger.Warn("Skipping provider rate",
				zap.String("tenant_id", tenantID.String()),
				zap.String("pair", quote.Base.String()+"/"+cur.String()),
				zap.Error(err))
			continue
		}
		written++
	}
	if written > 0 {
		s.invalidate(ctx, tenantID)
	}

	s.logger.Info("Exchange rates refreshed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("base", quote.Base.String()),
		zap.Int("count", written))
	return written, nil
}

func (s *ExchangeRateService) upsert(ctx context.Context, tenantID uuid.UUID, from, to string, value decimal.Decimal, date time.Time, source finance.RateSource) (*finance.ExchangeRate, error) {
	rate, err := finance.NewExchangeRate(tenantID, from, to, value, date, source)
	if err != nil {
		return nil, err
	}
	existing, err := s.rateRepo.FindByPairAndDate(ctx, tenantID, rate.FromCurrency, rate.ToCurrency, rate.EffectiveDate)
	switch {
	case err == nil:
		if err := existing.UpdateRate(value, source); err != nil {
			return nil, err
		}
		rate = existing
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *ExchangeRateService) findLatest(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*finance.ExchangeRate, error) {
	rate, err := s.rateRepo.FindLatest(ctx, tenantID, from, to, date)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rate, nil
}

func (s *ExchangeRateService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, cache.OrganizationPrefix(tenantID)); err != nil {
		s.logger.Warn("Rate cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}

func (s *ExchangeRateService) observe(source string) {
	if s.observer != nil {
		s.observer.ObserveRateLookup(source)
	}
}

func parseRateQuery(q ExchangeRateQuery) (from, to valueobject.Currency, date time.Time, err error) {
	if from, err = shared.ValidateCurrency(q.From); err != nil {
		return
	}
	if to, err = shared.ValidateCurrency(q.To); err != nil {
		return
	}
	date = time.Now()
	if q.Date != "" {
		if date, err = parseDate("date", q.Date); err != nil {
			return
		}
	}
	date = finance.TruncateDate(date)
	return
}
