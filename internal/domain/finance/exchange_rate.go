package finance

import (
	"fmt"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource records where a rate came from
type RateSource string

const (
	RateSourceManual   RateSource = "manual"
	RateSourceProvider RateSource = "provider"
)

// InversePrecision is the number of decimal places kept when inverting a rate
const InversePrecision = 16

// ErrExchangeRateNotFound is returned when no direct or inverse rate exists for a pair
var ErrExchangeRateNotFound = shared.NewDomainError("EXCHANGE_RATE_NOT_FOUND", "Exchange rate not found")

// ExchangeRate is the price of one unit of FromCurrency in ToCurrency, effective from a date
type ExchangeRate struct {
	shared.TenantAggregateRoot
	FromCurrency  valueobject.Currency
	ToCurrency    valueobject.Currency
	Rate          decimal.Decimal
	EffectiveDate time.Time
	Source        RateSource
}

// NewExchangeRate creates a rate for the pair on the given date
func NewExchangeRate(tenantID uuid.UUID, from, to string, rate decimal.Decimal, effectiveDate time.Time, source RateSource) (*ExchangeRate, error) {
	fromCur, err := shared.ValidateCurrency(from)
	if err != nil {
		return nil, err
	}
	toCur, err := shared.ValidateCurrency(to)
	if err != nil {
		return nil, err
	}
	if fromCur == toCur {
		return nil, shared.NewDomainError("INVALID_CURRENCY_PAIR", "From and to currencies must differ")
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if source != RateSourceManual && source != RateSourceProvider {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source must be manual or provider")
	}
	return &ExchangeRate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FromCurrency:        fromCur,
		ToCurrency:          toCur,
		Rate:                rate,
		EffectiveDate:       TruncateDate(effectiveDate),
		Source:              source,
	}, nil
}

// UpdateRate replaces the rate value
func (r *ExchangeRate) UpdateRate(rate decimal.Decimal, source RateSource) error {
	if err := validateRate(rate); err != nil {
		return err
	}
	r.Rate = rate
	r.Source = source
	r.Touch()
	return nil
}

func validateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_RATE", "Exchange rate must be greater than zero")
	}
	return nil
}

// ResolveRate picks the rate for from→to: 1 for identical currencies, the direct rate when
// known, otherwise the inverse of the reverse pair. Either rate may be nil.
func ResolveRate(from, to valueobject.Currency, direct, inverse *ExchangeRate) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if direct != nil {
		return direct.Rate, nil
	}
	if inverse != nil && inverse.Rate.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse.Rate, InversePrecision), nil
	}
	return decimal.Zero, shared.NewDomainError(ErrExchangeRateNotFound.Code,
		fmt.Sprintf("No exchange rate from %s to %s", from, to))
}

// TruncateDate strips the time of day, keeping the date in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
