package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ErrCurrencyMismatch is returned when combining amounts of different currencies
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an immutable monetary amount in a single currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money; the currency must be a known ISO 4217 code
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	cur, ok := ParseCurrency(string(currency))
	if !ok {
		return Money{}, fmt.Errorf("invalid currency %q", currency)
	}
	return Money{amount: amount, currency: cur}, nil
}

// NewMoneyFromString parses the amount from its decimal string form
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// MustMoney is NewMoney for constants and tests
func MustMoney(amount string, currency Currency) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code
func (m Money) Currency() Currency { return m.currency }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Add returns m + other; both must share a currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s != %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other; both must share a currency
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s != %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply scales the amount without rounding
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Percentage returns amount × percent / 100 rounded to the currency's minor unit
func (m Money) Percentage(percent decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(percent).Div(hundred), currency: m.currency}.Rounded()
}

// Rounded rounds half away from zero to the currency's minor unit
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(m.currency.Fraction()), currency: m.currency}
}

// Convert multiplies by rate into the target currency and rounds to its minor unit
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	return Money{amount: m.amount.Mul(rate), currency: to}.Rounded()
}

// MinorUnits returns the rounded amount expressed in minor units (cents)
func (m Money) MinorUnits() int64 {
	return m.amount.Round(m.currency.Fraction()).Shift(m.currency.Fraction()).IntPart()
}

// Equals reports value and currency equality
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns "1234.50 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.Fraction()), m.currency)
}

// Format renders the amount for a locale, see FormatAmount
func (m Money) Format(locale string) string {
	return FormatAmount(m.amount, m.currency, locale)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// MarshalJSON encodes {"amount":"12.30","currency":"USD"}
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.Round(m.currency.Fraction()), Currency: m.currency})
}

// UnmarshalJSON decodes and validates the currency
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
