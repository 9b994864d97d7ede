package valueobject

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CNY Currency = "CNY"
	HKD Currency = "HKD"
	SGD Currency = "SGD"
	JPY Currency = "JPY"
	IDR Currency = "IDR"
)

// DefaultCurrency is used when an organization has not picked a base currency
const DefaultCurrency = USD

// ParseCurrency normalizes a code and checks it against the ISO 4217 table.
func ParseCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 || gomoney.GetCurrency(code) == nil {
		return "", false
	}
	return Currency(code), true
}

// IsValid reports whether the currency is a known ISO 4217 code
func (c Currency) IsValid() bool {
	_, ok := ParseCurrency(string(c))
	return ok
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Fraction returns the number of minor-unit digits (2 for USD, 0 for JPY).
// Unknown codes use two digits.
func (c Currency) Fraction() int32 {
	if cur := gomoney.GetCurrency(string(c)); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}

// info returns go-money's currency record, never nil
func (c Currency) info() *gomoney.Currency {
	if cur := gomoney.GetCurrency(string(c)); cur != nil {
		return cur
	}
	// go-money fills defaults for unknown codes through its Money constructor
	return gomoney.New(0, string(c)).Currency()
}
