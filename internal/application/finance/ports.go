package finance

import (
	"context"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReceiptStorage issues presigned URLs for expense receipts
type ReceiptStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	DeleteObject(ctx context.Context, key string) error
}

// RateQuote is a provider's set of rates from one base currency on a date
type RateQuote struct {
	Base  valueobject.Currency
	Date  time.Time
	Rates map[valueobject.Currency]decimal.Decimal
}

// RateProvider fetches reference exchange rates
type RateProvider interface {
	LatestRates(ctx context.Context, base valueobject.Currency) (*RateQuote, error)
}

// RateLookupObserver is told where each rate lookup was answered from:
// cache, identity, direct, inverse or miss.
type RateLookupObserver interface {
	ObserveRateLookup(source string)
}
