package finance

import (
	"context"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, error)
	// FindInRange returns every expense incurred within [from, to] without paging
	FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]Expense, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// GenerateExpenseNumber returns the next number, e.g. EXP-2026-00001
	GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
	Save(ctx context.Context, expense *Expense) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ProfitSharingRepository defines the interface for profit-sharing persistence.
// Records are saved together with their allocations in one transaction.
type ProfitSharingRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProfitSharingRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProfitSharingRecord, error)
	// FindInRange returns records whose period date is within [from, to] without paging
	FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]ProfitSharingRecord, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// GenerateRecordNumber returns the next number, e.g. PS-2026-00001
	GenerateRecordNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
	Save(ctx context.Context, record *ProfitSharingRecord) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// AssetTransactionRepository defines the interface for asset transaction persistence
type AssetTransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AssetTransaction, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AssetTransaction, error)
	// FindSettledByCustomer returns all settled transactions of a customer
	FindSettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]AssetTransaction, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// CountByProduct counts transactions referencing a product
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
	// GenerateTransactionNumber returns the next number, e.g. AT-2026-00001
	GenerateTransactionNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
	Save(ctx context.Context, tx *AssetTransaction) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ExchangeRateRepository defines the interface for exchange rate persistence
type ExchangeRateRepository interface {
	// FindLatest returns the pair's rate with the latest effective date on or before date,
	// or shared.ErrNotFound
	FindLatest(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*ExchangeRate, error)
	// FindByPairAndDate returns the rate for the exact effective date, or shared.ErrNotFound
	FindByPairAndDate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*ExchangeRate, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ExchangeRate, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, rate *ExchangeRate) error
}
