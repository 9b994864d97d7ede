package finance

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of asset movement
type TransactionType string

const (
	TransactionTypeSubscription TransactionType = "subscription"
	TransactionTypeRedemption   TransactionType = "redemption"
	TransactionTypeDividend     TransactionType = "dividend"
	TransactionTypeFee          TransactionType = "fee"
	TransactionTypeTransferIn   TransactionType = "transfer_in"
	TransactionTypeTransferOut  TransactionType = "transfer_out"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	return t.Direction() != 0 || t == TransactionTypeDividend || t == TransactionTypeFee
}

// Direction is +1 for types that add to a holding, -1 for types that reduce it and 0 otherwise
func (t TransactionType) Direction() int {
	switch t {
	case TransactionTypeSubscription, TransactionTypeTransferIn:
		return 1
	case TransactionTypeRedemption, TransactionTypeTransferOut:
		return -1
	}
	return 0
}

// TransactionStatus represents the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSettled   TransactionStatus = "settled"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// AssetTransaction is a customer's movement in a product
type AssetTransaction struct {
	shared.TenantAggregateRoot
	TransactionNumber string
	CustomerID        uuid.UUID
	ProductID         uuid.UUID
	Type              TransactionType
	TradeDate         time.Time
	Quantity          decimal.Decimal
	Price             decimal.Decimal
	Amount            decimal.Decimal
	Currency          valueobject.Currency
	Status            TransactionStatus
	Reference         string
	Notes             string
	SettledAt         *time.Time
}

// TransactionDetails are the editable fields of a transaction
type TransactionDetails struct {
	Type      TransactionType
	TradeDate time.Time
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Amount    decimal.Decimal // Zero means quantity × price
	Currency  string
	Reference string
	Notes     string
}

// NewAssetTransaction creates a pending transaction
func NewAssetTransaction(tenantID uuid.UUID, number string, customerID, productID uuid.UUID, d TransactionDetails) (*AssetTransaction, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_NUMBER", "Transaction number cannot be empty")
	}
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer and product are required")
	}
	t := &AssetTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransactionNumber:   number,
		CustomerID:          customerID,
		ProductID:           productID,
		Status:              TransactionStatusPending,
	}
	if err := t.apply(d); err != nil {
		return nil, err
	}
	return t, nil
}

// Update edits a pending transaction
func (t *AssetTransaction) Update(d TransactionDetails) error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be edited")
	}
	if err := t.apply(d); err != nil {
		return err
	}
	t.Touch()
	return nil
}

func (t *AssetTransaction) apply(d TransactionDetails) error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Unknown transaction type: "+string(d.Type))
	}
	if d.TradeDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Trade date is required")
	}
	if err := shared.ValidateNonNegative("Quantity", d.Quantity); err != nil {
		return err
	}
	if err := shared.ValidateNonNegative("Price", d.Price); err != nil {
		return err
	}
	if err := shared.ValidateNonNegative("Amount", d.Amount); err != nil {
		return err
	}
	cur, err := shared.ValidateCurrency(d.Currency)
	if err != nil {
		return err
	}
	amount := d.Amount
	if amount.IsZero() {
		amount = d.Quantity.Mul(d.Price)
	}

	t.Type = d.Type
	t.TradeDate = TruncateDate(d.TradeDate)
	t.Quantity = d.Quantity
	t.Price = d.Price
	t.Amount = amount.Round(cur.Fraction())
	t.Currency = cur
	t.Reference = strings.TrimSpace(d.Reference)
	t.Notes = d.Notes
	return nil
}

// Settle marks a pending transaction settled
func (t *AssetTransaction) Settle() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be settled")
	}
	now := shared.Now()
	t.Status = TransactionStatusSettled
	t.SettledAt = &now
	t.Touch()
	t.AddDomainEvent(NewAssetTransactionSettledEvent(t))
	return nil
}

// Cancel cancels a pending transaction
func (t *AssetTransaction) Cancel() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be cancelled")
	}
	t.Status = TransactionStatusCancelled
	t.Touch()
	return nil
}

// CanDelete reports whether the transaction can be deleted
func (t *AssetTransaction) CanDelete() bool {
	return t.Status != TransactionStatusSettled
}

// Matches applies list filters in memory: search, type, status, customer_id, product_id,
// currency and the trade date range
func (t *AssetTransaction) Matches(f shared.Filter) bool {
	return shared.MatchesSearch(f.Search, t.TransactionNumber, t.Reference, t.Notes) &&
		f.MatchesValue("type", t.Type) &&
		f.MatchesValue("status", t.Status) &&
		f.MatchesValue("customer_id", t.CustomerID) &&
		f.MatchesValue("product_id", t.ProductID) &&
		f.MatchesValue("currency", t.Currency) &&
		f.MatchesDate(t.TradeDate)
}
