package finance

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeExpense             = "Expense"
	AggregateTypeProfitSharingRecord = "ProfitSharingRecord"
	AggregateTypeAssetTransaction    = "AssetTransaction"
)

// Event type constants
const (
	EventTypeExpenseSubmitted        = "expense.submitted"
	EventTypeExpenseApproved         = "expense.approved"
	EventTypeExpenseRejected         = "expense.rejected"
	EventTypeProfitSharingConfirmed  = "profit_sharing.confirmed"
	EventTypeProfitSharingPaid       = "profit_sharing.paid"
	EventTypeAssetTransactionSettled = "asset_transaction.settled"
)

// ExpenseEvent is published on expense workflow transitions
type ExpenseEvent struct {
	shared.BaseDomainEvent
	ExpenseID       uuid.UUID            `json:"expense_id"`
	ExpenseNumber   string               `json:"expense_number"`
	Category        ExpenseCategory      `json:"category"`
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        valueobject.Currency `json:"currency"`
	IncurredAt      time.Time            `json:"incurred_at"`
	RMID            *uuid.UUID           `json:"rm_id,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
}

// NewExpenseEvent creates an ExpenseEvent of the given type
func NewExpenseEvent(eventType string, e *Expense) *ExpenseEvent {
	return &ExpenseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeExpense, e.ID, e.TenantID),
		ExpenseID:       e.ID,
		ExpenseNumber:   e.ExpenseNumber,
		Category:        e.Category,
		Description:     e.Description,
		Amount:          e.Amount,
		Currency:        e.Currency,
		IncurredAt:      e.IncurredAt,
		RMID:            e.RMID,
		RejectionReason: e.RejectionReason,
	}
}

// AllocationPayload is an allocation as carried in events
type AllocationPayload struct {
	Party      Party           `json:"party"`
	ManagerID  *uuid.UUID      `json:"manager_id,omitempty"`
	Percent    decimal.Decimal `json:"percent"`
	Amount     decimal.Decimal `json:"amount"`
	AmountBase decimal.Decimal `json:"amount_base"`
}

// ProfitSharingEvent is published when a record is confirmed or paid
type ProfitSharingEvent struct {
	shared.BaseDomainEvent
	RecordID        uuid.UUID            `json:"record_id"`
	RecordNumber    string               `json:"record_number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	PeriodDate      time.Time            `json:"period_date"`
	Currency        valueobject.Currency `json:"currency"`
	BaseCurrency    valueobject.Currency `json:"base_currency"`
	ShareableAmount decimal.Decimal      `json:"shareable_amount"`
	Allocations     []AllocationPayload  `json:"allocations"`
}

// NewProfitSharingEvent creates a ProfitSharingEvent of the given type
func NewProfitSharingEvent(eventType string, r *ProfitSharingRecord) *ProfitSharingEvent {
	allocs := make([]AllocationPayload, len(r.Allocations))
	for i, a := range r.Allocations {
		allocs[i] = AllocationPayload{
			Party:      a.Party,
			ManagerID:  a.ManagerID,
			Percent:    a.Percent,
			Amount:     a.Amount,
			AmountBase: a.AmountBase,
		}
	}
	return &ProfitSharingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProfitSharingRecord, r.ID, r.TenantID),
		RecordID:        r.ID,
		RecordNumber:    r.RecordNumber,
		CustomerID:      r.CustomerID,
		PeriodDate:      r.PeriodDate,
		Currency:        r.Currency,
		BaseCurrency:    r.BaseCurrency,
		ShareableAmount: r.ShareableAmount,
		Allocations:     allocs,
	}
}

// AssetTransactionSettledEvent is published when a transaction settles
type AssetTransactionSettledEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID            `json:"transaction_id"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	ProductID     uuid.UUID            `json:"product_id"`
	Type          TransactionType      `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      valueobject.Currency `json:"currency"`
}

// NewAssetTransactionSettledEvent creates an AssetTransactionSettledEvent
func NewAssetTransactionSettledEvent(t *AssetTransaction) *AssetTransactionSettledEvent {
	return &AssetTransactionSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetTransactionSettled, AggregateTypeAssetTransaction, t.ID, t.TenantID),
		TransactionID:   t.ID,
		CustomerID:      t.CustomerID,
		ProductID:       t.ProductID,
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
	}
}
