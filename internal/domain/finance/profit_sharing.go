package finance

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfitSharingStatus represents the state of a profit-sharing record
type ProfitSharingStatus string

const (
	ProfitSharingStatusDraft     ProfitSharingStatus = "draft"
	ProfitSharingStatusConfirmed ProfitSharingStatus = "confirmed"
	ProfitSharingStatusPaid      ProfitSharingStatus = "paid"
)

// ProfitSharingTerms are the inputs that determine a record's amounts
type ProfitSharingTerms struct {
	CustomerID      uuid.UUID
	ProductID       *uuid.UUID
	PeriodDate      time.Time
	Currency        string
	GrossRevenue    decimal.Decimal
	ShareableAmount decimal.Decimal
	BaseCurrency    string
	ExchangeRate    decimal.Decimal // Record currency → base currency
	Shares          []Share
	Notes           string
}

// ProfitSharingRecord splits the shareable part of a customer's revenue among the company,
// relationship managers and finders.
type ProfitSharingRecord struct {
	shared.TenantAggregateRoot
	RecordNumber        string
	CustomerID          uuid.UUID
	ProductID           *uuid.UUID
	PeriodDate          time.Time
	Currency            valueobject.Currency
	GrossRevenue        decimal.Decimal
	ShareableAmount     decimal.Decimal
	ExchangeRate        decimal.Decimal
	BaseCurrency        valueobject.Currency
	ShareableAmountBase decimal.Decimal
	Status              ProfitSharingStatus
	Notes               string
	Allocations         []Allocation
	ConfirmedAt         *time.Time
	PaidAt              *time.Time
}

// NewProfitSharingRecord creates a draft record and computes its allocations
func NewProfitSharingRecord(tenantID uuid.UUID, recordNumber string, terms ProfitSharingTerms) (*ProfitSharingRecord, error) {
	if strings.TrimSpace(recordNumber) == "" {
		return nil, shared.NewDomainError("INVALID_RECORD_NUMBER", "Record number cannot be empty")
	}
	r := &ProfitSharingRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RecordNumber:        recordNumber,
		Status:              ProfitSharingStatusDraft,
	}
	if err := r.apply(terms); err != nil {
		return nil, err
	}
	return r, nil
}

// Recalculate replaces the terms of a draft record
func (r *ProfitSharingRecord) Recalculate(terms ProfitSharingTerms) error {
	if r.Status != ProfitSharingStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft records can be changed")
	}
	if err := r.apply(terms); err != nil {
		return err
	}
	r.Touch()
	return nil
}

func (r *ProfitSharingRecord) apply(t ProfitSharingTerms) error {
	if t.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if t.PeriodDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Period date is required")
	}
	calc, err := CalculateProfitSharing(t)
	if err != nil {
		return err
	}

	r.CustomerID = t.CustomerID
	r.ProductID = t.ProductID
	r.PeriodDate = TruncateDate(t.PeriodDate)
	r.Currency = calc.Currency
	r.GrossRevenue = t.GrossRevenue
	r.ShareableAmount = calc.ShareableAmount
	r.ExchangeRate = calc.ExchangeRate
	r.BaseCurrency = calc.BaseCurrency
	r.ShareableAmountBase = calc.ShareableAmountBase
	r.Allocations = calc.Allocations
	r.Notes = t.Notes
	return nil
}

// ProfitSharingCalculation is the result of splitting a shareable amount
type ProfitSharingCalculation struct {
	Currency            valueobject.Currency
	ShareableAmount     decimal.Decimal
	BaseCurrency        valueobject.Currency
	ExchangeRate        decimal.Decimal
	ShareableAmountBase decimal.Decimal
	TotalPercent        decimal.Decimal
	Allocations         []Allocation
}

// CalculateProfitSharing validates the terms and computes allocations without building a record.
// Used both by records and by the preview endpoint.
func CalculateProfitSharing(t ProfitSharingTerms) (*ProfitSharingCalculation, error) {
	cur, err := shared.ValidateCurrency(t.Currency)
	if err != nil {
		return nil, err
	}
	baseCur, err := shared.ValidateCurrency(t.BaseCurrency)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateNonNegative("Gross revenue", t.GrossRevenue); err != nil {
		return nil, err
	}
	if err := shared.ValidateNonNegative("Shareable amount", t.ShareableAmount); err != nil {
		return nil, err
	}
	if t.ShareableAmount.GreaterThan(t.GrossRevenue) {
		return nil, shared.NewDomainError("SHAREABLE_EXCEEDS_GROSS", "Shareable amount cannot exceed gross revenue")
	}
	rate := t.ExchangeRate
	if cur == baseCur {
		rate = decimal.NewFromInt(1)
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}

	shareable, err := valueobject.NewMoney(t.ShareableAmount, cur)
	if err != nil {
		return nil, err
	}
	shareable = shareable.Rounded()
	shareableBase := shareable.Convert(rate, baseCur)
	allocs, err := AllocateWithBase(shareable.Amount(), cur, shareableBase.Amount(), baseCur, t.Shares)
	if err != nil {
		return nil, err
	}
	return &ProfitSharingCalculation{
		Currency:            cur,
		ShareableAmount:     shareable.Amount(),
		BaseCurrency:        baseCur,
		ExchangeRate:        rate,
		ShareableAmountBase: shareableBase.Amount(),
		TotalPercent:        SumPercent(t.Shares),
		Allocations:         allocs,
	}, nil
}

// Shares returns the record's split as shares
func (r *ProfitSharingRecord) Shares() []Share {
	shares := make([]Share, len(r.Allocations))
	for i, a := range r.Allocations {
		shares[i] = Share{Party: a.Party, ManagerID: a.ManagerID, Percent: a.Percent}
	}
	return shares
}

// Confirm locks the record's amounts
func (r *ProfitSharingRecord) Confirm() error {
	if r.Status != ProfitSharingStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft records can be confirmed")
	}
	now := shared.Now()
	r.Status = ProfitSharingStatusConfirmed
	r.ConfirmedAt = &now
	r.Touch()
	r.AddDomainEvent(NewProfitSharingEvent(EventTypeProfitSharingConfirmed, r))
	return nil
}

// MarkPaid records payout of a confirmed record
func (r *ProfitSharingRecord) MarkPaid() error {
	if r.Status != ProfitSharingStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed records can be paid")
	}
	now := shared.Now()
	r.Status = ProfitSharingStatusPaid
	r.PaidAt = &now
	r.Touch()
	r.AddDomainEvent(NewProfitSharingEvent(EventTypeProfitSharingPaid, r))
	return nil
}

// CanDelete reports whether the record can be deleted
func (r *ProfitSharingRecord) CanDelete() bool {
	return r.Status == ProfitSharingStatusDraft
}

// ManagerIDs returns the managers referenced by the allocations
func (r *ProfitSharingRecord) ManagerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		if a.ManagerID != nil {
			ids = append(ids, *a.ManagerID)
		}
	}
	return ids
}

// Matches applies list filters in memory: search, status, customer_id, product_id,
// currency, rm_id (any allocation) and the period date range.
func (r *ProfitSharingRecord) Matches(f shared.Filter) bool {
	product := ""
	if r.ProductID != nil {
		product = r.ProductID.String()
	}
	return shared.MatchesSearch(f.Search, r.RecordNumber, r.Notes) &&
		f.MatchesValue("status", r.Status) &&
		f.MatchesValue("customer_id", r.CustomerID) &&
		f.MatchesValue("product_id", product) &&
		f.MatchesValue("currency", r.Currency) &&
		r.matchesManager(f) &&
		f.MatchesDate(r.PeriodDate)
}

func (r *ProfitSharingRecord) matchesManager(f shared.Filter) bool {
	if v, ok := f.Filters["rm_id"]; !ok || v == nil || v == "" {
		return true
	}
	for _, id := range r.ManagerIDs() {
		if f.MatchesValue("rm_id", id) {
			return true
		}
	}
	return false
}
