package finance

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "draft"
	ExpenseStatusSubmitted ExpenseStatus = "submitted"
	ExpenseStatusApproved  ExpenseStatus = "approved"
	ExpenseStatusRejected  ExpenseStatus = "rejected"
	ExpenseStatusPaid      ExpenseStatus = "paid"
)

// ExpenseCategory classifies an expense
type ExpenseCategory string

const (
	ExpenseCategoryTravel        ExpenseCategory = "travel"
	ExpenseCategoryEntertainment ExpenseCategory = "entertainment"
	ExpenseCategoryMarketing     ExpenseCategory = "marketing"
	ExpenseCategoryOffice        ExpenseCategory = "office"
	ExpenseCategoryTraining      ExpenseCategory = "training"
	ExpenseCategoryCommission    ExpenseCategory = "commission"
	ExpenseCategoryOther         ExpenseCategory = "other"
)

// ExpenseCategories lists every valid category
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryTravel, ExpenseCategoryEntertainment, ExpenseCategoryMarketing,
	ExpenseCategoryOffice, ExpenseCategoryTraining, ExpenseCategoryCommission, ExpenseCategoryOther,
}

// IsValid reports whether c is a known category
func (c ExpenseCategory) IsValid() bool {
	for _, v := range ExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Expense is an operating cost, optionally attributed to a relationship manager
type Expense struct {
	shared.TenantAggregateRoot
	ExpenseNumber   string
	Category        ExpenseCategory
	Description     string
	Amount          decimal.Decimal
	Currency        valueobject.Currency
	IncurredAt      time.Time
	RMID            *uuid.UUID
	Status          ExpenseStatus
	ReceiptKey      string
	RejectionReason string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID
	PaidAt          *time.Time
}

// NewExpense creates a draft expense
func NewExpense(tenantID uuid.UUID, expenseNumber string, category ExpenseCategory, description string, amount decimal.Decimal, currency string, incurredAt time.Time) (*Expense, error) {
	if strings.TrimSpace(expenseNumber) == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot be empty")
	}
	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExpenseNumber:       expenseNumber,
		Status:              ExpenseStatusDraft,
	}
	if err := e.apply(category, description, amount, currency, incurredAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expense) apply(category ExpenseCategory, description string, amount decimal.Decimal, currency string, incurredAt time.Time) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category: "+string(category))
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if err := shared.ValidateNonNegative("Amount", amount); err != nil {
		return err
	}
	cur, err := shared.ValidateCurrency(currency)
	if err != nil {
		return err
	}
	if incurredAt.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Incurred date is required")
	}
	e.Category = category
	e.Description = description
	e.Amount = amount.Round(cur.Fraction())
	e.Currency = cur
	e.IncurredAt = incurredAt
	return nil
}

// Update edits a draft or rejected expense. Editing a rejected expense returns it to draft.
func (e *Expense) Update(category ExpenseCategory, description string, amount decimal.Decimal, currency string, incurredAt time.Time) error {
	if !e.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or rejected expenses can be edited")
	}
	if err := e.apply(category, description, amount, currency, incurredAt); err != nil {
		return err
	}
	if e.Status == ExpenseStatusRejected {
		e.Status = ExpenseStatusDraft
		e.RejectionReason = ""
	}
	e.Touch()
	return nil
}

// AssignRM attributes the expense to a relationship manager
func (e *Expense) AssignRM(rmID *uuid.UUID) error {
	if !e.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or rejected expenses can be edited")
	}
	e.RMID = rmID
	e.Touch()
	return nil
}

// AttachReceipt records the object-storage key of the receipt
func (e *Expense) AttachReceipt(key string) error {
	if e.Status == ExpenseStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid expenses cannot be modified")
	}
	if strings.TrimSpace(key) == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt key cannot be empty")
	}
	e.ReceiptKey = key
	e.Touch()
	return nil
}

// Submit sends a draft for approval
func (e *Expense) Submit() error {
	if e.Status != ExpenseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft expenses can be submitted")
	}
	now := shared.Now()
	e.Status = ExpenseStatusSubmitted
	e.SubmittedAt = &now
	e.Touch()
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseSubmitted, e))
	return nil
}

// Approve approves a submitted expense
func (e *Expense) Approve(approverID uuid.UUID) error {
	if e.Status != ExpenseStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", "Only submitted expenses can be approved")
	}
	now := shared.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedAt = &now
	e.ApprovedBy = &approverID
	e.Touch()
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseApproved, e))
	return nil
}

// Reject rejects a submitted expense with a reason
func (e *Expense) Reject(approverID uuid.UUID, reason string) error {
	if e.Status != ExpenseStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", "Only submitted expenses can be rejected")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	e.Status = ExpenseStatusRejected
	e.RejectionReason = reason
	e.ApprovedBy = &approverID
	e.Touch()
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseRejected, e))
	return nil
}

// MarkPaid records reimbursement of an approved expense
func (e *Expense) MarkPaid() error {
	if e.Status != ExpenseStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved expenses can be paid")
	}
	now := shared.Now()
	e.Status = ExpenseStatusPaid
	e.PaidAt = &now
	e.Touch()
	return nil
}

// IsEditable reports whether the expense can still be changed
func (e *Expense) IsEditable() bool {
	return e.Status == ExpenseStatusDraft || e.Status == ExpenseStatusRejected
}

// CanDelete reports whether the expense can be deleted
func (e *Expense) CanDelete() bool {
	return e.IsEditable()
}

// Money returns the expense amount as Money
func (e *Expense) Money() valueobject.Money {
	m, _ := valueobject.NewMoney(e.Amount, e.Currency)
	return m
}

// Matches applies list filters in memory: search, category, status, rm_id, currency, incurred date range
func (e *Expense) Matches(f shared.Filter) bool {
	rm := ""
	if e.RMID != nil {
		rm = e.RMID.String()
	}
	return shared.MatchesSearch(f.Search, e.ExpenseNumber, e.Description) &&
		f.MatchesValue("category", e.Category) &&
		f.MatchesValue("status", e.Status) &&
		f.MatchesValue("currency", e.Currency) &&
		f.MatchesValue("rm_id", rm) &&
		f.MatchesDate(e.IncurredAt)
}
