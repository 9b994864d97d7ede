package banking

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/banking"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateBankAccountRequest represents a request to register a customer bank account
type CreateBankAccountRequest struct {
	CustomerID    uuid.UUID  `json:"customer_id" binding:"required"`
	BankName      string     `json:"bank_name" binding:"required,max=200"`
	AccountName   string     `json:"account_name" binding:"required,max=200"`
	AccountNumber string     `json:"account_number" binding:"required,min=4,max=34"`
	Currency      string     `json:"currency" binding:"required,currency"`
	Branch        string     `json:"branch" binding:"omitempty,max=200"`
	SwiftCode     string     `json:"swift_code" binding:"omitempty,min=8,max=11"`
	IsPrimary     bool       `json:"is_primary"`
	CreatedBy     *uuid.UUID `json:"-"`
}

// UpdateBankAccountRequest represents a request to update a bank account
type UpdateBankAccountRequest struct {
	BankName      *string `json:"bank_name" binding:"omitempty,max=200"`
	AccountName   *string `json:"account_name" binding:"omitempty,max=200"`
	AccountNumber *string `json:"account_number" binding:"omitempty,min=4,max=34"`
	Currency      *string `json:"currency" binding:"omitempty,currency"`
	Branch        *string `json:"branch" binding:"omitempty,max=200"`
	SwiftCode     *string `json:"swift_code" binding:"omitempty,max=11"`
}

// BankAccountResponse represents a bank account in API responses.
// Only the last four characters of the account number are exposed.
type BankAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	BankName      string    `json:"bank_name"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	Currency      string    `json:"currency"`
	Branch        string    `json:"branch,omitempty"`
	SwiftCode     string    `json:"swift_code,omitempty"`
	IsPrimary     bool      `json:"is_primary"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// BankAccountListFilter represents filter options for the bank account list
type BankAccountListFilter struct {
	Search     string `form:"search"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=active closed"`
	Currency   string `form:"currency" binding:"omitempty,currency"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f BankAccountListFilter) ToDomainFilter() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize().
		WithFilter("customer_id", f.CustomerID).
		WithFilter("status", f.Status).
		WithFilter("currency", strings.ToUpper(f.Currency))
}

// ToBankAccountResponse converts a domain BankAccount to its masked response
func ToBankAccountResponse(a *banking.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            a.ID,
		TenantID:      a.TenantID,
		CustomerID:    a.CustomerID,
		BankName:      a.BankName,
		AccountName:   a.AccountName,
		AccountNumber: a.MaskedNumber(),
		Currency:      a.Currency.String(),
		Branch:        a.Branch,
		SwiftCode:     a.SwiftCode,
		IsPrimary:     a.IsPrimary,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		Version:       a.Version,
	}
}

// ToBankAccountResponses converts a slice of bank accounts
func ToBankAccountResponses(accounts []banking.BankAccount) []BankAccountResponse {
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToBankAccountResponse(&accounts[i])
	}
	return responses
}
