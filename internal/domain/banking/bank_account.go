// Package banking holds customer bank accounts used for payouts and subscriptions.
package banking

import (
	"regexp"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AccountStatus represents the status of a bank account
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

var (
	accountNumberRegex = regexp.MustCompile(`^[A-Za-z0-9\- ]{4,34}$`)
	swiftRegex         = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// BankAccount is a customer's account at a bank
type BankAccount struct {
	shared.TenantAggregateRoot
	CustomerID    uuid.UUID
	BankName      string
	AccountName   string
	AccountNumber string
	Currency      valueobject.Currency
	Branch        string
	SwiftCode     string
	IsPrimary     bool
	Status        AccountStatus
}

// NewBankAccount creates an active bank account
func NewBankAccount(tenantID, customerID uuid.UUID, bankName, accountName, accountNumber, currency string) (*BankAccount, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is required")
	}
	acct := &BankAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		Status:              AccountStatusActive,
	}
	if err := acct.apply(bankName, accountName, accountNumber, currency); err != nil {
		return nil, err
	}
	return acct, nil
}

// Update changes the account details
func (a *BankAccount) Update(bankName, accountName, accountNumber, currency string) error {
	if a.Status == AccountStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed accounts cannot be modified")
	}
	if err := a.apply(bankName, accountName, accountNumber, currency); err != nil {
		return err
	}
	a.Touch()
	return nil
}

func (a *BankAccount) apply(bankName, accountName, accountNumber, currency string) error {
	if err := shared.ValidateName("Bank", bankName); err != nil {
		return err
	}
	if err := shared.ValidateName("Account", accountName); err != nil {
		return err
	}
	accountNumber = strings.TrimSpace(accountNumber)
	if !accountNumberRegex.MatchString(accountNumber) {
		return shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number must be 4-34 letters, digits, spaces or hyphens")
	}
	cur, err := shared.ValidateCurrency(currency)
	if err != nil {
		return err
	}
	a.BankName = strings.TrimSpace(bankName)
	a.AccountName = strings.TrimSpace(accountName)
	a.AccountNumber = accountNumber
	a.Currency = cur
	return nil
}

// SetBranch sets the branch and SWIFT/BIC code
func (a *BankAccount) SetBranch(branch, swiftCode string) error {
	swiftCode = strings.ToUpper(strings.TrimSpace(swiftCode))
	if swiftCode != "" && !swiftRegex.MatchString(swiftCode) {
		return shared.NewDomainError("INVALID_SWIFT_CODE", "SWIFT code must be 8 or 11 characters")
	}
	a.Branch = strings.TrimSpace(branch)
	a.SwiftCode = swiftCode
	a.Touch()
	return nil
}

// MarkPrimary flags the account as the customer's primary account.
// The caller clears the flag on the customer's other accounts.
func (a *BankAccount) MarkPrimary() error {
	if a.Status == AccountStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed accounts cannot be primary")
	}
	a.IsPrimary = true
	a.Touch()
	return nil
}

// UnmarkPrimary clears the primary flag
func (a *BankAccount) UnmarkPrimary() {
	if !a.IsPrimary {
		return
	}
	a.IsPrimary = false
	a.Touch()
}

// Close closes the account
func (a *BankAccount) Close() error {
	if a.Status == AccountStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Account is already closed")
	}
	a.Status = AccountStatusClosed
	a.IsPrimary = false
	a.Touch()
	return nil
}

// MaskedNumber returns the account number with all but the last four characters hidden
func (a *BankAccount) MaskedNumber() string {
	return MaskAccountNumber(a.AccountNumber)
}

// MaskAccountNumber hides all but the last four alphanumeric characters
func MaskAccountNumber(number string) string {
	compact := strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(compact) <= 4 {
		return compact
	}
	return strings.Repeat("*", len(compact)-4) + compact[len(compact)-4:]
}

// Matches applies list filters in memory
func (a *BankAccount) Matches(f shared.Filter) bool {
	return shared.MatchesSearch(f.Search, a.BankName, a.AccountName, a.Branch) &&
		f.MatchesValue("status", a.Status) &&
		f.MatchesValue("currency", a.Currency) &&
		f.MatchesValue("customer_id", a.CustomerID)
}
