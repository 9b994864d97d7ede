// Package banking provides application services for customer bank accounts.
package banking

import (
	"context"
	"errors"

	"github.com/fintermediary/backoffice/internal/domain/banking"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountService handles bank account operations.
// A customer has at most one primary account; the first account becomes primary.
type BankAccountService struct {
	accountRepo  banking.BankAccountRepository
	customerRepo partner.CustomerRepository
}

// NewBankAccountService creates a new BankAccountService
func NewBankAccountService(accountRepo banking.BankAccountRepository, customerRepo partner.CustomerRepository) *BankAccountService {
	return &BankAccountService{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
	}
}

// Create registers a bank account for a customer
func (s *BankAccountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return nil, err
	}

	account, err := banking.NewBankAccount(tenantID, req.CustomerID, req.BankName, req.AccountName, req.AccountNumber, req.Currency)
	if err != nil {
		return nil, err
	}
	if req.Branch != "" || req.SwiftCode != "" {
		if err := account.SetBranch(req.Branch, req.SwiftCode); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		account.SetCreatedBy(*req.CreatedBy)
	}

	siblings, err := s.accountRepo.FindByCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if req.IsPrimary || !hasPrimary(siblings) {
		if err := account.MarkPrimary(); err != nil {
			return nil, err
		}
	}

	toSave := []*banking.BankAccount{account}
	if account.IsPrimary {
		toSave = append(toSave, demoteOthers(siblings, account.ID)...)
	}
	if err := s.accountRepo.SaveAll(ctx, toSave); err != nil {
		return nil, err
	}

	response := ToBankAccountResponse(account)
	return &response, nil
}

// GetByID retrieves a bank account
func (s *BankAccountService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToBankAccountResponse(account)
	return &response, nil
}

// List retrieves bank accounts with filtering and pagination
func (s *BankAccountService) List(ctx context.Context, tenantID uuid.UUID, filter BankAccountListFilter) ([]BankAccountResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBankAccountResponses(accounts), total, nil
}

// ListByCustomer returns every account of a customer, primary first
func (s *BankAccountService) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]BankAccountResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	responses := make([]BankAccountResponse, 0, len(accounts))
	for i := range accounts {
		if accounts[i].IsPrimary {
			responses = append(responses, ToBankAccountResponse(&accounts[i]))
		}
	}
	for i := range accounts {
		if !accounts[i].IsPrimary {
			responses = append(responses, ToBankAccountResponse(&accounts[i]))
		}
	}
	return responses, nil
}

// Update changes account details
func (s *BankAccountService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateBankAccountRequest) (*BankAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.BankName != nil || req.AccountName != nil || req.AccountNumber != nil || req.Currency != nil {
		bankName, accountName, number, currency := account.BankName, account.AccountName, account.AccountNumber, account.Currency.String()
		if req.BankName != nil {
			bankName = *req.BankName
		}
		if req.AccountName != nil {
			accountName = *req.AccountName
		}
		if req.AccountNumber != nil {
			number = *req.AccountNumber
		}
		if req.Currency != nil {
			currency = *req.Currency
		}
		if err := account.Update(bankName, accountName, number, currency); err != nil {
			return nil, err
		}
	}

	if req.Branch != nil || req.SwiftCode != nil {
		branch, swift := account.Branch, account.SwiftCode
		if req.Branch != nil {
			branch = *req.Branch
		}
		if req.SwiftCode != nil {
			swift = *req.SwiftCode
		}
		if err := account.SetBranch(branch, swift); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	response := ToBankAccountResponse(account)
	return &response, nil
}

// SetPrimary makes the account the customer's primary account and demotes the others
func (s *BankAccountService) SetPrimary(ctx context.Context, tenantID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := account.MarkPrimary(); err != nil {
		return nil, err
	}
	siblings, err := s.accountRepo.FindByCustomer(ctx, tenantID, account.CustomerID)
	if err != nil {
		return nil, err
	}

	toSave := append([]*banking.BankAccount{account}, demoteOthers(siblings, account.ID)...)
	if err := s.accountRepo.SaveAll(ctx, toSave); err != nil {
		return nil, err
	}
	response := ToBankAccountResponse(account)
	return &response, nil
}

// Close closes an account
func (s *BankAccountService) Close(ctx context.Context, tenantID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := account.Close(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	response := ToBankAccountResponse(account)
	return &response, nil
}

// Delete removes an account
func (s *BankAccountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.accountRepo.DeleteForTenant(ctx, tenantID, id)
}

func hasPrimary(accounts []banking.BankAccount) bool {
	for _, a := range accounts {
		if a.IsPrimary {
			return true
		}
	}
	return false
}

// demoteOthers clears the primary flag on every account except keepID and returns the changed ones
func demoteOthers(accounts []banking.BankAccount, keepID uuid.UUID) []*banking.BankAccount {
	var changed []*banking.BankAccount
	for i := range accounts {
		a := &accounts[i]
		if a.ID == keepID || !a.IsPrimary {
			continue
		}
		a.UnmarkPrimary()
		changed = append(changed, a)
	}
	return changed
}
