package banking

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BankAccount, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]BankAccount, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, account *BankAccount) error
	// SaveAll persists the accounts in one transaction
	SaveAll(ctx context.Context, accounts []*BankAccount) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
