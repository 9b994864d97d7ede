package persistence

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/banking"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements banking.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByIDForTenant finds a bank account by ID within a tenant
func (r *GormBankAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds bank accounts for a tenant matching the filter
func (r *GormBankAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]banking.BankAccount, error) {
	var accountModels []models.BankAccountModel
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	query = applyPaging(query, filter, bankAccountSort)
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toBankAccounts(accountModels), nil
}

// FindByCustomer returns every account of a customer, primary first
func (r *GormBankAccountRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]banking.BankAccount, error) {
	var accountModels []models.BankAccountModel
	if err := r.scoped(ctx, tenantID).
		Where("customer_id = ?", customerID).
		Order("is_primary DESC, created_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toBankAccounts(accountModels), nil
}

// CountForTenant counts bank accounts for a tenant matching the filter
func (r *GormBankAccountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a bank account with optimistic locking
func (r *GormBankAccountRepository) Save(ctx context.Context, account *banking.BankAccount) error {
	tx := r.db.WithContext(ctx).Scopes(tenant.OrganizationScope(account.TenantID))
	return saveAggregate(tx, models.BankAccountModelFromDomain(account), &account.BaseAggregateRoot)
}

// SaveAll persists the accounts in one transaction
func (r *GormBankAccountRepository) SaveAll(ctx context.Context, accounts []*banking.BankAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, account := range accounts {
			scoped := tx.Scopes(tenant.OrganizationScope(account.TenantID))
			if err := saveVersioned(scoped, models.BankAccountModelFromDomain(account), account.PersistedVersion()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, account := range accounts {
		account.MarkPersisted()
	}
	return nil
}

// DeleteForTenant deletes a bank account within a tenant
func (r *GormBankAccountRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.BankAccountModel{}, tenantID, id)
}

func (r *GormBankAccountRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.BankAccountModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormBankAccountRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "bank_name", "account_name", "branch")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return query
}

func toBankAccounts(accountModels []models.BankAccountModel) []banking.BankAccount {
	accounts := make([]banking.BankAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts
}

// Ensure GormBankAccountRepository implements BankAccountRepository
var _ banking.BankAccountRepository = (*GormBankAccountRepository)(nil)
