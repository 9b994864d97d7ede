package persistence

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssetTransactionRepository implements finance.AssetTransactionRepository using GORM
type GormAssetTransactionRepository struct {
	db *gorm.DB
}

// NewGormAssetTransactionRepository creates a new GormAssetTransactionRepository
func NewGormAssetTransactionRepository(db *gorm.DB) *GormAssetTransactionRepository {
	return &GormAssetTransactionRepository{db: db}
}

// FindByIDForTenant finds a transaction by ID within a tenant
func (r *GormAssetTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.AssetTransaction, error) {
	var model models.AssetTransactionModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds transactions for a tenant matching the filter
func (r *GormAssetTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.AssetTransaction, error) {
	var txModels []models.AssetTransactionModel
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	query = applyPaging(query, filter, assetTransactionSort)
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toAssetTransactions(txModels), nil
}

// FindSettledByCustomer returns all settled transactions of a customer in trade order
func (r *GormAssetTransactionRepository) FindSettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.AssetTransaction, error) {
	var txModels []models.AssetTransactionModel
	if err := r.scoped(ctx, tenantID).
		Where("customer_id = ? AND status = ?", customerID, finance.TransactionStatusSettled).
		Order("trade_date ASC, created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toAssetTransactions(txModels), nil
}

// CountForTenant counts transactions for a tenant matching the filter
func (r *GormAssetTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProduct counts transactions referencing a product
func (r *GormAssetTransactionRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.scoped(ctx, tenantID).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateTransactionNumber returns the next number, e.g. AT-2026-00001
func (r *GormAssetTransactionRepository) GenerateTransactionNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &models.AssetTransactionModel{}, tenantID, "transaction_number", "AT")
}

// Save creates or updates a transaction with optimistic locking
func (r *GormAssetTransactionRepository) Save(ctx context.Context, tx *finance.AssetTransaction) error {
	db := r.db.WithContext(ctx).Scopes(tenant.OrganizationScope(tx.TenantID))
	return saveAggregate(db, models.AssetTransactionModelFromDomain(tx), &tx.BaseAggregateRoot)
}

// DeleteForTenant deletes a transaction within a tenant
func (r *GormAssetTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.AssetTransactionModel{}, tenantID, id)
}

func (r *GormAssetTransactionRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AssetTransactionModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormAssetTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "transaction_number", "reference", "notes")
	query = applyDateRange(query, "trade_date", filter)
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		}
	}
	return query
}

func toAssetTransactions(txModels []models.AssetTransactionModel) []finance.AssetTransaction {
	txs := make([]finance.AssetTransaction, len(txModels))
	for i := range txModels {
		txs[i] = *txModels[i].ToDomain()
	}
	return txs
}

// Ensure GormAssetTransactionRepository implements AssetTransactionRepository
var _ finance.AssetTransactionRepository = (*GormAssetTransactionRepository)(nil)
