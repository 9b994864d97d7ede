package persistence

import (
	"context"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExchangeRateRepository implements finance.ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// FindLatest returns the pair's rate with the latest effective date on or before date
func (r *GormExchangeRateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*finance.ExchangeRate, error) {
	var model models.ExchangeRateModel
	if err := r.scoped(ctx, tenantID).
		Where("from_currency = ? AND to_currency = ? AND effective_date <= ?", from.String(), to.String(), finance.TruncateDate(date)).
		Order("effective_date DESC").
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByPairAndDate returns the rate for the exact effective date
func (r *GormExchangeRateRepository) FindByPairAndDate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*finance.ExchangeRate, error) {
	var model models.ExchangeRateModel
	if err := r.scoped(ctx, tenantID).
		Where("from_currency = ? AND to_currency = ? AND effective_date = ?", from.String(), to.String(), finance.TruncateDate(date)).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds rates for a tenant matching the filter
func (r *GormExchangeRateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.ExchangeRate, error) {
	var rateModels []models.ExchangeRateModel
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	query = applyPaging(query, filter, exchangeRateSort)
	if err := query.Find(&rateModels).Error; err != nil {
		return nil, err
	}
	rates := make([]finance.ExchangeRate, len(rateModels))
	for i := range rateModels {
		rates[i] = *rateModels[i].ToDomain()
	}
	return rates, nil
}

// CountForTenant counts rates for a tenant matching the filter
func (r *GormExchangeRateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a rate with optimistic locking
func (r *GormExchangeRateRepository) Save(ctx context.Context, rate *finance.ExchangeRate) error {
	tx := r.db.WithContext(ctx).Scopes(tenant.OrganizationScope(rate.TenantID))
	return saveAggregate(tx, models.ExchangeRateModelFromDomain(rate), &rate.BaseAggregateRoot)
}

func (r *GormExchangeRateRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ExchangeRateModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormExchangeRateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyDateRange(query, "effective_date", filter)
	for key, value := range filter.Filters {
		switch key {
		case "from_currency":
			query = query.Where("from_currency = ?", value)
		case "to_currency":
			query = query.Where("to_currency = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		}
	}
	return query
}

// Ensure GormExchangeRateRepository implements ExchangeRateRepository
var _ finance.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
