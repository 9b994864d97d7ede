package persistence

import (
	"context"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProfitSharingRepository implements finance.ProfitSharingRepository using GORM.
// Allocation rows are replaced wholesale whenever the record is saved.
type GormProfitSharingRepository struct {
	db *gorm.DB
}

// NewGormProfitSharingRepository creates a new GormProfitSharingRepository
func NewGormProfitSharingRepository(db *gorm.DB) *GormProfitSharingRepository {
	return &GormProfitSharingRepository{db: db}
}

// FindByIDForTenant finds a record with its allocations
func (r *GormProfitSharingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.ProfitSharingRecord, error) {
	var model models.ProfitSharingRecordModel
	if err := r.withAllocations(r.scoped(ctx, tenantID)).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds records for a tenant matching the filter
func (r *GormProfitSharingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.ProfitSharingRecord, error) {
	var recordModels []models.ProfitSharingRecordModel
	query := r.applyFilterWithoutPagination(r.withAllocations(r.scoped(ctx, tenantID)), filter)
	query = applyPaging(query, filter, profitSharingSort)
	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toProfitSharingRecords(recordModels), nil
}

// FindInRange returns records whose period date is within [from, to] without paging
func (r *GormProfitSharingRepository) FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.ProfitSharingRecord, error) {
	var recordModels []models.ProfitSharingRecordModel
	query := applyDateRange(r.withAllocations(r.scoped(ctx, tenantID)), "period_date", shared.Filter{From: from, To: to})
	if err := query.Order("period_date ASC").Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toProfitSharingRecords(recordModels), nil
}

// CountForTenant counts records for a tenant matching the filter
func (r *GormProfitSharingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateRecordNumber returns the next number, e.g. PS-2026-00001
func (r *GormProfitSharingRepository) GenerateRecordNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &models.ProfitSharingRecordModel{}, tenantID, "record_number", "PS")
}

// Save persists the record and replaces its allocations in one transaction
func (r *GormProfitSharingRepository) Save(ctx context.Context, record *finance.ProfitSharingRecord) error {
	model := models.ProfitSharingRecordModelFromDomain(record)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx.Scopes(tenant.OrganizationScope(record.TenantID)), model, record.PersistedVersion()); err != nil {
			return err
		}
		if err := tx.Where("record_id = ?", record.ID).Delete(&models.ProfitSharingAllocationModel{}).Error; err != nil {
			return err
		}
		if len(model.Allocations) == 0 {
			return nil
		}
		return tx.Create(&model.Allocations).Error
	})
	if err != nil {
		return err
	}
	record.MarkPersisted()
	return nil
}

// DeleteForTenant deletes a record and its allocations
func (r *GormProfitSharingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScoped(ctx, tx, &models.ProfitSharingRecordModel{}, tenantID, id); err != nil {
			return err
		}
		return tx.Where("record_id = ?", id).Delete(&models.ProfitSharingAllocationModel{}).Error
	})
}

func (r *GormProfitSharingRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ProfitSharingRecordModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormProfitSharingRepository) withAllocations(query *gorm.DB) *gorm.DB {
	return query.Preload("Allocations", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

func (r *GormProfitSharingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "record_number", "notes")
	query = applyDateRange(query, "period_date", filter)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "rm_id":
			query = query.Where("id IN (?)", r.db.Model(&models.ProfitSharingAllocationModel{}).
				Select("record_id").
				Where("manager_id = ?", value))
		}
	}
	return query
}

func toProfitSharingRecords(recordModels []models.ProfitSharingRecordModel) []finance.ProfitSharingRecord {
	records := make([]finance.ProfitSharingRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records
}

// Ensure GormProfitSharingRepository implements ProfitSharingRepository
var _ finance.ProfitSharingRepository = (*GormProfitSharingRepository)(nil)
