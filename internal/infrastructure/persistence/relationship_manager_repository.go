package persistence

import (
	"context"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRelationshipManagerRepository implements partner.RelationshipManagerRepository using GORM
type GormRelationshipManagerRepository struct {
	db *gorm.DB
}

// NewGormRelationshipManagerRepository creates a new GormRelationshipManagerRepository
func NewGormRelationshipManagerRepository(db *gorm.DB) *GormRelationshipManagerRepository {
	return &GormRelationshipManagerRepository{db: db}
}

// FindByIDForTenant finds a manager by ID within a tenant
func (r *GormRelationshipManagerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.RelationshipManager, error) {
	var model models.RelationshipManagerModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple managers by their IDs
func (r *GormRelationshipManagerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.RelationshipManager, error) {
	if len(ids) == 0 {
		return []partner.RelationshipManager{}, nil
	}
	var rmModels []models.RelationshipManagerModel
	if err := r.scoped(ctx, tenantID).Where("id IN ?", ids).Find(&rmModels).Error; err != nil {
		return nil, err
	}
	return toRelationshipManagers(rmModels), nil
}

// FindAllForTenant finds managers for a tenant matching the filter
func (r *GormRelationshipManagerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.RelationshipManager, error) {
	var rmModels []models.RelationshipManagerModel
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	query = applyPaging(query, filter, relationshipManagerSort)
	if err := query.Find(&rmModels).Error; err != nil {
		return nil, err
	}
	return toRelationshipManagers(rmModels), nil
}

// CountForTenant counts managers for a tenant matching the filter
func (r *GormRelationshipManagerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a manager with the given code exists
func (r *GormRelationshipManagerRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return existsScoped(ctx, r.db, &models.RelationshipManagerModel{}, tenantID, "code", strings.ToUpper(code))
}

// Save creates or updates a manager with optimistic locking
func (r *GormRelationshipManagerRepository) Save(ctx context.Context, manager *partner.RelationshipManager) error {
	tx := r.db.WithContext(ctx).Scopes(tenant.OrganizationScope(manager.TenantID))
	return saveAggregate(tx, models.RelationshipManagerModelFromDomain(manager), &manager.BaseAggregateRoot)
}

// DeleteForTenant deletes a manager within a tenant
func (r *GormRelationshipManagerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.RelationshipManagerModel{}, tenantID, id)
}

func (r *GormRelationshipManagerRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.RelationshipManagerModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormRelationshipManagerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "code", "name", "email")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "role":
			query = query.Where("role = ?", value)
		}
	}
	return query
}

func toRelationshipManagers(rmModels []models.RelationshipManagerModel) []partner.RelationshipManager {
	managers := make([]partner.RelationshipManager, len(rmModels))
	for i := range rmModels {
		managers[i] = *rmModels[i].ToDomain()
	}
	return managers
}

// Ensure GormRelationshipManagerRepository implements RelationshipManagerRepository
var _ partner.RelationshipManagerRepository = (*GormRelationshipManagerRepository)(nil)
