package persistence

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements organization.Repository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds an organization by its slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple organizations by their IDs
func (r *GormOrganizationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]organization.Organization, error) {
	if len(ids) == 0 {
		return []organization.Organization{}, nil
	}
	var orgModels []models.OrganizationModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&orgModels).Error; err != nil {
		return nil, err
	}
	orgs := make([]organization.Organization, len(orgModels))
	for i := range orgModels {
		orgs[i] = *orgModels[i].ToDomain()
	}
	return orgs, nil
}

// ExistsBySlug checks if an organization with the given slug exists
func (r *GormOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrganizationModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *organization.Organization) error {
	return saveAggregate(r.db.WithContext(ctx), models.OrganizationModelFromDomain(org), &org.BaseAggregateRoot)
}

// FindAllActive returns every active organization
func (r *GormOrganizationRepository) FindAllActive(ctx context.Context) ([]organization.Organization, error) {
	var orgModels []models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", organization.StatusActive).
		Order("created_at ASC").
		Find(&orgModels).Error; err != nil {
		return nil, err
	}
	orgs := make([]organization.Organization, len(orgModels))
	for i := range orgModels {
		orgs[i] = *orgModels[i].ToDomain()
	}
	return orgs, nil
}

// Ensure GormOrganizationRepository implements organization.Repository
var _ organization.Repository = (*GormOrganizationRepository)(nil)
