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

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds expenses for a tenant matching the filter
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter)
	query = applyPaging(query, filter, expenseSort)
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return toExpenses(expenseModels), nil
}

// FindInRange returns every expense incurred within [from, to] without paging
func (r *GormExpenseRepository) FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := applyDateRange(r.scoped(ctx, tenantID), "incurred_at", shared.Filter{From: from, To: to})
	if err := query.Order("incurred_at ASC").Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return toExpenses(expenseModels), nil
}

// CountForTenant counts expenses for a tenant matching the filter
func (r *GormExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilterWithoutPagination(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateExpenseNumber returns the next number, e.g. EXP-2026-00001
func (r *GormExpenseRepository) GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextDocumentNumber(ctx, r.db, &models.ExpenseModel{}, tenantID, "expense_number", "EXP")
}

// Save creates or updates an expense with optimistic locking
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	tx := r.db.WithContext(ctx).Scopes(tenant.OrganizationScope(expense.TenantID))
	return saveAggregate(tx, models.ExpenseModelFromDomain(expense), &expense.BaseAggregateRoot)
}

// DeleteForTenant deletes an expense within a tenant
func (r *GormExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.ExpenseModel{}, tenantID, id)
}

func (r *GormExpenseRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Scopes(tenant.OrganizationScope(tenantID))
}

func (r *GormExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "expense_number", "description")
	query = applyDateRange(query, "incurred_at", filter)
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "rm_id":
			query = query.Where("rm_id = ?", value)
		}
	}
	return query
}

func toExpenses(expenseModels []models.ExpenseModel) []finance.Expense {
	expenses := make([]finance.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
