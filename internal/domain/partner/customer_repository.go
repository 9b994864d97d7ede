package partner

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository stores customers. Every method is scoped to one
// organization; a customer of another organization reads as shared.ErrNotFound.
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// FindAllForTenant applies the filter's search, field filters, sort and page
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)
	// CountForTenant ignores paging
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// ExistsByCode compares codes case-insensitively
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// CountByManager counts customers naming the manager as RM or finder
	CountByManager(ctx context.Context, tenantID, managerID uuid.UUID) (int64, error)

	// Save inserts a new customer or updates one guarded by its persisted
	// version, failing with shared.ErrConcurrencyConflict when stale
	Save(ctx context.Context, customer *Customer) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
