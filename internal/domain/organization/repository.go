package organization

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists organizations
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Organization, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, org *Organization) error
	// FindAllActive returns every active organization
	FindAllActive(ctx context.Context) ([]Organization, error)
}
