package partner

import (
	"context"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// RelationshipManagerRepository defines the interface for manager persistence
type RelationshipManagerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RelationshipManager, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]RelationshipManager, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RelationshipManager, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, manager *RelationshipManager) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
