package partner

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RelationshipManagerService manages RMs and finders
type RelationshipManagerService struct {
	managerRepo  partner.RelationshipManagerRepository
	customerRepo partner.CustomerRepository
}

// NewRelationshipManagerService creates a new RelationshipManagerService
func NewRelationshipManagerService(managerRepo partner.RelationshipManagerRepository, customerRepo partner.CustomerRepository) *RelationshipManagerService {
	return &RelationshipManagerService{
		managerRepo:  managerRepo,
		customerRepo: customerRepo,
	}
}

// Create creates a new RM or finder
func (s *RelationshipManagerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRelationshipManagerRequest) (*RelationshipManagerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.managerRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Relationship manager with this code already exists")
	}

	share := decimal.Zero
	if req.DefaultSharePercent != nil {
		share = *req.DefaultSharePercent
	}

	manager, err := partner.NewRelationshipManager(tenantID, code, req.Name, partner.ManagerRole(req.Role), share)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Phone != "" {
		if err := manager.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		manager.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.managerRepo.Save(ctx, manager); err != nil {
		return nil, err
	}

	response := ToRelationshipManagerResponse(manager)
	return &response, nil
}

// GetByID retrieves a manager by ID
func (s *RelationshipManagerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RelationshipManagerResponse, error) {
	manager, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToRelationshipManagerResponse(manager)
	return &response, nil
}

// List retrieves managers with filtering and pagination
func (s *RelationshipManagerService) List(ctx context.Context, tenantID uuid.UUID, filter RelationshipManagerListFilter) ([]RelationshipManagerResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	managers, err := s.managerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.managerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRelationshipManagerResponses(managers), total, nil
}

// Update updates a manager. Changing the role is refused while customers reference the manager.
func (s *RelationshipManagerService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRelationshipManagerRequest) (*RelationshipManagerResponse, error) {
	manager, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Role != nil || req.DefaultSharePercent != nil {
		name, role, share := manager.Name, manager.Role, manager.DefaultSharePercent
		if req.Name != nil {
			name = *req.Name
		}
		if req.Role != nil {
			role = partner.ManagerRole(*req.Role)
		}
		if req.DefaultSharePercent != nil {
			share = *req.DefaultSharePercent
		}
		if role != manager.Role {
			if err := s.ensureUnreferenced(ctx, tenantID, id, "role cannot change"); err != nil {
				return nil, err
			}
		}
		if err := manager.Update(name, role, share); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email, phone := manager.Email, manager.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := manager.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if err := s.managerRepo.Save(ctx, manager); err != nil {
		return nil, err
	}

	response := ToRelationshipManagerResponse(manager)
	return &response, nil
}

// Delete deletes a manager that no customer references
func (s *RelationshipManagerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.ensureUnreferenced(ctx, tenantID, id, "cannot be deleted"); err != nil {
		return err
	}
	return s.managerRepo.DeleteForTenant(ctx, tenantID, id)
}

// Activate activates a manager
func (s *RelationshipManagerService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*RelationshipManagerResponse, error) {
	return s.changeStatus(ctx, tenantID, id, (*partner.RelationshipManager).Activate)
}

// Deactivate deactivates a manager
func (s *RelationshipManagerService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*RelationshipManagerResponse, error) {
	return s.changeStatus(ctx, tenantID, id, (*partner.RelationshipManager).Deactivate)
}

func (s *RelationshipManagerService) changeStatus(ctx context.Context, tenantID, id uuid.UUID, transition func(*partner.RelationshipManager) error) (*RelationshipManagerResponse, error) {
	manager, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := transition(manager); err != nil {
		return nil, err
	}
	if err := s.managerRepo.Save(ctx, manager); err != nil {
		return nil, err
	}
	response := ToRelationshipManagerResponse(manager)
	return &response, nil
}

func (s *RelationshipManagerService) ensureUnreferenced(ctx context.Context, tenantID, id uuid.UUID, action string) error {
	count, err := s.customerRepo.CountByManager(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("MANAGER_IN_USE",
			fmt.Sprintf("Relationship manager is linked to %d customer(s) and %s", count, action))
	}
	return nil
}
