package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	managerRepo    partner.RelationshipManagerRepository
	txRepo         finance.AssetTransactionRepository
	profitRepo     finance.ProfitSharingRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService.
// The finance repositories are consulted before a customer is deleted.
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	managerRepo partner.RelationshipManagerRepository,
	txRepo finance.AssetTransactionRepository,
	profitRepo finance.ProfitSharingRepository,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		managerRepo:  managerRepo,
		txRepo:       txRepo,
		profitRepo:   profitRepo,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for non-fatal failures
func (s *CustomerService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.customerRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(tenantID, code, req.Name, partner.CustomerType(req.Type))
	if err != nil {
		return nil, err
	}

	if req.IDNumber != "" || req.Notes != "" {
		if err := customer.Update(customer.Name, customer.Type, req.IDNumber, req.Notes); err != nil {
			return nil, err
		}
	}

	if req.Email != "" || req.Phone != "" {
		if err := customer.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}

	if req.RMID != nil || req.FinderID != nil {
		if err := s.validateManagers(ctx, tenantID, req.RMID, req.FinderID); err != nil {
			return nil, err
		}
		if err := customer.AssignManagers(req.RMID, req.FinderID); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		customer.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a list of customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerListResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerListResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Type != nil || req.IDNumber != nil || req.Notes != nil {
		name, customerType, idNumber, notes := customer.Name, customer.Type, customer.IDNumber, customer.Notes
		if req.Name != nil {
			name = *req.Name
		}
		if req.Type != nil {
			customerType = partner.CustomerType(*req.Type)
		}
		if req.IDNumber != nil {
			idNumber = *req.IDNumber
		}
		if req.Notes != nil {
			notes = *req.Notes
		}
		if err := customer.Update(name, customerType, idNumber, notes); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email, phone := customer.Email, customer.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := customer.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.RMID != nil || req.FinderID != nil || req.ClearRM || req.ClearFinder {
		rmID, finderID := customer.RMID, customer.FinderID
		if req.ClearRM {
			rmID = nil
		} else if req.RMID != nil {
			rmID = req.RMID
		}
		if req.ClearFinder {
			finderID = nil
		} else if req.FinderID != nil {
			finderID = req.FinderID
		}
		if err := s.validateManagers(ctx, tenantID, changedID(rmID, customer.RMID), changedID(finderID, customer.FinderID)); err != nil {
			return nil, err
		}
		if err := customer.AssignManagers(rmID, finderID); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer that has no transactions or profit-sharing records
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}

	byCustomer := shared.DefaultFilter().WithFilter("customer_id", customerID.String())
	txCount, err := s.txRepo.CountForTenant(ctx, tenantID, byCustomer)
	if err != nil {
		return err
	}
	if txCount > 0 {
		return shared.NewDomainError("CUSTOMER_IN_USE", "Customer has asset transactions and cannot be deleted")
	}
	recordCount, err := s.profitRepo.CountForTenant(ctx, tenantID, byCustomer)
	if err != nil {
		return err
	}
	if recordCount > 0 {
		return shared.NewDomainError("CUSTOMER_IN_USE", "Customer has profit-sharing records and cannot be deleted")
	}

	return s.customerRepo.DeleteForTenant(ctx, tenantID, customerID)
}

// Activate activates a customer
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, tenantID, customerID, (*partner.Customer).Activate)
}

// Deactivate deactivates a customer
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, tenantID, customerID, (*partner.Customer).Deactivate)
}

// Suspend places a customer on compliance hold
func (s *CustomerService) Suspend(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, tenantID, customerID, (*partner.Customer).Suspend)
}

func (s *CustomerService) changeStatus(ctx context.Context, tenantID, customerID uuid.UUID, transition func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := transition(customer); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// validateManagers checks that rmID references an RM and finderID a finder, both active
func (s *CustomerService) validateManagers(ctx context.Context, tenantID uuid.UUID, rmID, finderID *uuid.UUID) error {
	check := func(id *uuid.UUID, role partner.ManagerRole) error {
		if id == nil {
			return nil
		}
		manager, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, *id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_MANAGER", "Relationship manager "+id.String()+" not found")
			}
			return err
		}
		if manager.Role != role {
			return shared.NewDomainError("INVALID_MANAGER_ROLE", manager.Name+" is not a "+string(role))
		}
		if !manager.IsActive() {
			return shared.NewDomainError("INVALID_MANAGER", manager.Name+" is inactive")
		}
		return nil
	}
	if err := check(rmID, partner.ManagerRoleRM); err != nil {
		return err
	}
	return check(finderID, partner.ManagerRoleFinder)
}

// changedID returns next when it differs from current, so unchanged links skip validation
func changedID(next, current *uuid.UUID) *uuid.UUID {
	if next == nil || (current != nil && *next == *current) {
		return nil
	}
	return next
}

// publishEvents hands the recorded events to the bus. The customer is already
// saved, so a publish failure is only logged.
func (s *CustomerService) publishEvents(ctx context.Context, customer *partner.Customer) {
	if err := shared.PublishPending(ctx, s.eventPublisher, customer); err != nil {
		s.logger.Warn("Failed to publish customer events",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err))
	}
}
