package partner

import (
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended" // Compliance hold
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeCorporate  CustomerType = "corporate"
)

// IsValid reports whether t is a known customer type
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeIndividual || t == CustomerTypeCorporate
}

// Customer is an investor served by the organization.
// RMID and FinderID link the managers credited for the relationship.
type Customer struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	Type     CustomerType
	Email    string
	Phone    string
	IDNumber string // National ID or company registration number
	RMID     *uuid.UUID
	FinderID *uuid.UUID
	Status   CustomerStatus
	Notes    string
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, code, name string, customerType CustomerType) (*Customer, error) {
	if err := shared.ValidateCode("Customer", code); err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Customer", name); err != nil {
		return nil, err
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Customer type must be individual or corporate")
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Type:                customerType,
		Status:              CustomerStatusActive,
	}
	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name string, customerType CustomerType, idNumber, notes string) error {
	if err := shared.ValidateName("Customer", name); err != nil {
		return err
	}
	if !customerType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Customer type must be individual or corporate")
	}
	if len(idNumber) > 50 {
		return shared.NewDomainError("INVALID_ID_NUMBER", "ID number cannot exceed 50 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.Type = customerType
	c.IDNumber = strings.TrimSpace(idNumber)
	c.Notes = notes
	c.Touch()
	return nil
}

// SetContact sets the customer's email and phone
func (c *Customer) SetContact(email, phone string) error {
	if err := shared.ValidateEmail(email); err != nil {
		return err
	}
	if err := shared.ValidatePhone(phone); err != nil {
		return err
	}
	c.Email = email
	c.Phone = phone
	c.Touch()
	c.syncCreated()
	return nil
}

// AssignManagers links the customer to an RM and a finder. Either may be nil.
// Role checks happen in the application layer, which can load the managers.
func (c *Customer) AssignManagers(rmID, finderID *uuid.UUID) error {
	if rmID != nil && finderID != nil && *rmID == *finderID {
		return shared.NewDomainError("INVALID_MANAGER", "RM and finder must be different people")
	}
	c.RMID = rmID
	c.FinderID = finderID
	c.Touch()
	c.syncCreated()
	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	return c.changeStatus(CustomerStatusActive)
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	return c.changeStatus(CustomerStatusInactive)
}

// Suspend places the customer on hold
func (c *Customer) Suspend() error {
	return c.changeStatus(CustomerStatusSuspended)
}

func (c *Customer) changeStatus(to CustomerStatus) error {
	if c.Status == to {
		return shared.NewDomainError("INVALID_STATE", "Customer is already "+string(to))
	}
	from := c.Status
	c.Status = to
	c.Touch()
	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, from, to))
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Matches applies list filters in memory: search over code, name, email and phone,
// plus status, type, rm_id and finder_id.
func (c *Customer) Matches(f shared.Filter) bool {
	return shared.MatchesSearch(f.Search, c.Code, c.Name, c.Email, c.Phone) &&
		f.MatchesValue("status", c.Status) &&
		f.MatchesValue("type", c.Type) &&
		f.MatchesValue("rm_id", derefID(c.RMID)) &&
		f.MatchesValue("finder_id", derefID(c.FinderID))
}

func derefID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
