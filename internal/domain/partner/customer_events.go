package partner

import (
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeCustomer = "Customer"

	EventTypeCustomerCreated       = "customer.created"
	EventTypeCustomerStatusChanged = "customer.status_changed"
)

// CustomerCreatedEvent describes a customer as it was first saved, including
// the contact address and managers set before that save.
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID    `json:"customer_id"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Type       CustomerType `json:"type"`
	Email      string       `json:"email,omitempty"`
	RMID       *uuid.UUID   `json:"rm_id,omitempty"`
	FinderID   *uuid.UUID   `json:"finder_id,omitempty"`
}

func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	e := &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.TenantID),
		CustomerID:      c.ID,
	}
	e.copyFrom(c)
	return e
}

func (e *CustomerCreatedEvent) copyFrom(c *Customer) {
	e.Code = c.Code
	e.Name = c.Name
	e.Type = c.Type
	e.Email = c.Email
	e.RMID = c.RMID
	e.FinderID = c.FinderID
}

// syncCreated refreshes a created event that has not been published yet
func (c *Customer) syncCreated() {
	for _, e := range c.GetDomainEvents() {
		if created, ok := e.(*CustomerCreatedEvent); ok {
			created.copyFrom(c)
		}
	}
}

type CustomerStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID      `json:"customer_id"`
	OldStatus  CustomerStatus `json:"old_status"`
	NewStatus  CustomerStatus `json:"new_status"`
}

func NewCustomerStatusChangedEvent(c *Customer, from, to CustomerStatus) *CustomerStatusChangedEvent {
	return &CustomerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerStatusChanged, AggregateTypeCustomer, c.ID, c.TenantID),
		CustomerID:      c.ID,
		OldStatus:       from,
		NewStatus:       to,
	}
}
