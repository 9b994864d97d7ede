package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about one aggregate of one organization. Event types
// are "<aggregate>.<past-tense verb>", e.g. "expense.approved".
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent is embedded by concrete events. Its JSON form is the
// envelope handlers and logs see.
type BaseDomainEvent struct {
	ID             uuid.UUID `json:"event_id"`
	Type           string    `json:"event_type"`
	At             time.Time `json:"occurred_at"`
	Aggregate      string    `json:"aggregate_type"`
	AggregateRefID uuid.UUID `json:"aggregate_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggregateRefID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.OrganizationID }

// NewBaseDomainEvent stamps a new event for the aggregate aggType/aggID of organization tenantID
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:             uuid.New(),
		Type:           eventType,
		At:             Now(),
		Aggregate:      aggType,
		AggregateRefID: aggID,
		OrganizationID: tenantID,
	}
}
