package shared

import "github.com/google/uuid"

// AggregateRoot is a consistency boundary that records domain events until
// the service that saved it publishes them.
type AggregateRoot interface {
	Entity
	PersistedVersion() int
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot carries the optimistic-locking version and pending events.
// Version counts mutations in memory; persistedVersion is the version the
// stored row holds, and is what an update is guarded by.
type BaseAggregateRoot struct {
	BaseEntity
	Version          int
	persistedVersion int
	pending          []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Touch records a mutation. An aggregate that was never stored stays at
// version 1, so its first row always starts there.
func (a *BaseAggregateRoot) Touch() {
	a.UpdatedAt = Now()
	if a.persistedVersion > 0 {
		a.Version++
	}
}

// PersistedVersion is zero until the aggregate has been stored or loaded
func (a *BaseAggregateRoot) PersistedVersion() int { return a.persistedVersion }

func (a *BaseAggregateRoot) MarkPersisted() { a.persistedVersion = a.Version }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// TenantAggregateRoot is an aggregate owned by one organization
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: tenantID}
}

func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	t.CreatedBy = &userID
}

func (t *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool {
	return t.TenantID == tenantID
}
