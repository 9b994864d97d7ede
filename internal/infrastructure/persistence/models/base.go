package models

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the columns every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the optimistic-locking version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// root rebuilds the aggregate root. A loaded row is by definition persisted
// at its version.
func (m *AggregateModel) root() shared.BaseAggregateRoot {
	a := shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
	a.MarkPersisted()
	return a
}

func (m *AggregateModel) setRoot(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// TenantAggregateModel stores the owning organization in organization_id
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

func (m *TenantAggregateModel) tenantRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: m.root(),
		TenantID:          m.TenantID,
		CreatedBy:         m.CreatedBy,
	}
}

func (m *TenantAggregateModel) setTenantRoot(t shared.TenantAggregateRoot) {
	m.setRoot(t.BaseAggregateRoot)
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
}
