package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now returns the current time as stored: UTC, truncated to the microsecond
// resolution of postgres timestamps, so a saved and reloaded record compares equal
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Entity is anything with an identity and audit timestamps
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps shared by every record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// IsNew reports whether the entity has no identity yet
func (e *BaseEntity) IsNew() bool {
	return e.ID == uuid.Nil
}

// NewBaseEntity creates an entity with a fresh ID and both timestamps set to Now
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
