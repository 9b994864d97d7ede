package models

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OrganizationModel is the persistence model for the Organization aggregate.
type OrganizationModel struct {
	AggregateModel
	Name         string              `gorm:"type:varchar(200);not null"`
	Slug         string              `gorm:"type:varchar(63);not null;uniqueIndex"`
	BaseCurrency string              `gorm:"type:varchar(3);not null"`
	Locale       string              `gorm:"type:varchar(35);not null;default:'en-US'"`
	ContactEmail string              `gorm:"type:varchar(200)"`
	Status       organization.Status `gorm:"type:varchar(20);not null;default:'active';index"`
	OwnerID      *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization.
func (m *OrganizationModel) ToDomain() *organization.Organization {
	return &organization.Organization{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		Slug:              m.Slug,
		BaseCurrency:      valueobject.Currency(m.BaseCurrency),
		Locale:            m.Locale,
		ContactEmail:      m.ContactEmail,
		Status:            m.Status,
		OwnerID:           m.OwnerID,
	}
}

// OrganizationModelFromDomain creates a persistence model from a domain Organization.
func OrganizationModelFromDomain(o *organization.Organization) *OrganizationModel {
	m := &OrganizationModel{
		Name:         o.Name,
		Slug:         o.Slug,
		BaseCurrency: o.BaseCurrency.String(),
		Locale:       o.Locale,
		ContactEmail: o.ContactEmail,
		Status:       o.Status,
		OwnerID:      o.OwnerID,
	}
	m.setRoot(o.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name           string              `gorm:"type:varchar(200);not null"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.root(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
	}
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:          u.Email,
		Name:           u.Name,
		PasswordHash:   u.PasswordHash,
		Status:         u.Status,
		LastLoginAt:    u.LastLoginAt,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	m.setRoot(u.BaseAggregateRoot)
	return m
}

// MembershipModel is the persistence model for a user's membership in an organization.
type MembershipModel struct {
	BaseModel
	UserID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_org,priority:1"`
	OrganizationID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_org,priority:2;index"`
	Role           identity.MemberRole `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "memberships"
}

// ToDomain converts the persistence model to a domain Membership.
func (m *MembershipModel) ToDomain() *identity.Membership {
	return &identity.Membership{
		BaseEntity:     m.entity(),
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           m.Role,
	}
}

// MembershipModelFromDomain creates a persistence model from a domain Membership.
func MembershipModelFromDomain(ms *identity.Membership) *MembershipModel {
	m := &MembershipModel{
		UserID:         ms.UserID,
		OrganizationID: ms.OrganizationID,
		Role:           ms.Role,
	}
	m.setEntity(ms.BaseEntity)
	return m
}
