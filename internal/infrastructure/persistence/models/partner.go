package models

import (
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	TenantAggregateModel
	Code     string                 `gorm:"type:varchar(50);not null"`
	Name     string                 `gorm:"type:varchar(200);not null"`
	Type     partner.CustomerType   `gorm:"type:varchar(20);not null;default:'individual'"`
	Email    string                 `gorm:"type:varchar(200);index"`
	Phone    string                 `gorm:"type:varchar(50)"`
	IDNumber string                 `gorm:"column:id_number;type:varchar(50)"`
	RMID     *uuid.UUID             `gorm:"column:rm_id;type:uuid;index"`
	FinderID *uuid.UUID             `gorm:"type:uuid;index"`
	Status   partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes    string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Type:                m.Type,
		Email:               m.Email,
		Phone:               m.Phone,
		IDNumber:            m.IDNumber,
		RMID:                m.RMID,
		FinderID:            m.FinderID,
		Status:              m.Status,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.setTenantRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Type = c.Type
	m.Email = c.Email
	m.Phone = c.Phone
	m.IDNumber = c.IDNumber
	m.RMID = c.RMID
	m.FinderID = c.FinderID
	m.Status = c.Status
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// RelationshipManagerModel is the persistence model for relationship managers and finders.
type RelationshipManagerModel struct {
	TenantAggregateModel
	Code                string                `gorm:"type:varchar(50);not null"`
	Name                string                `gorm:"type:varchar(200);not null"`
	Email               string                `gorm:"type:varchar(200)"`
	Phone               string                `gorm:"type:varchar(50)"`
	Role                partner.ManagerRole   `gorm:"type:varchar(10);not null;index"`
	DefaultSharePercent decimal.Decimal       `gorm:"type:decimal(7,4);not null;default:0"`
	Status              partner.ManagerStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (RelationshipManagerModel) TableName() string {
	return "relationship_managers"
}

// ToDomain converts the persistence model to a domain RelationshipManager.
func (m *RelationshipManagerModel) ToDomain() *partner.RelationshipManager {
	return &partner.RelationshipManager{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Role:                m.Role,
		DefaultSharePercent: m.DefaultSharePercent,
		Status:              m.Status,
	}
}

// RelationshipManagerModelFromDomain creates a persistence model from a domain RelationshipManager.
func RelationshipManagerModelFromDomain(rm *partner.RelationshipManager) *RelationshipManagerModel {
	m := &RelationshipManagerModel{
		Code:                rm.Code,
		Name:                rm.Name,
		Email:               rm.Email,
		Phone:               rm.Phone,
		Role:                rm.Role,
		DefaultSharePercent: rm.DefaultSharePercent,
		Status:              rm.Status,
	}
	m.setTenantRoot(rm.TenantAggregateRoot)
	return m
}
