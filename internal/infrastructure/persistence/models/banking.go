package models

import (
	"github.com/fintermediary/backoffice/internal/domain/banking"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BankAccountModel is the persistence model for customer bank accounts.
type BankAccountModel struct {
	TenantAggregateModel
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	BankName      string                `gorm:"type:varchar(200);not null"`
	AccountName   string                `gorm:"type:varchar(200);not null"`
	AccountNumber string                `gorm:"type:varchar(34);not null"`
	Currency      string                `gorm:"type:varchar(3);not null"`
	Branch        string                `gorm:"type:varchar(200)"`
	SwiftCode     string                `gorm:"type:varchar(11)"`
	IsPrimary     bool                  `gorm:"not null;default:false"`
	Status        banking.AccountStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount.
func (m *BankAccountModel) ToDomain() *banking.BankAccount {
	return &banking.BankAccount{
		TenantAggregateRoot: m.tenantRoot(),
		CustomerID:          m.CustomerID,
		BankName:            m.BankName,
		AccountName:         m.AccountName,
		AccountNumber:       m.AccountNumber,
		Currency:            valueobject.Currency(m.Currency),
		Branch:              m.Branch,
		SwiftCode:           m.SwiftCode,
		IsPrimary:           m.IsPrimary,
		Status:              m.Status,
	}
}

// BankAccountModelFromDomain creates a persistence model from a domain BankAccount.
func BankAccountModelFromDomain(a *banking.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		CustomerID:    a.CustomerID,
		BankName:      a.BankName,
		AccountName:   a.AccountName,
		AccountNumber: a.AccountNumber,
		Currency:      a.Currency.String(),
		Branch:        a.Branch,
		SwiftCode:     a.SwiftCode,
		IsPrimary:     a.IsPrimary,
		Status:        a.Status,
	}
	m.setTenantRoot(a.TenantAggregateRoot)
	return m
}
