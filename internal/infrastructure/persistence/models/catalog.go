package models

import (
	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	Code           string                  `gorm:"type:varchar(50);not null"`
	Name           string                  `gorm:"type:varchar(200);not null"`
	Category       catalog.ProductCategory `gorm:"type:varchar(20);not null;index"`
	Provider       string                  `gorm:"type:varchar(200)"`
	Currency       string                  `gorm:"type:varchar(3);not null"`
	CommissionRate decimal.Decimal         `gorm:"type:decimal(7,4);not null;default:0"`
	RiskLevel      int                     `gorm:"not null;default:1"`
	Description    string                  `gorm:"type:text"`
	Status         catalog.ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.tenantRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Category:            m.Category,
		Provider:            m.Provider,
		Currency:            valueobject.Currency(m.Currency),
		CommissionRate:      m.CommissionRate,
		RiskLevel:           m.RiskLevel,
		Description:         m.Description,
		Status:              m.Status,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:           p.Code,
		Name:           p.Name,
		Category:       p.Category,
		Provider:       p.Provider,
		Currency:       p.Currency.String(),
		CommissionRate: p.CommissionRate,
		RiskLevel:      p.RiskLevel,
		Description:    p.Description,
		Status:         p.Status,
	}
	m.setTenantRoot(p.TenantAggregateRoot)
	return m
}
