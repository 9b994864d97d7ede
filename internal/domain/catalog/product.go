package catalog

import (
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCategory classifies investment products
type ProductCategory string

const (
	CategoryFund       ProductCategory = "fund"
	CategoryInsurance  ProductCategory = "insurance"
	CategoryBond       ProductCategory = "bond"
	CategoryStructured ProductCategory = "structured"
	CategoryDeposit    ProductCategory = "deposit"
	CategoryOther      ProductCategory = "other"
)

// Categories lists every valid product category
var Categories = []ProductCategory{
	CategoryFund, CategoryInsurance, CategoryBond, CategoryStructured, CategoryDeposit, CategoryOther,
}

// IsValid reports whether c is a known category
func (c ProductCategory) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

const (
	MinRiskLevel = 1
	MaxRiskLevel = 5
)

// Product is an investment product distributed by the organization
type Product struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Category       ProductCategory
	Provider       string // Issuer or fund house
	Currency       valueobject.Currency
	CommissionRate decimal.Decimal // Percent of subscription amount
	RiskLevel      int
	Description    string
	Status         ProductStatus
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, code, name string, category ProductCategory, currency string) (*Product, error) {
	if err := shared.ValidateCode("Product", code); err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Product", name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+string(category))
	}
	cur, err := shared.ValidateCurrency(currency)
	if err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Category:            category,
		Currency:            cur,
		CommissionRate:      decimal.Zero,
		RiskLevel:           MinRiskLevel,
		Status:              ProductStatusActive,
	}
	return product, nil
}

// Update changes the product's descriptive fields
func (p *Product) Update(name string, category ProductCategory, provider, description string) error {
	if err := shared.ValidateName("Product", name); err != nil {
		return err
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+string(category))
	}
	if len(provider) > 200 {
		return shared.NewDomainError("INVALID_PROVIDER", "Provider cannot exceed 200 characters")
	}
	p.Name = strings.TrimSpace(name)
	p.Category = category
	p.Provider = strings.TrimSpace(provider)
	p.Description = description
	p.Touch()
	return nil
}

// SetTerms sets the commission rate and risk level
func (p *Product) SetTerms(commissionRate decimal.Decimal, riskLevel int) error {
	if err := shared.ValidatePercent("Commission rate", commissionRate); err != nil {
		return err
	}
	if riskLevel < MinRiskLevel || riskLevel > MaxRiskLevel {
		return shared.NewDomainError("INVALID_RISK_LEVEL", "Risk level must be between 1 and 5")
	}
	p.CommissionRate = commissionRate
	p.RiskLevel = riskLevel
	p.Touch()
	return nil
}

// Commission returns the commission earned on a subscription amount
func (p *Product) Commission(amount valueobject.Money) valueobject.Money {
	return amount.Percentage(p.CommissionRate)
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.Touch()
	return nil
}

// Deactivate withdraws the product from sale
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.Touch()
	return nil
}

// IsActive returns true if the product can be transacted
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Matches applies list filters in memory: search, category, status, currency and risk_level
func (p *Product) Matches(f shared.Filter) bool {
	return shared.MatchesSearch(f.Search, p.Code, p.Name, p.Provider) &&
		f.MatchesValue("category", p.Category) &&
		f.MatchesValue("status", p.Status) &&
		f.MatchesValue("currency", p.Currency) &&
		f.MatchesValue("risk_level", p.RiskLevel)
}
