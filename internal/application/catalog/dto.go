package catalog

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Category       string           `json:"category" binding:"required,oneof=fund insurance bond structured deposit other"`
	Provider       string           `json:"provider" binding:"omitempty,max=200"`
	Currency       string           `json:"currency" binding:"required,currency"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	RiskLevel      *int             `json:"risk_level" binding:"omitempty,min=1,max=5"`
	Description    string           `json:"description" binding:"omitempty,max=2000"`
	CreatedBy      *uuid.UUID       `json:"-"`
}

// UpdateProductRequest represents a request to update a product.
// The product currency is fixed once transactions exist and cannot be changed here.
type UpdateProductRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Category       *string          `json:"category" binding:"omitempty,oneof=fund insurance bond structured deposit other"`
	Provider       *string          `json:"provider" binding:"omitempty,max=200"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	RiskLevel      *int             `json:"risk_level" binding:"omitempty,min=1,max=5"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Provider       string          `json:"provider,omitempty"`
	Currency       string          `json:"currency"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	RiskLevel      int             `json:"risk_level"`
	Description    string          `json:"description,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search    string `form:"search"`
	Category  string `form:"category" binding:"omitempty,oneof=fund insurance bond structured deposit other"`
	Status    string `form:"status" binding:"omitempty,oneof=active inactive"`
	Currency  string `form:"currency" binding:"omitempty,currency"`
	RiskLevel int    `form:"risk_level" binding:"omitempty,min=1,max=5"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f ProductListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize().
		WithFilter("category", f.Category).
		WithFilter("status", f.Status).
		WithFilter("currency", strings.ToUpper(f.Currency))
	if f.RiskLevel > 0 {
		filter = filter.WithFilter("risk_level", f.RiskLevel)
	}
	return filter
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		Category:       string(p.Category),
		Provider:       p.Provider,
		Currency:       p.Currency.String(),
		CommissionRate: p.CommissionRate,
		RiskLevel:      p.RiskLevel,
		Description:    p.Description,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
