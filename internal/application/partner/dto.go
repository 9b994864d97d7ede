package partner

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	Type      string     `json:"type" binding:"required,oneof=individual corporate"`
	Email     string     `json:"email" binding:"omitempty,email,max=200"`
	Phone     string     `json:"phone" binding:"omitempty,max=50"`
	IDNumber  string     `json:"id_number" binding:"omitempty,max=50"`
	RMID      *uuid.UUID `json:"rm_id"`
	FinderID  *uuid.UUID `json:"finder_id"`
	Notes     string     `json:"notes" binding:"omitempty,max=2000"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateCustomerRequest represents a request to update a customer.
// ClearRM and ClearFinder unlink a manager; a nil RMID alone keeps the current one.
type UpdateCustomerRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Type        *string    `json:"type" binding:"omitempty,oneof=individual corporate"`
	Email       *string    `json:"email" binding:"omitempty,max=200"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	IDNumber    *string    `json:"id_number" binding:"omitempty,max=50"`
	RMID        *uuid.UUID `json:"rm_id"`
	FinderID    *uuid.UUID `json:"finder_id"`
	ClearRM     bool       `json:"clear_rm"`
	ClearFinder bool       `json:"clear_finder"`
	Notes       *string    `json:"notes" binding:"omitempty,max=2000"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	IDNumber  string     `json:"id_number,omitempty"`
	RMID      *uuid.UUID `json:"rm_id,omitempty"`
	FinderID  *uuid.UUID `json:"finder_id,omitempty"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CustomerListResponse represents a customer in list views
type CustomerListResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	RMID      *uuid.UUID `json:"rm_id,omitempty"`
	FinderID  *uuid.UUID `json:"finder_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Type     string `form:"type" binding:"omitempty,oneof=individual corporate"`
	RMID     string `form:"rm_id" binding:"omitempty,uuid"`
	FinderID string `form:"finder_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f CustomerListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	if f.RMID != "" {
		filter.Filters["rm_id"] = f.RMID
	}
	if f.FinderID != "" {
		filter.Filters["finder_id"] = f.FinderID
	}
	return filter.Normalize()
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		Email:     c.Email,
		Phone:     c.Phone,
		IDNumber:  c.IDNumber,
		RMID:      c.RMID,
		FinderID:  c.FinderID,
		Status:    string(c.Status),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToCustomerListResponse converts a domain Customer to CustomerListResponse
func ToCustomerListResponse(c *partner.Customer) CustomerListResponse {
	return CustomerListResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		Email:     c.Email,
		Phone:     c.Phone,
		RMID:      c.RMID,
		FinderID:  c.FinderID,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

// ToCustomerListResponses converts a slice of domain Customers to list responses
func ToCustomerListResponses(customers []partner.Customer) []CustomerListResponse {
	responses := make([]CustomerListResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerListResponse(&customers[i])
	}
	return responses
}

// =============================================================================
// Relationship Manager DTOs
// =============================================================================

// CreateRelationshipManagerRequest represents a request to create an RM or finder
type CreateRelationshipManagerRequest struct {
	Code                string           `json:"code" binding:"required,min=1,max=50"`
	Name                string           `json:"name" binding:"required,min=1,max=200"`
	Role                string           `json:"role" binding:"required,oneof=RM FINDER"`
	Email               string           `json:"email" binding:"omitempty,email,max=200"`
	Phone               string           `json:"phone" binding:"omitempty,max=50"`
	DefaultSharePercent *decimal.Decimal `json:"default_share_percent"`
	CreatedBy           *uuid.UUID       `json:"-"`
}

// UpdateRelationshipManagerRequest represents a request to update an RM or finder
type UpdateRelationshipManagerRequest struct {
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Role                *string          `json:"role" binding:"omitempty,oneof=RM FINDER"`
	Email               *string          `json:"email" binding:"omitempty,max=200"`
	Phone               *string          `json:"phone" binding:"omitempty,max=50"`
	DefaultSharePercent *decimal.Decimal `json:"default_share_percent"`
}

// RelationshipManagerResponse represents an RM or finder in API responses
type RelationshipManagerResponse struct {
	ID                  uuid.UUID       `json:"id"`
	TenantID            uuid.UUID       `json:"tenant_id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Role                string          `json:"role"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	DefaultSharePercent decimal.Decimal `json:"default_share_percent"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Version             int             `json:"version"`
}

// RelationshipManagerListFilter represents filter options for the manager list
type RelationshipManagerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Role     string `form:"role" binding:"omitempty,oneof=RM FINDER"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f RelationshipManagerListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Role != "" {
		filter.Filters["role"] = f.Role
	}
	return filter.Normalize()
}

// ToRelationshipManagerResponse converts a domain RelationshipManager to its response
func ToRelationshipManagerResponse(m *partner.RelationshipManager) RelationshipManagerResponse {
	return RelationshipManagerResponse{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Code:                m.Code,
		Name:                m.Name,
		Role:                string(m.Role),
		Email:               m.Email,
		Phone:               m.Phone,
		DefaultSharePercent: m.DefaultSharePercent,
		Status:              string(m.Status),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Version:             m.Version,
	}
}

// ToRelationshipManagerResponses converts a slice of managers to responses
func ToRelationshipManagerResponses(managers []partner.RelationshipManager) []RelationshipManagerResponse {
	responses := make([]RelationshipManagerResponse, len(managers))
	for i := range managers {
		responses[i] = ToRelationshipManagerResponse(&managers[i])
	}
	return responses
}
