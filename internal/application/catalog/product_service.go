package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	txRepo      finance.AssetTransactionRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, txRepo finance.AssetTransactionRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		txRepo:      txRepo,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.productRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	product, err := catalog.NewProduct(tenantID, code, req.Name, catalog.ProductCategory(req.Category), req.Currency)
	if err != nil {
		return nil, err
	}

	if req.Provider != "" || req.Description != "" {
		if err := product.Update(product.Name, product.Category, req.Provider, req.Description); err != nil {
			return nil, err
		}
	}

	if req.CommissionRate != nil || req.RiskLevel != nil {
		rate, risk := product.CommissionRate, product.RiskLevel
		if req.CommissionRate != nil {
			rate = *req.CommissionRate
		}
		if req.RiskLevel != nil {
			risk = *req.RiskLevel
		}
		if err := product.SetTerms(rate, risk); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		product.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Category != nil || req.Provider != nil || req.Description != nil {
		name, category, provider, description := product.Name, product.Category, product.Provider, product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Category != nil {
			category = catalog.ProductCategory(*req.Category)
		}
		if req.Provider != nil {
			provider = *req.Provider
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, category, provider, description); err != nil {
			return nil, err
		}
	}

	if req.CommissionRate != nil || req.RiskLevel != nil {
		rate, risk := product.CommissionRate, product.RiskLevel
		if req.CommissionRate != nil {
			rate = *req.CommissionRate
		}
		if req.RiskLevel != nil {
			risk = *req.RiskLevel
		}
		if err := product.SetTerms(rate, risk); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product that no asset transaction references
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}
	count, err := s.txRepo.CountByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("PRODUCT_IN_USE",
			fmt.Sprintf("Product has %d asset transaction(s); deactivate it instead", count))
	}
	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, tenantID, productID, (*catalog.Product).Activate)
}

// Deactivate withdraws a product from sale
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, tenantID, productID, (*catalog.Product).Deactivate)
}

func (s *ProductService) changeStatus(ctx context.Context, tenantID, productID uuid.UUID, transition func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := transition(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}
