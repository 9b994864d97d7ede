package catalog

import (
	"context"
	"testing"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockAssetTransactionRepository only implements CountByProduct
type MockAssetTransactionRepository struct {
	mock.Mock
	finance.AssetTransactionRepository
}

func (m *MockAssetTransactionRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

// Test helpers
func newTestTenantID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

func createTestProduct(t *testing.T, tenantID uuid.UUID) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "FUND-001", "Global Equity Fund", catalog.CategoryFund, "USD")
	require.NoError(t, err)
	return product
}

func TestProductService_Create_Success(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	rate := decimal.RequireFromString("1.5")
	risk := 4
	req := CreateProductRequest{
		Code:           "fund-002",
		Name:           "Asia Bond Fund",
		Category:       "fund",
		Provider:       "Fund House",
		Currency:       "sgd",
		CommissionRate: &rate,
		RiskLevel:      &risk,
	}

	mockProductRepo.On("ExistsByCode", ctx, tenantID, "FUND-002").Return(false, nil)
	mockProductRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	require.NoError(t, err)
	assert.Equal(t, "FUND-002", result.Code)
	assert.Equal(t, "SGD", result.Currency)
	assert.Equal(t, "Fund House", result.Provider)
	assert.True(t, rate.Equal(result.CommissionRate))
	assert.Equal(t, 4, result.RiskLevel)
	assert.Equal(t, "active", result.Status)
	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Create_DuplicateCode(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()

	mockProductRepo.On("ExistsByCode", ctx, tenantID, "FUND-001").Return(true, nil)

	result, err := service.Create(ctx, tenantID, CreateProductRequest{Code: "FUND-001", Name: "X", Category: "fund", Currency: "USD"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	mockProductRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Create_InvalidCurrency(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	mockProductRepo.On("ExistsByCode", ctx, tenantID, "P1").Return(false, nil)

	_, err := service.Create(ctx, tenantID, CreateProductRequest{Code: "P1", Name: "X", Category: "fund", Currency: "XYZ"})

	assert.ErrorIs(t, err, shared.ErrInvalidCurrency)
}

func TestProductService_Create_CommissionOutOfRange(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	rate := decimal.NewFromInt(120)
	mockProductRepo.On("ExistsByCode", ctx, tenantID, "P1").Return(false, nil)

	_, err := service.Create(ctx, tenantID, CreateProductRequest{Code: "P1", Name: "X", Category: "fund", Currency: "USD", CommissionRate: &rate})

	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_PERCENT", de.Code)
}

func TestProductService_List_WithFilters(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(t, tenantID)

	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["category"] == "fund" && f.Filters["currency"] == "USD" && f.Filters["risk_level"] == 3
	})
	mockProductRepo.On("FindAllForTenant", ctx, tenantID, matchFilter).Return([]catalog.Product{*product}, nil)
	mockProductRepo.On("CountForTenant", ctx, tenantID, matchFilter).Return(int64(1), nil)

	items, total, err := service.List(ctx, tenantID, ProductListFilter{Category: "fund", Currency: "usd", RiskLevel: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Update_Success(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(t, tenantID)

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockProductRepo.On("Save", ctx, product).Return(nil)

	name := "Global Equity Fund A"
	risk := 5
	result, err := service.Update(ctx, tenantID, product.ID, UpdateProductRequest{Name: &name, RiskLevel: &risk})

	require.NoError(t, err)
	assert.Equal(t, "Global Equity Fund A", result.Name)
	assert.Equal(t, 5, result.RiskLevel)
	assert.Equal(t, "fund", result.Category)
}

func TestProductService_Delete_Success(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockTxRepo := new(MockAssetTransactionRepository)
	service := NewProductService(mockProductRepo, mockTxRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(t, tenantID)

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockTxRepo.On("CountByProduct", ctx, tenantID, product.ID).Return(int64(0), nil)
	mockProductRepo.On("DeleteForTenant", ctx, tenantID, product.ID).Return(nil)

	err := service.Delete(ctx, tenantID, product.ID)

	assert.NoError(t, err)
	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Delete_InUse(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockTxRepo := new(MockAssetTransactionRepository)
	service := NewProductService(mockProductRepo, mockTxRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(t, tenantID)

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockTxRepo.On("CountByProduct", ctx, tenantID, product.ID).Return(int64(4), nil)

	err := service.Delete(ctx, tenantID, product.ID)

	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "PRODUCT_IN_USE", de.Code)
	mockProductRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	productID := uuid.New()

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, productID).Return(nil, shared.ErrNotFound)

	err := service.Delete(ctx, tenantID, productID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductService_Deactivate_ThenActivate(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, new(MockAssetTransactionRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createTestProduct(t, tenantID)

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockProductRepo.On("Save", ctx, product).Return(nil)

	result, err := service.Deactivate(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", result.Status)

	_, err = service.Deactivate(ctx, tenantID, product.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	result, err = service.Activate(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", result.Status)
}

func TestToProductResponse(t *testing.T) {
	product := createTestProduct(t, newTestTenantID())

	resp := ToProductResponse(product)

	assert.Equal(t, product.ID, resp.ID)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, 1, resp.RiskLevel)
	assert.True(t, resp.CommissionRate.IsZero())
}
