package finance

import (
	"context"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExpenseRepository is a mock implementation of finance.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockProfitSharingRepository is a mock implementation of finance.ProfitSharingRepository
type MockProfitSharingRepository struct {
	mock.Mock
}

func (m *MockProfitSharingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.ProfitSharingRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ProfitSharingRecord), args.Error(1)
}

func (m *MockProfitSharingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.ProfitSharingRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.ProfitSharingRecord), args.Error(1)
}

func (m *MockProfitSharingRepository) FindInRange(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.ProfitSharingRecord, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.ProfitSharingRecord), args.Error(1)
}

func (m *MockProfitSharingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfitSharingRepository) GenerateRecordNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockProfitSharingRepository) Save(ctx context.Context, record *finance.ProfitSharingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProfitSharingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockAssetTransactionRepository is a mock implementation of finance.AssetTransactionRepository
type MockAssetTransactionRepository struct {
	mock.Mock
}

func (m *MockAssetTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.AssetTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.AssetTransaction), args.Error(1)
}

func (m *MockAssetTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.AssetTransaction, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.AssetTransaction), args.Error(1)
}

func (m *MockAssetTransactionRepository) FindSettledByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.AssetTransaction, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]finance.AssetTransaction), args.Error(1)
}

func (m *MockAssetTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetTransactionRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetTransactionRepository) GenerateTransactionNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockAssetTransactionRepository) Save(ctx context.Context, tx *finance.AssetTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAssetTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockExchangeRateRepository is a mock implementation of finance.ExchangeRateRepository
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*finance.ExchangeRate, error) {
	args := m.Called(ctx, tenantID, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindByPairAndDate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (*finance.ExchangeRate, error) {
	args := m.Called(ctx, tenantID, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.ExchangeRate, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExchangeRateRepository) Save(ctx context.Context, rate *finance.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockCustomerRepository is a partial mock of partner.CustomerRepository
type MockCustomerRepository struct {
	partner.CustomerRepository
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

// MockProductRepository is a partial mock of catalog.ProductRepository
type MockProductRepository struct {
	catalog.ProductRepository
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

// MockManagerRepository is a partial mock of partner.RelationshipManagerRepository
type MockManagerRepository struct {
	partner.RelationshipManagerRepository
	mock.Mock
}

func (m *MockManagerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.RelationshipManager, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.RelationshipManager), args.Error(1)
}

func (m *MockManagerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.RelationshipManager, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]partner.RelationshipManager), args.Error(1)
}

// MockOrganizationRepository is a partial mock of organization.Repository
type MockOrganizationRepository struct {
	organization.Repository
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockReceiptStorage is a mock ReceiptStorage
type MockReceiptStorage struct {
	mock.Mock
}

func (m *MockReceiptStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockReceiptStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockReceiptStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockReceiptStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRateProvider is a mock RateProvider
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) LatestRates(ctx context.Context, base valueobject.Currency) (*RateQuote, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RateQuote), args.Error(1)
}

// recordingObserver collects rate lookup sources
type recordingObserver struct {
	sources []string
}

func (o *recordingObserver) ObserveRateLookup(source string) {
	o.sources = append(o.sources, source)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func createTestOrganization(t *testing.T, baseCurrency string) *organization.Organization {
	t.Helper()
	org, err := organization.NewOrganization("Acme Advisory", "acme-advisory", baseCurrency, "en-SG", "ops@acme.example")
	require.NoError(t, err)
	org.ClearDomainEvents()
	return org
}

func createTestManager(t *testing.T, tenantID uuid.UUID, code, name string, role partner.ManagerRole) *partner.RelationshipManager {
	t.Helper()
	m, err := partner.NewRelationshipManager(tenantID, code, name, role, decimal.Zero)
	require.NoError(t, err)
	return m
}

func createTestCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, "C001", "Tan Holdings", partner.CustomerTypeCorporate)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func createTestProduct(t *testing.T, tenantID uuid.UUID, currency string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, "GBF", "Global Bond Fund", catalog.CategoryFund, currency)
	require.NoError(t, err)
	return p
}
