package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	catalogapp "github.com/fintermediary/backoffice/internal/application/catalog"
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence"
	"github.com/fintermediary/backoffice/internal/interfaces/http/dto"
	"github.com/fintermediary/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv serves the organization-scoped handlers over an in-memory sqlite
// database, with authentication in development mode
type testEnv struct {
	t      *testing.T
	engine *gin.Engine
	scoped *gin.RouterGroup
	db     *persistence.Database
	org    *organization.Organization
	userID uuid.UUID

	customers *partnerapp.CustomerService
	managers  *partnerapp.RelationshipManagerService
	accounts  *bankingapp.BankAccountService
	products  *catalogapp.ProductService
	expenses  *financeapp.ExpenseService
	profits   *financeapp.ProfitSharingService
	txs       *financeapp.AssetTransactionService
	rates     *financeapp.ExchangeRateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	managerRepo := persistence.NewGormRelationshipManagerRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	profitRepo := persistence.NewGormProfitSharingRepository(db.DB)
	txRepo := persistence.NewGormAssetTransactionRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)

	org, err := organization.NewOrganization("Harbour Wealth", "harbour-wealth", "SGD", "en-SG", "ops@harbour.example")
	require.NoError(t, err)
	require.NoError(t, orgRepo.Save(context.Background(), org))

	rates := financeapp.NewExchangeRateService(rateRepo, orgRepo)
	env := &testEnv{
		t:         t,
		db:        db,
		org:       org,
		userID:    uuid.New(),
		customers: partnerapp.NewCustomerService(customerRepo, managerRepo, txRepo, profitRepo),
		managers:  partnerapp.NewRelationshipManagerService(managerRepo, customerRepo),
		accounts:  bankingapp.NewBankAccountService(accountRepo, customerRepo),
		products:  catalogapp.NewProductService(productRepo, txRepo),
		expenses:  financeapp.NewExpenseService(expenseRepo, managerRepo),
		profits:   financeapp.NewProfitSharingService(profitRepo, customerRepo, productRepo, managerRepo, orgRepo, rates),
		txs:       financeapp.NewAssetTransactionService(txRepo, customerRepo, productRepo),
		rates:     rates,
	}

	env.engine = gin.New()
	env.engine.Use(middleware.RequestID())
	api := env.engine.Group("/api", middleware.JWTAuth(middleware.JWTConfig{Disabled: true}))
	env.scoped = api.Group("/organizations/:orgId",
		middleware.OrganizationScope(middleware.OrganizationScopeConfig{Disabled: true}))
	return env
}

// request sends a JSON request to an organization-scoped path as the test user
func (e *testEnv) request(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/organizations/"+e.org.ID.String()+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.DevUserHeader, e.userID.String())
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors dto.Response with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData asserts the status code and decodes the success payload. Empty
// payloads are omitted from the envelope and decode to the zero value.
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.True(t, env.Success)
	var out T
	if len(env.Data) == 0 {
		return out
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// requireError asserts the status code and error code of a failed response
func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env.Error
}

// createCustomer creates a customer through the service
func (e *testEnv) createCustomer(code string) *partnerapp.CustomerResponse {
	e.t.Helper()
	c, err := e.customers.Create(context.Background(), e.org.ID, partnerapp.CreateCustomerRequest{
		Code: code,
		Name: "Customer " + code,
		Type: "individual",
	})
	require.NoError(e.t, err)
	return c
}
