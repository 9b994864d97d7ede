package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/fintermediary/backoffice/internal/application/catalog"
	appidentity "github.com/fintermediary/backoffice/internal/application/identity"
	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence"
	"github.com/fintermediary/backoffice/internal/interfaces/http/handler"
	"github.com/fintermediary/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberships authorizes a fixed set of (user, organization) pairs
type memberships map[[2]uuid.UUID]identity.MemberRole

func (m memberships) Authorize(_ context.Context, userID, orgID uuid.UUID) (*appidentity.Access, error) {
	role, ok := m[[2]uuid.UUID{userID, orgID}]
	if !ok {
		return nil, shared.NewDomainError("FORBIDDEN", "You are not a member of this organization")
	}
	return &appidentity.Access{OrganizationID: orgID, Role: role, Active: true}, nil
}

func newAPI(t *testing.T, authz middleware.OrganizationAuthorizer) *gin.Engine {
	t.Helper()
	middleware.SetupValidator()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	products := catalogapp.NewProductService(
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormAssetTransactionRepository(db.DB),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := NewRouter(engine)
	scope := middleware.OrganizationScopeConfig{Authorizer: authz}
	inactive := scope
	inactive.AllowInactive = true
	RegisterAPI(r, Handlers{
		Auth:                &handler.AuthHandler{},
		Organization:        &handler.OrganizationHandler{},
		Customer:            &handler.CustomerHandler{},
		RelationshipManager: &handler.RelationshipManagerHandler{},
		BankAccount:         &handler.BankAccountHandler{},
		Product:             handler.NewProductHandler(products),
		Expense:             &handler.ExpenseHandler{},
		ProfitSharing:       &handler.ProfitSharingHandler{},
		AssetTransaction:    &handler.AssetTransactionHandler{},
		ExchangeRate:        &handler.ExchangeRateHandler{},
		EmailTemplate:       &handler.EmailTemplateHandler{},
	}, Guards{
		Authenticate:         middleware.JWTAuth(middleware.JWTConfig{Disabled: true}),
		Organization:         middleware.OrganizationScope(scope),
		OrganizationInactive: middleware.OrganizationScope(inactive),
		Approver:             middleware.RequireApprover(),
	})
	r.Setup()
	return engine
}

func TestRegisterAPI_OrganizationScopedHandlers(t *testing.T) {
	userID, orgID, otherOrg := uuid.New(), uuid.New(), uuid.New()
	engine := newAPI(t, memberships{{userID, orgID}: identity.MemberRoleStaff})

	send := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.DevUserHeader, userID.String())
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("member reaches the handler", func(t *testing.T) {
		w := send(http.MethodPost, "/api/organizations/"+orgID.String()+"/products", map[string]any{
			"code":     "FND-01",
			"name":     "Global Equity Fund",
			"category": "fund",
			"currency": "USD",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Data catalogapp.ProductResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, orgID, resp.Data.TenantID)

		w = send(http.MethodGet, "/api/organizations/"+orgID.String()+"/products", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "FND-01")
	})

	t.Run("non member is forbidden", func(t *testing.T) {
		w := send(http.MethodGet, "/api/organizations/"+otherOrg.String()+"/products", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "FND-01")
	})

	t.Run("staff cannot use approver routes", func(t *testing.T) {
		w := send(http.MethodPost, "/api/organizations/"+orgID.String()+"/exchange-rate/refresh", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
