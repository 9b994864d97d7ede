package handler

import (
	"context"
	"net/http"
	"testing"

	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerCustomerRoutes(env *testEnv) {
	h := NewCustomerHandler(env.customers, env.accounts, env.txs)
	g := env.scoped.Group("/customers")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/suspend", h.Suspend)
	g.POST("/:id/activate", h.Activate)
	g.GET("/:id/bank-accounts", h.BankAccounts)
	g.GET("/:id/holdings", h.Holdings)
}

func TestCustomerHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	registerCustomerRoutes(env)

	t.Run("created", func(t *testing.T) {
		w := env.request(http.MethodPost, "/customers", gin.H{
			"code":  "C-001",
			"name":  "Tan Wei Ming",
			"type":  "individual",
			"email": "wm.tan@example.com",
		})

		customer := decodeData[partnerapp.CustomerResponse](t, w, http.StatusCreated)
		assert.Equal(t, "C-001", customer.Code)
		assert.Equal(t, env.org.ID, customer.TenantID)
		assert.Equal(t, "active", customer.Status)
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		w := env.request(http.MethodPost, "/customers", gin.H{"code": "C-001", "name": "Someone else", "type": "corporate"})

		requireError(t, w, http.StatusConflict, "ALREADY_EXISTS")
	})

	t.Run("validation details name the json field", func(t *testing.T) {
		w := env.request(http.MethodPost, "/customers", gin.H{"name": "No code", "type": "partnership"})

		info := requireError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		fields := make([]string, 0, len(info.Details))
		for _, d := range info.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"code", "type"}, fields)
		assert.NotEmpty(t, info.RequestID)
	})

	t.Run("unknown relationship manager", func(t *testing.T) {
		w := env.request(http.MethodPost, "/customers", gin.H{
			"code": "C-002", "name": "Lim", "type": "individual", "rm_id": uuid.New(),
		})

		requireError(t, w, http.StatusBadRequest, "INVALID_MANAGER")
	})
}

func TestCustomerHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	registerCustomerRoutes(env)
	first := env.createCustomer("C-100")
	env.createCustomer("C-101")
	env.createCustomer("C-102")

	w := env.request(http.MethodGet, "/customers?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	got := decodeData[partnerapp.CustomerResponse](t, env.request(http.MethodGet, "/customers/"+first.ID.String(), nil), http.StatusOK)
	assert.Equal(t, first.ID, got.ID)

	requireError(t, env.request(http.MethodGet, "/customers/"+uuid.NewString(), nil), http.StatusNotFound, "NOT_FOUND")
	requireError(t, env.request(http.MethodGet, "/customers/not-a-uuid", nil), http.StatusBadRequest, "BAD_REQUEST")
	requireError(t, env.request(http.MethodGet, "/customers?status=archived", nil), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCustomerHandler_StatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	registerCustomerRoutes(env)
	customer := env.createCustomer("C-200")
	path := "/customers/" + customer.ID.String()

	suspended := decodeData[partnerapp.CustomerResponse](t, env.request(http.MethodPost, path+"/suspend", nil), http.StatusOK)
	assert.Equal(t, "suspended", suspended.Status)

	active := decodeData[partnerapp.CustomerResponse](t, env.request(http.MethodPost, path+"/activate", nil), http.StatusOK)
	assert.Equal(t, "active", active.Status)

	w := env.request(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	requireError(t, env.request(http.MethodGet, path, nil), http.StatusNotFound, "NOT_FOUND")
}

func TestCustomerHandler_SubResources(t *testing.T) {
	env := newTestEnv(t)
	registerCustomerRoutes(env)
	customer := env.createCustomer("C-300")

	_, err := env.accounts.Create(context.Background(), env.org.ID, bankingapp.CreateBankAccountRequest{
		CustomerID:    customer.ID,
		BankName:      "DBS Bank",
		AccountNumber: "0123456789",
		AccountName:   customer.Name,
		Currency:      "SGD",
	})
	require.NoError(t, err)

	accounts := decodeData[[]bankingapp.BankAccountResponse](t,
		env.request(http.MethodGet, "/customers/"+customer.ID.String()+"/bank-accounts", nil), http.StatusOK)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsPrimary)

	holdings := decodeData[[]map[string]any](t,
		env.request(http.MethodGet, "/customers/"+customer.ID.String()+"/holdings", nil), http.StatusOK)
	assert.Empty(t, holdings)
}
