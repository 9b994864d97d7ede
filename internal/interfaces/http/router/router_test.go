package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_BasePath(t *testing.T) {
	assert.Equal(t, "/api", NewRouter(gin.New()).BasePath())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).BasePath())
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})

	g := NewDomainGroup("test", "/test")
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestRouter_Routes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.Register(NewDomainGroup("b", "/b").POST("", ok).GET("", ok)).
		Register(NewDomainGroup("a", "/a").GET("", ok)).
		Setup()

	assert.Equal(t, []string{"GET /api/a", "GET /api/b", "POST /api/b"}, r.Routes())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("customer", "/customers")
		assert.Equal(t, "customer", g.Name())
		assert.Equal(t, "/customers", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("test", "/test")
		g.GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			PATCH("/items/:id", ok).
			DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api"))

		for _, tt := range []struct{ method, path string }{
			{http.MethodGet, "/api/test/items"},
			{http.MethodPost, "/api/test/items"},
			{http.MethodPut, "/api/test/items/1"},
			{http.MethodPatch, "/api/test/items/1"},
			{http.MethodDelete, "/api/test/items/1"},
		} {
			assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("middleware reaches subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("tenant", "/organizations/:orgId").Use(func(c *gin.Context) {
			c.Header("X-Org", c.Param("orgId"))
			c.Next()
		})
		g.Group("customer", "/customers").GET("", func(c *gin.Context) { c.String(http.StatusOK, "customers") })
		g.RegisterRoutes(engine.Group("/api"))

		w := serve(engine, http.MethodGet, "/api/organizations/acme/customers")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", w.Header().Get("X-Org"))
	})
}

// abortWith is a guard that stops the chain with a recognizable status
func abortWith(status int) gin.HandlerFunc {
	return func(c *gin.Context) { c.AbortWithStatus(status) }
}

func apiEngine(g Guards) *gin.Engine {
	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, Handlers{}, g)
	r.Setup()
	return engine
}

func TestRegisterAPI_Routes(t *testing.T) {
	pass := func(c *gin.Context) { c.Next() }
	engine := apiEngine(Guards{Authenticate: pass, Organization: pass, OrganizationInactive: pass, Approver: pass})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/organizations",
		"POST /api/organizations",
		"GET /api/organizations/:orgId",
		"PUT /api/organizations/:orgId",
		"POST /api/organizations/:orgId/activate",
		"POST /api/organizations/:orgId/suspend",
		"GET /api/organizations/:orgId/customers/:id/holdings",
		"POST /api/organizations/:orgId/bank-accounts/:id/primary",
		"POST /api/organizations/:orgId/products/:id/deactivate",
		"GET /api/organizations/:orgId/expenses/summary",
		"GET /api/organizations/:orgId/expenses/:id/receipt-url",
		"POST /api/organizations/:orgId/relationship-managers",
		"POST /api/organizations/:orgId/profit-sharing/calculate",
		"POST /api/organizations/:orgId/asset-transactions/:id/settle",
		"GET /api/organizations/:orgId/exchange-rate",
		"GET /api/organizations/:orgId/exchange-rate/convert",
		"GET /api/organizations/:orgId/email-templates/:name/preview",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRegisterAPI_Guards(t *testing.T) {
	pass := func(c *gin.Context) { c.Next() }

	t.Run("scoped routes use the strict organization guard", func(t *testing.T) {
		engine := apiEngine(Guards{
			Authenticate:         pass,
			Organization:         abortWith(http.StatusForbidden),
			OrganizationInactive: abortWith(http.StatusLocked),
			Approver:             pass,
		})

		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/organizations/acme/customers").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/organizations/acme/suspend").Code)
		assert.Equal(t, http.StatusLocked, serve(engine, http.MethodGet, "/api/organizations/acme").Code)
		assert.Equal(t, http.StatusLocked, serve(engine, http.MethodPost, "/api/organizations/acme/activate").Code)
	})

	t.Run("approval routes require an approver", func(t *testing.T) {
		engine := apiEngine(Guards{
			Authenticate:         pass,
			Organization:         pass,
			OrganizationInactive: pass,
			Approver:             abortWith(http.StatusForbidden),
		})

		for _, path := range []string{
			"/api/organizations/acme/expenses/1/approve",
			"/api/organizations/acme/expenses/1/reject",
			"/api/organizations/acme/expenses/1/pay",
			"/api/organizations/acme/profit-sharing/1/confirm",
			"/api/organizations/acme/profit-sharing/1/pay",
			"/api/organizations/acme/exchange-rate/refresh",
			"/api/organizations/acme/members",
		} {
			assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, path).Code, path)
		}
	})

	t.Run("public auth routes skip authentication", func(t *testing.T) {
		engine := apiEngine(Guards{
			Authenticate:         abortWith(http.StatusUnauthorized),
			Organization:         pass,
			OrganizationInactive: pass,
			Approver:             pass,
			Login:                abortWith(http.StatusTooManyRequests),
		})

		require.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/auth/login").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/auth/me").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/organizations").Code)
	})
}
