package router

import (
	"github.com/fintermediary/backoffice/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers holds every API handler the router mounts
type Handlers struct {
	Auth                *handler.AuthHandler
	Organization        *handler.OrganizationHandler
	Customer            *handler.CustomerHandler
	RelationshipManager *handler.RelationshipManagerHandler
	BankAccount         *handler.BankAccountHandler
	Product             *handler.ProductHandler
	Expense             *handler.ExpenseHandler
	ProfitSharing       *handler.ProfitSharingHandler
	AssetTransaction    *handler.AssetTransactionHandler
	ExchangeRate        *handler.ExchangeRateHandler
	EmailTemplate       *handler.EmailTemplateHandler
}

// Guards are the access-control middleware applied per route group
type Guards struct {
	// Authenticate validates the bearer token
	Authenticate gin.HandlerFunc
	// Organization resolves :orgId and rejects non-members and suspended organizations
	Organization gin.HandlerFunc
	// OrganizationInactive is Organization but lets members reach a suspended organization
	OrganizationInactive gin.HandlerFunc
	// Approver restricts a route to owners and admins
	Approver gin.HandlerFunc
	// Login throttles the unauthenticated auth endpoints. Optional.
	Login gin.HandlerFunc
}

// RegisterAPI mounts the auth, organization and organization-scoped routes on r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	login := g.Login
	if login == nil {
		login = func(c *gin.Context) { c.Next() }
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", login, h.Auth.Register)
	authRoutes.POST("/login", login, h.Auth.Login)
	authRoutes.POST("/refresh", login, h.Auth.Refresh)
	authRoutes.POST("/logout", g.Authenticate, h.Auth.Logout)
	authRoutes.GET("/me", g.Authenticate, h.Auth.Me)
	authRoutes.PUT("/password", g.Authenticate, h.Auth.ChangePassword)

	// Listing, creating and reactivating organizations happen before (or
	// regardless of) the organization being usable
	organizationRoutes := NewDomainGroup("organization", "/organizations").Use(g.Authenticate)
	organizationRoutes.GET("", h.Organization.List)
	organizationRoutes.POST("", h.Organization.Create)
	organizationRoutes.GET("/:orgId", g.OrganizationInactive, h.Organization.Get)
	organizationRoutes.POST("/:orgId/activate", g.OrganizationInactive, g.Approver, h.Organization.Activate)

	scoped := NewDomainGroup("tenant", "/organizations/:orgId").Use(g.Authenticate, g.Organization)
	scoped.PUT("", g.Approver, h.Organization.Update)
	scoped.POST("/suspend", g.Approver, h.Organization.Suspend)
	scoped.POST("/members", g.Approver, h.Organization.AddMember)

	customers := scoped.Group("customer", "/customers")
	customers.GET("", h.Customer.List)
	customers.POST("", h.Customer.Create)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)
	customers.POST("/:id/activate", h.Customer.Activate)
	customers.POST("/:id/deactivate", h.Customer.Deactivate)
	customers.POST("/:id/suspend", h.Customer.Suspend)
	customers.GET("/:id/bank-accounts", h.Customer.BankAccounts)
	customers.GET("/:id/holdings", h.Customer.Holdings)

	managers := scoped.Group("relationship-manager", "/relationship-managers")
	managers.GET("", h.RelationshipManager.List)
	managers.POST("", h.RelationshipManager.Create)
	managers.GET("/:id", h.RelationshipManager.GetByID)
	managers.PUT("/:id", h.RelationshipManager.Update)
	managers.DELETE("/:id", h.RelationshipManager.Delete)
	managers.POST("/:id/activate", h.RelationshipManager.Activate)
	managers.POST("/:id/deactivate", h.RelationshipManager.Deactivate)

	accounts := scoped.Group("bank-account", "/bank-accounts")
	accounts.GET("", h.BankAccount.List)
	accounts.POST("", h.BankAccount.Create)
	accounts.GET("/:id", h.BankAccount.GetByID)
	accounts.PUT("/:id", h.BankAccount.Update)
	accounts.DELETE("/:id", h.BankAccount.Delete)
	accounts.POST("/:id/primary", h.BankAccount.SetPrimary)
	accounts.POST("/:id/close", h.BankAccount.Close)

	products := scoped.Group("product", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.POST("/:id/activate", h.Product.Activate)
	products.POST("/:id/deactivate", h.Product.Deactivate)

	expenses := scoped.Group("expense", "/expenses")
	expenses.GET("", h.Expense.List)
	expenses.POST("", h.Expense.Create)
	expenses.GET("/summary", h.Expense.Summary)
	expenses.GET("/:id", h.Expense.GetByID)
	expenses.PUT("/:id", h.Expense.Update)
	expenses.DELETE("/:id", h.Expense.Delete)
	expenses.POST("/:id/submit", h.Expense.Submit)
	expenses.POST("/:id/approve", g.Approver, h.Expense.Approve)
	expenses.POST("/:id/reject", g.Approver, h.Expense.Reject)
	expenses.POST("/:id/pay", g.Approver, h.Expense.MarkPaid)
	expenses.POST("/:id/receipt-upload-url", h.Expense.ReceiptUploadURL)
	expenses.GET("/:id/receipt-url", h.Expense.ReceiptURL)

	profits := scoped.Group("profit-sharing", "/profit-sharing")
	profits.GET("", h.ProfitSharing.List)
	profits.POST("", h.ProfitSharing.Create)
	profits.POST("/calculate", h.ProfitSharing.Calculate)
	profits.GET("/summary", h.ProfitSharing.Summary)
	profits.GET("/:id", h.ProfitSharing.GetByID)
	profits.PUT("/:id", h.ProfitSharing.Update)
	profits.DELETE("/:id", h.ProfitSharing.Delete)
	profits.POST("/:id/confirm", g.Approver, h.ProfitSharing.Confirm)
	profits.POST("/:id/pay", g.Approver, h.ProfitSharing.MarkPaid)

	transactions := scoped.Group("asset-transaction", "/asset-transactions")
	transactions.GET("", h.AssetTransaction.List)
	transactions.POST("", h.AssetTransaction.Create)
	transactions.GET("/:id", h.AssetTransaction.GetByID)
	transactions.PUT("/:id", h.AssetTransaction.Update)
	transactions.DELETE("/:id", h.AssetTransaction.Delete)
	transactions.POST("/:id/settle", h.AssetTransaction.Settle)
	transactions.POST("/:id/cancel", h.AssetTransaction.Cancel)

	rates := scoped.Group("exchange-rate", "/exchange-rate")
	rates.GET("", h.ExchangeRate.Lookup)
	rates.POST("", h.ExchangeRate.Upsert)
	rates.GET("/list", h.ExchangeRate.List)
	rates.GET("/convert", h.ExchangeRate.Convert)
	rates.POST("/refresh", g.Approver, h.ExchangeRate.Refresh)

	templates := scoped.Group("email-template", "/email-templates")
	templates.GET("", h.EmailTemplate.List)
	templates.GET("/:name/preview", h.EmailTemplate.Preview)

	r.Register(authRoutes).
		Register(organizationRoutes).
		Register(scoped)
}
