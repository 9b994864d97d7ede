package handler

import (
	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
	accountService  *bankingapp.BankAccountService
	txService       *financeapp.AssetTransactionService
}

// NewCustomerHandler creates a new CustomerHandler. The bank account and
// transaction services back the per-customer sub-resources.
func NewCustomerHandler(
	customerService *partnerapp.CustomerService,
	accountService *bankingapp.BankAccountService,
	txService *financeapp.AssetTransactionService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		accountService:  accountService,
		txService:       txService,
	}
}

// Create creates a new customer
// POST /api/organizations/:orgId/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	customer, err := h.customerService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID retrieves a customer by ID
// GET /api/organizations/:orgId/customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List lists customers with filtering and pagination
// GET /api/organizations/:orgId/customers
func (h *CustomerHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.customerService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Update updates a customer
// PUT /api/organizations/:orgId/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete deletes a customer without financial records
// DELETE /api/organizations/:orgId/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate activates a customer
// POST /api/organizations/:orgId/customers/:id/activate
func (h *CustomerHandler) Activate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	customer, err := h.customerService.Activate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Deactivate deactivates a customer
// POST /api/organizations/:orgId/customers/:id/deactivate
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	customer, err := h.customerService.Deactivate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Suspend suspends a customer
// POST /api/organizations/:orgId/customers/:id/suspend
func (h *CustomerHandler) Suspend(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	customer, err := h.customerService.Suspend(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// BankAccounts lists the customer's bank accounts, primary first
// GET /api/organizations/:orgId/customers/:id/bank-accounts
func (h *CustomerHandler) BankAccounts(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	accounts, err := h.accountService.ListByCustomer(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Holdings aggregates the customer's settled transactions per product
// GET /api/organizations/:orgId/customers/:id/holdings
func (h *CustomerHandler) Holdings(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	holdings, err := h.txService.CustomerHoldings(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, holdings)
}
