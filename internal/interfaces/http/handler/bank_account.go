package handler

import (
	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	"github.com/gin-gonic/gin"
)

// BankAccountHandler handles bank account endpoints
type BankAccountHandler struct {
	BaseHandler
	accountService *bankingapp.BankAccountService
}

// NewBankAccountHandler creates a new BankAccountHandler
func NewBankAccountHandler(accountService *bankingapp.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{accountService: accountService}
}

// Create registers a bank account for a customer
// POST /api/organizations/:orgId/bank-accounts
func (h *BankAccountHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req bankingapp.CreateBankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	account, err := h.accountService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetByID retrieves a bank account
func (h *BankAccountHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List lists bank accounts
func (h *BankAccountHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter bankingapp.BankAccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	accounts, total, err := h.accountService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Update updates a bank account
func (h *BankAccountHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req bankingapp.UpdateBankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// SetPrimary makes the account its customer's primary account
// POST /api/organizations/:orgId/bank-accounts/:id/primary
func (h *BankAccountHandler) SetPrimary(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	account, err := h.accountService.SetPrimary(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Close closes a bank account
// POST /api/organizations/:orgId/bank-accounts/:id/close
func (h *BankAccountHandler) Close(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	account, err := h.accountService.Close(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Delete deletes a bank account
func (h *BankAccountHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.accountService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
