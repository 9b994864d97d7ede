package handler

import (
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseHandler handles expense endpoints, including the approval workflow
// and receipt URLs
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create records a draft expense
// POST /api/organizations/:orgId/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req financeapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	expense, err := h.expenseService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID retrieves an expense
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List lists expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter financeapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	expenses, total, err := h.expenseService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update edits a draft or rejected expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete deletes an expense that has not been approved
func (h *ExpenseHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit sends an expense for approval
// POST /api/organizations/:orgId/expenses/:id/submit
func (h *ExpenseHandler) Submit(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.Submit(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Approve approves a submitted expense on behalf of the caller
// POST /api/organizations/:orgId/expenses/:id/approve
func (h *ExpenseHandler) Approve(c *gin.Context) {
	orgID, id, approver, ok := h.decision(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.Approve(c.Request.Context(), orgID, id, approver)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Reject rejects a submitted expense with a reason
// POST /api/organizations/:orgId/expenses/:id/reject
func (h *ExpenseHandler) Reject(c *gin.Context) {
	orgID, id, approver, ok := h.decision(c)
	if !ok {
		return
	}
	var req financeapp.RejectExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.Reject(c.Request.Context(), orgID, id, approver, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// MarkPaid records reimbursement of an approved expense
// POST /api/organizations/:orgId/expenses/:id/pay
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.MarkPaid(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ReceiptUploadURL returns a presigned URL the client uploads the receipt to
// POST /api/organizations/:orgId/expenses/:id/receipt-upload-url
func (h *ExpenseHandler) ReceiptUploadURL(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	url, err := h.expenseService.ReceiptUploadURL(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// ReceiptURL returns a presigned download URL for the uploaded receipt
// GET /api/organizations/:orgId/expenses/:id/receipt-url
func (h *ExpenseHandler) ReceiptURL(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	url, err := h.expenseService.ReceiptDownloadURL(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// Summary totals expenses in a date range
// GET /api/organizations/:orgId/expenses/summary?from=&to=
func (h *ExpenseHandler) Summary(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var dates financeapp.DateRange
	if !h.bindQuery(c, &dates) {
		return
	}
	summary, err := h.expenseService.Summary(c.Request.Context(), orgID, dates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *ExpenseHandler) decision(c *gin.Context) (orgID, id, approver uuid.UUID, ok bool) {
	if orgID, id, ok = h.scoped(c); !ok {
		return
	}
	approver, ok = h.userID(c)
	return
}
