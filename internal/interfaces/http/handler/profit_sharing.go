package handler

import (
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// ProfitSharingHandler handles profit-sharing records and the split calculator
type ProfitSharingHandler struct {
	BaseHandler
	profitService *financeapp.ProfitSharingService
}

// NewProfitSharingHandler creates a new ProfitSharingHandler
func NewProfitSharingHandler(profitService *financeapp.ProfitSharingService) *ProfitSharingHandler {
	return &ProfitSharingHandler{profitService: profitService}
}

// Calculate previews a split without saving it
// POST /api/organizations/:orgId/profit-sharing/calculate
func (h *ProfitSharingHandler) Calculate(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req financeapp.CalculateProfitSharingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.profitService.Calculate(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create records a draft split
// POST /api/organizations/:orgId/profit-sharing
func (h *ProfitSharingHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req financeapp.CreateProfitSharingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	record, err := h.profitService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// GetByID retrieves a record with its allocations
func (h *ProfitSharingHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	record, err := h.profitService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// List lists records
func (h *ProfitSharingHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter financeapp.ProfitSharingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	records, total, err := h.profitService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// Update edits a draft record
func (h *ProfitSharingHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.UpdateProfitSharingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.profitService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete deletes a draft record
func (h *ProfitSharingHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.profitService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Confirm locks a draft record
// POST /api/organizations/:orgId/profit-sharing/:id/confirm
func (h *ProfitSharingHandler) Confirm(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	record, err := h.profitService.Confirm(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// MarkPaid records payout of a confirmed record
// POST /api/organizations/:orgId/profit-sharing/:id/pay
func (h *ProfitSharingHandler) MarkPaid(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	record, err := h.profitService.MarkPaid(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Summary totals records per party in the organization's base currency
// GET /api/organizations/:orgId/profit-sharing/summary?from=&to=
func (h *ProfitSharingHandler) Summary(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var dates financeapp.DateRange
	if !h.bindQuery(c, &dates) {
		return
	}
	summary, err := h.profitService.Summary(c.Request.Context(), orgID, dates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
