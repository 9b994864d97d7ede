package handler

import (
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// AssetTransactionHandler handles asset transaction endpoints
type AssetTransactionHandler struct {
	BaseHandler
	txService *financeapp.AssetTransactionService
}

// NewAssetTransactionHandler creates a new AssetTransactionHandler
func NewAssetTransactionHandler(txService *financeapp.AssetTransactionService) *AssetTransactionHandler {
	return &AssetTransactionHandler{txService: txService}
}

// Create books a pending transaction
// POST /api/organizations/:orgId/asset-transactions
func (h *AssetTransactionHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req financeapp.CreateAssetTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	tx, err := h.txService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// GetByID retrieves a transaction
func (h *AssetTransactionHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	tx, err := h.txService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List lists transactions
func (h *AssetTransactionHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter financeapp.AssetTransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	txs, total, err := h.txService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// Update edits a pending transaction
func (h *AssetTransactionHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req financeapp.UpdateAssetTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tx, err := h.txService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete deletes a transaction that has not settled
func (h *AssetTransactionHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.txService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Settle settles a pending transaction
// POST /api/organizations/:orgId/asset-transactions/:id/settle
func (h *AssetTransactionHandler) Settle(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	tx, err := h.txService.Settle(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Cancel cancels a pending transaction
// POST /api/organizations/:orgId/asset-transactions/:id/cancel
func (h *AssetTransactionHandler) Cancel(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	tx, err := h.txService.Cancel(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}
