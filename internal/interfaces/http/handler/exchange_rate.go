package handler

import (
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// ExchangeRateHandler handles rate lookup, conversion and manual rates
type ExchangeRateHandler struct {
	BaseHandler
	rateService *financeapp.ExchangeRateService
}

// NewExchangeRateHandler creates a new ExchangeRateHandler
func NewExchangeRateHandler(rateService *financeapp.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rateService: rateService}
}

// Lookup resolves the rate for a pair on a date
// GET /api/organizations/:orgId/exchange-rate?from=USD&to=SGD&date=2026-03-31
func (h *ExchangeRateHandler) Lookup(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var q financeapp.ExchangeRateQuery
	if !h.bindQuery(c, &q) {
		return
	}
	rate, err := h.rateService.Lookup(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Convert converts an amount and formats it in the organization's locale
// GET /api/organizations/:orgId/exchange-rate/convert?from=&to=&amount=
func (h *ExchangeRateHandler) Convert(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var q financeapp.ConvertQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.rateService.Convert(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List lists stored rates
// GET /api/organizations/:orgId/exchange-rate/list
func (h *ExchangeRateHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter financeapp.ExchangeRateListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rates, total, err := h.rateService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rates, total, filter.Page, filter.PageSize)
}

// Upsert sets a manual rate
// POST /api/organizations/:orgId/exchange-rate
func (h *ExchangeRateHandler) Upsert(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req financeapp.UpsertExchangeRateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rate, err := h.rateService.Upsert(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Refresh pulls the latest provider quotes for the organization's base currency
// POST /api/organizations/:orgId/exchange-rate/refresh
func (h *ExchangeRateHandler) Refresh(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	n, err := h.rateService.RefreshRates(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": n})
}
