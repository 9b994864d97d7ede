package handler

import (
	catalogapp "github.com/fintermediary/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create creates a new product
// POST /api/organizations/:orgId/products
func (h *ProductHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	product, err := h.productService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID retrieves a product
func (h *ProductHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List lists products
func (h *ProductHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.productService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update updates a product
func (h *ProductHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete deletes a product that has no transactions
func (h *ProductHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate activates a product
func (h *ProductHandler) Activate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	product, err := h.productService.Activate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate deactivates a product
func (h *ProductHandler) Deactivate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	product, err := h.productService.Deactivate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
