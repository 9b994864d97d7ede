package handler

import (
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// RelationshipManagerHandler handles RM and finder endpoints
type RelationshipManagerHandler struct {
	BaseHandler
	managerService *partnerapp.RelationshipManagerService
}

// NewRelationshipManagerHandler creates a new RelationshipManagerHandler
func NewRelationshipManagerHandler(managerService *partnerapp.RelationshipManagerService) *RelationshipManagerHandler {
	return &RelationshipManagerHandler{managerService: managerService}
}

// Create creates an RM or finder
// POST /api/organizations/:orgId/relationship-managers
func (h *RelationshipManagerHandler) Create(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req partnerapp.CreateRelationshipManagerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = optionalUserID(c)

	manager, err := h.managerService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, manager)
}

// GetByID retrieves an RM or finder
func (h *RelationshipManagerHandler) GetByID(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	manager, err := h.managerService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, manager)
}

// List lists RMs and finders
func (h *RelationshipManagerHandler) List(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var filter partnerapp.RelationshipManagerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	managers, total, err := h.managerService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, managers, total, filter.Page, filter.PageSize)
}

// Update updates an RM or finder
func (h *RelationshipManagerHandler) Update(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	var req partnerapp.UpdateRelationshipManagerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	manager, err := h.managerService.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, manager)
}

// Delete deletes an RM or finder that no customer references
func (h *RelationshipManagerHandler) Delete(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	if err := h.managerService.Delete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate activates an RM or finder
func (h *RelationshipManagerHandler) Activate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	manager, err := h.managerService.Activate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, manager)
}

// Deactivate deactivates an RM or finder
func (h *RelationshipManagerHandler) Deactivate(c *gin.Context) {
	orgID, id, ok := h.scoped(c)
	if !ok {
		return
	}
	manager, err := h.managerService.Deactivate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, manager)
}
