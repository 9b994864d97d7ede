package handler

import (
	"github.com/fintermediary/backoffice/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles organization endpoints
type OrganizationHandler struct {
	BaseHandler
	orgService *identity.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *identity.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// List returns the organizations the caller belongs to
// GET /api/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	orgs, err := h.orgService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orgs)
}

// Create creates an organization owned by the caller
// POST /api/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req identity.CreateOrganizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	org, err := h.orgService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, org)
}

// Get returns the scoped organization
// GET /api/organizations/:orgId
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	org, err := h.orgService.GetByID(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// Update changes organization settings
// PUT /api/organizations/:orgId
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req identity.UpdateOrganizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	org, err := h.orgService.Update(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// Suspend blocks the organization's data routes
// POST /api/organizations/:orgId/suspend
func (h *OrganizationHandler) Suspend(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	org, err := h.orgService.Suspend(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// Activate reopens a suspended organization
// POST /api/organizations/:orgId/activate
func (h *OrganizationHandler) Activate(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	org, err := h.orgService.Activate(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// AddMember grants an existing user access
// POST /api/organizations/:orgId/members
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	var req identity.AddMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	membership, err := h.orgService.AddMember(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, membership)
}
