package handler

import (
	"github.com/fintermediary/backoffice/internal/application/notification"
	"github.com/gin-gonic/gin"
)

// EmailTemplateHandler lists and previews transactional email templates
type EmailTemplateHandler struct {
	BaseHandler
	templates *notification.TemplateService
}

// NewEmailTemplateHandler creates a new EmailTemplateHandler
func NewEmailTemplateHandler(templates *notification.TemplateService) *EmailTemplateHandler {
	return &EmailTemplateHandler{templates: templates}
}

// List returns the template names
// GET /api/organizations/:orgId/email-templates
func (h *EmailTemplateHandler) List(c *gin.Context) {
	h.Success(c, h.templates.List())
}

// Preview renders a template with sample data. ?locale= overrides the
// organization's locale.
// GET /api/organizations/:orgId/email-templates/:name/preview
func (h *EmailTemplateHandler) Preview(c *gin.Context) {
	orgID, ok := h.organizationID(c)
	if !ok {
		return
	}
	preview, err := h.templates.Preview(c.Request.Context(), orgID, c.Param("name"), c.Query("locale"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}
