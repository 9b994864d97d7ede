package notification

import (
	"context"
	"errors"

	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/email"
	"github.com/google/uuid"
)

// TemplatePreviewer renders a template with sample data. *email.Sender satisfies it.
type TemplatePreviewer interface {
	Preview(name, locale string) (*email.Rendered, error)
}

// TemplatePreviewResponse is a rendered template
type TemplatePreviewResponse struct {
	Name    string `json:"name"`
	Locale  string `json:"locale"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// TemplateService lists and previews email templates
type TemplateService struct {
	previewer TemplatePreviewer
	orgs      organization.Repository
}

// NewTemplateService creates a TemplateService
func NewTemplateService(previewer TemplatePreviewer, orgs organization.Repository) *TemplateService {
	return &TemplateService{previewer: previewer, orgs: orgs}
}

// List returns the available template names
func (s *TemplateService) List() []string {
	return email.TemplateNames()
}

// Preview renders name with sample data in the requested locale, or the
// organization's locale when none is given
func (s *TemplateService) Preview(ctx context.Context, tenantID uuid.UUID, name, locale string) (*TemplatePreviewResponse, error) {
	if !email.HasTemplate(name) {
		return nil, shared.NewDomainError("TEMPLATE_NOT_FOUND", "Email template not found: "+name)
	}
	if locale == "" {
		org, err := s.orgs.FindByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		locale = org.Locale
	}
	rendered, err := s.previewer.Preview(name, locale)
	if errors.Is(err, email.ErrTemplateNotFound) {
		return nil, shared.NewDomainError("TEMPLATE_NOT_FOUND", "Email template not found: "+name)
	}
	if err != nil {
		return nil, err
	}
	return &TemplatePreviewResponse{
		Name:    name,
		Locale:  locale,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	}, nil
}
