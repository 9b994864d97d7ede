// Package organization holds the tenant aggregate. Every other aggregate
// carries the owning organization's ID as its tenant ID.
package organization

import (
	"regexp"
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Status represents the lifecycle state of an organization
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Organization is a tenant of the back office
type Organization struct {
	shared.BaseAggregateRoot
	Name         string
	Slug         string
	BaseCurrency valueobject.Currency
	Locale       string
	ContactEmail string
	Status       Status
	OwnerID      *uuid.UUID
}

// NewOrganization creates an active organization
func NewOrganization(name, slug, baseCurrency, locale, contactEmail string) (*Organization, error) {
	if err := shared.ValidateName("Organization", name); err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugRegex.MatchString(slug) || len(slug) > 63 {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters, digits and single hyphens, up to 63 characters")
	}
	cur, err := shared.ValidateCurrency(baseCurrency)
	if err != nil {
		return nil, err
	}
	loc, err := normalizeLocale(locale)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateEmail(contactEmail); err != nil {
		return nil, err
	}

	org := &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		BaseCurrency:      cur,
		Locale:            loc,
		ContactEmail:      contactEmail,
		Status:            StatusActive,
	}
	org.AddDomainEvent(NewOrganizationCreatedEvent(org))
	return org, nil
}

// SetOwner records the user who created the organization
func (o *Organization) SetOwner(userID uuid.UUID) {
	o.OwnerID = &userID
}

// Update changes the editable settings. The base currency is fixed once records exist,
// so the caller decides whether changing it is allowed.
func (o *Organization) Update(name, baseCurrency, locale, contactEmail string) error {
	if err := shared.ValidateName("Organization", name); err != nil {
		return err
	}
	cur, err := shared.ValidateCurrency(baseCurrency)
	if err != nil {
		return err
	}
	loc, err := normalizeLocale(locale)
	if err != nil {
		return err
	}
	if err := shared.ValidateEmail(contactEmail); err != nil {
		return err
	}
	o.Name = strings.TrimSpace(name)
	o.BaseCurrency = cur
	o.Locale = loc
	o.ContactEmail = contactEmail
	o.Touch()
	return nil
}

// Suspend blocks all organization-scoped operations
func (o *Organization) Suspend() error {
	if o.Status == StatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Organization is already suspended")
	}
	o.Status = StatusSuspended
	o.Touch()
	return nil
}

// Activate lifts a suspension
func (o *Organization) Activate() error {
	if o.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Organization is already active")
	}
	o.Status = StatusActive
	o.Touch()
	return nil
}

// IsActive returns true if the organization accepts operations
func (o *Organization) IsActive() bool {
	return o.Status == StatusActive
}

func normalizeLocale(locale string) (string, error) {
	if locale == "" {
		return "en-US", nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", shared.NewDomainError("INVALID_LOCALE", "Invalid locale: "+locale)
	}
	return tag.String(), nil
}

// CreatedEvent is published when an organization is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	AggregateType    = "Organization"
	EventTypeCreated = "organization.created"
)

// NewOrganizationCreatedEvent creates a CreatedEvent
func NewOrganizationCreatedEvent(o *Organization) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateType, o.ID, o.ID),
		Name:            o.Name,
		Slug:            o.Slug,
		ContactEmail:    o.ContactEmail,
		CreatedAt:       o.CreatedAt,
	}
}
