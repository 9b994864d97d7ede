// Package notification turns domain events into transactional emails.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/email"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailSender renders and delivers a named template. *email.Sender satisfies it.
type EmailSender interface {
	Send(ctx context.Context, orgID uuid.UUID, name, locale string, to []string, data any) error
}

// notifier carries what every email handler needs
type notifier struct {
	sender EmailSender
	orgs   organization.Repository
	logger *zap.Logger
}

func newNotifier(sender EmailSender, orgs organization.Repository, logger *zap.Logger) notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return notifier{sender: sender, orgs: orgs, logger: logger}
}

func (n notifier) organization(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	org, err := n.orgs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load organization %s: %w", id, err)
	}
	return org, nil
}

func (n notifier) send(ctx context.Context, org *organization.Organization, template string, to string, data any) error {
	if strings.TrimSpace(to) == "" {
		n.logger.Debug("skipping email without recipient",
			zap.String("template", template),
			zap.String("organization_id", org.ID.String()),
		)
		return nil
	}
	if err := n.sender.Send(ctx, org.ID, template, org.Locale, []string{to}, data); err != nil {
		return fmt.Errorf("send %s: %w", template, err)
	}
	n.logger.Info("email queued",
		zap.String("template", template),
		zap.String("organization_id", org.ID.String()),
	)
	return nil
}

func unexpectedEvent(expected string, event shared.DomainEvent) error {
	return fmt.Errorf("unexpected event type: expected %s, got %s", expected, event.EventType())
}

// OrganizationWelcomeHandler greets a new organization's contact address
type OrganizationWelcomeHandler struct {
	notifier
}

// NewOrganizationWelcomeHandler creates an OrganizationWelcomeHandler
func NewOrganizationWelcomeHandler(sender EmailSender, orgs organization.Repository, logger *zap.Logger) *OrganizationWelcomeHandler {
	return &OrganizationWelcomeHandler{notifier: newNotifier(sender, orgs, logger)}
}

// EventTypes returns the event types this handler is interested in
func (h *OrganizationWelcomeHandler) EventTypes() []string {
	return []string{organization.EventTypeCreated}
}

// Handle sends organization_welcome
func (h *OrganizationWelcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*organization.CreatedEvent)
	if !ok {
		return unexpectedEvent(organization.EventTypeCreated, event)
	}
	org, err := h.organization(ctx, created.AggregateID())
	if err != nil {
		return err
	}
	return h.send(ctx, org, email.TemplateOrganizationWelcome, org.ContactEmail, email.OrganizationWelcomeData{
		OrganizationName: org.Name,
		RecipientName:    org.Name,
		BaseCurrency:     org.BaseCurrency.String(),
	})
}

// CustomerWelcomeHandler welcomes customers that have an email address
type CustomerWelcomeHandler struct {
	notifier
	managers partner.RelationshipManagerRepository
}

// NewCustomerWelcomeHandler creates a CustomerWelcomeHandler
func NewCustomerWelcomeHandler(
	sender EmailSender,
	orgs organization.Repository,
	managers partner.RelationshipManagerRepository,
	logger *zap.Logger,
) *CustomerWelcomeHandler {
	return &CustomerWelcomeHandler{notifier: newNotifier(sender, orgs, logger), managers: managers}
}

// EventTypes returns the event types this handler is interested in
func (h *CustomerWelcomeHandler) EventTypes() []string {
	return []string{partner.EventTypeCustomerCreated}
}

// Handle sends customer_welcome, naming the customer's RM when one is assigned
func (h *CustomerWelcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*partner.CustomerCreatedEvent)
	if !ok {
		return unexpectedEvent(partner.EventTypeCustomerCreated, event)
	}
	if created.Email == "" {
		return nil
	}
	org, err := h.organization(ctx, created.TenantID())
	if err != nil {
		return err
	}

	data := email.CustomerWelcomeData{
		OrganizationName: org.Name,
		CustomerName:     created.Name,
		CustomerCode:     created.Code,
	}
	if created.RMID != nil {
		rm, err := h.managers.FindByIDForTenant(ctx, created.TenantID(), *created.RMID)
		switch {
		case err == nil:
			data.ManagerName = rm.Name
		case !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("load rm %s: %w", *created.RMID, err)
		}
	}
	return h.send(ctx, org, email.TemplateCustomerWelcome, created.Email, data)
}

// ExpenseNotificationHandler reports expense workflow transitions.
// Submissions go to the organization's contact address; decisions go to the
// linked RM, falling back to the contact address.
type ExpenseNotificationHandler struct {
	notifier
	managers partner.RelationshipManagerRepository
}

// NewExpenseNotificationHandler creates an ExpenseNotificationHandler
func NewExpenseNotificationHandler(
	sender EmailSender,
	orgs organization.Repository,
	managers partner.RelationshipManagerRepository,
	logger *zap.Logger,
) *ExpenseNotificationHandler {
	return &ExpenseNotificationHandler{notifier: newNotifier(sender, orgs, logger), managers: managers}
}

// EventTypes returns the event types this handler is interested in
func (h *ExpenseNotificationHandler) EventTypes() []string {
	return []string{
		finance.EventTypeExpenseSubmitted,
		finance.EventTypeExpenseApproved,
		finance.EventTypeExpenseRejected,
	}
}

var expenseTemplates = map[string]string{
	finance.EventTypeExpenseSubmitted: email.TemplateExpenseSubmitted,
	finance.EventTypeExpenseApproved:  email.TemplateExpenseApproved,
	finance.EventTypeExpenseRejected:  email.TemplateExpenseRejected,
}

// Handle sends the expense_* template matching the event
func (h *ExpenseNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*finance.ExpenseEvent)
	if !ok {
		return unexpectedEvent("expense.*", event)
	}
	template, ok := expenseTemplates[e.EventType()]
	if !ok {
		return unexpectedEvent("expense.*", event)
	}
	org, err := h.organization(ctx, e.TenantID())
	if err != nil {
		return err
	}

	to := org.ContactEmail
	if e.EventType() != finance.EventTypeExpenseSubmitted && e.RMID != nil {
		rm, err := h.managers.FindByIDForTenant(ctx, e.TenantID(), *e.RMID)
		switch {
		case err == nil && rm.Email != "":
			to = rm.Email
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("load manager %s: %w", *e.RMID, err)
		}
	}

	return h.send(ctx, org, template, to, email.ExpenseData{
		OrganizationName: org.Name,
		ExpenseNumber:    e.ExpenseNumber,
		Category:         string(e.Category),
		Description:      e.Description,
		Amount:           e.Amount,
		Currency:         e.Currency.String(),
		IncurredAt:       e.IncurredAt,
		Reason:           e.RejectionReason,
	})
}

// ProfitSharingStatementHandler sends each RM or Finder party their share of a
// confirmed record. Parties without a manager or without an email are skipped.
type ProfitSharingStatementHandler struct {
	notifier
	customers partner.CustomerRepository
	managers  partner.RelationshipManagerRepository
}

// NewProfitSharingStatementHandler creates a ProfitSharingStatementHandler
func NewProfitSharingStatementHandler(
	sender EmailSender,
	orgs organization.Repository,
	customers partner.CustomerRepository,
	managers partner.RelationshipManagerRepository,
	logger *zap.Logger,
) *ProfitSharingStatementHandler {
	return &ProfitSharingStatementHandler{
		notifier:  newNotifier(sender, orgs, logger),
		customers: customers,
		managers:  managers,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ProfitSharingStatementHandler) EventTypes() []string {
	return []string{finance.EventTypeProfitSharingConfirmed}
}

// Handle sends one profit_sharing_statement per manager party
func (h *ProfitSharingStatementHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*finance.ProfitSharingEvent)
	if !ok {
		return unexpectedEvent(finance.EventTypeProfitSharingConfirmed, event)
	}
	org, err := h.organization(ctx, e.TenantID())
	if err != nil {
		return err
	}

	var ids []uuid.UUID
	for _, a := range e.Allocations {
		if a.ManagerID != nil {
			ids = append(ids, *a.ManagerID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	managers, err := h.managers.FindByIDs(ctx, e.TenantID(), ids)
	if err != nil {
		return fmt.Errorf("load managers: %w", err)
	}
	byID := make(map[uuid.UUID]partner.RelationshipManager, len(managers))
	for _, m := range managers {
		byID[m.ID] = m
	}

	customerName := ""
	if c, err := h.customers.FindByIDForTenant(ctx, e.TenantID(), e.CustomerID); err == nil {
		customerName = c.Name
	}

	var errs []error
	for _, a := range e.Allocations {
		if a.ManagerID == nil {
			continue
		}
		m, ok := byID[*a.ManagerID]
		if !ok {
			continue
		}
		err := h.send(ctx, org, email.TemplateProfitSharingStatement, m.Email, email.ProfitSharingStatementData{
			OrganizationName: org.Name,
			RecipientName:    m.Name,
			RecordNumber:     e.RecordNumber,
			CustomerName:     customerName,
			PeriodDate:       e.PeriodDate,
			Party:            string(a.Party),
			Percent:          a.Percent,
			ShareableAmount:  e.ShareableAmount,
			Amount:           a.Amount,
			Currency:         e.Currency.String(),
			AmountBase:       a.AmountBase,
			BaseCurrency:     e.BaseCurrency.String(),
		})
		if err != nil {
			h.logger.Warn("failed to send profit sharing statement",
				zap.String("record_number", e.RecordNumber),
				zap.String("party", string(a.Party)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
