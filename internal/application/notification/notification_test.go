package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/email"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, orgID uuid.UUID, name, locale string, to []string, data any) error {
	args := m.Called(ctx, orgID, name, locale, to, data)
	return args.Error(0)
}

type MockOrganizationRepository struct {
	organization.Repository
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

type MockCustomerRepository struct {
	partner.CustomerRepository
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

type MockManagerRepository struct {
	partner.RelationshipManagerRepository
	mock.Mock
}

func (m *MockManagerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.RelationshipManager, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.RelationshipManager), args.Error(1)
}

func (m *MockManagerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.RelationshipManager, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.RelationshipManager), args.Error(1)
}

func createTestOrganization(t *testing.T, contactEmail string) *organization.Organization {
	t.Helper()
	org, err := organization.NewOrganization("Harbour Wealth", "harbour-wealth", "SGD", "en-SG", contactEmail)
	require.NoError(t, err)
	return org
}

func createTestManager(t *testing.T, tenantID uuid.UUID, name, mail string, role partner.ManagerRole) *partner.RelationshipManager {
	t.Helper()
	m, err := partner.NewRelationshipManager(tenantID, "M-"+name[:1], name, role, decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, m.SetContact(mail, ""))
	return m
}

func TestOrganizationWelcomeHandler(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "ops@harbour.example")
	sender := new(MockEmailSender)
	orgs := new(MockOrganizationRepository)
	handler := NewOrganizationWelcomeHandler(sender, orgs, zap.NewNop())

	orgs.On("FindByID", ctx, org.ID).Return(org, nil)
	sender.On("Send", ctx, org.ID, email.TemplateOrganizationWelcome, "en-SG", []string{"ops@harbour.example"},
		email.OrganizationWelcomeData{OrganizationName: "Harbour Wealth", RecipientName: "Harbour Wealth", BaseCurrency: "SGD"}).
		Return(nil)

	require.NoError(t, handler.Handle(ctx, organization.NewOrganizationCreatedEvent(org)))
	assert.Equal(t, []string{organization.EventTypeCreated}, handler.EventTypes())
	sender.AssertExpectations(t)
}

func TestOrganizationWelcomeHandler_NoContactEmail(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "")
	sender := new(MockEmailSender)
	orgs := new(MockOrganizationRepository)
	handler := NewOrganizationWelcomeHandler(sender, orgs, nil)
	orgs.On("FindByID", ctx, org.ID).Return(org, nil)

	require.NoError(t, handler.Handle(ctx, organization.NewOrganizationCreatedEvent(org)))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerWelcomeHandler(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "ops@harbour.example")
	rm := createTestManager(t, org.ID, "Alice Lim", "alice@harbour.example", partner.ManagerRoleRM)
	customer, err := partner.NewCustomer(org.ID, "C001", "Tan Holdings", partner.CustomerTypeCorporate)
	require.NoError(t, err)
	require.NoError(t, customer.SetContact("finance@tan.example", ""))
	require.NoError(t, customer.AssignManagers(&rm.ID, nil))

	t.Run("names the assigned RM", func(t *testing.T) {
		sender := new(MockEmailSender)
		orgs := new(MockOrganizationRepository)
		managers := new(MockManagerRepository)
		handler := NewCustomerWelcomeHandler(sender, orgs, managers, zap.NewNop())

		orgs.On("FindByID", ctx, org.ID).Return(org, nil)
		managers.On("FindByIDForTenant", ctx, org.ID, rm.ID).Return(rm, nil)
		sender.On("Send", ctx, org.ID, email.TemplateCustomerWelcome, "en-SG", []string{"finance@tan.example"},
			mock.MatchedBy(func(d email.CustomerWelcomeData) bool {
				return d.CustomerCode == "C001" && d.ManagerName == "Alice Lim"
			})).Return(nil)

		require.NoError(t, handler.Handle(ctx, partner.NewCustomerCreatedEvent(customer)))
		sender.AssertExpectations(t)
	})

	t.Run("skips customers without email", func(t *testing.T) {
		sender := new(MockEmailSender)
		handler := NewCustomerWelcomeHandler(sender, new(MockOrganizationRepository), new(MockManagerRepository), nil)
		bare, err := partner.NewCustomer(org.ID, "C002", "No Mail", partner.CustomerTypeIndividual)
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, partner.NewCustomerCreatedEvent(bare)))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects other events", func(t *testing.T) {
		handler := NewCustomerWelcomeHandler(new(MockEmailSender), nil, nil, nil)

		err := handler.Handle(ctx, organization.NewOrganizationCreatedEvent(org))

		assert.ErrorContains(t, err, "unexpected event type")
	})
}

func expenseEvent(eventType string, tenantID uuid.UUID, rmID *uuid.UUID) *finance.ExpenseEvent {
	id := uuid.New()
	return &finance.ExpenseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, finance.AggregateTypeExpense, id, tenantID),
		ExpenseID:       id,
		ExpenseNumber:   "EXP-2026-00001",
		Category:        finance.ExpenseCategoryEntertainment,
		Description:     "Client dinner",
		Amount:          decimal.RequireFromString("250.50"),
		Currency:        "SGD",
		IncurredAt:      time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		RMID:            rmID,
		RejectionReason: "No receipt",
	}
}

func TestExpenseNotificationHandler(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "ops@harbour.example")
	rm := createTestManager(t, org.ID, "Alice Lim", "alice@harbour.example", partner.ManagerRoleRM)

	tests := []struct {
		name      string
		eventType string
		rmID      *uuid.UUID
		template  string
		to        string
	}{
		{"submitted goes to organization", finance.EventTypeExpenseSubmitted, &rm.ID, email.TemplateExpenseSubmitted, "ops@harbour.example"},
		{"approved goes to RM", finance.EventTypeExpenseApproved, &rm.ID, email.TemplateExpenseApproved, "alice@harbour.example"},
		{"rejected goes to RM", finance.EventTypeExpenseRejected, &rm.ID, email.TemplateExpenseRejected, "alice@harbour.example"},
		{"approved without RM falls back", finance.EventTypeExpenseApproved, nil, email.TemplateExpenseApproved, "ops@harbour.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockEmailSender)
			orgs := new(MockOrganizationRepository)
			managers := new(MockManagerRepository)
			handler := NewExpenseNotificationHandler(sender, orgs, managers, zap.NewNop())

			orgs.On("FindByID", ctx, org.ID).Return(org, nil)
			managers.On("FindByIDForTenant", ctx, org.ID, rm.ID).Return(rm, nil).Maybe()
			sender.On("Send", ctx, org.ID, tt.template, "en-SG", []string{tt.to},
				mock.MatchedBy(func(d email.ExpenseData) bool {
					return d.ExpenseNumber == "EXP-2026-00001" && d.Category == "entertainment" && d.Currency == "SGD"
				})).Return(nil)

			require.NoError(t, handler.Handle(ctx, expenseEvent(tt.eventType, org.ID, tt.rmID)))
			sender.AssertExpectations(t)
		})
	}

	t.Run("delivery failure is returned", func(t *testing.T) {
		sender := new(MockEmailSender)
		orgs := new(MockOrganizationRepository)
		handler := NewExpenseNotificationHandler(sender, orgs, new(MockManagerRepository), nil)
		orgs.On("FindByID", ctx, org.ID).Return(org, nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("broker down"))

		err := handler.Handle(ctx, expenseEvent(finance.EventTypeExpenseSubmitted, org.ID, nil))

		assert.ErrorContains(t, err, "broker down")
	})
}

func TestProfitSharingStatementHandler(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "ops@harbour.example")
	alice := createTestManager(t, org.ID, "Alice Lim", "alice@harbour.example", partner.ManagerRoleRM)
	bob := createTestManager(t, org.ID, "Bob Ng", "", partner.ManagerRoleFinder)
	customer, err := partner.NewCustomer(org.ID, "C001", "Tan Holdings", partner.CustomerTypeCorporate)
	require.NoError(t, err)

	recordID := uuid.New()
	event := &finance.ProfitSharingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypeProfitSharingConfirmed, finance.AggregateTypeProfitSharingRecord, recordID, org.ID),
		RecordID:        recordID,
		RecordNumber:    "PS-2026-00001",
		CustomerID:      customer.ID,
		PeriodDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:        "USD",
		BaseCurrency:    "SGD",
		ShareableAmount: decimal.NewFromInt(1000),
		Allocations: []finance.AllocationPayload{
			{Party: finance.PartyCompany, Percent: decimal.NewFromInt(50), Amount: decimal.NewFromInt(500), AmountBase: decimal.NewFromInt(675)},
			{Party: finance.PartyRM1, ManagerID: &alice.ID, Percent: decimal.NewFromInt(30), Amount: decimal.NewFromInt(300), AmountBase: decimal.NewFromInt(405)},
			{Party: finance.PartyFinder1, ManagerID: &bob.ID, Percent: decimal.NewFromInt(20), Amount: decimal.NewFromInt(200), AmountBase: decimal.NewFromInt(270)},
		},
	}

	sender := new(MockEmailSender)
	orgs := new(MockOrganizationRepository)
	customers := new(MockCustomerRepository)
	managers := new(MockManagerRepository)
	handler := NewProfitSharingStatementHandler(sender, orgs, customers, managers, zap.NewNop())

	orgs.On("FindByID", ctx, org.ID).Return(org, nil)
	customers.On("FindByIDForTenant", ctx, org.ID, customer.ID).Return(customer, nil)
	managers.On("FindByIDs", ctx, org.ID, []uuid.UUID{alice.ID, bob.ID}).
		Return([]partner.RelationshipManager{*alice, *bob}, nil)
	sender.On("Send", ctx, org.ID, email.TemplateProfitSharingStatement, "en-SG", []string{"alice@harbour.example"},
		mock.MatchedBy(func(d email.ProfitSharingStatementData) bool {
			return d.RecipientName == "Alice Lim" &&
				d.Party == "RM1" &&
				d.CustomerName == "Tan Holdings" &&
				d.Amount.Equal(decimal.NewFromInt(300)) &&
				d.AmountBase.Equal(decimal.NewFromInt(405))
		})).Return(nil).Once()

	require.NoError(t, handler.Handle(ctx, event))
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

type stubPreviewer struct{}

func (stubPreviewer) Preview(name, locale string) (*email.Rendered, error) {
	return &email.Rendered{Subject: name + " " + locale, HTML: "<p>ok</p>"}, nil
}

func TestTemplateService(t *testing.T) {
	ctx := context.Background()
	org := createTestOrganization(t, "")
	orgs := new(MockOrganizationRepository)
	service := NewTemplateService(stubPreviewer{}, orgs)

	assert.Contains(t, service.List(), email.TemplateProfitSharingStatement)

	t.Run("uses organization locale by default", func(t *testing.T) {
		orgs.On("FindByID", ctx, org.ID).Return(org, nil).Once()

		resp, err := service.Preview(ctx, org.ID, email.TemplateExpenseApproved, "")

		require.NoError(t, err)
		assert.Equal(t, "en-SG", resp.Locale)
		assert.Equal(t, "expense_approved en-SG", resp.Subject)
	})

	t.Run("explicit locale", func(t *testing.T) {
		resp, err := service.Preview(ctx, org.ID, email.TemplateCustomerWelcome, "id-ID")

		require.NoError(t, err)
		assert.Equal(t, "id-ID", resp.Locale)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := service.Preview(ctx, org.ID, "layout", "en-US")

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "TEMPLATE_NOT_FOUND", de.Code)
	})
}
