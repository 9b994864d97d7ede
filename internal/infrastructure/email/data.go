package email

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template data. Currency and enum fields are plain strings so template helpers accept them.

// OrganizationWelcomeData feeds organization_welcome
type OrganizationWelcomeData struct {
	OrganizationName string
	RecipientName    string
	BaseCurrency     string
}

// CustomerWelcomeData feeds customer_welcome
type CustomerWelcomeData struct {
	OrganizationName string
	CustomerName     string
	CustomerCode     string
	ManagerName      string
}

// ExpenseData feeds the expense_* templates
type ExpenseData struct {
	OrganizationName string
	ExpenseNumber    string
	Category         string
	Description      string
	Amount           decimal.Decimal
	Currency         string
	IncurredAt       time.Time
	Reason           string
}

// ProfitSharingStatementData feeds profit_sharing_statement, one per receiving party
type ProfitSharingStatementData struct {
	OrganizationName string
	RecipientName    string
	RecordNumber     string
	CustomerName     string
	PeriodDate       time.Time
	Party            string
	Percent          decimal.Decimal
	ShareableAmount  decimal.Decimal
	Amount           decimal.Decimal
	Currency         string
	AmountBase       decimal.Decimal
	BaseCurrency     string
}

// SampleData returns example data for previewing a template
func SampleData(name string) (any, bool) {
	org := "Harbour Wealth Partners"
	period := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	switch name {
	case TemplateOrganizationWelcome:
		return OrganizationWelcomeData{OrganizationName: org, RecipientName: "Alex Tan", BaseCurrency: "SGD"}, true
	case TemplateCustomerWelcome:
		return CustomerWelcomeData{OrganizationName: org, CustomerName: "jordan lee", CustomerCode: "C-0001", ManagerName: "Alex Tan"}, true
	case TemplateExpenseSubmitted, TemplateExpenseApproved, TemplateExpenseRejected:
		return ExpenseData{
			OrganizationName: org,
			ExpenseNumber:    "EXP-2024-00042",
			Category:         "entertainment",
			Description:      "Dinner with prospective client",
			Amount:           decimal.RequireFromString("1234.5"),
			Currency:         "SGD",
			IncurredAt:       period,
			Reason:           "Missing receipt",
		}, true
	case TemplateProfitSharingStatement:
		return ProfitSharingStatementData{
			OrganizationName: org,
			RecipientName:    "Alex Tan",
			RecordNumber:     "PS-2024-00007",
			CustomerName:     "Jordan Lee",
			PeriodDate:       period,
			Party:            "RM1",
			Percent:          decimal.NewFromInt(30),
			ShareableAmount:  decimal.NewFromInt(10000),
			Amount:           decimal.NewFromInt(3000),
			Currency:         "USD",
			AmountBase:       decimal.RequireFromString("4050"),
			BaseCurrency:     "SGD",
		}, true
	}
	return nil, false
}
