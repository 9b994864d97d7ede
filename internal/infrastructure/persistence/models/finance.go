package models

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for expenses.
type ExpenseModel struct {
	TenantAggregateModel
	ExpenseNumber   string                  `gorm:"type:varchar(50);not null;index"`
	Category        finance.ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	Description     string                  `gorm:"type:varchar(500);not null"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency        string                  `gorm:"type:varchar(3);not null"`
	IncurredAt      time.Time               `gorm:"not null;index"`
	RMID            *uuid.UUID              `gorm:"column:rm_id;type:uuid;index"`
	Status          finance.ExpenseStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	ReceiptKey      string                  `gorm:"type:varchar(500)"`
	RejectionReason string                  `gorm:"type:varchar(500)"`
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	PaidAt          *time.Time
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantAggregateRoot: m.tenantRoot(),
		ExpenseNumber:       m.ExpenseNumber,
		Category:            m.Category,
		Description:         m.Description,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		IncurredAt:          m.IncurredAt,
		RMID:                m.RMID,
		Status:              m.Status,
		ReceiptKey:          m.ReceiptKey,
		RejectionReason:     m.RejectionReason,
		SubmittedAt:         m.SubmittedAt,
		ApprovedAt:          m.ApprovedAt,
		ApprovedBy:          m.ApprovedBy,
		PaidAt:              m.PaidAt,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		ExpenseNumber:   e.ExpenseNumber,
		Category:        e.Category,
		Description:     e.Description,
		Amount:          e.Amount,
		Currency:        e.Currency.String(),
		IncurredAt:      e.IncurredAt,
		RMID:            e.RMID,
		Status:          e.Status,
		ReceiptKey:      e.ReceiptKey,
		RejectionReason: e.RejectionReason,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		PaidAt:          e.PaidAt,
	}
	m.setTenantRoot(e.TenantAggregateRoot)
	return m
}

// ProfitSharingRecordModel is the persistence model for profit-sharing records.
// Allocations live in their own table and are replaced as a set on every save.
type ProfitSharingRecordModel struct {
	TenantAggregateModel
	RecordNumber        string                      `gorm:"type:varchar(50);not null;index"`
	CustomerID          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProductID           *uuid.UUID                  `gorm:"type:uuid;index"`
	PeriodDate          time.Time                   `gorm:"type:date;not null;index"`
	Currency            string                      `gorm:"type:varchar(3);not null"`
	GrossRevenue        decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	ShareableAmount     decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	ExchangeRate        decimal.Decimal             `gorm:"type:decimal(24,16);not null"`
	BaseCurrency        string                      `gorm:"type:varchar(3);not null"`
	ShareableAmountBase decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status              finance.ProfitSharingStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes               string                      `gorm:"type:text"`
	ConfirmedAt         *time.Time
	PaidAt              *time.Time
	Allocations         []ProfitSharingAllocationModel `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProfitSharingRecordModel) TableName() string {
	return "profit_sharing_records"
}

// ProfitSharingAllocationModel is one party's line of a profit-sharing record.
type ProfitSharingAllocationModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	RecordID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo     int             `gorm:"not null"`
	Party      finance.Party   `gorm:"type:varchar(10);not null"`
	ManagerID  *uuid.UUID      `gorm:"type:uuid;index"`
	Percent    decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountBase decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ProfitSharingAllocationModel) TableName() string {
	return "profit_sharing_allocations"
}

// ToDomain converts the persistence model to a domain ProfitSharingRecord.
// Allocations are expected in LineNo order.
func (m *ProfitSharingRecordModel) ToDomain() *finance.ProfitSharingRecord {
	allocs := make([]finance.Allocation, len(m.Allocations))
	for i, a := range m.Allocations {
		allocs[i] = finance.Allocation{
			Party:      a.Party,
			ManagerID:  a.ManagerID,
			Percent:    a.Percent,
			Amount:     a.Amount,
			AmountBase: a.AmountBase,
		}
	}
	return &finance.ProfitSharingRecord{
		TenantAggregateRoot: m.tenantRoot(),
		RecordNumber:        m.RecordNumber,
		CustomerID:          m.CustomerID,
		ProductID:           m.ProductID,
		PeriodDate:          m.PeriodDate,
		Currency:            valueobject.Currency(m.Currency),
		GrossRevenue:        m.GrossRevenue,
		ShareableAmount:     m.ShareableAmount,
		ExchangeRate:        m.ExchangeRate,
		BaseCurrency:        valueobject.Currency(m.BaseCurrency),
		ShareableAmountBase: m.ShareableAmountBase,
		Status:              m.Status,
		Notes:               m.Notes,
		Allocations:         allocs,
		ConfirmedAt:         m.ConfirmedAt,
		PaidAt:              m.PaidAt,
	}
}

// ProfitSharingRecordModelFromDomain creates a persistence model, allocations included.
func ProfitSharingRecordModelFromDomain(r *finance.ProfitSharingRecord) *ProfitSharingRecordModel {
	m := &ProfitSharingRecordModel{
		RecordNumber:        r.RecordNumber,
		CustomerID:          r.CustomerID,
		ProductID:           r.ProductID,
		PeriodDate:          r.PeriodDate,
		Currency:            r.Currency.String(),
		GrossRevenue:        r.GrossRevenue,
		ShareableAmount:     r.ShareableAmount,
		ExchangeRate:        r.ExchangeRate,
		BaseCurrency:        r.BaseCurrency.String(),
		ShareableAmountBase: r.ShareableAmountBase,
		Status:              r.Status,
		Notes:               r.Notes,
		ConfirmedAt:         r.ConfirmedAt,
		PaidAt:              r.PaidAt,
	}
	m.setTenantRoot(r.TenantAggregateRoot)
	m.Allocations = make([]ProfitSharingAllocationModel, len(r.Allocations))
	for i, a := range r.Allocations {
		m.Allocations[i] = ProfitSharingAllocationModel{
			ID:         uuid.New(),
			RecordID:   r.ID,
			LineNo:     i + 1,
			Party:      a.Party,
			ManagerID:  a.ManagerID,
			Percent:    a.Percent,
			Amount:     a.Amount,
			AmountBase: a.AmountBase,
		}
	}
	return m
}

// AssetTransactionModel is the persistence model for asset transactions.
type AssetTransactionModel struct {
	TenantAggregateModel
	TransactionNumber string                    `gorm:"type:varchar(50);not null;index"`
	CustomerID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type              finance.TransactionType   `gorm:"type:varchar(20);not null"`
	TradeDate         time.Time                 `gorm:"type:date;not null;index"`
	Quantity          decimal.Decimal           `gorm:"type:decimal(24,8);not null;default:0"`
	Price             decimal.Decimal           `gorm:"type:decimal(24,8);not null;default:0"`
	Amount            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string                    `gorm:"type:varchar(3);not null"`
	Status            finance.TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Reference         string                    `gorm:"type:varchar(100)"`
	Notes             string                    `gorm:"type:text"`
	SettledAt         *time.Time
}

// TableName returns the table name for GORM
func (AssetTransactionModel) TableName() string {
	return "asset_transactions"
}

// ToDomain converts the persistence model to a domain AssetTransaction.
func (m *AssetTransactionModel) ToDomain() *finance.AssetTransaction {
	return &finance.AssetTransaction{
		TenantAggregateRoot: m.tenantRoot(),
		TransactionNumber:   m.TransactionNumber,
		CustomerID:          m.CustomerID,
		ProductID:           m.ProductID,
		Type:                m.Type,
		TradeDate:           m.TradeDate,
		Quantity:            m.Quantity,
		Price:               m.Price,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		Status:              m.Status,
		Reference:           m.Reference,
		Notes:               m.Notes,
		SettledAt:           m.SettledAt,
	}
}

// AssetTransactionModelFromDomain creates a persistence model from a domain AssetTransaction.
func AssetTransactionModelFromDomain(t *finance.AssetTransaction) *AssetTransactionModel {
	m := &AssetTransactionModel{
		TransactionNumber: t.TransactionNumber,
		CustomerID:        t.CustomerID,
		ProductID:         t.ProductID,
		Type:              t.Type,
		TradeDate:         t.TradeDate,
		Quantity:          t.Quantity,
		Price:             t.Price,
		Amount:            t.Amount,
		Currency:          t.Currency.String(),
		Status:            t.Status,
		Reference:         t.Reference,
		Notes:             t.Notes,
		SettledAt:         t.SettledAt,
	}
	m.setTenantRoot(t.TenantAggregateRoot)
	return m
}

// ExchangeRateModel is the persistence model for exchange rates.
type ExchangeRateModel struct {
	TenantAggregateModel
	FromCurrency  string             `gorm:"type:varchar(3);not null;index:idx_exchange_rate_pair"`
	ToCurrency    string             `gorm:"type:varchar(3);not null;index:idx_exchange_rate_pair"`
	Rate          decimal.Decimal    `gorm:"type:decimal(24,16);not null"`
	EffectiveDate time.Time          `gorm:"type:date;not null;index:idx_exchange_rate_pair"`
	Source        finance.RateSource `gorm:"type:varchar(20);not null;default:'manual'"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain ExchangeRate.
func (m *ExchangeRateModel) ToDomain() *finance.ExchangeRate {
	return &finance.ExchangeRate{
		TenantAggregateRoot: m.tenantRoot(),
		FromCurrency:        valueobject.Currency(m.FromCurrency),
		ToCurrency:          valueobject.Currency(m.ToCurrency),
		Rate:                m.Rate,
		EffectiveDate:       m.EffectiveDate,
		Source:              m.Source,
	}
}

// ExchangeRateModelFromDomain creates a persistence model from a domain ExchangeRate.
func ExchangeRateModelFromDomain(r *finance.ExchangeRate) *ExchangeRateModel {
	m := &ExchangeRateModel{
		FromCurrency:  r.FromCurrency.String(),
		ToCurrency:    r.ToCurrency.String(),
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate,
		Source:        r.Source,
	}
	m.setTenantRoot(r.TenantAggregateRoot)
	return m
}

// AllModels lists every model for AutoMigrate
func AllModels() []any {
	return []any{
		&OrganizationModel{},
		&UserModel{},
		&MembershipModel{},
		&CustomerModel{},
		&RelationshipManagerModel{},
		&BankAccountModel{},
		&ProductModel{},
		&ExpenseModel{},
		&ProfitSharingRecordModel{},
		&ProfitSharingAllocationModel{},
		&AssetTransactionModel{},
		&ExchangeRateModel{},
	}
}

// UniqueKey is a per-organization unique column. organization_id comes from the
// embedded TenantAggregateModel, so struct tags cannot declare the composite index.
type UniqueKey struct {
	Name   string
	Table  string
	Column string
}

// TenantUniqueKeys mirrors the unique indexes of the versioned migrations
func TenantUniqueKeys() []UniqueKey {
	return []UniqueKey{
		{"idx_relationship_managers_org_code", RelationshipManagerModel{}.TableName(), "code"},
		{"idx_customers_org_code", CustomerModel{}.TableName(), "code"},
		{"idx_products_org_code", ProductModel{}.TableName(), "code"},
		{"idx_expenses_org_number", ExpenseModel{}.TableName(), "expense_number"},
		{"idx_profit_sharing_org_number", ProfitSharingRecordModel{}.TableName(), "record_number"},
		{"idx_asset_transactions_org_number", AssetTransactionModel{}.TableName(), "transaction_number"},
	}
}
