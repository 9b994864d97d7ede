package finance

import (
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", field+" must be a date in YYYY-MM-DD format")
}

// parseOptionalDate parses value when present; invalid values are treated as absent
func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := parseDate("date", value)
	if err != nil {
		return nil
	}
	return &t
}

// DateRange is an optional inclusive date range in query parameters
type DateRange struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// Bounds parses the range
func (r DateRange) Bounds() (from, to *time.Time) {
	return parseOptionalDate(r.From), parseOptionalDate(r.To)
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,oneof=travel entertainment marketing office training commission other"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency" binding:"required,currency"`
	IncurredAt  string          `json:"incurred_at" binding:"required"`
	RMID        *uuid.UUID      `json:"rm_id"`
	CreatedBy   *uuid.UUID      `json:"-"`
}

// UpdateExpenseRequest represents a request to edit a draft or rejected expense
type UpdateExpenseRequest struct {
	Category    *string          `json:"category" binding:"omitempty,oneof=travel entertainment marketing office training commission other"`
	Description *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency" binding:"omitempty,currency"`
	IncurredAt  *string          `json:"incurred_at"`
	RMID        *uuid.UUID       `json:"rm_id"`
	ClearRM     bool             `json:"clear_rm"`
}

// RejectExpenseRequest carries the rejection reason
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReceiptUploadRequest asks for a presigned upload URL
type ReceiptUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=200"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png application/pdf"`
	Size        int64  `json:"size" binding:"omitempty,min=1"`
}

// ReceiptURLResponse is a presigned receipt URL
type ReceiptURLResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	ExpenseNumber   string          `json:"expense_number"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	IncurredAt      time.Time       `json:"incurred_at"`
	RMID            *uuid.UUID      `json:"rm_id,omitempty"`
	Status          string          `json:"status"`
	HasReceipt      bool            `json:"has_receipt"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ExpenseListFilter represents filter options for the expense list
type ExpenseListFilter struct {
	DateRange
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,oneof=travel entertainment marketing office training commission other"`
	Status   string `form:"status" binding:"omitempty,oneof=draft submitted approved rejected paid"`
	Currency string `form:"currency" binding:"omitempty,currency"`
	RMID     string `form:"rm_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f ExpenseListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	filter.From, filter.To = f.Bounds()
	filter = filter.
		WithFilter("category", f.Category).
		WithFilter("status", f.Status).
		WithFilter("currency", strings.ToUpper(f.Currency)).
		WithFilter("rm_id", f.RMID)
	return filter.Normalize()
}

// ExpenseTotalResponse is one row of the expense summary
type ExpenseTotalResponse struct {
	Category string          `json:"category"`
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// ExpenseSummaryResponse totals expenses in a date range
type ExpenseSummaryResponse struct {
	From   *time.Time             `json:"from,omitempty"`
	To     *time.Time             `json:"to,omitempty"`
	Count  int                    `json:"count"`
	Totals []ExpenseTotalResponse `json:"totals"`
}

// ToExpenseResponse converts a domain Expense to ExpenseResponse
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		TenantID:        e.TenantID,
		ExpenseNumber:   e.ExpenseNumber,
		Category:        string(e.Category),
		Description:     e.Description,
		Amount:          e.Amount,
		Currency:        e.Currency.String(),
		IncurredAt:      e.IncurredAt,
		RMID:            e.RMID,
		Status:          string(e.Status),
		HasReceipt:      e.ReceiptKey != "",
		RejectionReason: e.RejectionReason,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		PaidAt:          e.PaidAt,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
}

// ToExpenseResponses converts a slice of expenses
func ToExpenseResponses(expenses []finance.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Profit sharing
// ---------------------------------------------------------------------------

// ShareRequest is one party's percentage in a split
type ShareRequest struct {
	Party     string          `json:"party" binding:"required,oneof=COMPANY RM1 RM2 FINDER1 FINDER2"`
	ManagerID *uuid.UUID      `json:"manager_id"`
	Percent   decimal.Decimal `json:"percent"`
}

// CalculateProfitSharingRequest previews a split without saving it
type CalculateProfitSharingRequest struct {
	Currency        string           `json:"currency" binding:"required,currency"`
	GrossRevenue    decimal.Decimal  `json:"gross_revenue"`
	ShareableAmount decimal.Decimal  `json:"shareable_amount"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate"`
	PeriodDate      string           `json:"period_date"`
	Shares          []ShareRequest   `json:"shares" binding:"required,min=1,max=5,dive"`
}

// CreateProfitSharingRequest records a profit split
type CreateProfitSharingRequest struct {
	CustomerID      uuid.UUID        `json:"customer_id" binding:"required"`
	ProductID       *uuid.UUID       `json:"product_id"`
	PeriodDate      string           `json:"period_date" binding:"required"`
	Currency        string           `json:"currency" binding:"required,currency"`
	GrossRevenue    decimal.Decimal  `json:"gross_revenue"`
	ShareableAmount decimal.Decimal  `json:"shareable_amount"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate"`
	Shares          []ShareRequest   `json:"shares" binding:"required,min=1,max=5,dive"`
	Notes           string           `json:"notes" binding:"max=2000"`
	CreatedBy       *uuid.UUID       `json:"-"`
}

// UpdateProfitSharingRequest changes a draft record. Omitted fields keep their value.
type UpdateProfitSharingRequest struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	ClearProduct    bool             `json:"clear_product"`
	PeriodDate      *string          `json:"period_date"`
	Currency        *string          `json:"currency" binding:"omitempty,currency"`
	GrossRevenue    *decimal.Decimal `json:"gross_revenue"`
	ShareableAmount *decimal.Decimal `json:"shareable_amount"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate"`
	Shares          []ShareRequest   `json:"shares" binding:"omitempty,min=1,max=5,dive"`
	Notes           *string          `json:"notes" binding:"omitempty,max=2000"`
}

// AllocationResponse is one party's resolved share
type AllocationResponse struct {
	Party       string          `json:"party"`
	ManagerID   *uuid.UUID      `json:"manager_id,omitempty"`
	ManagerName string          `json:"manager_name,omitempty"`
	Percent     decimal.Decimal `json:"percent"`
	Amount      decimal.Decimal `json:"amount"`
	AmountBase  decimal.Decimal `json:"amount_base"`
}

// ProfitSharingCalculationResponse is a previewed split
type ProfitSharingCalculationResponse struct {
	Currency            string               `json:"currency"`
	ShareableAmount     decimal.Decimal      `json:"shareable_amount"`
	BaseCurrency        string               `json:"base_currency"`
	ExchangeRate        decimal.Decimal      `json:"exchange_rate"`
	ShareableAmountBase decimal.Decimal      `json:"shareable_amount_base"`
	TotalPercent        decimal.Decimal      `json:"total_percent"`
	Allocations         []AllocationResponse `json:"allocations"`
}

// ProfitSharingResponse represents a profit-sharing record in API responses
type ProfitSharingResponse struct {
	ID                  uuid.UUID            `json:"id"`
	TenantID            uuid.UUID            `json:"tenant_id"`
	RecordNumber        string               `json:"record_number"`
	CustomerID          uuid.UUID            `json:"customer_id"`
	ProductID           *uuid.UUID           `json:"product_id,omitempty"`
	PeriodDate          time.Time            `json:"period_date"`
	Currency            string               `json:"currency"`
	GrossRevenue        decimal.Decimal      `json:"gross_revenue"`
	ShareableAmount     decimal.Decimal      `json:"shareable_amount"`
	ExchangeRate        decimal.Decimal      `json:"exchange_rate"`
	BaseCurrency        string               `json:"base_currency"`
	ShareableAmountBase decimal.Decimal      `json:"shareable_amount_base"`
	Status              string               `json:"status"`
	Notes               string               `json:"notes,omitempty"`
	Allocations         []AllocationResponse `json:"allocations"`
	ConfirmedAt         *time.Time           `json:"confirmed_at,omitempty"`
	PaidAt              *time.Time           `json:"paid_at,omitempty"`
	CreatedBy           *uuid.UUID           `json:"created_by,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Version             int                  `json:"version"`
}

// ProfitSharingListFilter represents filter options for the profit-sharing list
type ProfitSharingListFilter struct {
	DateRange
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=draft confirmed paid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	Currency   string `form:"currency" binding:"omitempty,currency"`
	RMID       string `form:"rm_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f ProfitSharingListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	filter.From, filter.To = f.Bounds()
	filter = filter.
		WithFilter("status", f.Status).
		WithFilter("customer_id", f.CustomerID).
		WithFilter("product_id", f.ProductID).
		WithFilter("currency", strings.ToUpper(f.Currency)).
		WithFilter("rm_id", f.RMID)
	return filter.Normalize()
}

// PartyTotalResponse is one party's total in the profit-sharing summary
type PartyTotalResponse struct {
	Party       string          `json:"party"`
	ManagerID   *uuid.UUID      `json:"manager_id,omitempty"`
	ManagerName string          `json:"manager_name,omitempty"`
	RecordCount int             `json:"record_count"`
	TotalBase   decimal.Decimal `json:"total_base"`
}

// ProfitSharingSummaryResponse totals confirmed and paid records in the base currency
type ProfitSharingSummaryResponse struct {
	From               *time.Time           `json:"from,omitempty"`
	To                 *time.Time           `json:"to,omitempty"`
	BaseCurrency       string               `json:"base_currency"`
	RecordCount        int                  `json:"record_count"`
	TotalShareableBase decimal.Decimal      `json:"total_shareable_base"`
	Parties            []PartyTotalResponse `json:"parties"`
}

func toShares(reqs []ShareRequest) []finance.Share {
	shares := make([]finance.Share, len(reqs))
	for i, r := range reqs {
		shares[i] = finance.Share{
			Party:     finance.Party(strings.ToUpper(strings.TrimSpace(r.Party))),
			ManagerID: r.ManagerID,
			Percent:   r.Percent,
		}
	}
	return shares
}

func toAllocationResponses(allocs []finance.Allocation, names map[uuid.UUID]string) []AllocationResponse {
	out := make([]AllocationResponse, len(allocs))
	for i, a := range allocs {
		out[i] = AllocationResponse{
			Party:      string(a.Party),
			ManagerID:  a.ManagerID,
			Percent:    a.Percent,
			Amount:     a.Amount,
			AmountBase: a.AmountBase,
		}
		if a.ManagerID != nil {
			out[i].ManagerName = names[*a.ManagerID]
		}
	}
	return out
}

// ToProfitSharingResponse converts a domain record to ProfitSharingResponse.
// names resolves manager IDs to display names and may be nil.
func ToProfitSharingResponse(r *finance.ProfitSharingRecord, names map[uuid.UUID]string) ProfitSharingResponse {
	return ProfitSharingResponse{
		ID:                  r.ID,
		TenantID:            r.TenantID,
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
		Status:              string(r.Status),
		Notes:               r.Notes,
		Allocations:         toAllocationResponses(r.Allocations, names),
		ConfirmedAt:         r.ConfirmedAt,
		PaidAt:              r.PaidAt,
		CreatedBy:           r.CreatedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		Version:             r.Version,
	}
}

// ---------------------------------------------------------------------------
// Asset transactions
// ---------------------------------------------------------------------------

// CreateAssetTransactionRequest records a customer's movement in a product
type CreateAssetTransactionRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=subscription redemption dividend fee transfer_in transfer_out"`
	TradeDate  string          `json:"trade_date" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" binding:"omitempty,currency"`
	Reference  string          `json:"reference" binding:"max=100"`
	Notes      string          `json:"notes" binding:"max=2000"`
	CreatedBy  *uuid.UUID      `json:"-"`
}

// UpdateAssetTransactionRequest edits a pending transaction. Omitted fields keep their value.
type UpdateAssetTransactionRequest struct {
	Type      *string          `json:"type" binding:"omitempty,oneof=subscription redemption dividend fee transfer_in transfer_out"`
	TradeDate *string          `json:"trade_date"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Amount    *decimal.Decimal `json:"amount"`
	Currency  *string          `json:"currency" binding:"omitempty,currency"`
	Reference *string          `json:"reference" binding:"omitempty,max=100"`
	Notes     *string          `json:"notes" binding:"omitempty,max=2000"`
}

// AssetTransactionResponse represents an asset transaction in API responses
type AssetTransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	TransactionNumber string          `json:"transaction_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Type              string          `json:"type"`
	TradeDate         time.Time       `json:"trade_date"`
	Quantity          decimal.Decimal `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Reference         string          `json:"reference,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	SettledAt         *time.Time      `json:"settled_at,omitempty"`
	CreatedBy         *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// AssetTransactionListFilter represents filter options for the asset transaction list
type AssetTransactionListFilter struct {
	DateRange
	Search     string `form:"search"`
	Type       string `form:"type" binding:"omitempty,oneof=subscription redemption dividend fee transfer_in transfer_out"`
	Status     string `form:"status" binding:"omitempty,oneof=pending settled cancelled"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	Currency   string `form:"currency" binding:"omitempty,currency"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f AssetTransactionListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	filter.From, filter.To = f.Bounds()
	filter = filter.
		WithFilter("type", f.Type).
		WithFilter("status", f.Status).
		WithFilter("customer_id", f.CustomerID).
		WithFilter("product_id", f.ProductID).
		WithFilter("currency", strings.ToUpper(f.Currency))
	return filter.Normalize()
}

// HoldingResponse is a customer's net position in one product and currency
type HoldingResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductCode      string          `json:"product_code,omitempty"`
	ProductName      string          `json:"product_name,omitempty"`
	Currency         string          `json:"currency"`
	Quantity         decimal.Decimal `json:"quantity"`
	NetInvested      decimal.Decimal `json:"net_invested"`
	TransactionCount int             `json:"transaction_count"`
}

// ToAssetTransactionResponse converts a domain AssetTransaction to its response
func ToAssetTransactionResponse(t *finance.AssetTransaction) AssetTransactionResponse {
	return AssetTransactionResponse{
		ID:                t.ID,
		TenantID:          t.TenantID,
		TransactionNumber: t.TransactionNumber,
		CustomerID:        t.CustomerID,
		ProductID:         t.ProductID,
		Type:              string(t.Type),
		TradeDate:         t.TradeDate,
		Quantity:          t.Quantity,
		Price:             t.Price,
		Amount:            t.Amount,
		Currency:          t.Currency.String(),
		Status:            string(t.Status),
		Reference:         t.Reference,
		Notes:             t.Notes,
		SettledAt:         t.SettledAt,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		Version:           t.Version,
	}
}

// ToAssetTransactionResponses converts a slice of transactions
func ToAssetTransactionResponses(txs []finance.AssetTransaction) []AssetTransactionResponse {
	out := make([]AssetTransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToAssetTransactionResponse(&txs[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Exchange rates
// ---------------------------------------------------------------------------

// ExchangeRateQuery looks up the rate for a pair on a date (today when empty)
type ExchangeRateQuery struct {
	From string `form:"from" binding:"required,len=3"`
	To   string `form:"to" binding:"required,len=3"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertQuery converts an amount between currencies
type ConvertQuery struct {
	ExchangeRateQuery
	Amount decimal.Decimal `form:"amount"`
}

// UpsertExchangeRateRequest sets a manual rate for a pair on a date
type UpsertExchangeRateRequest struct {
	FromCurrency  string          `json:"from_currency" binding:"required,currency"`
	ToCurrency    string          `json:"to_currency" binding:"required,currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate string          `json:"effective_date"`
}

// ExchangeRateLookupResponse is a resolved rate
type ExchangeRateLookupResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Date   time.Time       `json:"date"`
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

// ConvertResponse is a converted amount
type ConvertResponse struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Date            time.Time       `json:"date"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Formatted       string          `json:"formatted"`
}

// ExchangeRateResponse represents a stored rate
type ExchangeRateResponse struct {
	ID            uuid.UUID       `json:"id"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effective_date"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ExchangeRateListFilter represents filter options for the exchange rate list
type ExchangeRateListFilter struct {
	DateRange
	FromCurrency string `form:"from_currency" binding:"omitempty,currency"`
	ToCurrency   string `form:"to_currency" binding:"omitempty,currency"`
	Source       string `form:"source" binding:"omitempty,oneof=manual provider"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomainFilter converts the list filter to a shared.Filter
func (f ExchangeRateListFilter) ToDomainFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Filters:  make(map[string]any),
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "effective_date"
	}
	filter.From, filter.To = f.Bounds()
	filter = filter.
		WithFilter("from_currency", strings.ToUpper(f.FromCurrency)).
		WithFilter("to_currency", strings.ToUpper(f.ToCurrency)).
		WithFilter("source", f.Source)
	return filter.Normalize()
}

// ToExchangeRateResponse converts a domain ExchangeRate to its response
func ToExchangeRateResponse(r *finance.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ID:            r.ID,
		FromCurrency:  r.FromCurrency.String(),
		ToCurrency:    r.ToCurrency.String(),
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate,
		Source:        string(r.Source),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToExchangeRateResponses converts a slice of rates
func ToExchangeRateResponses(rates []finance.ExchangeRate) []ExchangeRateResponse {
	out := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		out[i] = ToExchangeRateResponse(&rates[i])
	}
	return out
}
