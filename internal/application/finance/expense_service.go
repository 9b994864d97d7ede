package finance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultReceiptURLExpiry is used when no expiry is configured
const DefaultReceiptURLExpiry = 15 * time.Minute

// ExpenseService handles expense recording and approval
type ExpenseService struct {
	expenseRepo    finance.ExpenseRepository
	managerRepo    partner.RelationshipManagerRepository
	receipts       ReceiptStorage
	receiptExpiry  time.Duration
	maxReceiptSize int64
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository, managerRepo partner.RelationshipManagerRepository) *ExpenseService {
	return &ExpenseService{
		expenseRepo:   expenseRepo,
		managerRepo:   managerRepo,
		receiptExpiry: DefaultReceiptURLExpiry,
		logger:        zap.NewNop(),
	}
}

// SetReceiptStorage enables receipt uploads. maxSize of zero disables the size check.
func (s *ExpenseService) SetReceiptStorage(storage ReceiptStorage, expiry time.Duration, maxSize int64) {
	s.receipts = storage
	if expiry > 0 {
		s.receiptExpiry = expiry
	}
	s.maxReceiptSize = maxSize
}

// SetEventPublisher sets the event publisher for domain events
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for non-fatal failures
func (s *ExpenseService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create records a draft expense
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	incurredAt, err := parseDate("incurred_at", req.IncurredAt)
	if err != nil {
		return nil, err
	}
	if req.RMID != nil {
		if err := s.ensureRM(ctx, tenantID, *req.RMID); err != nil {
			return nil, err
		}
	}

	number, err := s.expenseRepo.GenerateExpenseNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	expense, err := finance.NewExpense(tenantID, number, finance.ExpenseCategory(req.Category),
		req.Description, req.Amount, req.Currency, incurredAt)
	if err != nil {
		return nil, err
	}
	expense.RMID = req.RMID
	if req.CreatedBy != nil {
		expense.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	expenses, err := s.expenseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToExpenseResponses(expenses), total, nil
}

// Update edits a draft or rejected expense
func (s *ExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	category, description, amount, currency, incurredAt :=
		expense.Category, expense.Description, expense.Amount, expense.Currency.String(), expense.IncurredAt
	if req.Category != nil {
		category = finance.ExpenseCategory(*req.Category)
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Amount != nil {
		amount = *req.Amount
	}
	if req.Currency != nil {
		currency = *req.Currency
	}
	if req.IncurredAt != nil {
		if incurredAt, err = parseDate("incurred_at", *req.IncurredAt); err != nil {
			return nil, err
		}
	}
	if err := expense.Update(category, description, amount, currency, incurredAt); err != nil {
		return nil, err
	}

	switch {
	case req.ClearRM:
		if err := expense.AssignRM(nil); err != nil {
			return nil, err
		}
	case req.RMID != nil:
		if err := s.ensureRM(ctx, tenantID, *req.RMID); err != nil {
			return nil, err
		}
		if err := expense.AssignRM(req.RMID); err != nil {
			return nil, err
		}
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete deletes a draft or rejected expense and its receipt
func (s *ExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !expense.CanDelete() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Expense in status %s cannot be deleted", expense.Status))
	}
	if err := s.expenseRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	if expense.ReceiptKey != "" && s.receipts != nil {
		if err := s.receipts.DeleteObject(ctx, expense.ReceiptKey); err != nil {
			s.logger.Warn("Failed to delete receipt",
				zap.String("expense_id", id.String()),
				zap.String("key", expense.ReceiptKey),
				zap.Error(err))
		}
	}
	return nil
}

// Submit sends a draft expense for approval
func (s *ExpenseService) Submit(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.Expense).Submit)
}

// Approve approves a submitted expense
func (s *ExpenseService) Approve(ctx context.Context, tenantID, id, approverID uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, tenantID, id, func(e *finance.Expense) error {
		return e.Approve(approverID)
	})
}

// Reject rejects a submitted expense
func (s *ExpenseService) Reject(ctx context.Context, tenantID, id, approverID uuid.UUID, req RejectExpenseRequest) (*ExpenseResponse, error) {
	return s.transition(ctx, tenantID, id, func(e *finance.Expense) error {
		return e.Reject(approverID, req.Reason)
	})
}

// MarkPaid records reimbursement of an approved expense
func (s *ExpenseService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.Expense).MarkPaid)
}

// ReceiptUploadURL returns a presigned PUT URL and records the object key on the expense
func (s *ExpenseService) ReceiptUploadURL(ctx context.Context, tenantID, id uuid.UUID, req ReceiptUploadRequest) (*ReceiptURLResponse, error) {
	if s.receipts == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Receipt storage is not configured")
	}
	if s.maxReceiptSize > 0 && req.Size > s.maxReceiptSize {
		return nil, shared.NewDomainError("RECEIPT_TOO_LARGE",
			fmt.Sprintf("Receipt cannot exceed %d bytes", s.maxReceiptSize))
	}
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	key := receiptKey(tenantID, id, req.FileName)
	if err := expense.AttachReceipt(key); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.receipts.GenerateUploadURL(ctx, key, req.ContentType, s.receiptExpiry)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	return &ReceiptURLResponse{URL: url, Method: http.MethodPut, Key: key, ExpiresAt: expiresAt}, nil
}

// ReceiptDownloadURL returns a presigned GET URL for the expense's receipt
func (s *ExpenseService) ReceiptDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*ReceiptURLResponse, error) {
	if s.receipts == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Receipt storage is not configured")
	}
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptKey == "" {
		return nil, shared.NewDomainError("RECEIPT_NOT_FOUND", "Expense has no receipt")
	}
	exists, err := s.receipts.ObjectExists(ctx, expense.ReceiptKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt has not been uploaded")
	}
	url, expiresAt, err := s.receipts.GenerateDownloadURL(ctx, expense.ReceiptKey, s.receiptExpiry)
	if err != nil {
		return nil, err
	}
	return &ReceiptURLResponse{URL: url, Method: http.MethodGet, Key: expense.ReceiptKey, ExpiresAt: expiresAt}, nil
}

// Summary totals expenses incurred within the range by category, status and currency
func (s *ExpenseService) Summary(ctx context.Context, tenantID uuid.UUID, dates DateRange) (*ExpenseSummaryResponse, error) {
	from, to := dates.Bounds()
	expenses, err := s.expenseRepo.FindInRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	totals := finance.SummarizeExpenses(expenses)
	resp := &ExpenseSummaryResponse{
		From:   from,
		To:     to,
		Count:  len(expenses),
		Totals: make([]ExpenseTotalResponse, len(totals)),
	}
	for i, t := range totals {
		resp.Totals[i] = ExpenseTotalResponse{
			Category: string(t.Category),
			Status:   string(t.Status),
			Currency: t.Currency.String(),
			Count:    t.Count,
			Total:    t.Total,
		}
	}
	return resp, nil
}

func (s *ExpenseService) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(*finance.Expense) error) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(expense); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, expense)

	response := ToExpenseResponse(expense)
	return &response, nil
}

// ensureRM checks that the manager exists and is an RM, not a finder
func (s *ExpenseService) ensureRM(ctx context.Context, tenantID, rmID uuid.UUID) error {
	manager, err := s.managerRepo.FindByIDForTenant(ctx, tenantID, rmID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_RM", "Relationship manager not found")
		}
		return err
	}
	if manager.Role != partner.ManagerRoleRM {
		return shared.NewDomainError("INVALID_RM", "Expenses can only be attributed to an RM")
	}
	return nil
}

func (s *ExpenseService) publishEvents(ctx context.Context, expense *finance.Expense) {
	if err := shared.PublishPending(ctx, s.eventPublisher, expense); err != nil {
		s.logger.Warn("Failed to publish expense events",
			zap.String("expense_id", expense.ID.String()),
			zap.Error(err))
	}
}

// receiptKey builds receipts/<org>/<expense>/<random>-<file>
func receiptKey(tenantID, expenseID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s/%s-%s", tenantID, expenseID, uuid.NewString()[:8], name)
}
