package finance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestExpense(t *testing.T, tenantID uuid.UUID) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense(tenantID, "EXP-2026-00001", finance.ExpenseCategoryTravel,
		"Client visit", dec("120.50"), "SGD", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return e
}

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates draft attributed to an RM", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		managers := new(MockManagerRepository)
		service := NewExpenseService(expenses, managers)
		rm := createTestManager(t, tenantID, "RM01", "Alice Lim", partner.ManagerRoleRM)
		createdBy := uuid.New()

		managers.On("FindByIDForTenant", ctx, tenantID, rm.ID).Return(rm, nil)
		expenses.On("GenerateExpenseNumber", ctx, tenantID).Return("EXP-2026-00007", nil)
		expenses.On("Save", ctx, mock.AnythingOfType("*finance.Expense")).Return(nil)

		resp, err := service.Create(ctx, tenantID, CreateExpenseRequest{
			Category:    "entertainment",
			Description: "Dinner with prospect",
			Amount:      dec("88.456"),
			Currency:    "sgd",
			IncurredAt:  "2026-03-05",
			RMID:        &rm.ID,
			CreatedBy:   &createdBy,
		})

		require.NoError(t, err)
		assert.Equal(t, "EXP-2026-00007", resp.ExpenseNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "SGD", resp.Currency)
		assert.True(t, dec("88.46").Equal(resp.Amount))
		assert.Equal(t, rm.ID, *resp.RMID)
		assert.Equal(t, createdBy, *resp.CreatedBy)
		expenses.AssertExpectations(t)
	})

	t.Run("finder cannot be attributed", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		managers := new(MockManagerRepository)
		service := NewExpenseService(expenses, managers)
		finder := createTestManager(t, tenantID, "F01", "Bob Ng", partner.ManagerRoleFinder)
		managers.On("FindByIDForTenant", ctx, tenantID, finder.ID).Return(finder, nil)

		_, err := service.Create(ctx, tenantID, CreateExpenseRequest{
			Category: "travel", Description: "Taxi", Amount: dec("10"), Currency: "SGD",
			IncurredAt: "2026-03-05", RMID: &finder.ID,
		})

		requireCode(t, err, "INVALID_RM")
		expenses.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid date", func(t *testing.T) {
		service := NewExpenseService(new(MockExpenseRepository), new(MockManagerRepository))

		_, err := service.Create(ctx, tenantID, CreateExpenseRequest{
			Category: "travel", Description: "Taxi", Amount: dec("10"), Currency: "SGD", IncurredAt: "05/03/2026",
		})

		requireCode(t, err, "INVALID_DATE")
	})
}

func TestExpenseService_ApprovalFlow(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	approver := uuid.New()
	expense := createTestExpense(t, tenantID)

	expenses := new(MockExpenseRepository)
	publisher := new(MockEventPublisher)
	service := NewExpenseService(expenses, new(MockManagerRepository))
	service.SetEventPublisher(publisher)

	expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)
	expenses.On("Save", ctx, expense).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := service.Submit(ctx, tenantID, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", resp.Status)

	resp, err = service.Reject(ctx, tenantID, expense.ID, approver, RejectExpenseRequest{Reason: "Missing receipt"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "Missing receipt", resp.RejectionReason)

	// Editing a rejected expense returns it to draft
	desc := "Client visit (taxi)"
	resp, err = service.Update(ctx, tenantID, expense.ID, UpdateExpenseRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
	assert.Empty(t, resp.RejectionReason)

	_, err = service.Submit(ctx, tenantID, expense.ID)
	require.NoError(t, err)
	resp, err = service.Approve(ctx, tenantID, expense.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, approver, *resp.ApprovedBy)

	resp, err = service.MarkPaid(ctx, tenantID, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)

	_, err = service.Approve(ctx, tenantID, expense.ID, approver)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	var published []string
	for _, call := range publisher.Calls {
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			published = append(published, e.EventType())
		}
	}
	assert.Equal(t, []string{
		finance.EventTypeExpenseSubmitted,
		finance.EventTypeExpenseRejected,
		finance.EventTypeExpenseSubmitted,
		finance.EventTypeExpenseApproved,
	}, published)
	assert.Empty(t, expense.GetDomainEvents())
}

func TestExpenseService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	expense := createTestExpense(t, tenantID)

	expenses := new(MockExpenseRepository)
	publisher := new(MockEventPublisher)
	service := NewExpenseService(expenses, new(MockManagerRepository))
	service.SetEventPublisher(publisher)

	expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)
	expenses.On("Save", ctx, expense).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker down"))

	resp, err := service.Submit(ctx, tenantID, expense.ID)

	require.NoError(t, err)
	assert.Equal(t, "submitted", resp.Status)
	assert.Empty(t, expense.GetDomainEvents())
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("draft with receipt", func(t *testing.T) {
		expense := createTestExpense(t, tenantID)
		require.NoError(t, expense.AttachReceipt("receipts/x/y/z.pdf"))
		expenses := new(MockExpenseRepository)
		storage := new(MockReceiptStorage)
		service := NewExpenseService(expenses, new(MockManagerRepository))
		service.SetReceiptStorage(storage, time.Minute, 0)

		expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)
		expenses.On("DeleteForTenant", ctx, tenantID, expense.ID).Return(nil)
		storage.On("DeleteObject", ctx, "receipts/x/y/z.pdf").Return(nil)

		require.NoError(t, service.Delete(ctx, tenantID, expense.ID))
		storage.AssertExpectations(t)
	})

	t.Run("submitted cannot be deleted", func(t *testing.T) {
		expense := createTestExpense(t, tenantID)
		require.NoError(t, expense.Submit())
		expenses := new(MockExpenseRepository)
		service := NewExpenseService(expenses, new(MockManagerRepository))
		expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)

		err := service.Delete(ctx, tenantID, expense.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		expenses.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExpenseService_Receipts(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	expiresAt := time.Now().Add(5 * time.Minute)

	t.Run("upload url records key", func(t *testing.T) {
		expense := createTestExpense(t, tenantID)
		expenses := new(MockExpenseRepository)
		storage := new(MockReceiptStorage)
		service := NewExpenseService(expenses, new(MockManagerRepository))
		service.SetReceiptStorage(storage, 5*time.Minute, 1024)

		expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)
		expenses.On("Save", ctx, expense).Return(nil)
		storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "application/pdf", 5*time.Minute).
			Return("https://s3.example/upload", expiresAt, nil)

		resp, err := service.ReceiptUploadURL(ctx, tenantID, expense.ID, ReceiptUploadRequest{
			FileName: "../taxi receipt.pdf", ContentType: "application/pdf", Size: 512,
		})

		require.NoError(t, err)
		assert.Equal(t, "PUT", resp.Method)
		assert.True(t, strings.HasPrefix(resp.Key, "receipts/"+tenantID.String()+"/"+expense.ID.String()+"/"))
		assert.True(t, strings.HasSuffix(resp.Key, "-taxi_receipt.pdf"))
		assert.Equal(t, resp.Key, expense.ReceiptKey)
	})

	t.Run("too large", func(t *testing.T) {
		service := NewExpenseService(new(MockExpenseRepository), new(MockManagerRepository))
		service.SetReceiptStorage(new(MockReceiptStorage), 0, 1024)

		_, err := service.ReceiptUploadURL(ctx, tenantID, uuid.New(), ReceiptUploadRequest{
			FileName: "big.png", ContentType: "image/png", Size: 4096,
		})

		requireCode(t, err, "RECEIPT_TOO_LARGE")
	})

	t.Run("download without receipt", func(t *testing.T) {
		expense := createTestExpense(t, tenantID)
		expenses := new(MockExpenseRepository)
		service := NewExpenseService(expenses, new(MockManagerRepository))
		service.SetReceiptStorage(new(MockReceiptStorage), 0, 0)
		expenses.On("FindByIDForTenant", ctx, tenantID, expense.ID).Return(expense, nil)

		_, err := service.ReceiptDownloadURL(ctx, tenantID, expense.ID)

		requireCode(t, err, "RECEIPT_NOT_FOUND")
	})

	t.Run("storage not configured", func(t *testing.T) {
		service := NewExpenseService(new(MockExpenseRepository), new(MockManagerRepository))

		_, err := service.ReceiptDownloadURL(ctx, tenantID, uuid.New())

		requireCode(t, err, "STORAGE_UNAVAILABLE")
	})
}

func TestExpenseService_Summary(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	a := createTestExpense(t, tenantID)
	b := createTestExpense(t, tenantID)
	c, err := finance.NewExpense(tenantID, "EXP-2026-00003", finance.ExpenseCategoryOffice,
		"Printer paper", dec("30"), "SGD", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	expenses := new(MockExpenseRepository)
	service := NewExpenseService(expenses, new(MockManagerRepository))
	expenses.On("FindInRange", ctx, tenantID, mock.Anything, mock.Anything).
		Return([]finance.Expense{*a, *b, *c}, nil)

	resp, err := service.Summary(ctx, tenantID, DateRange{From: "2026-03-01", To: "2026-03-31"})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
	require.NotNil(t, resp.From)
	assert.Equal(t, "2026-03-01", resp.From.Format("2006-01-02"))
	require.Len(t, resp.Totals, 2)
	assert.Equal(t, "office", resp.Totals[0].Category)
	assert.Equal(t, "travel", resp.Totals[1].Category)
	assert.Equal(t, 2, resp.Totals[1].Count)
	assert.True(t, dec("241").Equal(resp.Totals[1].Total))
}

func TestExpenseListFilter_ToDomainFilter(t *testing.T) {
	rmID := uuid.New().String()
	f := ExpenseListFilter{
		DateRange: DateRange{From: "2026-01-01"},
		Status:    "submitted",
		Currency:  "usd",
		RMID:      rmID,
		PageSize:  500,
	}.ToDomainFilter()

	assert.Equal(t, "submitted", f.Filters["status"])
	assert.Equal(t, "USD", f.Filters["currency"])
	assert.Equal(t, rmID, f.Filters["rm_id"])
	assert.NotContains(t, f.Filters, "category")
	assert.Equal(t, shared.MaxPageSize, f.PageSize)
	require.NotNil(t, f.From)
	assert.Nil(t, f.To)
}
