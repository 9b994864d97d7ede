package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AssetTransactionService records customer subscriptions, redemptions and other movements
type AssetTransactionService struct {
	txRepo         finance.AssetTransactionRepository
	customerRepo   partner.CustomerRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAssetTransactionService creates a new AssetTransactionService
func NewAssetTransactionService(txRepo finance.AssetTransactionRepository, customerRepo partner.CustomerRepository, productRepo catalog.ProductRepository) *AssetTransactionService {
	return &AssetTransactionService{
		txRepo:       txRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AssetTransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for non-fatal failures
func (s *AssetTransactionService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create records a pending transaction. The currency defaults to the product's.
func (s *AssetTransactionService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAssetTransactionRequest) (*AssetTransactionResponse, error) {
	tradeDate, err := parseDate("trade_date", req.TradeDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return nil, err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = product.Currency.String()
	}

	number, err := s.txRepo.GenerateTransactionNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tx, err := finance.NewAssetTransaction(tenantID, number, req.CustomerID, req.ProductID, finance.TransactionDetails{
		Type:      finance.TransactionType(req.Type),
		TradeDate: tradeDate,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Amount:    req.Amount,
		Currency:  currency,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		tx.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	response := ToAssetTransactionResponse(tx)
	return &response, nil
}

// GetByID retrieves a transaction by ID
func (s *AssetTransactionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AssetTransactionResponse, error) {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToAssetTransactionResponse(tx)
	return &response, nil
}

// List retrieves transactions with filtering and pagination
func (s *AssetTransactionService) List(ctx context.Context, tenantID uuid.UUID, filter AssetTransactionListFilter) ([]AssetTransactionResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	txs, err := s.txRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAssetTransactionResponses(txs), total, nil
}

// Update edits a pending transaction
func (s *AssetTransactionService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateAssetTransactionRequest) (*AssetTransactionResponse, error) {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	d := finance.TransactionDetails{
		Type:      tx.Type,
		TradeDate: tx.TradeDate,
		Quantity:  tx.Quantity,
		Price:     tx.Price,
		Amount:    tx.Amount,
		Currency:  tx.Currency.String(),
		Reference: tx.Reference,
		Notes:     tx.Notes,
	}
	if req.Type != nil {
		d.Type = finance.TransactionType(*req.Type)
	}
	if req.TradeDate != nil {
		if d.TradeDate, err = parseDate("trade_date", *req.TradeDate); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil || req.Price != nil {
		// Recompute the amount from quantity and price unless it is given explicitly
		d.Amount = decimal.Zero
	}
	if req.Quantity != nil {
		d.Quantity = *req.Quantity
	}
	if req.Price != nil {
		d.Price = *req.Price
	}
	if req.Amount != nil {
		d.Amount = *req.Amount
	}
	if req.Currency != nil {
		d.Currency = *req.Currency
	}
	if req.Reference != nil {
		d.Reference = *req.Reference
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	if err := tx.Update(d); err != nil {
		return nil, err
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	response := ToAssetTransactionResponse(tx)
	return &response, nil
}

// Delete deletes a transaction that has not settled
func (s *AssetTransactionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !tx.CanDelete() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transaction in status %s cannot be deleted", tx.Status))
	}
	return s.txRepo.DeleteForTenant(ctx, tenantID, id)
}

// Settle marks a pending transaction settled
func (s *AssetTransactionService) Settle(ctx context.Context, tenantID, id uuid.UUID) (*AssetTransactionResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.AssetTransaction).Settle)
}

// Cancel cancels a pending transaction
func (s *AssetTransactionService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*AssetTransactionResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.AssetTransaction).Cancel)
}

// CustomerHoldings nets a customer's settled transactions per product and currency
func (s *AssetTransactionService) CustomerHoldings(ctx context.Context, tenantID, customerID uuid.UUID) ([]HoldingResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	txs, err := s.txRepo.FindSettledByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	holdings := finance.ComputeHoldings(txs)
	if len(holdings) == 0 {
		return []HoldingResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, tenantID, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	out := make([]HoldingResponse, len(holdings))
	for i, h := range holdings {
		out[i] = HoldingResponse{
			ProductID:        h.ProductID,
			Currency:         h.Currency.String(),
			Quantity:         h.Quantity,
			NetInvested:      h.NetInvested,
			TransactionCount: h.TransactionCount,
		}
		if p, ok := byID[h.ProductID]; ok {
			out[i].ProductCode = p.Code
			out[i].ProductName = p.Name
		}
	}
	return out, nil
}

func (s *AssetTransactionService) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(*finance.AssetTransaction) error) (*AssetTransactionResponse, error) {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(tx); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, tx)

	response := ToAssetTransactionResponse(tx)
	return &response, nil
}

func (s *AssetTransactionService) publishEvents(ctx context.Context, tx *finance.AssetTransaction) {
	if err := shared.PublishPending(ctx, s.eventPublisher, tx); err != nil {
		s.logger.Warn("Failed to publish asset transaction events",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err))
	}
}
