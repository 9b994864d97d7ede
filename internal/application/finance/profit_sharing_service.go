package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/catalog"
	"github.com/fintermediary/backoffice/internal/domain/finance"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateResolver looks up the exchange rate for a pair on a date
type RateResolver interface {
	Rate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, string, error)
}

// ProfitSharingService computes and records profit splits
type ProfitSharingService struct {
	recordRepo     finance.ProfitSharingRepository
	customerRepo   partner.CustomerRepository
	productRepo    catalog.ProductRepository
	managerRepo    partner.RelationshipManagerRepository
	orgRepo        organization.Repository
	rates          RateResolver
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProfitSharingService creates a new ProfitSharingService. rates may be nil, in which case
// records in a foreign currency must carry an explicit exchange rate.
func NewProfitSharingService(
	recordRepo finance.ProfitSharingRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	managerRepo partner.RelationshipManagerRepository,
	orgRepo organization.Repository,
	rates RateResolver,
) *ProfitSharingService {
	return &ProfitSharingService{
		recordRepo:   recordRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		managerRepo:  managerRepo,
		orgRepo:      orgRepo,
		rates:        rates,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProfitSharingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for non-fatal failures
func (s *ProfitSharingService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Calculate previews a split without saving anything
func (s *ProfitSharingService) Calculate(ctx context.Context, tenantID uuid.UUID, req CalculateProfitSharingRequest) (*ProfitSharingCalculationResponse, error) {
	period := time.Now()
	if req.PeriodDate != "" {
		var err error
		if period, err = parseDate("period_date", req.PeriodDate); err != nil {
			return nil, err
		}
	}
	shares := toShares(req.Shares)
	names, err := s.validateManagers(ctx, tenantID, shares)
	if err != nil {
		return nil, err
	}
	terms, err := s.buildTerms(ctx, tenantID, finance.ProfitSharingTerms{
		PeriodDate:      period,
		Currency:        req.Currency,
		GrossRevenue:    req.GrossRevenue,
		ShareableAmount: req.ShareableAmount,
		Shares:          shares,
	}, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	calc, err := finance.CalculateProfitSharing(terms)
	if err != nil {
		return nil, err
	}
	return &ProfitSharingCalculationResponse{
		Currency:            calc.Currency.String(),
		ShareableAmount:     calc.ShareableAmount,
		BaseCurrency:        calc.BaseCurrency.String(),
		ExchangeRate:        calc.ExchangeRate,
		ShareableAmountBase: calc.ShareableAmountBase,
		TotalPercent:        calc.TotalPercent,
		Allocations:         toAllocationResponses(calc.Allocations, names),
	}, nil
}

// Create records a draft split for a customer
func (s *ProfitSharingService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProfitSharingRequest) (*ProfitSharingResponse, error) {
	period, err := parseDate("period_date", req.PeriodDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCustomer(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}
	if req.ProductID != nil {
		if err := s.ensureProduct(ctx, tenantID, *req.ProductID); err != nil {
			return nil, err
		}
	}
	shares := toShares(req.Shares)
	names, err := s.validateManagers(ctx, tenantID, shares)
	if err != nil {
		return nil, err
	}
	terms, err := s.buildTerms(ctx, tenantID, finance.ProfitSharingTerms{
		CustomerID:      req.CustomerID,
		ProductID:       req.ProductID,
		PeriodDate:      period,
		Currency:        req.Currency,
		GrossRevenue:    req.GrossRevenue,
		ShareableAmount: req.ShareableAmount,
		Shares:          shares,
		Notes:           req.Notes,
	}, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	number, err := s.recordRepo.GenerateRecordNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	record, err := finance.NewProfitSharingRecord(tenantID, number, terms)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		record.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Profit sharing record created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("record_number", record.RecordNumber),
		zap.String("shareable_base", record.ShareableAmountBase.String()))

	response := ToProfitSharingResponse(record, names)
	return &response, nil
}

// GetByID retrieves a record with its allocations
func (s *ProfitSharingService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProfitSharingResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	names, err := s.managerNames(ctx, tenantID, record.ManagerIDs())
	if err != nil {
		return nil, err
	}
	response := ToProfitSharingResponse(record, names)
	return &response, nil
}

// List retrieves records with filtering and pagination
func (s *ProfitSharingService) List(ctx context.Context, tenantID uuid.UUID, filter ProfitSharingListFilter) ([]ProfitSharingResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()

	records, err := s.recordRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	for i := range records {
		ids = append(ids, records[i].ManagerIDs()...)
	}
	names, err := s.managerNames(ctx, tenantID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProfitSharingResponse, len(records))
	for i := range records {
		out[i] = ToProfitSharingResponse(&records[i], names)
	}
	return out, total, nil
}

// Update recalculates a draft record from the merged terms
func (s *ProfitSharingService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProfitSharingRequest) (*ProfitSharingResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if record.Status != finance.ProfitSharingStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft records can be changed")
	}

	terms := finance.ProfitSharingTerms{
		CustomerID:      record.CustomerID,
		ProductID:       record.ProductID,
		PeriodDate:      record.PeriodDate,
		Currency:        record.Currency.String(),
		GrossRevenue:    record.GrossRevenue,
		ShareableAmount: record.ShareableAmount,
		Shares:          record.Shares(),
		Notes:           record.Notes,
	}
	currencyChanged := false
	switch {
	case req.ClearProduct:
		terms.ProductID = nil
	case req.ProductID != nil:
		if err := s.ensureProduct(ctx, tenantID, *req.ProductID); err != nil {
			return nil, err
		}
		terms.ProductID = req.ProductID
	}
	if req.PeriodDate != nil {
		if terms.PeriodDate, err = parseDate("period_date", *req.PeriodDate); err != nil {
			return nil, err
		}
		currencyChanged = true
	}
	if req.Currency != nil {
		currencyChanged = currencyChanged || strings.ToUpper(strings.TrimSpace(*req.Currency)) != record.Currency.String()
		terms.Currency = *req.Currency
	}
	if req.GrossRevenue != nil {
		terms.GrossRevenue = *req.GrossRevenue
	}
	if req.ShareableAmount != nil {
		terms.ShareableAmount = *req.ShareableAmount
	}
	if req.Shares != nil {
		terms.Shares = toShares(req.Shares)
	}
	if req.Notes != nil {
		terms.Notes = *req.Notes
	}

	names, err := s.validateManagers(ctx, tenantID, terms.Shares)
	if err != nil {
		return nil, err
	}

	// Keep the stored rate unless the caller supplies one or the currency or period moved
	rate := req.ExchangeRate
	if rate == nil && !currencyChanged {
		stored := record.ExchangeRate
		rate = &stored
	}
	if terms, err = s.buildTerms(ctx, tenantID, terms, rate); err != nil {
		return nil, err
	}
	if err := record.Recalculate(terms); err != nil {
		return nil, err
	}

	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToProfitSharingResponse(record, names)
	return &response, nil
}

// Delete deletes a draft record
func (s *ProfitSharingService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !record.CanDelete() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Profit sharing record in status %s cannot be deleted", record.Status))
	}
	return s.recordRepo.DeleteForTenant(ctx, tenantID, id)
}

// Confirm locks a draft record's amounts
func (s *ProfitSharingService) Confirm(ctx context.Context, tenantID, id uuid.UUID) (*ProfitSharingResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.ProfitSharingRecord).Confirm)
}

// MarkPaid records payout of a confirmed record
func (s *ProfitSharingService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (*ProfitSharingResponse, error) {
	return s.transition(ctx, tenantID, id, (*finance.ProfitSharingRecord).MarkPaid)
}

// Summary totals confirmed and paid records in the range by party and manager
func (s *ProfitSharingService) Summary(ctx context.Context, tenantID uuid.UUID, dates DateRange) (*ProfitSharingSummaryResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	from, to := dates.Bounds()
	records, err := s.recordRepo.FindInRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	summary := finance.SummarizeProfitSharing(records, org.BaseCurrency)
	var ids []uuid.UUID
	for _, p := range summary.Parties {
		if p.ManagerID != nil {
			ids = append(ids, *p.ManagerID)
		}
	}
	names, err := s.managerNames(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	resp := &ProfitSharingSummaryResponse{
		From:               from,
		To:                 to,
		BaseCurrency:       summary.BaseCurrency.String(),
		RecordCount:        summary.RecordCount,
		TotalShareableBase: summary.TotalShareableBase,
		Parties:            make([]PartyTotalResponse, len(summary.Parties)),
	}
	for i, p := range summary.Parties {
		resp.Parties[i] = PartyTotalResponse{
			Party:       string(p.Party),
			ManagerID:   p.ManagerID,
			RecordCount: p.RecordCount,
			TotalBase:   p.TotalBase,
		}
		if p.ManagerID != nil {
			resp.Parties[i].ManagerName = names[*p.ManagerID]
		}
	}
	return resp, nil
}

func (s *ProfitSharingService) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(*finance.ProfitSharingRecord) error) (*ProfitSharingResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(record); err != nil {
		return nil, err
	}
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)

	names, err := s.managerNames(ctx, tenantID, record.ManagerIDs())
	if err != nil {
		return nil, err
	}
	response := ToProfitSharingResponse(record, names)
	return &response, nil
}

// buildTerms fills in the organization's base currency and, when the record currency
// differs from it and no rate was supplied, the stored exchange rate for the period date.
func (s *ProfitSharingService) buildTerms(ctx context.Context, tenantID uuid.UUID, terms finance.ProfitSharingTerms, rate *decimal.Decimal) (finance.ProfitSharingTerms, error) {
	org, err := s.orgRepo.FindByID(ctx, tenantID)
	if err != nil {
		return terms, err
	}
	terms.BaseCurrency = org.BaseCurrency.String()

	cur, err := shared.ValidateCurrency(terms.Currency)
	if err != nil {
		return terms, err
	}
	switch {
	case cur == org.BaseCurrency:
		terms.ExchangeRate = decimal.NewFromInt(1)
	case rate != nil:
		terms.ExchangeRate = *rate
	case s.rates != nil:
		resolved, _, err := s.rates.Rate(ctx, tenantID, cur, org.BaseCurrency, terms.PeriodDate)
		if err != nil {
			return terms, err
		}
		terms.ExchangeRate = resolved
	default:
		return terms, shared.NewDomainError(finance.ErrExchangeRateNotFound.Code,
			fmt.Sprintf("An exchange rate from %s to %s is required", cur, org.BaseCurrency))
	}
	return terms, nil
}

// validateManagers checks the share structure and that every referenced manager exists
// with the role its party requires. It returns manager names keyed by ID.
func (s *ProfitSharingService) validateManagers(ctx context.Context, tenantID uuid.UUID, shares []finance.Share) (map[uuid.UUID]string, error) {
	if err := finance.ValidateShares(shares); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, sh := range shares {
		if sh.ManagerID != nil {
			ids = append(ids, *sh.ManagerID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	managers, err := s.managerRepo.FindByIDs(ctx, tenantID, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	roles := make(map[uuid.UUID]partner.ManagerRole, len(managers))
	names := make(map[uuid.UUID]string, len(managers))
	for _, m := range managers {
		roles[m.ID] = m.Role
		names[m.ID] = m.Name
	}
	if err := finance.ValidateManagerRoles(shares, roles); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *ProfitSharingService) managerNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(ids) == 0 {
		return names, nil
	}
	managers, err := s.managerRepo.FindByIDs(ctx, tenantID, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, m := range managers {
		names[m.ID] = m.Name
	}
	return names, nil
}

func (s *ProfitSharingService) ensureCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return err
	}
	return nil
}

func (s *ProfitSharingService) ensureProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return err
	}
	return nil
}

// publishEvents runs after the record is saved; publish failures are only logged
func (s *ProfitSharingService) publishEvents(ctx context.Context, record *finance.ProfitSharingRecord) {
	if err := shared.PublishPending(ctx, s.eventPublisher, record); err != nil {
		s.logger.Warn("Failed to publish profit sharing events",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
