package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the organizations a tenant-wide job runs for
type TenantProvider interface {
	ActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RateRefresher pulls the latest exchange rates for one organization and
// returns how many rates were stored
type RateRefresher interface {
	RefreshRates(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// RateRefreshExecutor refreshes exchange rates for one organization or,
// when the job has no tenant, for every active organization
type RateRefreshExecutor struct {
	refresher RateRefresher
	tenants   TenantProvider
	logger    *zap.Logger
}

// NewRateRefreshExecutor creates the executor for JobKindExchangeRateRefresh
func NewRateRefreshExecutor(refresher RateRefresher, tenants TenantProvider, logger *zap.Logger) *RateRefreshExecutor {
	return &RateRefreshExecutor{refresher: refresher, tenants: tenants, logger: logger}
}

// Execute implements JobExecutor
func (e *RateRefreshExecutor) Execute(ctx context.Context, job *Job) error {
	if job.TenantID != nil {
		_, err := e.refreshOne(ctx, *job.TenantID)
		return err
	}

	ids, err := e.tenants.ActiveOrganizationIDs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	var errs []error
	total := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := e.refreshOne(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}

	e.logger.Info("Exchange rates refreshed",
		zap.Int("organizations", len(ids)),
		zap.Int("rates", total),
		zap.Int("failures", len(errs)),
	)
	return errors.Join(errs...)
}

func (e *RateRefreshExecutor) refreshOne(ctx context.Context, tenantID uuid.UUID) (int, error) {
	n, err := e.refresher.RefreshRates(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("organization %s: %w", tenantID, err)
	}
	return n, nil
}

var _ JobExecutor = (*RateRefreshExecutor)(nil)
