package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateCache caches resolved exchange rates
type RateCache interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error
	// InvalidatePrefix drops every entry whose key starts with prefix
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// RateKey builds the cache key for a pair on a date: "<org>:<FROM>:<TO>:<YYYY-MM-DD>"
func RateKey(orgID uuid.UUID, from, to valueobject.Currency, date time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", OrganizationPrefix(orgID), from, to, date.UTC().Format("2006-01-02"))
}

// OrganizationPrefix is the key prefix shared by all rates of an organization
func OrganizationPrefix(orgID uuid.UUID) string {
	return orgID.String() + ":"
}

// InMemoryRateCache implements RateCache in process memory
type InMemoryRateCache struct {
	m *ttlMap
}

// NewInMemoryRateCache creates an in-memory rate cache
func NewInMemoryRateCache() *InMemoryRateCache {
	return &InMemoryRateCache{m: newTTLMap(time.Minute)}
}

// Get returns a cached rate
func (c *InMemoryRateCache) Get(_ context.Context, key string) (decimal.Decimal, bool, error) {
	raw, ok := c.m.get(key)
	if !ok {
		return decimal.Zero, false, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate, true, nil
}

// Set stores a rate with a TTL
func (c *InMemoryRateCache) Set(_ context.Context, key string, rate decimal.Decimal, ttl time.Duration) error {
	c.m.set(key, rate.String(), ttl)
	return nil
}

// InvalidatePrefix drops every entry whose key starts with prefix
func (c *InMemoryRateCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.m.deletePrefix(prefix)
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryRateCache) Close() error {
	c.m.close()
	return nil
}

// Len reports the number of stored entries
func (c *InMemoryRateCache) Len() int {
	return c.m.size()
}

var _ RateCache = (*InMemoryRateCache)(nil)
