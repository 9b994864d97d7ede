// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of ORM concerns.
//
// Each model embeds one of the base models, carries the GORM tags for its table, and
// converts to and from its domain aggregate with ToDomain and FromDomain. Conversions
// to domain mark the aggregate as persisted so repositories can apply optimistic locking.
//
// Structure:
//   - base.go: BaseModel, AggregateModel, TenantAggregateModel
//   - organization.go: organizations, users, memberships
//   - partner.go: customers, relationship managers
//   - banking.go: bank accounts
//   - catalog.go: products
//   - finance.go: expenses, profit-sharing records and allocations, asset transactions, exchange rates
package models
