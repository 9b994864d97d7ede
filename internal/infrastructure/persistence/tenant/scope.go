// Package tenant scopes GORM queries to a single organization.
//
// Every organization-owned table carries an organization_id column. Repositories
// apply OrganizationScope to each statement so a row from another organization
// can never be read, updated or deleted through a tenant-scoped call.
//
//	db.Scopes(tenant.OrganizationScope(orgID)).Find(&customers)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the organization column on every tenant-owned table
const Column = "organization_id"

// ErrOrganizationRequired is returned when a scoped query has no organization
var ErrOrganizationRequired = errors.New("organization_id is required but not set")

// OrganizationScope filters queries by organization.
// A nil ID adds an error so the statement never runs unscoped.
func OrganizationScope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if orgID == uuid.Nil {
			_ = db.AddError(ErrOrganizationRequired)
			return db
		}
		return db.Where(Column+" = ?", orgID)
	}
}
