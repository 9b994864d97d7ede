package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxNumberAttempts bounds the probe loop of nextDocumentNumber
const maxNumberAttempts = 100

// translateNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// translateDuplicate maps unique key violations to shared.ErrAlreadyExists, e.g. two
// concurrent creates that drew the same document number
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// likeEscaper makes LIKE metacharacters in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applySearch adds a case-insensitive substring match across columns.
// LOWER/LIKE instead of ILIKE keeps the query portable to sqlite.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// applyDateRange restricts column to the inclusive [From, To] day range of the filter
func applyDateRange(query *gorm.DB, column string, filter shared.Filter) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" < ?", filter.To.Add(24*time.Hour))
	}
	return query
}

// applyPaging adds whitelisted ordering plus offset and limit
func applyPaging(query *gorm.DB, filter shared.Filter, sort sortSpec) *gorm.DB {
	query = query.Order(sort.orderClause(filter.OrderBy, filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// saveAggregate writes the aggregate with saveVersioned and marks it persisted
func saveAggregate(tx *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	if err := saveVersioned(tx, model, root.PersistedVersion()); err != nil {
		return err
	}
	root.MarkPersisted()
	return nil
}

// saveVersioned inserts a new row when persisted is zero, otherwise updates the
// row guarded by that version. A stale version yields shared.ErrConcurrencyConflict.
// Associations are never written here; callers persist child rows themselves.
func saveVersioned(tx *gorm.DB, model any, persisted int) error {
	if persisted == 0 {
		return translateDuplicate(tx.Omit(clause.Associations).Create(model).Error)
	}

	result := tx.Model(model).
		Where("version = ?", persisted).
		Select("*").
		Omit(clause.Associations).
		Updates(model)
	if result.Error != nil {
		return translateDuplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// deleteScoped removes one organization-owned row, returning shared.ErrNotFound when nothing matched
func deleteScoped(ctx context.Context, db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	result := db.WithContext(ctx).
		Scopes(tenant.OrganizationScope(tenantID)).
		Where("id = ?", id).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// existsScoped reports whether an organization-owned row matches column = value
func existsScoped(ctx context.Context, db *gorm.DB, model any, tenantID uuid.UUID, column string, value any) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(model).
		Scopes(tenant.OrganizationScope(tenantID)).
		Where(column+" = ?", value).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// nextDocumentNumber returns the next PREFIX-YYYY-NNNNN number of an organization.
// The sequence restarts every calendar year.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model any, tenantID uuid.UUID, column, kind string) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", kind, time.Now().Year())

	var last []string
	err := db.WithContext(ctx).
		Model(model).
		Scopes(tenant.OrganizationScope(tenantID)).
		Where(column+" LIKE ?", prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &last).Error
	if err != nil {
		return "", err
	}

	var nextNum int64 = 1
	if len(last) == 1 {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(last[0], prefix), "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	for i := 0; i < maxNumberAttempts; i++ {
		number := fmt.Sprintf("%s%05d", prefix, nextNum)
		exists, err := existsScoped(ctx, db, model, tenantID, column, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		nextNum++
	}
	return "", fmt.Errorf("could not allocate a unique %s number after %d attempts", kind, maxNumberAttempts)
}
