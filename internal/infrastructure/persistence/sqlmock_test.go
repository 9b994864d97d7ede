package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB opens GORM over a mocked postgres connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCustomerRepository_Postgres(t *testing.T) {
	t.Run("find is scoped to the organization", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID, customerID := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "organization_id", "version", "code", "name", "type", "status"}).
			AddRow(customerID, tenantID, 3, "C001", "Acme Holdings", "corporate", "active")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .*organization_id = .* ORDER BY .* LIMIT .*`).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.Equal(t, "C001", customer.Code)
		assert.Equal(t, 3, customer.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "customers"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version reports a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customer, err := partner.NewCustomer(uuid.New(), "C001", "Acme Holdings", partner.CustomerTypeCorporate)
		require.NoError(t, err)
		customer.MarkPersisted()
		customer.Touch()

		mock.ExpectExec(`UPDATE "customers" SET .* WHERE .*version = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Save(context.Background(), customer)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, customer.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
