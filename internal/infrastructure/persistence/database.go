package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/models"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const pingTimeout = 3 * time.Second

// Database is an open gorm handle plus the pool underneath it
type Database struct {
	DB   *gorm.DB
	pool *sql.DB
}

// NewDatabase opens the database without SQL logging
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithLogger(cfg, zap.NewNop(), gormlogger.Silent)
}

// NewDatabaseWithLogger opens the configured driver, sizes the pool and
// checks the connection. Statements are logged through zapLogger at logLevel.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel gormlogger.LogLevel) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(zapLogger, logger.GormConfig{
			Level:         logLevel,
			SlowThreshold: cfg.SlowQueryThresh,
			Parameterized: !cfg.LogQueryParams,
		}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            cfg.Driver != "sqlite",
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connection pool: %w", err)
	}
	sizePool(pool, cfg)

	d := &Database{DB: db, pool: pool}
	if err := d.Ping(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return d, nil
}

func sizePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.Driver == "sqlite" {
		// every connection to :memory: is a separate database
		pool.SetMaxOpenConns(1)
		return
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// AutoMigrate creates or alters tables from the models. Postgres deployments
// use the versioned SQL migrations instead.
func (d *Database) AutoMigrate() error {
	return migrateModels(d.DB)
}

func migrateModels(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, k := range models.TenantUniqueKeys() {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s, %s)", k.Name, k.Table, tenant.Column, k.Column)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("auto migrate %s: %w", k.Name, err)
		}
	}
	return nil
}

// SQL exposes the pool, e.g. for a DB stats collector
func (d *Database) SQL() *sql.DB {
	return d.pool
}

func (d *Database) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := d.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

func (d *Database) Close() error {
	return d.pool.Close()
}
