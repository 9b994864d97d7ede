package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGorm(cfg GormConfig) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), cfg), logs
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("failed statement is logged with request context", func(t *testing.T) {
		l, logs := observedGorm(GormConfig{Level: gormlogger.Warn})
		ctx, _ := WithRequestID(context.Background(), "req-7")

		l.Trace(ctx, time.Now(), statement("INSERT INTO customers", 0), errors.New("duplicate key"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "sql failed", entry.Message)
		assert.Equal(t, "req-7", entry.ContextMap()["request_id"])
		assert.Equal(t, "gorm", entry.LoggerName)
	})

	t.Run("record not found is skipped by default", func(t *testing.T) {
		l, logs := observedGorm(GormConfig{Level: gormlogger.Info})
		l.Trace(context.Background(), time.Now(), statement("SELECT * FROM products", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)

		l, logs = observedGorm(GormConfig{Level: gormlogger.Warn, LogNotFound: true})
		l.Trace(context.Background(), time.Now(), statement("SELECT * FROM products", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.FilterMessage("sql failed").Len())
	})

	t.Run("slow statement warns", func(t *testing.T) {
		l, logs := observedGorm(GormConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})
		l.Trace(context.Background(), time.Now().Add(-time.Second), statement("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.FilterMessage("slow sql").Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("routine statements need info level", func(t *testing.T) {
		l, logs := observedGorm(GormConfig{Level: gormlogger.Warn})
		l.Trace(context.Background(), time.Now(), statement("SELECT 1", 1), nil)
		assert.Zero(t, logs.Len())

		debug := l.LogMode(gormlogger.Info)
		debug.Trace(context.Background(), time.Now(), statement("SELECT 1", -1), nil)
		require.Equal(t, 1, logs.Len())
		assert.NotContains(t, logs.All()[0].ContextMap(), "rows")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		l, logs := observedGorm(GormConfig{Level: gormlogger.Silent})
		l.Trace(context.Background(), time.Now(), statement("SELECT 1", 1), errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	l, _ := observedGorm(GormConfig{Parameterized: true})
	sql, params := l.ParamsFilter(context.Background(), "SELECT * FROM bank_accounts WHERE account_number = ?", "001-12345-6")
	assert.Equal(t, "SELECT * FROM bank_accounts WHERE account_number = ?", sql)
	assert.Nil(t, params)

	l, _ = observedGorm(GormConfig{})
	_, params = l.ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []any{1}, params)
}
