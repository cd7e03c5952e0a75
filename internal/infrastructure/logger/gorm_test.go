package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const testContractsQuery = "SELECT * FROM contracts WHERE status = 'ACTIVE'"

func TestNewGormLogger(t *testing.T) {
	log, _ := newRecordedLogger(zapcore.InfoLevel)

	gormLog := NewGormLogger(log, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)

	var _ gormlogger.Interface = gormLog
}

func TestGormLoggerLogMode(t *testing.T) {
	log, _ := newRecordedLogger(zapcore.InfoLevel)
	gormLog := NewGormLogger(log, gormlogger.Info)

	reduced, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, reduced.logLevel)
	// LogMode returns a copy, the original keeps its level.
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
}

func TestGormLoggerLevels(t *testing.T) {
	t.Run("info formats arguments", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.InfoLevel)
		NewGormLogger(log, gormlogger.Info).Info(context.Background(), "migrated %s", "contracts")
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "migrated contracts")
	})

	t.Run("warn logs at warn level", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.WarnLevel)
		NewGormLogger(log, gormlogger.Warn).Warn(context.Background(), "pool at %d", 42)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("error logs at error level", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.ErrorLevel)
		NewGormLogger(log, gormlogger.Error).Error(context.Background(), "connection lost")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("silent suppresses everything", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.DebugLevel)
		NewGormLogger(log, gormlogger.Silent).Info(context.Background(), "hidden")
		assert.Zero(t, logs.Len())
	})
}

func TestGormLoggerTrace(t *testing.T) {
	fc := func() (string, int64) { return testContractsQuery, 5 }

	t.Run("failed query logs SQL Error", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.ErrorLevel)
		gormLog := NewGormLogger(log, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), fc, errors.New("deadlock"))

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "SQL Error")
	})

	t.Run("record-not-found is ignored when configured", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.ErrorLevel)
		gormLog := NewGormLogger(log, gormlogger.Error, WithIgnoreRecordNotFoundError(true))

		gormLog.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("query past the threshold logs SLOW SQL", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.WarnLevel)
		gormLog := NewGormLogger(log, gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
	})

	t.Run("normal query logs at debug", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.DebugLevel)
		gormLog := NewGormLogger(log, gormlogger.Info)

		gormLog.Trace(context.Background(), time.Now(), fc, nil)

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "SQL Query")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.DebugLevel)
		NewGormLogger(log, gormlogger.Silent).Trace(context.Background(), time.Now(), fc, nil)
		assert.Zero(t, logs.Len())
	})

	t.Run("request id from the context is attached", func(t *testing.T) {
		log, logs := newRecordedLogger(zapcore.DebugLevel)
		gormLog := NewGormLogger(log, gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-7f3a")
		gormLog.Trace(ctx, time.Now(), fc, nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-7f3a", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), tt.level)
	}
}
