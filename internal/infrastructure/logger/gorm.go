package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var sqlTablePattern = regexp.MustCompile(`(?i)\b(?:from|into|update)\s+["` + "`" + `]?([a-z_][a-z0-9_]*)`)

// GormLogger writes GORM statements through zap. Every line carries the
// request and tenant of the query's context plus the statement's verb and
// table. Row-locking reads (FIFO consumption, receivable settlement) get
// their own, tighter slow threshold since they serialize writers.
type GormLogger struct {
	logger                    *zap.Logger
	logLevel                  gormlogger.LogLevel
	slowThreshold             time.Duration
	lockWaitThreshold         time.Duration
	maxSQLLength              int
	ignoreRecordNotFoundError bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow query threshold
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithLockWaitThreshold sets the threshold for SELECT ... FOR UPDATE
func WithLockWaitThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.lockWaitThreshold = threshold
	}
}

// WithMaxSQLLength truncates logged statements; 0 keeps them whole
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(l *GormLogger) {
		if n >= 0 {
			l.maxSQLLength = n
		}
	}
}

// WithIgnoreRecordNotFoundError configures whether to ignore record not found errors
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.ignoreRecordNotFoundError = ignore
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:                    zapLogger.Named("gorm"),
		logLevel:                  level,
		slowThreshold:             200 * time.Millisecond,
		lockWaitThreshold:         50 * time.Millisecond,
		maxSQLLength:              2000,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.contextLogger(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.contextLogger(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.contextLogger(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	if err != nil && l.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	stmt := classifySQL(sql)
	cl := l.contextLogger(ctx).With(
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("op", stmt.op),
		zap.String("table", stmt.table),
		zap.String("sql", l.truncate(sql)),
	)
	if stmt.locking {
		cl = cl.With(zap.Bool("row_lock", true))
	}

	switch {
	case err != nil:
		if l.logLevel >= gormlogger.Error {
			cl.Error("SQL Error", zap.Error(err))
		}
	case stmt.locking && l.lockWaitThreshold > 0 && elapsed > l.lockWaitThreshold && l.logLevel >= gormlogger.Warn:
		cl.Warn("Slow row lock", zap.Duration("threshold", l.lockWaitThreshold))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		cl.Warn("Slow SQL", zap.Duration("threshold", l.slowThreshold))
	case l.logLevel >= gormlogger.Info:
		cl.Debug("SQL Query")
	}
}

func (l *GormLogger) contextLogger(ctx context.Context) *ContextLogger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ContextLogger{ctx: ctx, logger: l.logger}
}

func (l *GormLogger) truncate(sql string) string {
	if l.maxSQLLength == 0 || len(sql) <= l.maxSQLLength {
		return sql
	}
	return fmt.Sprintf("%s... (%d bytes)", sql[:l.maxSQLLength], len(sql))
}

type sqlStatement struct {
	op      string
	table   string
	locking bool
}

func classifySQL(sql string) sqlStatement {
	trimmed := strings.TrimSpace(sql)
	var stmt sqlStatement
	if i := strings.IndexAny(trimmed, " \n\t"); i > 0 {
		stmt.op = strings.ToLower(trimmed[:i])
	} else {
		stmt.op = strings.ToLower(trimmed)
	}
	if m := sqlTablePattern.FindStringSubmatch(trimmed); m != nil {
		stmt.table = strings.ToLower(m[1])
	}
	upper := strings.ToUpper(trimmed)
	stmt.locking = strings.Contains(upper, "FOR UPDATE") || strings.Contains(upper, "FOR SHARE")
	return stmt
}

// MapGormLogLevel maps string log level to GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
