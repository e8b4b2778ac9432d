package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLLength caps the statement text attached to a log entry.
const maxSQLLength = 1000

// bcryptHash matches a bcrypt digest inlined into a rendered statement.
var bcryptHash = regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`)

// GormOptions configures the GORM query logger.
type GormOptions struct {
	// SlowThreshold marks queries slower than this as warnings. Zero disables it.
	SlowThreshold time.Duration
	// Level is one of silent, error, warn, info or debug.
	Level string
	// Parameterized logs statements with placeholders instead of bound values.
	Parameterized bool
}

// GormLogger routes GORM statements through zap, tagged with the request context.
// Password digests never reach the log, even when bound values are rendered.
type GormLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	parameterized bool
}

var (
	_ gormlogger.Interface = (*GormLogger)(nil)
	_ gorm.ParamsFilter     = (*GormLogger)(nil)
)

// NewGormLogger creates a GORM logger writing to l.
func NewGormLogger(l *zap.Logger, opts GormOptions) *GormLogger {
	return &GormLogger{
		log:           l.Named("gorm"),
		level:         ParseGormLevel(opts.Level),
		slowThreshold: opts.SlowThreshold,
		parameterized: opts.Parameterized,
	}
}

// ParseGormLevel maps a level name to GORM's scale, defaulting to warn.
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// ParamsFilter implements gorm.ParamsFilter
func (g *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if g.parameterized {
		return sql, nil
	}
	return sql, params
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		WithContext(ctx, g.log).Info(redact(fmt.Sprintf(msg, data...)))
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		WithContext(ctx, g.log).Warn(redact(fmt.Sprintf(msg, data...)))
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		WithContext(ctx, g.log).Error(redact(fmt.Sprintf(msg, data...)))
	}
}

// Trace implements gormlogger.Interface
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	// not-found and duplicate rows surface as domain errors in the repository
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey)
	slow := g.slowThreshold > 0 && elapsed > g.slowThreshold

	switch {
	case failed && g.level >= gormlogger.Error:
		WithContext(ctx, g.log).Error("query failed", append(g.queryFields(fc, elapsed), zap.Error(err))...)
	case slow && g.level >= gormlogger.Warn:
		WithContext(ctx, g.log).Warn("slow query",
			append(g.queryFields(fc, elapsed), zap.Duration("threshold", g.slowThreshold))...)
	case g.level >= gormlogger.Info:
		WithContext(ctx, g.log).Debug("query", g.queryFields(fc, elapsed)...)
	}
}

func (g *GormLogger) queryFields(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()
	sql = redact(sql)

	fields := make([]zap.Field, 0, 4)
	if len(sql) > maxSQLLength {
		fields = append(fields, zap.Bool("sql_truncated", true))
		sql = sql[:maxSQLLength] + "..."
	}
	return append(fields,
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
}

func redact(s string) string {
	return bcryptHash.ReplaceAllString(s, "[REDACTED]")
}
