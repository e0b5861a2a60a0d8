package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

// DefaultGormLoggerConfig logs failed and slow statements only. Missing
// rows are expected on lookups and are not logged.
func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger sends gorm output to the request-scoped zap logger so SQL lines
// carry the request id.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) emit(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.cfg.Level < min {
		return
	}
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Trace logs a finished statement: errors at error level, slow statements
// at warn, everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var level zapcore.Level
	switch {
	case err != nil && l.cfg.Level >= gormlogger.Error && !l.ignored(err):
		level = zapcore.ErrorLevel
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn:
		level, err = zapcore.WarnLevel, nil
	case l.cfg.Level >= gormlogger.Info:
		level, err = zapcore.DebugLevel, nil
	default:
		return
	}

	ce := FromContext(ctx).Check(level, "gorm.query")
	if ce == nil {
		return
	}
	sql, rows := fc()
	op, table := describeStatement(sql)
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("operation", op),
		zap.String("table", table),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

func (l *GormLogger) ignored(err error) bool {
	return l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)
}

// ParamsFilter drops bound values; customer emails and password hashes never
// reach the log.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

// describeStatement returns the statement verb (SELECT, INSERT, UPDATE,
// DELETE or UNKNOWN) and the first table it names.
func describeStatement(sql string) (string, string) {
	op, table := "UNKNOWN", ""
	tokens := strings.Fields(sql)
	for i, token := range tokens {
		word := strings.ToUpper(strings.Trim(token, "();"))
		switch word {
		case "SELECT", "INSERT", "DELETE":
			if op == "UNKNOWN" {
				op = word
			}
		case "UPDATE":
			if op == "UNKNOWN" {
				op = word
			}
			if table == "" && i+1 < len(tokens) {
				table = strings.Trim(tokens[i+1], "`\"();")
			}
		case "FROM", "INTO":
			if table == "" && i+1 < len(tokens) {
				table = strings.Trim(tokens[i+1], "`\"();")
			}
		}
	}
	return op, table
}

var _ gormlogger.Interface = (*GormLogger)(nil)
