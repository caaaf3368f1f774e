package log

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	perrors "github.com/YuminosukeSato/titanicprep/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ZerologLogger implements Logger on top of zerolog, emitting one JSON object
// per record. Errors carry the stack trace recorded by cockroachdb/errors and,
// when they implement zerolog.LogObjectMarshaler, their structured fields.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a logger writing JSON lines to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	l.emit(l.zl.Error(), msg, fields)
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for key, value := range fieldMap(fields) {
		if err, ok := value.(error); ok {
			ctx = ctx.Str(key, err.Error())
			continue
		}
		ctx = ctx.Interface(key, value)
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	current := l.zl.GetLevel()
	if current == zerolog.Disabled {
		return false
	}
	return toZerologLevel(level) >= current
}

// WarnFunc returns a function suitable for errors.SetZerologWarnFunc, routing
// library warnings through this logger.
func (l *ZerologLogger) WarnFunc() func(error) {
	return func(w error) {
		e := l.zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			e = e.Object("warning", m)
		}
		e.Msg(w.Error())
	}
}

// InstallWarnings routes errors.Warn through the logger until the returned
// function is called.
func (l *ZerologLogger) InstallWarnings() func() {
	perrors.SetZerologWarnFunc(l.WarnFunc())
	return func() { perrors.SetZerologWarnFunc(nil) }
}

func (l *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			appendError(e, err)
			fields = fields[1:]
		}
	}
	for key, value := range fieldMap(fields) {
		if err, ok := value.(error); ok && key == ErrAttrKey {
			appendError(e, err)
			continue
		}
		e = e.Interface(key, value)
	}
	e.Msg(msg)
}

func appendError(e *zerolog.Event, err error) {
	e.Str(ErrAttrKey, err.Error())
	if stacktrace := extractStacktrace(err); stacktrace != "" {
		e.Str(StacktraceAttrKey, stacktrace)
	}
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		e.Object(ErrorDetailKey, m)
	}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// fieldMap turns alternating key/value pairs into a map; a trailing key
// without a value is dropped.
func fieldMap(fields []any) map[string]any {
	m := make(map[string]any, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		m[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	return m
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, perrors.NewValidationError("LOG_LEVEL", "must be one of debug, info, warn, error", level)
	}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
