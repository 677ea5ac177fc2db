// Package logger configures the zap loggers used by the calmlint commands.
// Logs always go to stderr; stdout belongs to the diagnostic report.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoder.
type Format string

const (
	// FormatConsole is human-readable, one line per entry.
	FormatConsole Format = "console"
	// FormatJSON is one JSON object per entry.
	FormatJSON Format = "json"
)

// Environment variables that override configured values.
const (
	EnvLevel  = "CALMLINT_LOG_LEVEL"
	EnvFormat = "CALMLINT_LOG_FORMAT"
)

// Component names passed to For.
const (
	ComponentValidate = "validate"
	ComponentWatch    = "watch"
	ComponentLookup   = "lookup"
	ComponentConfig   = "config"
)

var mu sync.Mutex

// ParseLevel maps a level name to a zap level. Unknown names fall back to warn,
// which keeps a normal run quiet.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// ParseFormat maps a format name to a Format, defaulting to console.
func ParseFormat(format string) Format {
	if Format(strings.ToLower(strings.TrimSpace(format))) == FormatJSON {
		return FormatJSON
	}
	return FormatConsole
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New builds a logger writing to w.
func New(level string, format Format, w io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core)
}

// Initialize installs a stderr logger as the zap global. The environment
// variables EnvLevel and EnvFormat win over the arguments.
func Initialize(level, format string) *zap.Logger {
	if v := os.Getenv(EnvLevel); v != "" {
		level = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		format = v
	}
	l := New(level, ParseFormat(format), os.Stderr)

	mu.Lock()
	defer mu.Unlock()
	zap.ReplaceGlobals(l)
	return l
}

// For returns a named sugared logger for component. Before Initialize is
// called this is a no-op logger.
func For(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}

// Sync flushes buffered entries of the global logger.
func Sync() error {
	return zap.L().Sync()
}
