package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards everything until Initialize.
var Log = zap.NewNop()

// Config holds logger configuration
type Config struct {
	Level       string
	LogDir      string
	Environment string
	ServiceName string
}

// Initialize sets up the global logger. Development logs colored console
// lines; every other environment logs JSON, and production with a LogDir
// also writes a rotated app.log.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
		}
	}
	enabler := zap.NewAtomicLevelAt(level)

	encoderConfig, console := encoderFor(cfg.Environment)
	stdoutEncoder := zapcore.NewJSONEncoder(encoderConfig)
	if console {
		stdoutEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	cores := []zapcore.Core{zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), enabler)}

	if cfg.Environment == "production" && cfg.LogDir != "" {
		sink, err := rotatingFile(cfg.LogDir)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, enabler))
	}

	options := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}
	if cfg.ServiceName != "" {
		options = append(options, zap.Fields(zap.String("service", cfg.ServiceName)))
	}

	Log = zap.New(zapcore.NewTee(cores...), options...)
	return nil
}

func encoderFor(environment string) (zapcore.EncoderConfig, bool) {
	if environment == "development" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return ec, true
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec, false
}

func rotatingFile(dir string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "app.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}), nil
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

// MaskedEmail logs an address with the local part reduced to its first
// character, e.g. j***@example.com.
func MaskedEmail(key, address string) zap.Field {
	at := strings.LastIndex(address, "@")
	if at < 1 {
		return zap.String(key, "***")
	}
	return zap.String(key, address[:1]+"***"+address[at:])
}

// LogHTTPRequest writes the access log line for one request. 5xx log at
// error level, 4xx at warn.
func LogHTTPRequest(method, path string, statusCode int, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
		zap.Float64("duration", duration),
	}, fields...)

	switch {
	case statusCode >= 500:
		Error("HTTP request failed", all...)
	case statusCode >= 400:
		Warn("HTTP request client error", all...)
	default:
		Info("HTTP request", all...)
	}
}

// LogAPICall logs a call to an external dependency (database, SMTP, storage,
// webhook).
func LogAPICall(service, operation, status string, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("service", service),
		zap.String("operation", operation),
		zap.String("status", status),
		zap.Float64("duration", duration),
	}, fields...)

	if status == "error" {
		Error("API call failed", all...)
		return
	}
	Info("API call", all...)
}
