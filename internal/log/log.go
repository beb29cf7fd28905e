// Package log provides structured, colored logging for xsn-trezor.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	FileMaxSizeMB  = 10
	FileMaxBackups = 3
	FileMaxAgeDays = 28
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for different parts of the system.
var (
	Wallet   zerolog.Logger
	Explorer zerolog.Logger
	Signer   zerolog.Logger
	Payment  zerolog.Logger
	Storage  zerolog.Logger
)

// out is where console logs go. Command output owns stdout.
var out io.Writer = os.Stderr

func init() {
	Logger = NewConsoleLogger(out, "warn")
	initComponentLoggers()
}

// Init initializes the logger with the given configuration.
// When file is non-empty, logs are written to both the console (colored or
// JSON depending on jsonOutput) and the file (always JSON, rotated by size).
func Init(level string, jsonOutput bool, file string) error {
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    FileMaxSizeMB,
			MaxBackups: FileMaxBackups,
			MaxAge:     FileMaxAgeDays,
			Compress:   true,
		}

		var consoleWriter io.Writer = out
		if !jsonOutput {
			consoleWriter = zerolog.ConsoleWriter{
				Out:        out,
				TimeFormat: "15:04:05",
			}
		}

		multi := zerolog.MultiLevelWriter(consoleWriter, rotator)
		Logger = zerolog.New(multi).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger()
	} else if jsonOutput {
		Logger = NewJSONLogger(out, level)
	} else {
		Logger = NewConsoleLogger(out, level)
	}

	initComponentLoggers()
	return nil
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ValidLevel reports whether level is one Init understands.
func ValidLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	Wallet = WithComponent("wallet")
	Explorer = WithComponent("explorer")
	Signer = WithComponent("signer")
	Payment = WithComponent("payment")
	Storage = WithComponent("storage")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithDevice returns a logger tagged with the signing device id.
func WithDevice(device string) zerolog.Logger {
	return Logger.With().Str("device", device).Logger()
}

// Benchmark helper for timing operations.
func Benchmark(name string) func() {
	start := time.Now()
	return func() {
		Logger.Debug().
			Str("operation", name).
			Dur("duration", time.Since(start)).
			Msg("benchmark")
	}
}
