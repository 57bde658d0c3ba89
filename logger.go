package bloomgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bloomgo-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds a backing-file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogCreate logs filter creation with its derived sizing.
func (l *Logger) LogCreate(estimatedElements uint64, falsePositiveRate float64, numberBits uint64, numberHashes uint, onDisk bool) {
	l.Debug("filter created",
		"estimated_elements", estimatedElements,
		"false_positive_rate", falsePositiveRate,
		"number_bits", numberBits,
		"number_hashes", numberHashes,
		"on_disk", onDisk,
	)
	if numberHashes == 0 {
		l.Warn("derived hash count is zero; Add will never set bits",
			"estimated_elements", estimatedElements,
			"false_positive_rate", falsePositiveRate,
		)
	}
}

// LogPersist logs a trailer write-through.
func (l *Logger) LogPersist(elementsAdded uint64, err error) {
	if err != nil {
		l.Error("counter persist failed",
			"elements_added", elementsAdded,
			"error", err,
		)
	}
}

// LogExport logs an export operation.
func (l *Logger) LogExport(target string, size uint64, err error) {
	if err != nil {
		l.Error("export failed",
			"target", target,
			"error", err,
		)
	} else {
		l.Info("export completed",
			"target", target,
			"size", size,
		)
	}
}

// LogImport logs an import operation.
func (l *Logger) LogImport(source string, elementsAdded uint64, err error) {
	if err != nil {
		l.Error("import failed",
			"source", source,
			"error", err,
		)
	} else {
		l.Info("import completed",
			"source", source,
			"elements_added", elementsAdded,
		)
	}
}
