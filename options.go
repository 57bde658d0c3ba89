package bloomgo

import "log/slog"

type options struct {
	hashFamily       HashFamily
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Filter constructor/import behavior.
//
// Options exist to avoid exploding the API surface with hash-family-specific
// constructor variants; every constructor and import path accepts the same
// set.
type Option func(*options)

// WithHashFamily substitutes the hash family used to derive bit coordinates.
//
// The family must be deterministic; two filters answering for each other's
// snapshots must be constructed with the same family. If nil is passed, the
// built-in chained-MD5 default is used.
func WithHashFamily(hf HashFamily) Option {
	return func(o *options) {
		if hf == nil {
			hf = DefaultHashFamily()
		}
		o.hashFamily = hf
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bloomgo.BasicMetricsCollector{}
//	bf, _ := bloomgo.New(100000, 0.01, bloomgo.WithMetricsCollector(metrics))
//	// ... use bf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Avg latency: %dns\n", stats.AddCount, stats.AddAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bloomgo.NewJSONLogger(slog.LevelInfo)
//	bf, _ := bloomgo.New(100000, 0.01, bloomgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		hashFamily:       DefaultHashFamily(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
