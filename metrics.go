package bloomgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    addCounter      prometheus.Counter
//	    lookupHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordAdd(duration time.Duration, err error) {
//	    p.addCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordAdd is called after each Add/AddHashes operation.
	// duration is the total time taken, err is nil if successful.
	RecordAdd(duration time.Duration, err error)

	// RecordContains is called after each Contains/ContainsHashes operation.
	// hit reports whether the filter answered "maybe present".
	RecordContains(duration time.Duration, hit bool)

	// RecordPersist is called after each trailer write-through on the
	// file-backed variant.
	RecordPersist(duration time.Duration, err error)

	// RecordExport is called after each export operation.
	RecordExport(size uint64, duration time.Duration, err error)

	// RecordImport is called after each import operation.
	RecordImport(size uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)              {}
func (NoopMetricsCollector) RecordContains(time.Duration, bool)          {}
func (NoopMetricsCollector) RecordPersist(time.Duration, error)          {}
func (NoopMetricsCollector) RecordExport(uint64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordImport(uint64, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTotalNanos    atomic.Int64
	ContainsCount    atomic.Int64
	ContainsHits     atomic.Int64
	PersistCount     atomic.Int64
	PersistErrors    atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordContains implements MetricsCollector.
func (b *BasicMetricsCollector) RecordContains(duration time.Duration, hit bool) {
	b.ContainsCount.Add(1)
	if hit {
		b.ContainsHits.Add(1)
	}
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(duration time.Duration, err error) {
	b.PersistCount.Add(1)
	if err != nil {
		b.PersistErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(size uint64, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(size uint64, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	if err != nil {
		b.ImportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:      b.AddCount.Load(),
		AddErrors:     b.AddErrors.Load(),
		AddAvgNanos:   b.getAvgAddNanos(),
		ContainsCount: b.ContainsCount.Load(),
		ContainsHits:  b.ContainsHits.Load(),
		PersistCount:  b.PersistCount.Load(),
		PersistErrors: b.PersistErrors.Load(),
		ExportCount:   b.ExportCount.Load(),
		ExportErrors:  b.ExportErrors.Load(),
		ImportCount:   b.ImportCount.Load(),
		ImportErrors:  b.ImportErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAddNanos() int64 {
	count := b.AddCount.Load()
	if count == 0 {
		return 0
	}
	return b.AddTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount      int64
	AddErrors     int64
	AddAvgNanos   int64
	ContainsCount int64
	ContainsHits  int64
	PersistCount  int64
	PersistErrors int64
	ExportCount   int64
	ExportErrors  int64
	ImportCount   int64
	ImportErrors  int64
}
