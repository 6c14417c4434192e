// internal/utils/metrics.go
package utils

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects in-process counters, gauges and histograms.
type MetricsCollector struct {
	counters   map[string]*atomic.Int64
	gauges     map[string]*atomic.Int64
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Histogram tracks count, sum, min and max of observed values.
type Histogram struct {
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

// HistogramSnapshot is a point-in-time copy of a Histogram.
type HistogramSnapshot struct {
	Count int64 `json:"count"`
	Sum   int64 `json:"sum"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Avg   int64 `json:"avg"`
}

// MetricsSnapshot is what GET /api/v1/metrics returns.
type MetricsSnapshot struct {
	Counters   map[string]int64             `json:"counters"`
	Gauges     map[string]int64             `json:"gauges"`
	Histograms map[string]HistogramSnapshot `json:"histograms"`
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*atomic.Int64),
		gauges:     make(map[string]*atomic.Int64),
		histograms: make(map[string]*Histogram),
	}
}

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// value returns the named cell, creating it under the write lock on first use.
func (m *MetricsCollector) value(set map[string]*atomic.Int64, name string) *atomic.Int64 {
	m.mu.RLock()
	v, ok := set[name]
	m.mu.RUnlock()
	if ok {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok = set[name]; !ok {
		v = new(atomic.Int64)
		set[name] = v
	}
	return v
}

// IncrementCounter increments a counter metric
func (m *MetricsCollector) IncrementCounter(name string) {
	m.value(m.counters, name).Add(1)
}

// AddCounter adds a value to a counter metric
func (m *MetricsCollector) AddCounter(name string, value int64) {
	m.value(m.counters, name).Add(value)
}

// GetCounterValue gets the current value of a counter
func (m *MetricsCollector) GetCounterValue(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.counters[name]; ok {
		return v.Load()
	}
	return 0
}

// SetGauge sets a gauge metric
func (m *MetricsCollector) SetGauge(name string, value int64) {
	m.value(m.gauges, name).Store(value)
}

// IncGauge increments a gauge metric
func (m *MetricsCollector) IncGauge(name string) {
	m.value(m.gauges, name).Add(1)
}

// DecGauge decrements a gauge metric
func (m *MetricsCollector) DecGauge(name string) {
	m.value(m.gauges, name).Add(-1)
}

// GetGauge gets the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.gauges[name]; ok {
		return v.Load()
	}
	return 0
}

// RecordHistogram records a value in a histogram
func (m *MetricsCollector) RecordHistogram(name string, value int64) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		if h, ok = m.histograms[name]; !ok {
			h = &Histogram{min: value, max: value}
			m.histograms[name] = h
		}
		m.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	h.min = min(h.min, value)
	h.max = max(h.max, value)
}

// Snapshot returns a copy of every metric.
func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		Counters:   make(map[string]int64, len(m.counters)),
		Gauges:     make(map[string]int64, len(m.gauges)),
		Histograms: make(map[string]HistogramSnapshot, len(m.histograms)),
	}
	for name, v := range m.counters {
		snap.Counters[name] = v.Load()
	}
	for name, v := range m.gauges {
		snap.Gauges[name] = v.Load()
	}
	for name, h := range m.histograms {
		h.mu.Lock()
		hs := HistogramSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
		if h.count > 0 {
			hs.Avg = h.sum / h.count
		}
		h.mu.Unlock()
		snap.Histograms[name] = hs
	}
	return snap
}

// AnalysisMetrics records analysis and API metrics on a collector.
type AnalysisMetrics struct {
	metrics *MetricsCollector
	logger  *Logger
}

// NewAnalysisMetrics creates metrics bound to the global collector and logger.
func NewAnalysisMetrics() *AnalysisMetrics {
	return NewAnalysisMetricsWith(GetMetricsCollector(), GetLogger())
}

// NewAnalysisMetricsWith binds metrics to an explicit collector and logger.
func NewAnalysisMetricsWith(collector *MetricsCollector, logger *Logger) *AnalysisMetrics {
	return &AnalysisMetrics{metrics: collector, logger: logger}
}

// Collector returns the underlying collector.
func (am *AnalysisMetrics) Collector() *MetricsCollector {
	return am.metrics
}

// AnalysisStarted marks one analysis in flight.
func (am *AnalysisMetrics) AnalysisStarted() {
	am.metrics.IncGauge("analyses_in_flight")
}

// RecordAnalysis records a finished analysis.
func (am *AnalysisMetrics) RecordAnalysis(scenes, words int, duration time.Duration, err error) {
	am.metrics.DecGauge("analyses_in_flight")
	am.metrics.IncrementCounter("analyses_total")
	if err != nil {
		am.metrics.IncrementCounter("analyses_failed")
		return
	}
	am.metrics.RecordHistogram("analysis_duration_ms", duration.Milliseconds())
	am.metrics.RecordHistogram("analysis_scene_count", int64(scenes))
	am.metrics.AddCounter("analysis_words_total", int64(words))
}

// RecordAPIRequest records metrics for an API request
func (am *AnalysisMetrics) RecordAPIRequest(endpoint, method string, statusCode int, duration time.Duration) {
	am.metrics.IncrementCounter("api_requests_total")
	am.metrics.IncrementCounter("api_requests_" + method + "_" + endpoint)
	am.metrics.RecordHistogram("api_response_time_ms", duration.Milliseconds())
	am.metrics.IncrementCounter(fmt.Sprintf("api_responses_%dxx", statusCode/100))

	am.logger.Debug("API request completed", map[string]interface{}{
		"endpoint": endpoint,
		"method":   method,
		"status":   statusCode,
		"duration": duration.Milliseconds(),
	})
}

// RecordError records an error metric
func (am *AnalysisMetrics) RecordError(errorType, component string) {
	am.metrics.IncrementCounter("errors_total")
	am.metrics.IncrementCounter("errors_" + errorType)
	am.metrics.IncrementCounter("errors_" + component)

	am.logger.Warn("Error recorded", map[string]interface{}{
		"type":      errorType,
		"component": component,
	})
}

// StartMetricsCollection logs a metrics summary every interval until ctx ends.
func (am *AnalysisMetrics) StartMetricsCollection(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := am.metrics.Snapshot()
				am.logger.Info("Periodic metrics report", map[string]interface{}{
					"analyses_total": snap.Counters["analyses_total"],
					"requests_total": snap.Counters["api_requests_total"],
					"in_flight":      snap.Gauges["analyses_in_flight"],
				})
			}
		}
	}()
}
