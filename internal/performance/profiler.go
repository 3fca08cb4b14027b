package performance

import (
	"encoding/json"
	"sync"
	"time"
)

// Profiler tracks timing metrics for generation phases. Disabled profilers
// cost a single branch per operation.
type Profiler struct {
	mu        sync.RWMutex
	metrics   map[string]*Metric
	enabled   bool
	startTime time.Time
}

// Metric tracks statistics for a specific operation
type Metric struct {
	Name      string
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	LastTime  time.Duration
	LastCall  time.Time
}

// Operation represents a single timed operation
type Operation struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// NewProfiler creates a new performance profiler
func NewProfiler(enabled bool) *Profiler {
	return &Profiler{
		metrics:   make(map[string]*Metric),
		enabled:   enabled,
		startTime: time.Now(),
	}
}

// Start begins timing an operation. End on the returned Operation records
// the sample; a nil Operation (disabled profiler) is safe to End.
func (p *Profiler) Start(name string) *Operation {
	if !p.IsEnabled() {
		return nil
	}
	return &Operation{
		profiler: p,
		name:     name,
		start:    time.Now(),
	}
}

// End completes timing an operation and records the metric
func (o *Operation) End() {
	if o == nil {
		return
	}
	o.profiler.Record(o.name, time.Since(o.start))
}

// Record directly records a duration for an operation
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}

	metric, exists := p.metrics[name]
	if !exists {
		metric = &Metric{
			Name:    name,
			MinTime: duration,
			MaxTime: duration,
		}
		p.metrics[name] = metric
	}

	metric.Count++
	metric.TotalTime += duration
	metric.LastTime = duration
	metric.LastCall = time.Now()

	if duration < metric.MinTime {
		metric.MinTime = duration
	}
	if duration > metric.MaxTime {
		metric.MaxTime = duration
	}
}

// GetMetric returns a copy of the statistics for a specific operation, or
// nil when nothing has been recorded under that name.
func (p *Profiler) GetMetric(name string) *Metric {
	p.mu.RLock()
	defer p.mu.RUnlock()

	metric, ok := p.metrics[name]
	if !ok {
		return nil
	}
	copied := *metric
	return &copied
}

// GetMetrics returns a copy of all recorded metrics
func (p *Profiler) GetMetrics() map[string]*Metric {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string]*Metric, len(p.metrics))
	for name, metric := range p.metrics {
		copied := *metric
		result[name] = &copied
	}
	return result
}

// AverageTime returns the average time for a metric
func (m *Metric) AverageTime() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.TotalTime / time.Duration(m.Count)
}

// Reset clears all metrics
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = make(map[string]*Metric)
	p.startTime = time.Now()
}

// JSONReport generates a JSON report of all metrics in milliseconds.
func (p *Profiler) JSONReport() ([]byte, error) {
	type metricJSON struct {
		Name     string  `json:"name"`
		Count    int64   `json:"count"`
		TotalMS  float64 `json:"total_ms"`
		AvgMS    float64 `json:"avg_ms"`
		MinMS    float64 `json:"min_ms"`
		MaxMS    float64 `json:"max_ms"`
		LastMS   float64 `json:"last_ms"`
		LastCall string  `json:"last_call"`
	}

	p.mu.RLock()
	report := struct {
		StartTime time.Time             `json:"start_time"`
		RuntimeMS float64               `json:"runtime_ms"`
		Metrics   map[string]metricJSON `json:"metrics"`
	}{
		StartTime: p.startTime,
		RuntimeMS: float64(time.Since(p.startTime).Milliseconds()),
		Metrics:   make(map[string]metricJSON, len(p.metrics)),
	}
	for name, metric := range p.metrics {
		report.Metrics[name] = metricJSON{
			Name:     metric.Name,
			Count:    metric.Count,
			TotalMS:  float64(metric.TotalTime.Microseconds()) / 1000,
			AvgMS:    float64(metric.AverageTime().Microseconds()) / 1000,
			MinMS:    float64(metric.MinTime.Microseconds()) / 1000,
			MaxMS:    float64(metric.MaxTime.Microseconds()) / 1000,
			LastMS:   float64(metric.LastTime.Microseconds()) / 1000,
			LastCall: metric.LastCall.Format(time.RFC3339),
		}
	}
	p.mu.RUnlock()

	return json.MarshalIndent(report, "", "  ")
}

// Enable enables profiling
func (p *Profiler) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = true
}

// Disable disables profiling
func (p *Profiler) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
}

// IsEnabled returns whether profiling is enabled
func (p *Profiler) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}
