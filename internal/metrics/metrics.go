package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Planning / checkpoint metrics
	RangesPlanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_ranges_planned_total",
			Help: "Total number of block ranges written by the planner",
		},
	)

	RangesSkippedDone = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_ranges_skipped_done_total",
			Help: "Total number of ranges skipped because the checkpoint store already marks them done",
		},
	)

	RangesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_ranges_completed_total",
			Help: "Total number of ranges fetched, written, and checkpointed",
		},
	)

	RangeProcessingTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainlake_range_processing_duration_seconds",
			Help:    "Time taken to fetch, normalize, and write one block range",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Fetch metrics
	BlocksFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_blocks_fetched_total",
			Help: "Total number of blocks normalized",
		},
	)

	BlocksSkippedNull = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_blocks_skipped_null_total",
			Help: "Total number of blocks skipped because the RPC endpoint returned null",
		},
	)

	LogsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_logs_fetched_total",
			Help: "Total number of logs normalized",
		},
	)

	LinkageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainlake_linkage_errors_total",
			Help: "Total number of cross-range parent-hash linkage mismatches detected",
		},
	)

	// Warehouse metrics
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainlake_rows_written_total",
			Help: "Total number of rows written per table",
		},
		[]string{"table"},
	)

	FilesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainlake_files_written_total",
			Help: "Total number of Parquet files written per table",
		},
		[]string{"table"},
	)

	// Decode metrics
	LogsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainlake_logs_decoded_total",
			Help: "Total number of logs decoded into typed events, per protocol",
		},
		[]string{"protocol"},
	)

	LogsDecodeSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainlake_logs_decode_skipped_total",
			Help: "Total number of logs skipped during decode due to topic/data mismatch, per protocol",
		},
		[]string{"protocol"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainlake_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainlake_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainlake_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainlake_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainlake_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func RowsWrittenAdd(table string, count int) {
	RowsWritten.WithLabelValues(table).Add(float64(count))
}

func FilesWrittenInc(table string) {
	FilesWritten.WithLabelValues(table).Inc()
}

func LogsDecodedAdd(protocol string, count int) {
	LogsDecoded.WithLabelValues(protocol).Add(float64(count))
}

func LogsDecodeSkippedInc(protocol string) {
	LogsDecodeSkipped.WithLabelValues(protocol).Inc()
}

func ErrorsInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
