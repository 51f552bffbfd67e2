// Package monitoring collects in-process server metrics and health state.
// No external metrics backend; counters live in memory and are served as
// JSON by the metrics endpoint.
package monitoring

import (
	"sync"
	"time"

	"receiptserver/receipt"
)

// maxDurationSamples bounds the duration history kept for averages.
const maxDurationSamples = 1000

// MetricsCollector accumulates HTTP and receipt-processing counters. Safe
// for concurrent use.
type MetricsCollector struct {
	mu sync.RWMutex

	httpRequestsTotal   int64
	httpRequestsSuccess int64
	httpRequestsError   int64
	httpDurations       []time.Duration

	receiptsProcessed   int64
	receiptsFailed      int64
	itemsProcessed      int64
	itemsInconsistent   int64
	itemsByStage        map[string]int64
	processingDurations []time.Duration

	startTime     time.Time
	lastResetTime time.Time
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	now := time.Now()
	return &MetricsCollector{
		itemsByStage:  make(map[string]int64),
		startTime:     now,
		lastResetTime: now,
	}
}

// RecordHTTPRequest records one handled HTTP request.
func (mc *MetricsCollector) RecordHTTPRequest(success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.httpRequestsTotal++
	if success {
		mc.httpRequestsSuccess++
	} else {
		mc.httpRequestsError++
	}

	mc.httpDurations = appendBounded(mc.httpDurations, duration)
}

// RecordReceipt records one successfully processed receipt: its item count,
// arithmetic failures and which pipeline stage resolved each name.
func (mc *MetricsCollector) RecordReceipt(rec *receipt.ProcessedReceipt, duration time.Duration) {
	if rec == nil {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.receiptsProcessed++
	mc.itemsProcessed += int64(len(rec.Items))
	mc.itemsInconsistent += int64(rec.InconsistentCount())
	for _, item := range rec.Items {
		mc.itemsByStage[string(item.Normalization.Stage)]++
	}

	mc.processingDurations = appendBounded(mc.processingDurations, duration)
}

// RecordReceiptFailure records a receipt the pipeline rejected.
func (mc *MetricsCollector) RecordReceiptFailure() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.receiptsFailed++
}

// GetMetrics returns a point-in-time snapshot of all counters.
func (mc *MetricsCollector) GetMetrics() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	successRate := 0.0
	if mc.httpRequestsTotal > 0 {
		successRate = float64(mc.httpRequestsSuccess) / float64(mc.httpRequestsTotal) * 100
	}

	uptime := time.Since(mc.startTime).Seconds()
	requestsPerSecond := 0.0
	if uptime > 0 {
		requestsPerSecond = float64(mc.httpRequestsTotal) / uptime
	}

	itemsByStage := make(map[string]int64, len(mc.itemsByStage))
	for stage, n := range mc.itemsByStage {
		itemsByStage[stage] = n
	}

	return map[string]interface{}{
		"http": map[string]interface{}{
			"requests_total":      mc.httpRequestsTotal,
			"requests_success":    mc.httpRequestsSuccess,
			"requests_error":      mc.httpRequestsError,
			"success_rate":        successRate,
			"avg_duration_ms":     averageDuration(mc.httpDurations).Milliseconds(),
			"requests_per_second": requestsPerSecond,
		},
		"processing": map[string]interface{}{
			"receipts_processed": mc.receiptsProcessed,
			"receipts_failed":    mc.receiptsFailed,
			"items_processed":    mc.itemsProcessed,
			"items_inconsistent": mc.itemsInconsistent,
			"items_by_stage":     itemsByStage,
			"avg_duration_ms":    averageDuration(mc.processingDurations).Milliseconds(),
		},
		"system": map[string]interface{}{
			"uptime_seconds": uptime,
			"start_time":     mc.startTime.Format(time.RFC3339),
		},
	}
}

// Reset zeroes every counter. The start time is kept; uptime survives resets.
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.httpRequestsTotal = 0
	mc.httpRequestsSuccess = 0
	mc.httpRequestsError = 0
	mc.httpDurations = nil
	mc.receiptsProcessed = 0
	mc.receiptsFailed = 0
	mc.itemsProcessed = 0
	mc.itemsInconsistent = 0
	mc.itemsByStage = make(map[string]int64)
	mc.processingDurations = nil
	mc.lastResetTime = time.Now()
}

func appendBounded(samples []time.Duration, d time.Duration) []time.Duration {
	samples = append(samples, d)
	if len(samples) > maxDurationSamples {
		samples = samples[len(samples)-maxDurationSamples:]
	}
	return samples
}

func averageDuration(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	total := time.Duration(0)
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}
