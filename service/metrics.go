package service

import (
	"sync"
	"time"
)

// MetricsCollector tracks counts and cumulative processing time for the
// ledger's main operations, plus outcome counters for the decryption
// protocol.
type MetricsCollector struct {
	mu sync.RWMutex

	submitCount     int
	submitTotalTime time.Duration

	calculateCount     int
	calculateTotalTime time.Duration

	revealRequested int
	revealVerified  int
	revealRejected  int
	revealTotalTime time.Duration
}

// OperationMetrics contains timing information for an operation.
type OperationMetrics struct {
	Count            int   `json:"count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// RevealMetrics counts decryption-protocol outcomes. Requested minus the two
// terminal counters is the number of requests still pending. ProcessingTimeMs
// accumulates request-to-terminal round-trip latency; still-pending requests
// contribute nothing until they resolve.
type RevealMetrics struct {
	Requested        int   `json:"requested"`
	Verified         int   `json:"verified"`
	Rejected         int   `json:"rejected"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// MetricsResponse provides the metrics for all operations.
type MetricsResponse struct {
	Submit    OperationMetrics `json:"submit"`
	Calculate OperationMetrics `json:"calculate"`
	Reveal    RevealMetrics    `json:"reveal"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordSubmit records one preference submission and its duration.
func (mc *MetricsCollector) RecordSubmit(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.submitCount++
	mc.submitTotalTime += d
}

// RecordCalculate records one adjustment calculation and its duration.
func (mc *MetricsCollector) RecordCalculate(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.calculateCount++
	mc.calculateTotalTime += d
}

// RecordRevealRequested counts a dispatched decryption request.
func (mc *MetricsCollector) RecordRevealRequested() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.revealRequested++
}

// RecordRevealVerified counts a request that terminated in Verified, with its
// request-to-terminal round-trip duration.
func (mc *MetricsCollector) RecordRevealVerified(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.revealVerified++
	mc.revealTotalTime += d
}

// RecordRevealRejected counts a request that terminated in Rejected, with its
// request-to-terminal round-trip duration.
func (mc *MetricsCollector) RecordRevealRejected(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.revealRejected++
	mc.revealTotalTime += d
}

// Snapshot returns the current metrics.
func (mc *MetricsCollector) Snapshot() *MetricsResponse {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return &MetricsResponse{
		Submit: OperationMetrics{
			Count:            mc.submitCount,
			ProcessingTimeMs: mc.submitTotalTime.Milliseconds(),
		},
		Calculate: OperationMetrics{
			Count:            mc.calculateCount,
			ProcessingTimeMs: mc.calculateTotalTime.Milliseconds(),
		},
		Reveal: RevealMetrics{
			Requested:        mc.revealRequested,
			Verified:         mc.revealVerified,
			Rejected:         mc.revealRejected,
			ProcessingTimeMs: mc.revealTotalTime.Milliseconds(),
		},
	}
}
