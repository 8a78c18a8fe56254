// Package metrics provides connection pool and latency monitoring for
// the stats endpoint.
package metrics

import (
	"database/sql"
	"sort"
	"sync"
	"time"
)

// DBPoolStats holds database connection pool statistics.
type DBPoolStats struct {
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	MaxOpenConnections int           `json:"max_open_connections"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"-"`
	WaitDurationMs     int64         `json:"wait_duration_ms"`
}

// GetDBPoolStats retrieves pool statistics from a sql.DB instance.
func GetDBPoolStats(db *sql.DB) DBPoolStats {
	if db == nil {
		return DBPoolStats{}
	}

	stats := db.Stats()
	return DBPoolStats{
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		WaitDurationMs:     stats.WaitDuration.Milliseconds(),
	}
}

// PoolHealthStatus indicates the health of a connection pool.
type PoolHealthStatus string

const (
	PoolHealthy   PoolHealthStatus = "healthy"
	PoolDegraded  PoolHealthStatus = "degraded"
	PoolUnhealthy PoolHealthStatus = "unhealthy"
)

// PoolHealth represents the health assessment of a pool.
type PoolHealth struct {
	Status      PoolHealthStatus `json:"status"`
	Utilization float64          `json:"utilization"`
	Message     string           `json:"message,omitempty"`
}

// AssessDBPoolHealth evaluates the health of a database pool.
func AssessDBPoolHealth(stats DBPoolStats) PoolHealth {
	if stats.MaxOpenConnections == 0 {
		return PoolHealth{Status: PoolHealthy, Message: "unlimited connections"}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)

	var status PoolHealthStatus
	var message string

	switch {
	case utilization >= 0.95:
		status = PoolUnhealthy
		message = "pool nearly exhausted"
	case utilization >= 0.80:
		status = PoolDegraded
		message = "high pool utilization"
	default:
		status = PoolHealthy
		message = "pool operating normally"
	}

	if stats.WaitCount > 0 && stats.WaitDuration > 5*time.Second {
		if status == PoolHealthy {
			status = PoolDegraded
		}
		message = "elevated connection wait times"
	}

	return PoolHealth{
		Status:      status,
		Utilization: utilization,
		Message:     message,
	}
}

// LatencyTracker tracks durations in a sliding window and calculates
// percentiles over it.
type LatencyTracker struct {
	mu         sync.Mutex
	samples    []int64 // microseconds
	maxSamples int
	sorted     bool
}

// NewLatencyTracker creates a tracker keeping at most windowSize samples.
func NewLatencyTracker(windowSize int) *LatencyTracker {
	if windowSize <= 0 {
		windowSize = 1000
	}
	return &LatencyTracker{
		samples:    make([]int64, 0, windowSize),
		maxSamples: windowSize,
	}
}

// Record adds one latency measurement.
func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if len(lt.samples) >= lt.maxSamples {
		// Drop the oldest 10% in one shift instead of one at a time
		removeCount := lt.maxSamples / 10
		if removeCount < 1 {
			removeCount = 1
		}
		lt.samples = lt.samples[removeCount:]
	}

	lt.samples = append(lt.samples, d.Microseconds())
	lt.sorted = false
}

// LatencyStats holds latency statistics in milliseconds.
type LatencyStats struct {
	Count int64   `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

func toMs(micros int64) float64 {
	return float64(micros) / 1000.0
}

// Stats returns latency statistics over the current window.
func (lt *LatencyTracker) Stats() LatencyStats {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	n := len(lt.samples)
	if n == 0 {
		return LatencyStats{}
	}

	if !lt.sorted {
		sort.Slice(lt.samples, func(i, j int) bool {
			return lt.samples[i] < lt.samples[j]
		})
		lt.sorted = true
	}

	var sum int64
	for _, v := range lt.samples {
		sum += v
	}

	return LatencyStats{
		Count: int64(n),
		MinMs: toMs(lt.samples[0]),
		MaxMs: toMs(lt.samples[n-1]),
		AvgMs: toMs(sum / int64(n)),
		P50Ms: toMs(lt.percentile(0.50)),
		P95Ms: toMs(lt.percentile(0.95)),
		P99Ms: toMs(lt.percentile(0.99)),
	}
}

// percentile requires the lock held and samples sorted.
func (lt *LatencyTracker) percentile(p float64) int64 {
	idx := int(float64(len(lt.samples)-1) * p)
	return lt.samples[idx]
}

// Global registries. The stats endpoint reads them, everything else
// only writes.
var (
	regMu    sync.RWMutex
	pools    = make(map[string]*sql.DB)
	trackers = make(map[string]*LatencyTracker)
)

// RegisterPool registers a database pool for monitoring.
func RegisterPool(name string, db *sql.DB) {
	regMu.Lock()
	defer regMu.Unlock()
	pools[name] = db
}

// AllPoolStats returns statistics for every registered pool.
func AllPoolStats() map[string]DBPoolStats {
	regMu.RLock()
	defer regMu.RUnlock()

	result := make(map[string]DBPoolStats, len(pools))
	for name, db := range pools {
		result[name] = GetDBPoolStats(db)
	}
	return result
}

// AllPoolHealth returns health assessments for every registered pool.
func AllPoolHealth() map[string]PoolHealth {
	regMu.RLock()
	defer regMu.RUnlock()

	result := make(map[string]PoolHealth, len(pools))
	for name, db := range pools {
		result[name] = AssessDBPoolHealth(GetDBPoolStats(db))
	}
	return result
}

// Observe records a latency sample under name, creating the tracker on
// first use.
func Observe(name string, d time.Duration) {
	regMu.RLock()
	lt, ok := trackers[name]
	regMu.RUnlock()

	if !ok {
		regMu.Lock()
		lt, ok = trackers[name]
		if !ok {
			lt = NewLatencyTracker(1000)
			trackers[name] = lt
		}
		regMu.Unlock()
	}

	lt.Record(d)
}

// AllLatencies returns statistics for every observed latency series.
func AllLatencies() map[string]LatencyStats {
	regMu.RLock()
	defer regMu.RUnlock()

	result := make(map[string]LatencyStats, len(trackers))
	for name, lt := range trackers {
		result[name] = lt.Stats()
	}
	return result
}
