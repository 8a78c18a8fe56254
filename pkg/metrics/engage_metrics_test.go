package metrics

import (
	"testing"
	"time"
)

func TestLatencyTrackerStats(t *testing.T) {
	lt := NewLatencyTracker(100)

	for i := 1; i <= 100; i++ {
		lt.Record(time.Duration(i) * time.Millisecond)
	}

	stats := lt.Stats()
	if stats.Count != 100 {
		t.Fatalf("count = %d, want 100", stats.Count)
	}
	if stats.MinMs != 1 {
		t.Errorf("min = %v, want 1", stats.MinMs)
	}
	if stats.MaxMs != 100 {
		t.Errorf("max = %v, want 100", stats.MaxMs)
	}
	if stats.P50Ms < 45 || stats.P50Ms > 55 {
		t.Errorf("p50 = %v, want around 50", stats.P50Ms)
	}
	if stats.P99Ms < 95 {
		t.Errorf("p99 = %v, want at least 95", stats.P99Ms)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	lt := NewLatencyTracker(10)
	if stats := lt.Stats(); stats.Count != 0 {
		t.Fatalf("empty tracker count = %d, want 0", stats.Count)
	}
}

func TestLatencyTrackerWindowSlides(t *testing.T) {
	lt := NewLatencyTracker(10)

	for i := 0; i < 50; i++ {
		lt.Record(time.Millisecond)
	}

	if stats := lt.Stats(); stats.Count > 10 {
		t.Fatalf("count = %d, want at most window size 10", stats.Count)
	}
}

func TestAssessDBPoolHealth(t *testing.T) {
	tests := []struct {
		name  string
		stats DBPoolStats
		want  PoolHealthStatus
	}{
		{
			name:  "idle pool is healthy",
			stats: DBPoolStats{InUse: 2, MaxOpenConnections: 25},
			want:  PoolHealthy,
		},
		{
			name:  "high utilization is degraded",
			stats: DBPoolStats{InUse: 21, MaxOpenConnections: 25},
			want:  PoolDegraded,
		},
		{
			name:  "near exhaustion is unhealthy",
			stats: DBPoolStats{InUse: 24, MaxOpenConnections: 25},
			want:  PoolUnhealthy,
		},
		{
			name:  "long waits degrade a healthy pool",
			stats: DBPoolStats{InUse: 1, MaxOpenConnections: 25, WaitCount: 10, WaitDuration: 6 * time.Second},
			want:  PoolDegraded,
		},
		{
			name:  "unlimited pool reports healthy",
			stats: DBPoolStats{InUse: 3},
			want:  PoolHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessDBPoolHealth(tt.stats); got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestObserveAndAllLatencies(t *testing.T) {
	Observe("test_series", 5*time.Millisecond)
	Observe("test_series", 15*time.Millisecond)

	all := AllLatencies()
	stats, ok := all["test_series"]
	if !ok {
		t.Fatal("test_series missing from AllLatencies")
	}
	if stats.Count != 2 {
		t.Fatalf("count = %d, want 2", stats.Count)
	}
}
