package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/duties", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/api/duties", "POST", 201, 12*time.Millisecond)
	m.RecordError("/api/duties", "POST", "CONFLICT")

	requests, errs := m.Snapshot()
	assert.Equal(t, int64(2), requests["/api/duties|POST|201"])
	assert.Equal(t, int64(1), errs["/api/duties|POST|CONFLICT"])

	// Snapshot returns copies, not the live maps.
	requests["/api/duties|POST|201"] = 99
	again, _ := m.Snapshot()
	assert.Equal(t, int64(2), again["/api/duties|POST|201"])
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "INTERNAL")

	requests, errs := m.Snapshot()
	require.NotNil(t, requests)
	require.NotNil(t, errs)
	assert.Empty(t, requests)
	assert.Empty(t, errs)
}
