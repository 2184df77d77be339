package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStampEvent(t *testing.T) {
	event := AccessEvent{Moniker: "moniker://prices/AAPL"}
	StampEvent(&event)

	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.ReceivedAt.IsZero())
	assert.Equal(t, "anonymous", event.UserID)

	// Existing identity is preserved.
	stamped := AccessEvent{EventID: "fixed", UserID: "alice"}
	StampEvent(&stamped)
	assert.Equal(t, "fixed", stamped.EventID)
	assert.Equal(t, "alice", stamped.UserID)
}

func TestLogEmitterCounts(t *testing.T) {
	metrics := NewMetrics()
	emitter := NewLogEmitter(zaptest.NewLogger(t).Sugar(), metrics)

	emitter.EmitAccess(AccessEvent{Operation: "resolve"})
	emitter.EmitAccess(AccessEvent{Operation: "resolve"})
	emitter.EmitAccess(AccessEvent{Operation: "fetch"})

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	require.Contains(t, body, "moniker_telemetry_access_events_total")
	assert.Contains(t, body, `operation="resolve"`)
	assert.Contains(t, body, `operation="fetch"`)
}

func TestMetricsHandlerServesCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ResolveTotal.WithLabelValues("ok").Inc()
	metrics.CatalogNodes.Set(42)

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "moniker_resolver_resolve_total")
	assert.Contains(t, w.Body.String(), "moniker_catalog_nodes 42")
}
