package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openmoniker/openmoniker/audit"
	"github.com/openmoniker/openmoniker/cache"
	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/config"
	"github.com/openmoniker/openmoniker/resolver"
	"github.com/openmoniker/openmoniker/telemetry"
)

const testCatalog = `
benchmarks:
  display_name: Benchmarks
  ownership:
    accountable_owner: a@x

benchmarks.constituents:
  display_name: Benchmark Constituents
  is_leaf: true
  ownership:
    data_specialist: b@x
  source_binding:
    type: snowflake
    config:
      warehouse: ANALYTICS
      query: "SELECT * FROM constituents WHERE benchmark = '{segments[1]}' AND as_of = '{version_date}'"

old.path:
  display_name: Old Path
  status: deprecated
  successor: new.path
  source_binding:
    type: oracle
    config:
      dsn: legacy
      query: "SELECT 1"

new.path:
  display_name: New Path
  is_leaf: true
  source_binding:
    type: snowflake
    config:
      query: "SELECT 2"

trades:
  display_name: Trades
  is_leaf: true
  source_binding:
    type: mssql
    config:
      query: "SELECT * FROM trades"
  access_policy:
    base_row_count: 1000
    cardinality_multipliers: [10, 10, 10]
    max_rows_block: 5000

archived.parent:
  display_name: Archived
  status: archived
  source_binding:
    type: static
    config: {}

archived.parent/child:
  display_name: Orphaned child
`

// testServer builds a fully wired server over a temp catalog file
func testServer(t *testing.T) (*Server, *catalog.Registry, string) {
	t.Helper()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))

	logger := zaptest.NewLogger(t).Sugar()
	registry := catalog.NewRegistry()
	reloader := catalog.NewReloader(registry, []string{catalogPath}, 0, logger)
	_, err := reloader.Reload()
	require.NoError(t, err)

	resultCache := cache.NewInMemory(time.Minute)
	service := resolver.NewService(registry, resultCache, time.Minute, logger)
	metrics := telemetry.NewMetrics()

	auditStore, err := audit.Open(filepath.Join(dir, "audit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { auditStore.Close() })

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: config.DefaultServerPort},
		Catalog:   config.CatalogConfig{Paths: []string{catalogPath}},
		Cache:     config.CacheConfig{Enabled: true, TTLSeconds: 60},
		Telemetry: config.TelemetryConfig{MetricsEnabled: true},
	}

	srv := New(Options{
		Config:   cfg,
		Registry: registry,
		Service:  service,
		Reloader: reloader,
		Cache:    resultCache,
		AuditLog: auditStore,
		Emitter:  telemetry.NewLogEmitter(logger, metrics),
		Metrics:  metrics,
		Logger:   logger,
	})

	return srv, registry, catalogPath
}

func doRequest(t *testing.T, srv *Server, method, target string, body *string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strReader(*body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}
