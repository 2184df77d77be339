package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmoniker/openmoniker/catalog"
)

func strReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(7), body["nodes"])

	cacheStatus := body["cache"].(map[string]interface{})
	assert.Equal(t, true, cacheStatus["enabled"])
}

func TestResolveExactLeafScenario(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/benchmarks.constituents/SP500/20260101", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	source := body["source"].(map[string]interface{})
	assert.Equal(t, "snowflake", source["source_type"])

	query := source["query"].(string)
	assert.Contains(t, query, "'SP500'")
	assert.Contains(t, query, "'20260101'")

	assert.Equal(t, "benchmarks.constituents", body["binding_path"])
	assert.Equal(t, "SP500/20260101", body["sub_path"])
}

func TestResolveMissingPath(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveNotFound(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/does/not/exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Not found", body["error"])
	assert.Equal(t, "does/not/exist", body["path"])
}

func TestResolveParseError(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/prices/-bad-segment", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["detail"])
}

func TestDeprecationRedirectScenario(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/old.path", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "new.path", body["path"])
	assert.Equal(t, "old.path", body["redirected_from"])
}

func TestAccessPolicyDenialScenario(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/trades/ALL/ALL", nil)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Access denied", body["error"])
	// trades/ALL/ALL → 1000 × 10 × 10.
	assert.Equal(t, float64(100000), body["estimated_rows"])
	assert.NotEmpty(t, body["detail"])
}

func TestArchivedAncestorSkippedScenario(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/resolve/archived.parent/child", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInheritedOwnershipScenario(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/describe/benchmarks.constituents/SP500", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	ownership := body["ownership"].(map[string]interface{})
	assert.Equal(t, "a@x", ownership["accountable_owner"])
	assert.Equal(t, "benchmarks", ownership["accountable_owner_source"])
	assert.Equal(t, "b@x", ownership["data_specialist"])
	assert.Equal(t, "benchmarks.constituents", ownership["data_specialist_source"])
	_, hasSupport := ownership["support_channel"]
	assert.False(t, hasSupport)
}

func TestBatchResolve(t *testing.T) {
	srv, _, _ := testServer(t)

	payload := `{"monikers": ["benchmarks.constituents/SP500", "does/not/exist"]}`
	w := doRequest(t, srv, http.MethodPost, "/resolve/batch", &payload)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	results := body["results"].([]interface{})
	require.Len(t, results, 2)

	first := results[0].(map[string]interface{})
	assert.Equal(t, "benchmarks.constituents/SP500", first["path"])

	second := results[1].(map[string]interface{})
	assert.Equal(t, "does/not/exist", second["moniker"])
	assert.NotEmpty(t, second["error"])
}

func TestBatchResolveLimits(t *testing.T) {
	srv, _, _ := testServer(t)

	empty := `{"monikers": []}`
	w := doRequest(t, srv, http.MethodPost, "/resolve/batch", &empty)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	monikers := make([]string, 101)
	for i := range monikers {
		monikers[i] = fmt.Sprintf("p/%d", i)
	}
	payload, err := json.Marshal(map[string]interface{}{"monikers": monikers})
	require.NoError(t, err)
	payloadStr := string(payload)
	w = doRequest(t, srv, http.MethodPost, "/resolve/batch", &payloadStr)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/list/archived.parent", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	children := body["children"].([]interface{})
	assert.Contains(t, children, "archived.parent/child")
}

func TestLineage(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/lineage/benchmarks.constituents/SP500", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	hierarchy := body["hierarchy"].([]interface{})
	require.Len(t, hierarchy, 3)

	first := hierarchy[0].(map[string]interface{})
	assert.Equal(t, "benchmarks", first["path"])
	assert.Equal(t, true, first["registered"])

	last := hierarchy[2].(map[string]interface{})
	assert.Equal(t, "benchmarks.constituents/SP500", last["path"])
	assert.Equal(t, false, last["registered"])

	ownership := body["ownership"].(map[string]interface{})
	assert.Equal(t, "a@x", ownership["accountable_owner"])
}

func TestCatalogList(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/catalog?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, float64(7), body["total"])
	require.NotEmpty(t, body["next_cursor"])

	// Follow the cursor to the next page.
	w = doRequest(t, srv, http.MethodGet, "/catalog?limit=10&cursor="+body["next_cursor"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	next := decodeBody(t, w)
	assert.Equal(t, float64(4), next["count"])
}

func TestCatalogListStatusFilter(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/catalog?status=deprecated", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	paths := body["paths"].([]interface{})
	require.Len(t, paths, 1)
	assert.Equal(t, "old.path", paths[0])

	w = doRequest(t, srv, http.MethodGet, "/catalog?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogSearch(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/catalog/search?q=constituents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = doRequest(t, srv, http.MethodGet, "/catalog/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogStats(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/catalog/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	byStatus := body["by_status"].(map[string]interface{})
	assert.Equal(t, float64(7), byStatus["total"])
	assert.Equal(t, float64(1), byStatus["deprecated"])
	assert.Equal(t, float64(1), byStatus["archived"])

	bySourceType := body["by_source_type"].(map[string]interface{})
	assert.Equal(t, float64(2), bySourceType["snowflake"])
}

func TestMetadata(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/metadata/benchmarks.constituents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["has_binding"])
	assert.Equal(t, "snowflake", body["source_type"])
	assert.Len(t, body["fingerprint"], 16)

	w = doRequest(t, srv, http.MethodGet, "/metadata/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTree(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/tree/archived.parent", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	children := body["children"].([]interface{})
	require.Len(t, children, 1)
	child := children[0].(map[string]interface{})
	assert.Equal(t, "archived.parent/child", child["path"])
}

func TestFetchNotImplemented(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/fetch/benchmarks.constituents", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestUI(t *testing.T) {
	srv, _, _ := testServer(t)

	w := doRequest(t, srv, http.MethodGet, "/ui", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Moniker Catalog Browser")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)

	doRequest(t, srv, http.MethodGet, "/resolve/benchmarks.constituents/SP500", nil)

	w := doRequest(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "moniker_resolver_resolve_total")
}

// TestHotSwapCoherence runs concurrent resolves while the snapshot swaps to
// one where the path is gone. Every response must be a complete 200 or a 404;
// never a 500 or a partial body.
func TestHotSwapCoherence(t *testing.T) {
	srv, registry, _ := testServer(t)

	const resolvers = 100
	var wg sync.WaitGroup
	codes := make([]int, resolvers)
	bodies := make([]map[string]interface{}, resolvers)

	start := make(chan struct{})
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			w := doRequest(t, srv, http.MethodGet, "/resolve/benchmarks.constituents/SP500", nil)
			codes[i] = w.Code
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			bodies[i] = body
		}(i)
	}

	close(start)
	// Swap to a snapshot without the resolved path, repeatedly, mid-stream.
	for i := 0; i < 20; i++ {
		registry.AtomicReplace([]*catalog.Node{{Path: "other", Status: catalog.NodeStatusActive}})
		registry.AtomicReplace(nil)
	}
	wg.Wait()

	for i, code := range codes {
		switch code {
		case http.StatusOK:
			// Complete result: binding path and source present.
			assert.Equal(t, "benchmarks.constituents", bodies[i]["binding_path"])
			assert.NotNil(t, bodies[i]["source"])
		case http.StatusNotFound:
			assert.Equal(t, "Not found", bodies[i]["error"])
		default:
			t.Errorf("resolve %d returned unexpected status %d: %v", i, code, bodies[i])
		}
	}
}
