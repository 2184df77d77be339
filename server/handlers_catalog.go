package server

import (
	"net/http"
	"strconv"

	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/version"
)

// HandleHealth serves GET /health with liveness, node count, and cache state
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	cacheStatus := map[string]interface{}{"enabled": s.cache != nil}
	if s.cache != nil {
		cacheStatus["size"] = s.cache.Size()
	}

	body := map[string]interface{}{
		"status":  "ok",
		"version": version.Get(),
		"nodes":   s.registry.Len(),
		"cache":   cacheStatus,
	}
	if s.reloader != nil && !s.reloader.LastLoad().IsZero() {
		body["last_reload"] = s.reloader.LastLoad().Format("2006-01-02T15:04:05Z07:00")
	}

	writeJSON(w, http.StatusOK, body)
}

// HandleCatalogList serves GET /catalog: a paginated path listing. Cursors
// are position-based over the sorted path list of the current snapshot; a
// snapshot swap mid-iteration may skip or repeat entries.
func (s *Server) HandleCatalogList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limit := parseLimit(r.URL.Query().Get("limit"), 100, 1000)

	var statusFilter *catalog.NodeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := catalog.NodeStatus(raw)
		if !catalog.ValidStatuses[status] {
			writeError(w, http.StatusBadRequest, "Invalid status filter", map[string]interface{}{
				"provided": raw,
			})
			return
		}
		statusFilter = &status
	}

	allPaths := s.registry.AllPaths()
	if statusFilter != nil {
		filtered := allPaths[:0]
		for _, p := range allPaths {
			if node := s.registry.Get(p); node != nil && node.Status == *statusFilter {
				filtered = append(filtered, p)
			}
		}
		allPaths = filtered
	}

	start := 0
	if cursor != "" {
		for i, p := range allPaths {
			if p > cursor {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end > len(allPaths) {
		end = len(allPaths)
	}
	paths := allPaths[start:end]

	body := map[string]interface{}{
		"paths": paths,
		"count": len(paths),
		"total": len(allPaths),
	}
	if end < len(allPaths) && len(paths) > 0 {
		body["next_cursor"] = paths[len(paths)-1]
	}

	writeJSON(w, http.StatusOK, body)
}

// HandleCatalogSearch serves GET /catalog/search?q=&limit=: substring search
// on path, display name, description, and tags
func (s *Server) HandleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter", map[string]interface{}{
			"detail": "Query parameter 'q' is required",
		})
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 50, 1000)

	results := s.registry.Search(query, nil, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// HandleCatalogStats serves GET /catalog/stats: counts by status and by
// source type
func (s *Server) HandleCatalogStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"by_status":      s.registry.CountByStatus(),
		"by_source_type": s.registry.CountBySourceType(),
	})
}

// HandleMetadata serves GET /metadata/{path...}: node, ownership, and a
// binding summary
func (s *Server) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	path := trailingPath(r, "/metadata/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	node := s.registry.Get(path)
	if node == nil {
		writeError(w, http.StatusNotFound, "Node not found", map[string]interface{}{
			"path": path,
		})
		return
	}

	binding, bindingPath := s.registry.FindSourceBinding(path)
	body := map[string]interface{}{
		"path":         path,
		"node":         node,
		"ownership":    s.registry.ResolveOwnership(path),
		"has_binding":  binding != nil,
		"binding_path": bindingPath,
	}
	if binding != nil {
		body["source_type"] = string(binding.SourceType)
		body["fingerprint"] = binding.Fingerprint()
	}

	writeJSON(w, http.StatusOK, body)
}

// HandleTree serves GET /tree and GET /tree/{path...}: a node plus an
// immediate-children summary
func (s *Server) HandleTree(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	path := trailingPath(r, "/tree")
	children := s.registry.Children(path)

	childNodes := make([]map[string]interface{}, len(children))
	for i, child := range children {
		childNodes[i] = map[string]interface{}{
			"path":         child.Path,
			"display_name": child.DisplayName,
			"is_leaf":      child.IsLeaf,
			"status":       child.Status,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":     path,
		"node":     s.registry.Get(path),
		"children": childNodes,
		"count":    len(children),
	})
}

// parseLimit parses a limit parameter with a default and a ceiling
func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > max {
		return def
	}
	return limit
}
