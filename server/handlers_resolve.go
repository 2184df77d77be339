package server

import (
	"net/http"
	"time"
)

const maxBatchSize = 100

// HandleResolve serves GET /resolve/{path...}
func (s *Server) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	monikerStr := trailingPath(r, "/resolve/")
	if monikerStr == "" {
		writeError(w, http.StatusBadRequest, "Missing moniker path", nil)
		return
	}
	if r.URL.RawQuery != "" {
		monikerStr += "?" + r.URL.RawQuery
	}

	start := time.Now()
	result, err := s.service.Resolve(r.Context(), monikerStr, caller(r))
	s.observeResolve(start, err)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleBatchResolve serves POST /resolve/batch with {"monikers": [...]}.
// Individual failures come back in-line as {moniker, error} entries.
func (s *Server) HandleBatchResolve(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var request struct {
		Monikers []string `json:"monikers"`
	}
	if !readJSON(w, r, &request) {
		return
	}
	if len(request.Monikers) == 0 {
		writeError(w, http.StatusBadRequest, "Empty moniker list", nil)
		return
	}
	if len(request.Monikers) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "Too many monikers", map[string]interface{}{
			"detail": "Maximum 100 monikers per batch request",
			"count":  len(request.Monikers),
		})
		return
	}

	id := caller(r)
	results := make([]interface{}, len(request.Monikers))
	for i, monikerStr := range request.Monikers {
		start := time.Now()
		result, err := s.service.Resolve(r.Context(), monikerStr, id)
		s.observeResolve(start, err)
		if err != nil {
			results[i] = map[string]interface{}{
				"moniker": monikerStr,
				"error":   err.Error(),
			}
			continue
		}
		results[i] = result
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// HandleDescribe serves GET /describe/{path...}: metadata without query
// rendering, successor chase, or policy checks
func (s *Server) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	path := trailingPath(r, "/describe/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	result, err := s.service.Describe(r.Context(), path)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleList serves GET /list/{path...}; an empty path lists the root
func (s *Server) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := s.service.List(r.Context(), trailingPath(r, "/list/"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLineage serves GET /lineage/{path...}: ancestor chain plus resolved
// ownership with provenance
func (s *Server) HandleLineage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	path := trailingPath(r, "/lineage/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	result, err := s.service.Lineage(r.Context(), path)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleFetch serves GET /fetch/{path...}. Executing queries needs a source
// adapter, which is an external collaborator; the engine answers 501.
func (s *Server) HandleFetch(w http.ResponseWriter, r *http.Request) {
	path := trailingPath(r, "/fetch/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	writeError(w, http.StatusNotImplemented, "Data fetch not implemented", map[string]interface{}{
		"detail": "Server-side data fetch requires a source adapter",
		"path":   path,
	})
}

// observeResolve records resolve metrics by outcome
func (s *Server) observeResolve(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ResolveTotal.WithLabelValues(outcome).Inc()
	s.metrics.ResolveDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
