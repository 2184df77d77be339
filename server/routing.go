package server

import (
	"net/http"
)

// setupRoutes configures all HTTP handlers
func (s *Server) setupRoutes() {
	s.handle("/health", s.HandleHealth)

	// Resolution
	s.handle("/resolve/batch", s.HandleBatchResolve)
	s.handle("/resolve/", s.HandleResolve)
	s.handle("/describe/", s.HandleDescribe)
	s.handle("/list/", s.HandleList)
	s.handle("/lineage/", s.HandleLineage)
	s.handle("/fetch/", s.HandleFetch)

	// Catalog browsing
	s.handle("/catalog", s.HandleCatalogList)
	s.handle("/catalog/search", s.HandleCatalogSearch)
	s.handle("/catalog/stats", s.HandleCatalogStats)
	s.handle("/catalog/", s.HandleCatalogNode) // PUT .../status, GET .../audit
	s.handle("/metadata/", s.HandleMetadata)
	s.handle("/tree", s.HandleTree)
	s.handle("/tree/", s.HandleTree)

	// Cache and operations
	s.handle("/cache/status", s.HandleCacheStatus)
	s.handle("/cache/refresh/", s.HandleCacheRefresh)
	s.handle("/telemetry/access", s.HandleTelemetryAccess)
	s.handle("/config/reload", s.HandleConfigReload)

	// Event feed and browser UI
	s.handle("/ws/events", s.HandleEventsWebSocket)
	s.handle("/ui", s.HandleUI)

	if s.metrics != nil && s.cfg != nil && s.cfg.Telemetry.MetricsEnabled {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Server) handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, s.corsMiddleware(handler))
}

// corsMiddleware adds CORS headers for configured origins and answers
// preflight requests
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) originAllowed(origin string) bool {
	if s.cfg == nil {
		return false
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
