package server

import (
	"net/http"
	"strings"

	"github.com/openmoniker/openmoniker/audit"
	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/telemetry"
)

// HandleCatalogNode dispatches /catalog/{path...}/status and
// /catalog/{path...}/audit
func (s *Server) HandleCatalogNode(w http.ResponseWriter, r *http.Request) {
	rest := trailingPath(r, "/catalog/")

	switch {
	case strings.HasSuffix(rest, "/status"):
		s.handleStatusUpdate(w, r, strings.TrimSuffix(rest, "/status"))
	case strings.HasSuffix(rest, "/audit"):
		s.handleAuditLog(w, r, strings.TrimSuffix(rest, "/audit"))
	default:
		writeError(w, http.StatusNotFound, "Unknown catalog operation", map[string]interface{}{
			"detail": "Expected /catalog/{path}/status or /catalog/{path}/audit",
		})
	}
}

// handleStatusUpdate serves PUT /catalog/{path}/status. The mutation applies
// to the live snapshot only and is overwritten by the next reload; the audit
// row is the durable record. Transition validity is not enforced.
func (s *Server) handleStatusUpdate(w http.ResponseWriter, r *http.Request, path string) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	var request struct {
		Status string `json:"status"`
	}
	if !readJSON(w, r, &request) {
		return
	}

	newStatus := catalog.NodeStatus(request.Status)
	if !catalog.ValidStatuses[newStatus] {
		writeError(w, http.StatusBadRequest, "Invalid status", map[string]interface{}{
			"detail":   "Status must be one of: draft, pending_review, approved, active, deprecated, archived",
			"provided": request.Status,
		})
		return
	}

	node := s.registry.Get(path)
	if node == nil {
		writeError(w, http.StatusNotFound, "Node not found", map[string]interface{}{
			"path": path,
		})
		return
	}

	oldStatus := node.Status
	node.Status = newStatus

	s.logger.Infow("Node status updated",
		"path", path,
		"old_status", oldStatus,
		"new_status", newStatus,
		"actor", caller(r).UserID,
	)

	if s.auditLog != nil {
		oldVal, newVal := string(oldStatus), string(newStatus)
		if err := s.auditLog.Append(r.Context(), audit.Entry{
			Path:     path,
			Action:   "status_changed",
			Actor:    caller(r).UserID,
			OldValue: &oldVal,
			NewValue: &newVal,
		}); err != nil {
			s.logger.Warnw("Failed to record audit entry", "path", path, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
		"updated":    true,
	})
}

// handleAuditLog serves GET /catalog/{path}/audit
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request, path string) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	entries := []audit.Entry{}
	if s.auditLog != nil {
		var err error
		entries, err = s.auditLog.ForPath(r.Context(), path, parseLimit(r.URL.Query().Get("limit"), 100, 1000))
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":    path,
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleCacheStatus serves GET /cache/status
func (s *Server) HandleCacheStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if s.cache == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "disabled",
			"backend": "none",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"backend": "in-memory",
		"size":    s.cache.Size(),
	})
}

// HandleCacheRefresh serves POST /cache/refresh/{path...}: drops cached
// resolve results under the path
func (s *Server) HandleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	path := trailingPath(r, "/cache/refresh/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path", nil)
		return
	}

	removed := s.service.InvalidateCache(path)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":    path,
		"status":  "ok",
		"removed": removed,
	})
}

// HandleTelemetryAccess serves POST /telemetry/access. Decoded events are
// stamped, handed to the emitter, and acknowledged with 202; a body that is
// not valid JSON is answered with 400.
func (s *Server) HandleTelemetryAccess(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var event telemetry.AccessEvent
	if !readJSON(w, r, &event) {
		return
	}
	if event.UserID == "" {
		event.UserID = caller(r).UserID
	}
	telemetry.StampEvent(&event)

	if s.emitter != nil {
		s.emitter.EmitAccess(event)
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"event_id": event.EventID,
	})
}

// HandleConfigReload serves POST /config/reload: a synchronous snapshot
// reload. Failures report the error and retain the previous snapshot.
func (s *Server) HandleConfigReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.reloader == nil {
		writeError(w, http.StatusServiceUnavailable, "Reloader not configured", nil)
		return
	}

	nodes, err := s.reloader.Reload()
	if s.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		s.metrics.ReloadTotal.WithLabelValues(result).Inc()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reload failed", map[string]interface{}{
			"detail":   err.Error(),
			"retained": true,
		})
		return
	}

	if s.auditLog != nil {
		if auditErr := s.auditLog.Append(r.Context(), audit.Entry{
			Path:   "",
			Action: "catalog_reloaded",
			Actor:  caller(r).UserID,
		}); auditErr != nil {
			s.logger.Warnw("Failed to record reload audit entry", "error", auditErr)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"nodes":  nodes,
	})
}
