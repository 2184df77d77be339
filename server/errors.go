package server

import (
	"context"
	"net/http"

	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/errors"
	"github.com/openmoniker/openmoniker/moniker"
	"github.com/openmoniker/openmoniker/resolver"
)

// writeServiceError converts the typed error ladder into HTTP statuses. This
// is the single place the mapping lives.
func writeServiceError(w http.ResponseWriter, err error) {
	var parseErr *moniker.ParseError
	var resolutionErr *resolver.ResolutionError
	var notFoundErr *resolver.NotFoundError
	var deniedErr *resolver.AccessDeniedError
	var loadErr *catalog.LoadError

	switch {
	case errors.As(err, &parseErr):
		details := map[string]interface{}{"detail": parseErr.Message}
		if parseErr.Token != "" {
			details["token"] = parseErr.Token
		}
		writeError(w, http.StatusBadRequest, "Parse error", details)

	case errors.As(err, &resolutionErr):
		writeError(w, http.StatusBadRequest, "Resolution error", map[string]interface{}{
			"detail": resolutionErr.Message,
		})

	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, "Not found", map[string]interface{}{
			"detail": notFoundErr.Error(),
			"path":   notFoundErr.Path,
		})

	case errors.As(err, &deniedErr):
		details := map[string]interface{}{"detail": deniedErr.Message}
		if deniedErr.EstimatedRows != nil {
			details["estimated_rows"] = *deniedErr.EstimatedRows
		}
		writeError(w, http.StatusForbidden, "Access denied", details)

	case errors.As(err, &loadErr):
		writeError(w, http.StatusInternalServerError, "Catalog load error", map[string]interface{}{
			"detail": loadErr.Error(),
		})

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client went away; 499-style close without a body write race.
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", nil)

	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", map[string]interface{}{
			"detail": err.Error(),
		})
	}
}
