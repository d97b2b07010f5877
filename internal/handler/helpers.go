package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Validation and duplicate failures are client errors; dependency, remote,
// and partial-delete failures mean the backend rejected or half-applied the
// operation and surface as 502 with the engine's message.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	var (
		validationErr *catalog.ValidationError
		duplicateErr  *catalog.DuplicateItemError
		dependencyErr *catalog.DependencyCreateError
		partialErr    *catalog.PartialDeleteError
		remoteErr     *catalog.RemoteError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": duplicateErr.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &dependencyErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": dependencyErr.Error()})
	case errors.As(err, &partialErr):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":            partialErr.Error(),
			"failed_service":   partialErr.FailedService,
			"deleted_services": partialErr.DeletedServices,
		})
	case errors.As(err, &remoteErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": remoteErr.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

type deleteReportResponse struct {
	RemovedServices      []string `json:"removed_services"`
	RemovedSubcategories []string `json:"removed_subcategories"`
	Warnings             []string `json:"warnings"`
}

func toDeleteReportResponse(report *catalog.DeleteReport) deleteReportResponse {
	resp := deleteReportResponse{
		RemovedServices:      report.RemovedServices,
		RemovedSubcategories: report.RemovedSubcategories,
		Warnings:             report.Warnings,
	}
	// Empty arrays, not nulls, in JSON
	if resp.RemovedServices == nil {
		resp.RemovedServices = []string{}
	}
	if resp.RemovedSubcategories == nil {
		resp.RemovedSubcategories = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}
