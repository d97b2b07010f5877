package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

// ServiceEngine defines the engine operations needed by service handlers.
// Satisfied by *catalog.Engine; narrow interface for testability.
type ServiceEngine interface {
	DeleteService(ctx context.Context, id uuid.UUID) (*catalog.DeleteReport, error)
}

// ServiceHandler handles service endpoints. Services are created implicitly
// by saving items, so this surface is read and delete only.
type ServiceHandler struct {
	store  *catalog.EntityStore
	engine ServiceEngine
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(store *catalog.EntityStore, engine ServiceEngine) *ServiceHandler {
	return &ServiceHandler{store: store, engine: engine}
}

// RegisterRoutes registers service endpoints on the given Chi router.
// Expected to be mounted at /catalog/services
func (h *ServiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)
}

type serviceResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toServiceResponse(s catalog.Service) serviceResponse {
	return serviceResponse{
		ID:          s.ID,
		CategoryID:  s.CategoryID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

// List returns services from the local mirror, optionally filtered by the
// category_id query parameter.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var services []catalog.Service
	if cidStr := r.URL.Query().Get("category_id"); cidStr != "" {
		cid, err := uuid.Parse(cidStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		services = h.store.ServicesByCategory(cid)
	} else {
		services = h.store.Services()
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	resp := make([]serviceResponse, len(services))
	for i, s := range services {
		resp[i] = toServiceResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a service and all of its items, then cleans up orphaned
// subcategories. Returns the deletion report.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	svcID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid service ID"})
		return
	}

	report, err := h.engine.DeleteService(r.Context(), svcID)
	if err != nil {
		writeEngineError(w, "delete service", err)
		return
	}

	writeJSON(w, http.StatusOK, toDeleteReportResponse(report))
}
