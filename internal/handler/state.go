package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
	"github.com/gestoria-app/catalog-api/internal/enum"
)

// StateHandler exposes the sync lifecycle: the explicit catalog reload and
// the view state (expanded nodes, selection) preserved across reloads.
type StateHandler struct {
	sync *catalog.OptimisticSync
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(sync *catalog.OptimisticSync) *StateHandler {
	return &StateHandler{sync: sync}
}

// RegisterRoutes registers sync endpoints on the given Chi router.
// Expected to be mounted at /catalog
func (h *StateHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reload", h.Reload)
	r.Get("/view-state", h.GetViewState)
	r.Put("/view-state/expand", h.Expand)
	r.Put("/view-state/select", h.Select)
}

// --- Request / Response types ---

type expandRequest struct {
	Kind     string `json:"kind"` // "category" or "service"
	ID       string `json:"id"`
	Expanded bool   `json:"expanded"`
}

type selectRequest struct {
	ItemID string `json:"item_id"` // empty clears the selection
}

type viewStateResponse struct {
	ExpandedCategories []uuid.UUID `json:"expanded_categories"`
	ExpandedServices   []uuid.UUID `json:"expanded_services"`
	SelectedItem       *uuid.UUID  `json:"selected_item"`
}

func toViewStateResponse(st catalog.ViewState) viewStateResponse {
	resp := viewStateResponse{
		ExpandedCategories: make([]uuid.UUID, 0, len(st.ExpandedCategories)),
		ExpandedServices:   make([]uuid.UUID, 0, len(st.ExpandedServices)),
	}
	for id := range st.ExpandedCategories {
		resp.ExpandedCategories = append(resp.ExpandedCategories, id)
	}
	for id := range st.ExpandedServices {
		resp.ExpandedServices = append(resp.ExpandedServices, id)
	}
	if st.SelectedItem != uuid.Nil {
		id := st.SelectedItem
		resp.SelectedItem = &id
	}
	return resp
}

// --- Handlers ---

// Reload replaces the local mirror with the remote authority's current
// state, preserving the view state.
func (h *StateHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Reload(r.Context()); err != nil {
		writeEngineError(w, "reload catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// GetViewState returns the preserved view state.
func (h *StateHandler) GetViewState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toViewStateResponse(h.sync.ViewState()))
}

// Expand records the expansion flag of a hierarchy node.
func (h *StateHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid node ID"})
		return
	}

	switch req.Kind {
	case enum.EntityCategory:
		h.sync.SetCategoryExpanded(id, req.Expanded)
	case enum.EntityService:
		h.sync.SetServiceExpanded(id, req.Expanded)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be category or service"})
		return
	}

	writeJSON(w, http.StatusOK, toViewStateResponse(h.sync.ViewState()))
}

// Select records the selected item, or clears it.
func (h *StateHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	itemID := uuid.Nil
	if req.ItemID != "" {
		var err error
		itemID, err = uuid.Parse(req.ItemID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
			return
		}
	}

	h.sync.SelectItem(itemID)
	writeJSON(w, http.StatusOK, toViewStateResponse(h.sync.ViewState()))
}
