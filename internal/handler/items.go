package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

// ItemEngine defines the engine operations needed by item handlers.
// Satisfied by *catalog.Engine; narrow interface for testability.
type ItemEngine interface {
	SaveItem(ctx context.Context, draft catalog.ItemDraft, existingID uuid.UUID) (*catalog.SaveItemResult, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (*catalog.DeleteReport, error)
}

// ItemHandler handles item endpoints; the list endpoint serves the enriched
// projection joining items with service and subcategory names.
type ItemHandler struct {
	projector *catalog.ViewProjector
	engine    ItemEngine
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(projector *catalog.ViewProjector, engine ItemEngine) *ItemHandler {
	return &ItemHandler{projector: projector, engine: engine}
}

// RegisterRoutes registers item endpoints on the given Chi router.
// Expected to be mounted at /catalog/items
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

// saveItemRequest references the service and subcategory either by id (when
// the caller picked an existing one) or by free-text name (which the engine
// resolves and creates as needed). Supplying an id wins over a name.
type saveItemRequest struct {
	CategoryID      string `json:"category_id"`
	ServiceID       string `json:"service_id"`
	ServiceName     string `json:"service_name"`
	SubcategoryID   string `json:"subcategory_id"`
	SubcategoryName string `json:"subcategory_name"`
	Price           string `json:"price"`
}

type enrichedItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	SubcategoryID   uuid.UUID `json:"subcategory_id"`
	SubcategoryName string    `json:"subcategory_name"`
	CategoryID      uuid.UUID `json:"category_id"`
	Price           string    `json:"price"`
	CreatedAt       time.Time `json:"created_at"`
}

func toEnrichedItemResponse(e catalog.EnrichedItem) enrichedItemResponse {
	return enrichedItemResponse{
		ID:              e.ID,
		ServiceID:       e.ServiceID,
		ServiceName:     e.ServiceName,
		SubcategoryID:   e.SubcategoryID,
		SubcategoryName: e.SubcategoryName,
		CategoryID:      e.CategoryID,
		Price:           e.Price.StringFixed(2),
		CreatedAt:       e.CreatedAt,
	}
}

type saveItemResponse struct {
	Item     enrichedItemResponse `json:"item"`
	Warnings []string             `json:"warnings"`
}

// --- Handlers ---

// List returns the enriched item view.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	enriched := h.projector.EnrichedItems()

	resp := make([]enrichedItemResponse, len(enriched))
	for i, e := range enriched {
		resp[i] = toEnrichedItemResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create saves a new item, creating its service and subcategory as needed.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, uuid.Nil)
}

// Update modifies an existing item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}
	h.save(w, r, itemID)
}

func (h *ItemHandler) save(w http.ResponseWriter, r *http.Request, existingID uuid.UUID) {
	var req saveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.engine.SaveItem(r.Context(), draft, existingID)
	if err != nil {
		writeEngineError(w, "save item", err)
		return
	}

	status := http.StatusCreated
	if existingID != uuid.Nil {
		status = http.StatusOK
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, status, saveItemResponse{
		Item:     h.enrich(result.Item),
		Warnings: warnings,
	})
}

// enrich finds the saved item in the current projection; a reload races only
// with other mutations, which are serialized, so the item is present.
func (h *ItemHandler) enrich(item catalog.Item) enrichedItemResponse {
	for _, e := range h.projector.EnrichedItems() {
		if e.ID == item.ID {
			return toEnrichedItemResponse(e)
		}
	}
	return toEnrichedItemResponse(catalog.EnrichedItem{
		Item:            item,
		ServiceName:     catalog.UnknownName,
		SubcategoryName: catalog.UnknownName,
	})
}

func draftFromRequest(req saveItemRequest) (catalog.ItemDraft, error) {
	var draft catalog.ItemDraft

	if req.CategoryID != "" {
		cid, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return draft, &catalog.ValidationError{Field: "category_id", Reason: "must be a valid UUID"}
		}
		draft.CategoryID = cid
	}

	switch {
	case req.ServiceID != "":
		sid, err := uuid.Parse(req.ServiceID)
		if err != nil {
			return draft, &catalog.ValidationError{Field: "service_id", Reason: "must be a valid UUID"}
		}
		draft.Service = catalog.ExistingRef(sid)
	case req.ServiceName != "":
		draft.Service = catalog.ByNameRef(req.ServiceName)
	}

	switch {
	case req.SubcategoryID != "":
		scid, err := uuid.Parse(req.SubcategoryID)
		if err != nil {
			return draft, &catalog.ValidationError{Field: "subcategory_id", Reason: "must be a valid UUID"}
		}
		draft.Subcategory = catalog.ExistingRef(scid)
	case req.SubcategoryName != "":
		draft.Subcategory = catalog.ByNameRef(req.SubcategoryName)
	}

	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return draft, &catalog.ValidationError{Field: "price", Reason: "must be a decimal number"}
		}
		draft.Price = price
	}

	return draft, nil
}

// Delete removes an item; when it is the last item of its service the whole
// service goes with it. Returns the deletion report.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	report, err := h.engine.DeleteItem(r.Context(), itemID)
	if err != nil {
		writeEngineError(w, "delete item", err)
		return
	}

	writeJSON(w, http.StatusOK, toDeleteReportResponse(report))
}
