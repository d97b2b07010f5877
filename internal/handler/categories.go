package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

// CategoryEngine defines the engine operations needed by category handlers.
// Satisfied by *catalog.Engine; narrow interface for testability.
type CategoryEngine interface {
	SaveCategory(ctx context.Context, arg catalog.CreateCategoryParams, existingID uuid.UUID) (catalog.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (*catalog.DeleteReport, error)
}

// CategoryHandler handles category endpoints. Reads come from the local
// mirror; writes go through the engine.
type CategoryHandler struct {
	store  *catalog.EntityStore
	engine CategoryEngine
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store *catalog.EntityStore, engine CategoryEngine) *CategoryHandler {
	return &CategoryHandler{store: store, engine: engine}
}

// RegisterRoutes registers category endpoints on the given Chi router.
// Expected to be mounted at /catalog/categories
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type saveCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c catalog.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
	}
}

// --- Handlers ---

// List returns all categories from the local mirror.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cat, err := h.engine.SaveCategory(r.Context(), catalog.CreateCategoryParams{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	}, uuid.Nil)
	if err != nil {
		writeEngineError(w, "create category", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

// Update modifies an existing category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	catID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	var req saveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cat, err := h.engine.SaveCategory(r.Context(), catalog.CreateCategoryParams{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	}, catID)
	if err != nil {
		writeEngineError(w, "update category", err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// Delete removes a category with all of its services and items, then cleans
// up orphaned subcategories. Returns the deletion report.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	catID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	report, err := h.engine.DeleteCategory(r.Context(), catID)
	if err != nil {
		writeEngineError(w, "delete category", err)
		return
	}

	writeJSON(w, http.StatusOK, toDeleteReportResponse(report))
}
