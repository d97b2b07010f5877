package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

// SubcategoryHandler serves the subcategory collection. Subcategories are
// created implicitly by saving items and removed by the orphan pass, so the
// surface is read-only.
type SubcategoryHandler struct {
	store *catalog.EntityStore
}

// NewSubcategoryHandler creates a new SubcategoryHandler.
func NewSubcategoryHandler(store *catalog.EntityStore) *SubcategoryHandler {
	return &SubcategoryHandler{store: store}
}

// RegisterRoutes registers subcategory endpoints on the given Chi router.
// Expected to be mounted at /catalog/subcategories
func (h *SubcategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type subcategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns all subcategories from the local mirror.
func (h *SubcategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	subcategories := h.store.Subcategories()
	sort.Slice(subcategories, func(i, j int) bool { return subcategories[i].Name < subcategories[j].Name })

	resp := make([]subcategoryResponse, len(subcategories))
	for i, sc := range subcategories {
		resp[i] = subcategoryResponse{ID: sc.ID, Name: sc.Name, CreatedAt: sc.CreatedAt}
	}

	writeJSON(w, http.StatusOK, resp)
}
