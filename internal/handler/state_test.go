package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
	"github.com/gestoria-app/catalog-api/internal/handler"
)

// stubAuthority serves fixed collections; mutations are never reached by the
// state endpoints.
type stubAuthority struct {
	categories []catalog.Category
	services   []catalog.Service
	items      []catalog.Item
	listErr    error
}

func (s *stubAuthority) ListCategories(context.Context) ([]catalog.Category, error) {
	return s.categories, s.listErr
}
func (s *stubAuthority) ListServices(context.Context) ([]catalog.Service, error) {
	return s.services, s.listErr
}
func (s *stubAuthority) ListSubcategories(context.Context) ([]catalog.Subcategory, error) {
	return nil, s.listErr
}
func (s *stubAuthority) ListItems(context.Context) ([]catalog.Item, error) {
	return s.items, s.listErr
}

func (s *stubAuthority) CreateCategory(context.Context, catalog.CreateCategoryParams) (catalog.Category, error) {
	return catalog.Category{}, errors.New("not implemented")
}
func (s *stubAuthority) UpdateCategory(context.Context, uuid.UUID, catalog.CreateCategoryParams) (catalog.Category, error) {
	return catalog.Category{}, errors.New("not implemented")
}
func (s *stubAuthority) DeleteCategory(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}
func (s *stubAuthority) CreateService(context.Context, catalog.CreateServiceParams) (catalog.Service, error) {
	return catalog.Service{}, errors.New("not implemented")
}
func (s *stubAuthority) DeleteService(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}
func (s *stubAuthority) CreateSubcategory(context.Context, string) (catalog.Subcategory, error) {
	return catalog.Subcategory{}, errors.New("not implemented")
}
func (s *stubAuthority) DeleteSubcategory(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}
func (s *stubAuthority) CreateItem(context.Context, catalog.CreateItemParams) (catalog.Item, error) {
	return catalog.Item{}, errors.New("not implemented")
}
func (s *stubAuthority) UpdateItem(context.Context, uuid.UUID, catalog.CreateItemParams) (catalog.Item, error) {
	return catalog.Item{}, errors.New("not implemented")
}
func (s *stubAuthority) DeleteItem(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func setupStateRouter(authority *stubAuthority) (*chi.Mux, *catalog.OptimisticSync, *catalog.EntityStore) {
	store := catalog.NewEntityStore()
	syn := catalog.NewOptimisticSync(store, authority)
	h := handler.NewStateHandler(syn)
	r := chi.NewRouter()
	r.Route("/catalog", h.RegisterRoutes)
	return r, syn, store
}

func TestReloadEndpoint(t *testing.T) {
	cat := catalog.Category{ID: uuid.New(), Name: "Empresas"}
	authority := &stubAuthority{categories: []catalog.Category{cat}}
	router, _, store := setupStateRouter(authority)

	rr := doRequest(t, router, "POST", "/catalog/reload", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if _, ok := store.Category(cat.ID); !ok {
		t.Error("reload did not populate the store")
	}
}

func TestReloadEndpoint_RemoteFailure(t *testing.T) {
	authority := &stubAuthority{listErr: errors.New("connection refused")}
	router, _, _ := setupStateRouter(authority)

	rr := doRequest(t, router, "POST", "/catalog/reload", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestExpandAndGetViewState(t *testing.T) {
	cat := catalog.Category{ID: uuid.New(), Name: "Empresas"}
	authority := &stubAuthority{categories: []catalog.Category{cat}}
	router, _, _ := setupStateRouter(authority)

	rr := doRequest(t, router, "PUT", "/catalog/view-state/expand", map[string]interface{}{
		"kind":     "category",
		"id":       cat.ID.String(),
		"expanded": true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, "GET", "/catalog/view-state", nil)
	resp := decodeResponse(t, rr)
	expanded, _ := resp["expanded_categories"].([]interface{})
	if len(expanded) != 1 || expanded[0] != cat.ID.String() {
		t.Errorf("expanded_categories: got %v", resp["expanded_categories"])
	}
	if resp["selected_item"] != nil {
		t.Errorf("selected_item should be null, got %v", resp["selected_item"])
	}
}

func TestExpandRejectsUnknownKind(t *testing.T) {
	router, _, _ := setupStateRouter(&stubAuthority{})

	rr := doRequest(t, router, "PUT", "/catalog/view-state/expand", map[string]interface{}{
		"kind": "item",
		"id":   uuid.New().String(),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSelectAndClear(t *testing.T) {
	itemID := uuid.New()
	router, syn, _ := setupStateRouter(&stubAuthority{})

	rr := doRequest(t, router, "PUT", "/catalog/view-state/select", map[string]string{"item_id": itemID.String()})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if syn.ViewState().SelectedItem != itemID {
		t.Error("selection not recorded")
	}

	rr = doRequest(t, router, "PUT", "/catalog/view-state/select", map[string]string{"item_id": ""})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if syn.ViewState().SelectedItem != uuid.Nil {
		t.Error("empty item_id must clear the selection")
	}
}
