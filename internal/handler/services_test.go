package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestoria-app/catalog-api/internal/catalog"
	"github.com/gestoria-app/catalog-api/internal/handler"
)

type mockServiceEngine struct {
	deleteReport *catalog.DeleteReport
	deleteErr    error
	deletedID    uuid.UUID
}

func (m *mockServiceEngine) DeleteService(_ context.Context, id uuid.UUID) (*catalog.DeleteReport, error) {
	m.deletedID = id
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return m.deleteReport, nil
}

func setupServiceRouter(store *catalog.EntityStore, engine handler.ServiceEngine) *chi.Mux {
	h := handler.NewServiceHandler(store, engine)
	r := chi.NewRouter()
	r.Route("/catalog/services", h.RegisterRoutes)
	return r
}

func TestServiceList_FilterByCategory(t *testing.T) {
	store := catalog.NewEntityStore()
	catA := uuid.New()
	catB := uuid.New()
	store.PutService(catalog.Service{ID: uuid.New(), CategoryID: catA, Name: "Declaraciones", CreatedAt: time.Now()})
	store.PutService(catalog.Service{ID: uuid.New(), CategoryID: catA, Name: "Contabilidad", CreatedAt: time.Now()})
	store.PutService(catalog.Service{ID: uuid.New(), CategoryID: catB, Name: "Nóminas", CreatedAt: time.Now()})
	router := setupServiceRouter(store, &mockServiceEngine{})

	rr := doRequest(t, router, "GET", "/catalog/services?category_id="+catA.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 services, got %d", len(resp))
	}
	// Sorted by name within the filter.
	if resp[0]["name"] != "Contabilidad" || resp[1]["name"] != "Declaraciones" {
		t.Errorf("unexpected order: %v, %v", resp[0]["name"], resp[1]["name"])
	}

	rr = doRequest(t, router, "GET", "/catalog/services", nil)
	if resp = decodeListResponse(t, rr); len(resp) != 3 {
		t.Errorf("unfiltered list: expected 3 services, got %d", len(resp))
	}
}

func TestServiceList_InvalidCategoryID(t *testing.T) {
	router := setupServiceRouter(catalog.NewEntityStore(), &mockServiceEngine{})

	rr := doRequest(t, router, "GET", "/catalog/services?category_id=nope", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestServiceDelete_ReturnsReport(t *testing.T) {
	store := catalog.NewEntityStore()
	svcID := uuid.New()
	engine := &mockServiceEngine{deleteReport: &catalog.DeleteReport{
		RemovedServices:      []string{"Declaraciones"},
		RemovedSubcategories: []string{"0-5000", "5001-20000"},
	}}
	router := setupServiceRouter(store, engine)

	rr := doRequest(t, router, "DELETE", "/catalog/services/"+svcID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if engine.deletedID != svcID {
		t.Errorf("expected delete of %s, got %s", svcID, engine.deletedID)
	}

	resp := decodeResponse(t, rr)
	subs, _ := resp["removed_subcategories"].([]interface{})
	if len(subs) != 2 {
		t.Errorf("removed_subcategories: got %v", resp["removed_subcategories"])
	}
}
