package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestReloadReplacesCollections(t *testing.T) {
	fake := newFakeAuthority()
	_, svc, _, item := seedGestoria(fake)
	env := newTestEnv(t, fake)

	if len(env.store.Categories()) != 1 || len(env.store.Items()) != 1 {
		t.Fatal("initial reload did not populate the mirror")
	}

	// Server-side changes show up on the next reload.
	delete(fake.items, item.ID)
	fake.seedItem(svc.ID, fake.seedSubcategory("5001-20000").ID, "45.00")

	if err := env.sync.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := env.store.Item(item.ID); ok {
		t.Error("reload must drop records the server no longer has")
	}
	if len(env.store.Items()) != 1 {
		t.Errorf("expected 1 item after reload, got %d", len(env.store.Items()))
	}
	if len(env.store.Subcategories()) != 2 {
		t.Errorf("expected 2 subcategories after reload, got %d", len(env.store.Subcategories()))
	}
}

func TestViewStateSurvivesReload(t *testing.T) {
	fake := newFakeAuthority()
	cat, svc, _, item := seedGestoria(fake)
	env := newTestEnv(t, fake)

	env.sync.SetCategoryExpanded(cat.ID, true)
	env.sync.SetServiceExpanded(svc.ID, true)
	env.sync.SelectItem(item.ID)

	if err := env.sync.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	state := env.sync.ViewState()
	if !state.ExpandedCategories[cat.ID] {
		t.Error("category expansion lost across reload")
	}
	if !state.ExpandedServices[svc.ID] {
		t.Error("service expansion lost across reload")
	}
	if state.SelectedItem != item.ID {
		t.Error("selection lost across reload")
	}
}

func TestViewStatePrunesVanishedRecords(t *testing.T) {
	fake := newFakeAuthority()
	cat, svc, _, item := seedGestoria(fake)
	env := newTestEnv(t, fake)

	env.sync.SetCategoryExpanded(cat.ID, true)
	env.sync.SetServiceExpanded(svc.ID, true)
	env.sync.SelectItem(item.ID)

	// The service and its item vanish server-side; the category stays.
	delete(fake.services, svc.ID)
	delete(fake.items, item.ID)

	if err := env.sync.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	state := env.sync.ViewState()
	if !state.ExpandedCategories[cat.ID] {
		t.Error("surviving category key must be kept")
	}
	if state.ExpandedServices[svc.ID] {
		t.Error("vanished service key must be pruned")
	}
	if state.SelectedItem != uuid.Nil {
		t.Error("vanished selection must be cleared")
	}
}

func TestViewStateReturnsCopy(t *testing.T) {
	fake := newFakeAuthority()
	cat, _, _, _ := seedGestoria(fake)
	env := newTestEnv(t, fake)

	state := env.sync.ViewState()
	state.ExpandedCategories[cat.ID] = true

	if env.sync.ViewState().ExpandedCategories[cat.ID] {
		t.Error("mutating the returned state must not affect the sync")
	}
}

func TestCollapseRemovesKey(t *testing.T) {
	fake := newFakeAuthority()
	cat, _, _, _ := seedGestoria(fake)
	env := newTestEnv(t, fake)

	env.sync.SetCategoryExpanded(cat.ID, true)
	env.sync.SetCategoryExpanded(cat.ID, false)

	if _, ok := env.sync.ViewState().ExpandedCategories[cat.ID]; ok {
		t.Error("collapsing must remove the key, not store false")
	}
}
