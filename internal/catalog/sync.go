package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ViewState is the caller-visible UI context preserved across reloads: which
// hierarchy nodes are expanded and which item is selected, keyed by id so a
// reload that replaces collection contents does not reset it.
type ViewState struct {
	ExpandedCategories map[uuid.UUID]bool `json:"expanded_categories"`
	ExpandedServices   map[uuid.UUID]bool `json:"expanded_services"`
	SelectedItem       uuid.UUID          `json:"selected_item"`
}

func newViewState() ViewState {
	return ViewState{
		ExpandedCategories: make(map[uuid.UUID]bool),
		ExpandedServices:   make(map[uuid.UUID]bool),
	}
}

// OptimisticSync bridges speculative local state and server-confirmed state.
// Mutating operations apply their local effect to the store immediately, then
// call Reload to replace the mirror with server truth; the keyed view state
// survives the swap, with keys of vanished records pruned.
//
// It also owns the single-writer lock that serializes mutating operations, so
// two concurrent saves cannot both observe "no duplicate" before either
// commits.
type OptimisticSync struct {
	store  *EntityStore
	remote Authority

	writerMu sync.Mutex

	mu    sync.Mutex
	state ViewState
}

// NewOptimisticSync creates a sync over the given store and authority.
func NewOptimisticSync(store *EntityStore, remote Authority) *OptimisticSync {
	return &OptimisticSync{store: store, remote: remote, state: newViewState()}
}

// LockWriter serializes a mutating operation. The returned func releases it.
func (s *OptimisticSync) LockWriter() func() {
	s.writerMu.Lock()
	return s.writerMu.Unlock
}

// Reload replaces all four collections with the remote authority's current
// truth, then reapplies the preserved view state.
func (s *OptimisticSync) Reload(ctx context.Context) error {
	categories, err := s.remote.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("reload categories: %w", err)
	}
	services, err := s.remote.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("reload services: %w", err)
	}
	subcategories, err := s.remote.ListSubcategories(ctx)
	if err != nil {
		return fmt.Errorf("reload subcategories: %w", err)
	}
	items, err := s.remote.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("reload items: %w", err)
	}

	s.store.ReplaceCategories(categories)
	s.store.ReplaceServices(services)
	s.store.ReplaceSubcategories(subcategories)
	s.store.ReplaceItems(items)

	s.reapplyViewState()
	return nil
}

// reapplyViewState prunes view-state keys whose records vanished in the
// reload; surviving keys keep their flags verbatim.
func (s *OptimisticSync) reapplyViewState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.state.ExpandedCategories {
		if _, ok := s.store.Category(id); !ok {
			delete(s.state.ExpandedCategories, id)
		}
	}
	for id := range s.state.ExpandedServices {
		if _, ok := s.store.Service(id); !ok {
			delete(s.state.ExpandedServices, id)
		}
	}
	if s.state.SelectedItem != uuid.Nil {
		if _, ok := s.store.Item(s.state.SelectedItem); !ok {
			s.state.SelectedItem = uuid.Nil
		}
	}
}

// ViewState returns a copy of the preserved view state.
func (s *OptimisticSync) ViewState() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := newViewState()
	for id, v := range s.state.ExpandedCategories {
		out.ExpandedCategories[id] = v
	}
	for id, v := range s.state.ExpandedServices {
		out.ExpandedServices[id] = v
	}
	out.SelectedItem = s.state.SelectedItem
	return out
}

// SetCategoryExpanded records the expansion flag of a category node.
func (s *OptimisticSync) SetCategoryExpanded(id uuid.UUID, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expanded {
		s.state.ExpandedCategories[id] = true
	} else {
		delete(s.state.ExpandedCategories, id)
	}
}

// SetServiceExpanded records the expansion flag of a service node.
func (s *OptimisticSync) SetServiceExpanded(id uuid.UUID, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expanded {
		s.state.ExpandedServices[id] = true
	} else {
		delete(s.state.ExpandedServices, id)
	}
}

// SelectItem records the selected item, or clears it with uuid.Nil.
func (s *OptimisticSync) SelectItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedItem = id
}
