package catalog

import (
	"sync"

	"github.com/google/uuid"
)

// Versions carries the change counters of the four collections. The projector
// memoizes on it; any replacement or local merge bumps the affected counter.
type Versions struct {
	Categories    uint64
	Services      uint64
	Subcategories uint64
	Items         uint64
}

// EntityStore is the in-memory mirror of the remote catalog: one map per
// collection, refreshed by bulk reload and patched by speculative local
// merges between reloads. It is owned by the composition root and shared by
// reference with the engine and the handlers.
type EntityStore struct {
	mu            sync.RWMutex
	categories    map[uuid.UUID]Category
	services      map[uuid.UUID]Service
	subcategories map[uuid.UUID]Subcategory
	items         map[uuid.UUID]Item
	vers          Versions
}

// NewEntityStore creates an empty store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		categories:    make(map[uuid.UUID]Category),
		services:      make(map[uuid.UUID]Service),
		subcategories: make(map[uuid.UUID]Subcategory),
		items:         make(map[uuid.UUID]Item),
	}
}

// Versions returns the current collection version counters.
func (s *EntityStore) Versions() Versions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vers
}

// --- Bulk replacement (reload path) ---

// ReplaceCategories swaps the category collection wholesale.
func (s *EntityStore) ReplaceCategories(categories []Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make(map[uuid.UUID]Category, len(categories))
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	s.vers.Categories++
}

// ReplaceServices swaps the service collection wholesale.
func (s *EntityStore) ReplaceServices(services []Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = make(map[uuid.UUID]Service, len(services))
	for _, svc := range services {
		s.services[svc.ID] = svc
	}
	s.vers.Services++
}

// ReplaceSubcategories swaps the subcategory collection wholesale.
func (s *EntityStore) ReplaceSubcategories(subcategories []Subcategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcategories = make(map[uuid.UUID]Subcategory, len(subcategories))
	for _, sc := range subcategories {
		s.subcategories[sc.ID] = sc
	}
	s.vers.Subcategories++
}

// ReplaceItems swaps the item collection wholesale.
func (s *EntityStore) ReplaceItems(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[uuid.UUID]Item, len(items))
	for _, it := range items {
		s.items[it.ID] = it
	}
	s.vers.Items++
}

// --- Snapshots ---

// Categories returns a snapshot of all categories.
func (s *EntityStore) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out
}

// Services returns a snapshot of all services.
func (s *EntityStore) Services() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	return out
}

// Subcategories returns a snapshot of all subcategories.
func (s *EntityStore) Subcategories() []Subcategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subcategory, 0, len(s.subcategories))
	for _, sc := range s.subcategories {
		out = append(out, sc)
	}
	return out
}

// Items returns a snapshot of all items.
func (s *EntityStore) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}

// --- Point lookups ---

// Category looks up a category by id.
func (s *EntityStore) Category(id uuid.UUID) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	return c, ok
}

// Service looks up a service by id.
func (s *EntityStore) Service(id uuid.UUID) (Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	return svc, ok
}

// Subcategory looks up a subcategory by id.
func (s *EntityStore) Subcategory(id uuid.UUID) (Subcategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.subcategories[id]
	return sc, ok
}

// Item looks up an item by id.
func (s *EntityStore) Item(id uuid.UUID) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// ServicesByCategory returns all services owned by the given category.
func (s *EntityStore) ServicesByCategory(categoryID uuid.UUID) []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Service
	for _, svc := range s.services {
		if svc.CategoryID == categoryID {
			out = append(out, svc)
		}
	}
	return out
}

// ItemsByService returns all items belonging to the given service.
func (s *EntityStore) ItemsByService(serviceID uuid.UUID) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, it := range s.items {
		if it.ServiceID == serviceID {
			out = append(out, it)
		}
	}
	return out
}

// CountSubcategoryRefs counts items referencing the subcategory, skipping
// items that belong to any of the excluded services.
func (s *EntityStore) CountSubcategoryRefs(subcategoryID uuid.UUID, excludeServiceIDs map[uuid.UUID]bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		if it.SubcategoryID != subcategoryID {
			continue
		}
		if excludeServiceIDs[it.ServiceID] {
			continue
		}
		n++
	}
	return n
}

// --- Speculative local merges (optimistic path) ---

// PutCategory merges a category into the local mirror.
func (s *EntityStore) PutCategory(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	s.vers.Categories++
}

// PutService merges a service into the local mirror.
func (s *EntityStore) PutService(svc Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
	s.vers.Services++
}

// PutSubcategory merges a subcategory into the local mirror.
func (s *EntityStore) PutSubcategory(sc Subcategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcategories[sc.ID] = sc
	s.vers.Subcategories++
}

// PutItem merges an item into the local mirror.
func (s *EntityStore) PutItem(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it
	s.vers.Items++
}

// RemoveItem drops an item from the local mirror.
func (s *EntityStore) RemoveItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	s.vers.Items++
}

// RemoveSubcategory drops a subcategory from the local mirror.
func (s *EntityStore) RemoveSubcategory(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subcategories, id)
	s.vers.Subcategories++
}

// RemoveService drops a service and all of its items from the local mirror,
// matching the remote cascade. Returns the removed items.
func (s *EntityStore) RemoveService(id uuid.UUID) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []Item
	for itemID, it := range s.items {
		if it.ServiceID == id {
			removed = append(removed, it)
			delete(s.items, itemID)
		}
	}
	delete(s.services, id)
	s.vers.Services++
	if len(removed) > 0 {
		s.vers.Items++
	}
	return removed
}

// RemoveCategory drops a category from the local mirror. Its services are
// removed separately by the delete flow, one by one.
func (s *EntityStore) RemoveCategory(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	s.vers.Categories++
}
