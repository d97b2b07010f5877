package catalog

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Project joins items with their service and subcategory names. Pure
// function of its inputs: identical inputs yield structurally identical
// output. Items with a missing join are kept with the "unknown" sentinel
// rather than dropped, since the three collections are fetched independently
// and can be transiently out of sync.
func Project(items []Item, services []Service, subcategories []Subcategory) []EnrichedItem {
	svcByID := make(map[uuid.UUID]Service, len(services))
	for _, svc := range services {
		svcByID[svc.ID] = svc
	}
	subByID := make(map[uuid.UUID]Subcategory, len(subcategories))
	for _, sc := range subcategories {
		subByID[sc.ID] = sc
	}

	out := make([]EnrichedItem, 0, len(items))
	for _, it := range items {
		e := EnrichedItem{
			Item:            it,
			ServiceName:     UnknownName,
			SubcategoryName: UnknownName,
		}
		if svc, ok := svcByID[it.ServiceID]; ok {
			e.ServiceName = svc.Name
			e.CategoryID = svc.CategoryID
		}
		if sc, ok := subByID[it.SubcategoryID]; ok {
			e.SubcategoryName = sc.Name
		}
		out = append(out, e)
	}

	// Stable output order regardless of map iteration
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceName != out[j].ServiceName {
			return out[i].ServiceName < out[j].ServiceName
		}
		if out[i].SubcategoryName != out[j].SubcategoryName {
			return out[i].SubcategoryName < out[j].SubcategoryName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// ViewProjector serves the enriched item view, memoized on the version
// counters of its three source collections. Any store change invalidates the
// cached projection; unchanged inputs return the cached slice.
type ViewProjector struct {
	store *EntityStore

	mu    sync.Mutex
	vers  Versions
	memo  []EnrichedItem
	valid bool
}

// NewViewProjector creates a projector over the given store.
func NewViewProjector(store *EntityStore) *ViewProjector {
	return &ViewProjector{store: store}
}

// EnrichedItems returns the current projection, recomputing only when one of
// the source collections changed since the last call.
func (p *ViewProjector) EnrichedItems() []EnrichedItem {
	vers := p.store.Versions()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.valid && sameInputs(p.vers, vers) {
		return p.memo
	}

	p.memo = Project(p.store.Items(), p.store.Services(), p.store.Subcategories())
	p.vers = vers
	p.valid = true
	return p.memo
}

// sameInputs compares only the counters the projection depends on; category
// changes do not invalidate it.
func sameInputs(a, b Versions) bool {
	return a.Items == b.Items && a.Services == b.Services && a.Subcategories == b.Subcategories
}
