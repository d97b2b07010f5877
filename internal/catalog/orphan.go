package catalog

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// CleanupReport lists what an orphan pass removed and what it could not.
type CleanupReport struct {
	RemovedSubcategories []Subcategory
	Warnings             []string
}

// OrphanCollector removes subcategories left unreferenced after item
// deletions. Cleanup is best-effort, never transactional: a failed removal
// becomes a warning, the triggering delete is already committed.
type OrphanCollector struct {
	store  *EntityStore
	remote Authority
}

// NewOrphanCollector creates a collector over the given store and authority.
func NewOrphanCollector(store *EntityStore, remote Authority) *OrphanCollector {
	return &OrphanCollector{store: store, remote: remote}
}

// Collect examines the subcategories referenced by the deleted items and
// removes every one that no remaining item references. Items belonging to
// services in excludeServiceIDs are ignored when counting, for the case where
// a whole service was just removed and its items may still linger locally.
// Must run after the triggering deletion is committed remotely and reflected
// in the store, otherwise the reference count is stale.
func (c *OrphanCollector) Collect(ctx context.Context, deletedItems []Item, excludeServiceIDs map[uuid.UUID]bool) CleanupReport {
	var report CleanupReport

	seen := make(map[uuid.UUID]bool, len(deletedItems))
	for _, it := range deletedItems {
		if seen[it.SubcategoryID] {
			continue
		}
		seen[it.SubcategoryID] = true

		if c.store.CountSubcategoryRefs(it.SubcategoryID, excludeServiceIDs) > 0 {
			continue
		}

		sc, ok := c.store.Subcategory(it.SubcategoryID)
		if !ok {
			// Already gone from the mirror, nothing to clean up.
			continue
		}

		if err := c.remote.DeleteSubcategory(ctx, sc.ID); err != nil {
			w := &CleanupWarning{Kind: "subcategory", ID: sc.ID, Name: sc.Name, Err: err}
			log.Printf("WARNING: orphan cleanup: %v", w)
			report.Warnings = append(report.Warnings, w.Error())
			continue
		}

		c.store.RemoveSubcategory(sc.ID)
		report.RemovedSubcategories = append(report.RemovedSubcategories, sc)
	}

	return report
}
