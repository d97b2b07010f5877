package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
)

// Engine executes the multi-step catalog operations: saving an item may first
// create its service and subcategory, deleting an item may cascade into its
// service and orphaned subcategories, deleting a category walks its services.
// The remote authority offers no cross-entity guarantees, so every invariant
// is reconstructed here, step by step, against the local mirror.
//
// Mutating operations are serialized through the sync's single-writer lock
// and run their remote calls strictly sequentially: later steps depend on the
// ids produced by earlier steps.
type Engine struct {
	store    *EntityStore
	remote   Authority
	resolver *NameResolver
	sync     *OptimisticSync
	orphans  *OrphanCollector
	notify   func(Event)
}

// NewEngine creates an engine over the given store, authority, and sync.
func NewEngine(store *EntityStore, remote Authority, syn *OptimisticSync) *Engine {
	return &Engine{
		store:    store,
		remote:   remote,
		resolver: NewNameResolver(store),
		sync:     syn,
		orphans:  NewOrphanCollector(store, remote),
	}
}

// SetNotifier registers a listener for committed mutations. Must be called
// before the engine is shared.
func (e *Engine) SetNotifier(fn func(Event)) {
	e.notify = fn
}

func (e *Engine) emit(entity, action string, id uuid.UUID) {
	if e.notify != nil {
		e.notify(Event{Entity: entity, Action: action, ID: id})
	}
}

// compensation is a recorded undo for a remotely committed dependency,
// invoked in reverse order when a later step fails.
type compensation struct {
	desc string
	run  func(ctx context.Context) error
}

func (e *Engine) runCompensations(ctx context.Context, comps []compensation) {
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].run(ctx); err != nil {
			log.Printf("WARNING: compensation %s failed: %v", comps[i].desc, err)
		}
	}
}

// SaveItemResult is the outcome of a successful save, with any non-fatal
// notices accumulated along the way.
type SaveItemResult struct {
	Item     Item
	Warnings []string
}

// DeleteReport is the outcome of a delete operation, naming what was removed
// beyond the requested record and any best-effort cleanup failures.
type DeleteReport struct {
	RemovedServices      []string
	RemovedSubcategories []string
	Warnings             []string
}

// SaveItem creates or updates an item, resolving service and subcategory
// names to ids first and creating missing ones remotely. existingID is
// uuid.Nil on create. On a dependency failure no item is written; on an item
// failure the dependencies created for this save are compensated away.
func (e *Engine) SaveItem(ctx context.Context, draft ItemDraft, existingID uuid.UUID) (*SaveItemResult, error) {
	unlock := e.sync.LockWriter()
	defer unlock()

	if err := e.validateDraft(draft, existingID); err != nil {
		return nil, err
	}

	var warnings []string
	var comps []compensation

	serviceID, serviceName, err := e.resolveService(ctx, draft, &warnings, &comps)
	if err != nil {
		return nil, err
	}

	subcategoryID, subcategoryName, err := e.resolveSubcategory(ctx, draft, &warnings, &comps)
	if err != nil {
		e.runCompensations(ctx, comps)
		return nil, err
	}

	// Duplicate check on resolved ids, not raw names, so it has to run after
	// both resolutions.
	for _, it := range e.store.Items() {
		if it.ID == existingID {
			continue
		}
		if it.ServiceID == serviceID && it.SubcategoryID == subcategoryID {
			e.runCompensations(ctx, comps)
			return nil, &DuplicateItemError{
				ServiceID:       serviceID,
				SubcategoryID:   subcategoryID,
				ServiceName:     serviceName,
				SubcategoryName: subcategoryName,
			}
		}
	}

	params := CreateItemParams{ServiceID: serviceID, SubcategoryID: subcategoryID, Price: draft.Price}

	var item Item
	action := "created"
	if existingID == uuid.Nil {
		item, err = e.remote.CreateItem(ctx, params)
	} else {
		item, err = e.remote.UpdateItem(ctx, existingID, params)
		action = "updated"
	}
	if err != nil {
		e.runCompensations(ctx, comps)
		if errors.Is(err, ErrDuplicatePair) {
			return nil, &DuplicateItemError{
				ServiceID:       serviceID,
				SubcategoryID:   subcategoryID,
				ServiceName:     serviceName,
				SubcategoryName: subcategoryName,
			}
		}
		return nil, &RemoteError{Op: "save item", Err: err}
	}

	e.store.PutItem(item)
	e.emit("item", action, item.ID)

	// Reconcile server-side derived fields. The item is committed; a failed
	// reload degrades to a warning.
	if err := e.sync.Reload(ctx); err != nil {
		log.Printf("WARNING: reload after save: %v", err)
		warnings = append(warnings, fmt.Sprintf("catalog reload failed: %v", err))
	}

	return &SaveItemResult{Item: item, Warnings: warnings}, nil
}

func (e *Engine) validateDraft(draft ItemDraft, existingID uuid.UUID) error {
	if draft.CategoryID == uuid.Nil {
		return &ValidationError{Field: "category", Reason: "a category must be selected"}
	}
	if _, ok := e.store.Category(draft.CategoryID); !ok {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	if draft.Service.IsZero() {
		return &ValidationError{Field: "service", Reason: "a service is required"}
	}
	if draft.Subcategory.IsZero() {
		return &ValidationError{Field: "subcategory", Reason: "a subcategory is required"}
	}
	if draft.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "price must not be negative"}
	}
	if existingID != uuid.Nil {
		if _, ok := e.store.Item(existingID); !ok {
			return fmt.Errorf("item %s: %w", existingID, ErrNotFound)
		}
	}
	return nil
}

func (e *Engine) resolveService(ctx context.Context, draft ItemDraft, warnings *[]string, comps *[]compensation) (uuid.UUID, string, error) {
	if id, ok := draft.Service.Existing(); ok {
		svc, found := e.store.Service(id)
		if !found {
			return uuid.Nil, "", &ValidationError{Field: "service", Reason: "unknown service"}
		}
		if svc.CategoryID != draft.CategoryID {
			return uuid.Nil, "", &ValidationError{Field: "service", Reason: "service belongs to a different category"}
		}
		return svc.ID, svc.Name, nil
	}

	res := e.resolver.ResolveService(draft.Service.Name(), draft.CategoryID)
	if res.Warning != "" {
		*warnings = append(*warnings, res.Warning)
	}
	if !res.NeedsCreate {
		*warnings = append(*warnings, fmt.Sprintf("used existing service %q", res.Name))
		return res.ExistingID, res.Name, nil
	}

	svc, err := e.remote.CreateService(ctx, CreateServiceParams{CategoryID: draft.CategoryID, Name: res.Name})
	if err != nil {
		return uuid.Nil, "", &DependencyCreateError{Kind: "service", Name: res.Name, Err: err}
	}
	e.store.PutService(svc)
	e.emit("service", "created", svc.ID)
	*comps = append(*comps, compensation{
		desc: fmt.Sprintf("delete service %q", svc.Name),
		run: func(ctx context.Context) error {
			if err := e.remote.DeleteService(ctx, svc.ID); err != nil {
				return err
			}
			e.store.RemoveService(svc.ID)
			return nil
		},
	})
	return svc.ID, svc.Name, nil
}

func (e *Engine) resolveSubcategory(ctx context.Context, draft ItemDraft, warnings *[]string, comps *[]compensation) (uuid.UUID, string, error) {
	if id, ok := draft.Subcategory.Existing(); ok {
		sc, found := e.store.Subcategory(id)
		if !found {
			return uuid.Nil, "", &ValidationError{Field: "subcategory", Reason: "unknown subcategory"}
		}
		return sc.ID, sc.Name, nil
	}

	res := e.resolver.ResolveSubcategory(draft.Subcategory.Name())
	if !res.NeedsCreate {
		*warnings = append(*warnings, fmt.Sprintf("used existing subcategory %q", res.Name))
		return res.ExistingID, res.Name, nil
	}

	sc, err := e.remote.CreateSubcategory(ctx, res.Name)
	if err != nil {
		return uuid.Nil, "", &DependencyCreateError{Kind: "subcategory", Name: res.Name, Err: err}
	}
	e.store.PutSubcategory(sc)
	e.emit("subcategory", "created", sc.ID)
	*comps = append(*comps, compensation{
		desc: fmt.Sprintf("delete subcategory %q", sc.Name),
		run: func(ctx context.Context) error {
			if err := e.remote.DeleteSubcategory(ctx, sc.ID); err != nil {
				return err
			}
			e.store.RemoveSubcategory(sc.ID)
			return nil
		},
	})
	return sc.ID, sc.Name, nil
}

// DeleteItem removes an item. When it is the last item of its service the
// whole service is deleted instead, relying on the remote cascade to remove
// its items server-side. Either way an orphan pass then cleans up
// subcategories left unreferenced.
func (e *Engine) DeleteItem(ctx context.Context, id uuid.UUID) (*DeleteReport, error) {
	unlock := e.sync.LockWriter()
	defer unlock()

	item, ok := e.store.Item(id)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}

	remaining := 0
	for _, it := range e.store.ItemsByService(item.ServiceID) {
		if it.ID != id {
			remaining++
		}
	}

	report := &DeleteReport{}
	var deleted []Item
	exclude := map[uuid.UUID]bool{}

	if remaining == 0 {
		svc, _ := e.store.Service(item.ServiceID)
		if err := e.remote.DeleteService(ctx, item.ServiceID); err != nil {
			return nil, &RemoteError{Op: fmt.Sprintf("delete service %q", svc.Name), Err: err}
		}
		deleted = e.store.RemoveService(item.ServiceID)
		exclude[item.ServiceID] = true
		report.RemovedServices = append(report.RemovedServices, svc.Name)
		e.emit("service", "deleted", item.ServiceID)
	} else {
		if err := e.remote.DeleteItem(ctx, id); err != nil {
			return nil, &RemoteError{Op: "delete item", Err: err}
		}
		e.store.RemoveItem(id)
		deleted = []Item{item}
	}
	e.emit("item", "deleted", id)

	e.collectAndReload(ctx, deleted, exclude, report)
	return report, nil
}

// DeleteService removes a service and, via the remote cascade, all of its
// items, then runs the orphan pass over them.
func (e *Engine) DeleteService(ctx context.Context, id uuid.UUID) (*DeleteReport, error) {
	unlock := e.sync.LockWriter()
	defer unlock()

	svc, ok := e.store.Service(id)
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, ErrNotFound)
	}

	if err := e.remote.DeleteService(ctx, id); err != nil {
		return nil, &RemoteError{Op: fmt.Sprintf("delete service %q", svc.Name), Err: err}
	}

	deleted := e.store.RemoveService(id)
	e.emit("service", "deleted", id)

	report := &DeleteReport{RemovedServices: []string{svc.Name}}
	e.collectAndReload(ctx, deleted, map[uuid.UUID]bool{id: true}, report)
	return report, nil
}

// DeleteCategory deletes every service under the category sequentially, then
// the category itself. A failed service deletion aborts the remaining steps:
// the category and the undeleted services stay intact for retry, the services
// already deleted stay deleted.
func (e *Engine) DeleteCategory(ctx context.Context, id uuid.UUID) (*DeleteReport, error) {
	unlock := e.sync.LockWriter()
	defer unlock()

	if _, ok := e.store.Category(id); !ok {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}

	services := e.store.ServicesByCategory(id)
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	report := &DeleteReport{}
	var deletedItems []Item
	exclude := map[uuid.UUID]bool{}

	for _, svc := range services {
		if err := e.remote.DeleteService(ctx, svc.ID); err != nil {
			if rerr := e.sync.Reload(ctx); rerr != nil {
				log.Printf("WARNING: reload after partial category delete: %v", rerr)
			}
			return nil, &PartialDeleteError{
				CategoryID:      id,
				FailedService:   svc.Name,
				DeletedServices: report.RemovedServices,
				Err:             err,
			}
		}
		deletedItems = append(deletedItems, e.store.RemoveService(svc.ID)...)
		exclude[svc.ID] = true
		report.RemovedServices = append(report.RemovedServices, svc.Name)
		e.emit("service", "deleted", svc.ID)
	}

	if err := e.remote.DeleteCategory(ctx, id); err != nil {
		return nil, &RemoteError{Op: "delete category", Err: err}
	}
	e.store.RemoveCategory(id)
	e.emit("category", "deleted", id)

	e.collectAndReload(ctx, deletedItems, exclude, report)
	return report, nil
}

// collectAndReload runs the orphan pass over the just-removed items and then
// replaces the mirror with server truth. Both are post-commit steps; their
// failures degrade to warnings on the report.
func (e *Engine) collectAndReload(ctx context.Context, deleted []Item, exclude map[uuid.UUID]bool, report *DeleteReport) {
	cleanup := e.orphans.Collect(ctx, deleted, exclude)
	for _, sc := range cleanup.RemovedSubcategories {
		report.RemovedSubcategories = append(report.RemovedSubcategories, sc.Name)
		e.emit("subcategory", "deleted", sc.ID)
	}
	report.Warnings = append(report.Warnings, cleanup.Warnings...)

	if err := e.sync.Reload(ctx); err != nil {
		log.Printf("WARNING: reload after delete: %v", err)
		report.Warnings = append(report.Warnings, fmt.Sprintf("catalog reload failed: %v", err))
	}
}

// SaveCategory creates or updates a category. existingID is uuid.Nil on
// create. Category names are unique case- and accent-insensitively.
func (e *Engine) SaveCategory(ctx context.Context, arg CreateCategoryParams, existingID uuid.UUID) (Category, error) {
	unlock := e.sync.LockWriter()
	defer unlock()

	if arg.Name == "" {
		return Category{}, &ValidationError{Field: "name", Reason: "name is required"}
	}
	key := normalizeName(arg.Name)
	for _, c := range e.store.Categories() {
		if c.ID != existingID && normalizeName(c.Name) == key {
			return Category{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("a category named %q already exists", c.Name)}
		}
	}

	var cat Category
	var err error
	action := "created"
	if existingID == uuid.Nil {
		cat, err = e.remote.CreateCategory(ctx, arg)
	} else {
		if _, ok := e.store.Category(existingID); !ok {
			return Category{}, fmt.Errorf("category %s: %w", existingID, ErrNotFound)
		}
		cat, err = e.remote.UpdateCategory(ctx, existingID, arg)
		action = "updated"
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Category{}, err
		}
		return Category{}, &RemoteError{Op: "save category", Err: err}
	}

	e.store.PutCategory(cat)
	e.emit("category", action, cat.ID)

	if err := e.sync.Reload(ctx); err != nil {
		log.Printf("WARNING: reload after save category: %v", err)
	}
	return cat, nil
}
