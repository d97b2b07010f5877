package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeAuthority is an in-memory remote backend with failure injection. It
// mimics the real adapter's contract: per-row CRUD, FK cascade from service
// to items, unique (service, subcategory) pair on items, no other rules.
type fakeAuthority struct {
	mu            sync.Mutex
	categories    map[uuid.UUID]Category
	services      map[uuid.UUID]Service
	subcategories map[uuid.UUID]Subcategory
	items         map[uuid.UUID]Item

	// failure injection
	createServiceErr     error
	createSubcategoryErr error
	createItemErr        error
	deleteServiceErr     map[uuid.UUID]error
	deleteSubcategoryErr map[uuid.UUID]error
	deleteItemErr        error

	calls []string
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		categories:           make(map[uuid.UUID]Category),
		services:             make(map[uuid.UUID]Service),
		subcategories:        make(map[uuid.UUID]Subcategory),
		items:                make(map[uuid.UUID]Item),
		deleteServiceErr:     make(map[uuid.UUID]error),
		deleteSubcategoryErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeAuthority) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAuthority) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuthority) ListCategories(_ context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeAuthority) CreateCategory(_ context.Context, arg CreateCategoryParams) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCategory:" + arg.Name)
	c := Category{ID: uuid.New(), Name: arg.Name, Color: arg.Color, Icon: arg.Icon, CreatedAt: time.Now()}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeAuthority) UpdateCategory(_ context.Context, id uuid.UUID, arg CreateCategoryParams) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateCategory:" + arg.Name)
	c, ok := f.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	c.Name, c.Color, c.Icon = arg.Name, arg.Color, arg.Icon
	f.categories[id] = c
	return c, nil
}

func (f *fakeAuthority) DeleteCategory(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteCategory")
	if _, ok := f.categories[id]; !ok {
		return ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeAuthority) ListServices(_ context.Context) ([]Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Service, 0, len(f.services))
	for _, s := range f.services {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeAuthority) CreateService(_ context.Context, arg CreateServiceParams) (Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateService:" + arg.Name)
	if f.createServiceErr != nil {
		return Service{}, f.createServiceErr
	}
	s := Service{ID: uuid.New(), CategoryID: arg.CategoryID, Name: arg.Name, Description: arg.Description, CreatedAt: time.Now()}
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeAuthority) DeleteService(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteService:" + f.services[id].Name)
	if err := f.deleteServiceErr[id]; err != nil {
		return err
	}
	if _, ok := f.services[id]; !ok {
		return ErrNotFound
	}
	delete(f.services, id)
	// FK cascade
	for itemID, it := range f.items {
		if it.ServiceID == id {
			delete(f.items, itemID)
		}
	}
	return nil
}

func (f *fakeAuthority) ListSubcategories(_ context.Context) ([]Subcategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Subcategory, 0, len(f.subcategories))
	for _, sc := range f.subcategories {
		out = append(out, sc)
	}
	return out, nil
}

func (f *fakeAuthority) CreateSubcategory(_ context.Context, name string) (Subcategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSubcategory:" + name)
	if f.createSubcategoryErr != nil {
		return Subcategory{}, f.createSubcategoryErr
	}
	sc := Subcategory{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.subcategories[sc.ID] = sc
	return sc, nil
}

func (f *fakeAuthority) DeleteSubcategory(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteSubcategory:" + f.subcategories[id].Name)
	if err := f.deleteSubcategoryErr[id]; err != nil {
		return err
	}
	if _, ok := f.subcategories[id]; !ok {
		return ErrNotFound
	}
	delete(f.subcategories, id)
	return nil
}

func (f *fakeAuthority) ListItems(_ context.Context) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeAuthority) CreateItem(_ context.Context, arg CreateItemParams) (Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateItem")
	if f.createItemErr != nil {
		return Item{}, f.createItemErr
	}
	for _, it := range f.items {
		if it.ServiceID == arg.ServiceID && it.SubcategoryID == arg.SubcategoryID {
			return Item{}, fmt.Errorf("%w: unique constraint", ErrDuplicatePair)
		}
	}
	it := Item{ID: uuid.New(), ServiceID: arg.ServiceID, SubcategoryID: arg.SubcategoryID, Price: arg.Price, CreatedAt: time.Now()}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeAuthority) UpdateItem(_ context.Context, id uuid.UUID, arg CreateItemParams) (Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateItem")
	it, ok := f.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	for otherID, other := range f.items {
		if otherID != id && other.ServiceID == arg.ServiceID && other.SubcategoryID == arg.SubcategoryID {
			return Item{}, fmt.Errorf("%w: unique constraint", ErrDuplicatePair)
		}
	}
	it.ServiceID, it.SubcategoryID, it.Price = arg.ServiceID, arg.SubcategoryID, arg.Price
	f.items[id] = it
	return it, nil
}

func (f *fakeAuthority) DeleteItem(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteItem")
	if f.deleteItemErr != nil {
		return f.deleteItemErr
	}
	if _, ok := f.items[id]; !ok {
		return ErrNotFound
	}
	delete(f.items, id)
	return nil
}

// --- Seeding helpers ---

func (f *fakeAuthority) seedCategory(name string) Category {
	c := Category{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.categories[c.ID] = c
	return c
}

func (f *fakeAuthority) seedService(categoryID uuid.UUID, name string) Service {
	s := Service{ID: uuid.New(), CategoryID: categoryID, Name: name, CreatedAt: time.Now()}
	f.services[s.ID] = s
	return s
}

func (f *fakeAuthority) seedSubcategory(name string) Subcategory {
	sc := Subcategory{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.subcategories[sc.ID] = sc
	return sc
}

func (f *fakeAuthority) seedItem(serviceID, subcategoryID uuid.UUID, price string) Item {
	it := Item{
		ID:            uuid.New(),
		ServiceID:     serviceID,
		SubcategoryID: subcategoryID,
		Price:         decimal.RequireFromString(price),
		CreatedAt:     time.Now(),
	}
	f.items[it.ID] = it
	return it
}

// --- Test environment ---

type testEnv struct {
	fake   *fakeAuthority
	store  *EntityStore
	sync   *OptimisticSync
	engine *Engine
}

func newTestEnv(t *testing.T, fake *fakeAuthority) *testEnv {
	t.Helper()
	store := NewEntityStore()
	syn := NewOptimisticSync(store, fake)
	if err := syn.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	return &testEnv{
		fake:   fake,
		store:  store,
		sync:   syn,
		engine: NewEngine(store, fake, syn),
	}
}
