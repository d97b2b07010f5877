package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Errors the remote authority is expected to surface. Adapters translate
// backend-specific failures into these so the engine can discriminate.
var (
	// ErrNotFound reports that the addressed record does not exist remotely.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePair reports that the remote authority rejected an item
	// because its (service, subcategory) pair is already taken. The server
	// side unique constraint is the final authority; the engine's own scan
	// is only a fast path.
	ErrDuplicatePair = errors.New("service/subcategory pair already exists")
)

// Authority is the remote catalog backend: per-entity CRUD, nothing more.
// It enforces no cross-entity business rules; every guarantee the engine
// provides is reconstructed client-side on top of these calls.
// Satisfied by *remote.Postgres; narrow interface for testability.
type Authority interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, arg CreateCategoryParams) (Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListServices(ctx context.Context) ([]Service, error)
	CreateService(ctx context.Context, arg CreateServiceParams) (Service, error)
	// DeleteService cascades to the service's items on the remote side.
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListSubcategories(ctx context.Context) ([]Subcategory, error)
	CreateSubcategory(ctx context.Context, name string) (Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, arg CreateItemParams) (Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, arg CreateItemParams) (Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}
