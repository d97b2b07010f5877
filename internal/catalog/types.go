package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is a top-level grouping of services with display metadata.
type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string
	Icon      string
	CreatedAt time.Time
}

// Service is a named offering within a category. Its name is unique within
// the owning category, compared case- and accent-insensitively.
type Service struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// Subcategory is a named price tier, potentially shared across services.
// Names are unique globally.
type Subcategory struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Item is the priced association of one service and one subcategory.
// No two items may share the same (ServiceID, SubcategoryID) pair.
type Item struct {
	ID            uuid.UUID
	ServiceID     uuid.UUID
	SubcategoryID uuid.UUID
	Price         decimal.Decimal
	CreatedAt     time.Time
}

// UnknownName is the sentinel assigned to an enriched item whose service or
// subcategory has not arrived in the local mirror yet.
const UnknownName = "unknown"

// EnrichedItem is the read-only projection of an item joined with its service
// and subcategory names. Never persisted, recomputed from the store.
type EnrichedItem struct {
	Item
	ServiceName     string
	SubcategoryName string
	CategoryID      uuid.UUID
}

// Reference names a service or subcategory either by an id that already
// exists or by a free-text name still to be resolved. The zero value is
// neither and fails validation.
type Reference struct {
	id   uuid.UUID
	name string
}

// ExistingRef references a record by id.
func ExistingRef(id uuid.UUID) Reference {
	return Reference{id: id}
}

// ByNameRef references a record by free-text name, to be resolved (and
// possibly created) before use.
func ByNameRef(name string) Reference {
	return Reference{name: name}
}

// Existing returns the referenced id when the reference is by id.
func (r Reference) Existing() (uuid.UUID, bool) {
	return r.id, r.id != uuid.Nil
}

// Name returns the free-text name when the reference is by name.
func (r Reference) Name() string {
	return r.name
}

// IsZero reports whether the reference carries neither an id nor a name.
func (r Reference) IsZero() bool {
	return r.id == uuid.Nil && r.name == ""
}

// ItemDraft is the validated caller intent for saving an item.
type ItemDraft struct {
	CategoryID  uuid.UUID
	Service     Reference
	Subcategory Reference
	Price       decimal.Decimal
}

// CreateCategoryParams are the fields for creating a category.
type CreateCategoryParams struct {
	Name  string
	Color string
	Icon  string
}

// CreateServiceParams are the fields for creating a service.
type CreateServiceParams struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
}

// CreateItemParams are the fields for creating or updating an item.
type CreateItemParams struct {
	ServiceID     uuid.UUID
	SubcategoryID uuid.UUID
	Price         decimal.Decimal
}

// Event describes a committed catalog mutation, for change listeners.
type Event struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     uuid.UUID `json:"id"`
}
