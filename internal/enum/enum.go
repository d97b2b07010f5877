package enum

const (
	UserRoleAdmin = "ADMIN"
	UserRoleStaff = "STAFF"
)

// WebSocket event types pushed to connected admin clients.
const (
	EventCatalogUpdated = "catalog.updated"
)

// Entity kinds named in catalog events and warnings.
const (
	EntityCategory    = "category"
	EntityService     = "service"
	EntitySubcategory = "subcategory"
	EntityItem        = "item"
)
