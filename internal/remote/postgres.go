// Package remote implements the catalog authority against PostgreSQL. The
// adapter is deliberately dumb: per-row CRUD only, no cross-entity logic.
// Referential integrity (FK cascades, the unique item pair) lives in the
// schema; everything else is the engine's job.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gestoria-app/catalog-api/internal/catalog"
)

// Postgres is the pgx-backed catalog authority.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates an authority over the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const itemPairConstraint = "items_service_id_subcategory_id_key"

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == itemPairConstraint {
		return fmt.Errorf("%w: %v", catalog.ErrDuplicatePair, err)
	}
	return err
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

// --- Categories ---

// ListCategories returns every category.
func (p *Postgres) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, color, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.
func (p *Postgres) CreateCategory(ctx context.Context, arg catalog.CreateCategoryParams) (catalog.Category, error) {
	var c catalog.Category
	err := p.pool.QueryRow(ctx,
		`INSERT INTO categories (id, name, color, icon)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, color, icon, created_at`,
		uuid.New(), arg.Name, arg.Color, arg.Icon,
	).Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt)
	return c, err
}

// UpdateCategory updates a category by id.
func (p *Postgres) UpdateCategory(ctx context.Context, id uuid.UUID, arg catalog.CreateCategoryParams) (catalog.Category, error) {
	var c catalog.Category
	err := p.pool.QueryRow(ctx,
		`UPDATE categories SET name = $2, color = $3, icon = $4
		 WHERE id = $1
		 RETURNING id, name, color, icon, created_at`,
		id, arg.Name, arg.Color, arg.Icon,
	).Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Category{}, catalog.ErrNotFound
	}
	return c, err
}

// DeleteCategory removes a category row. Deleting a category that still has
// services is a caller error and fails on the FK.
func (p *Postgres) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// --- Services ---

// ListServices returns every service.
func (p *Postgres) ListServices(ctx context.Context) ([]catalog.Service, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, category_id, name, COALESCE(description, ''), created_at
		 FROM services ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Service
	for rows.Next() {
		var s catalog.Service
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateService inserts a service.
func (p *Postgres) CreateService(ctx context.Context, arg catalog.CreateServiceParams) (catalog.Service, error) {
	desc := pgtype.Text{}
	if arg.Description != "" {
		desc = pgtype.Text{String: arg.Description, Valid: true}
	}
	var s catalog.Service
	err := p.pool.QueryRow(ctx,
		`INSERT INTO services (id, category_id, name, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, category_id, name, COALESCE(description, ''), created_at`,
		uuid.New(), arg.CategoryID, arg.Name, desc,
	).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.CreatedAt)
	return s, err
}

// DeleteService removes a service row; the FK cascade removes its items.
func (p *Postgres) DeleteService(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// --- Subcategories ---

// ListSubcategories returns every subcategory.
func (p *Postgres) ListSubcategories(ctx context.Context) ([]catalog.Subcategory, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, created_at FROM subcategories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Subcategory
	for rows.Next() {
		var sc catalog.Subcategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// CreateSubcategory inserts a subcategory.
func (p *Postgres) CreateSubcategory(ctx context.Context, name string) (catalog.Subcategory, error) {
	var sc catalog.Subcategory
	err := p.pool.QueryRow(ctx,
		`INSERT INTO subcategories (id, name)
		 VALUES ($1, $2)
		 RETURNING id, name, created_at`,
		uuid.New(), name,
	).Scan(&sc.ID, &sc.Name, &sc.CreatedAt)
	return sc, err
}

// DeleteSubcategory removes a subcategory row. Fails on the RESTRICT FK when
// an item still references it; the orphan collector only calls this for
// unreferenced ones, so a failure here means the count was stale.
func (p *Postgres) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// --- Items ---

// ListItems returns every item.
func (p *Postgres) ListItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, service_id, subcategory_id, price, created_at
		 FROM items ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Item
	for rows.Next() {
		var it catalog.Item
		var price pgtype.Numeric
		if err := rows.Scan(&it.ID, &it.ServiceID, &it.SubcategoryID, &price, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Price = numericToDecimal(price)
		out = append(out, it)
	}
	return out, rows.Err()
}

// CreateItem inserts an item. A violated pair constraint surfaces as
// catalog.ErrDuplicatePair.
func (p *Postgres) CreateItem(ctx context.Context, arg catalog.CreateItemParams) (catalog.Item, error) {
	var it catalog.Item
	var price pgtype.Numeric
	err := p.pool.QueryRow(ctx,
		`INSERT INTO items (id, service_id, subcategory_id, price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, service_id, subcategory_id, price, created_at`,
		uuid.New(), arg.ServiceID, arg.SubcategoryID, decimalToNumeric(arg.Price),
	).Scan(&it.ID, &it.ServiceID, &it.SubcategoryID, &price, &it.CreatedAt)
	if err != nil {
		return catalog.Item{}, mapPgError(err)
	}
	it.Price = numericToDecimal(price)
	return it, nil
}

// UpdateItem updates an item by id.
func (p *Postgres) UpdateItem(ctx context.Context, id uuid.UUID, arg catalog.CreateItemParams) (catalog.Item, error) {
	var it catalog.Item
	var price pgtype.Numeric
	err := p.pool.QueryRow(ctx,
		`UPDATE items SET service_id = $2, subcategory_id = $3, price = $4
		 WHERE id = $1
		 RETURNING id, service_id, subcategory_id, price, created_at`,
		id, arg.ServiceID, arg.SubcategoryID, decimalToNumeric(arg.Price),
	).Scan(&it.ID, &it.ServiceID, &it.SubcategoryID, &price, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Item{}, catalog.ErrNotFound
		}
		return catalog.Item{}, mapPgError(err)
	}
	it.Price = numericToDecimal(price)
	return it, nil
}

// DeleteItem removes an item row.
func (p *Postgres) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
