package remote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an admin account of the catalog service.
type User struct {
	ID             uuid.UUID
	Email          string
	FullName       string
	HashedPassword string
	Role           string
	CreatedAt      time.Time
}

// GetUserByEmail looks up a user by email. Returns pgx.ErrNoRows when absent.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, full_name, hashed_password, role, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}

// GetUserByID looks up a user by id. Returns pgx.ErrNoRows when absent.
func (p *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, full_name, hashed_password, role, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a user. Used by the seed command.
func (p *Postgres) CreateUser(ctx context.Context, email, fullName, hashedPassword, role string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, full_name, hashed_password, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
		 RETURNING id, email, full_name, hashed_password, role, created_at`,
		uuid.New(), email, fullName, hashedPassword, role,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}
