package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the database model for a staff account. Roles come from the
// closed set {admin, mecanico, seguimiento}.
type User struct {
	ID           uuid.UUID `db:"id"`
	Nombre       string    `db:"nombre"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Roles        []string  `db:"roles"`
	Activo       bool      `db:"activo"`
	CreatedAt    time.Time `db:"created_at"`
}

// Repository provides read access to staff accounts. Account management is
// done out of band; the API only authenticates.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}
