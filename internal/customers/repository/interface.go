package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Customer is the database model for a shop customer.
type Customer struct {
	ID           uuid.UUID `db:"id"`
	Nombre       string    `db:"nombre"`
	Telefono     string    `db:"telefono"`
	Whatsapp     *string   `db:"whatsapp"`
	Email        *string   `db:"email"`
	Direccion    *string   `db:"direccion"`
	CodigoPostal *string   `db:"codigo_postal"`
	RFC          *string   `db:"rfc"`
	Notas        *string   `db:"notas"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CreateParams contains parameters for creating a customer.
type CreateParams struct {
	Nombre       string
	Telefono     string
	Whatsapp     *string
	Email        *string
	Direccion    *string
	CodigoPostal *string
	RFC          *string
	Notas        *string
}

// UpdateParams contains parameters for updating a customer.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID           uuid.UUID
	Nombre       *string
	Telefono     *string
	Whatsapp     *string
	Email        *string
	Direccion    *string
	CodigoPostal *string
	RFC          *string
	Notas        *string
}

// ListParams contains search and pagination parameters.
type ListParams struct {
	Search string // matches nombre or telefono
	Limit  int
	Offset int
}

// Reader provides read operations for customers.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
	List(ctx context.Context, params ListParams) ([]Customer, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Writer provides write operations for customers.
type Writer interface {
	Create(ctx context.Context, params CreateParams) (Customer, error)
	Update(ctx context.Context, params UpdateParams) (Customer, error)
}

// TxOps provides operations scoped to a caller-owned transaction. The
// identity resolver uses these during conversion and walk-in intake so that
// inline customer creation commits or rolls back with the whole operation.
type TxOps interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Customer, error)
	CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Customer, error)
}

// Repository combines all customer repository operations.
type Repository interface {
	Reader
	Writer
	TxOps
}
