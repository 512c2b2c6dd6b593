package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Vehicle is the database model for a vehicle.
type Vehicle struct {
	ID          uuid.UUID  `db:"id"`
	VIN         *string    `db:"vin"`
	Marca       string     `db:"marca"`
	Modelo      string     `db:"modelo"`
	Anio        int        `db:"anio"`
	PlacaActual string     `db:"placa_actual"`
	CustomerID  *uuid.UUID `db:"customer_id"`
	Kilometraje *int64     `db:"kilometraje"`
	Combustible *string    `db:"combustible"`
	Transmision *string    `db:"transmision"`
	Activo      bool       `db:"activo"`
	Notas       *string    `db:"notas"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// CreateParams contains parameters for creating a vehicle.
type CreateParams struct {
	VIN         *string
	Marca       string
	Modelo      string
	Anio        int
	PlacaActual string
	CustomerID  *uuid.UUID
	Kilometraje *int64
	Combustible *string
	Transmision *string
	Notas       *string
}

// UpdateParams contains parameters for updating a vehicle.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID          uuid.UUID
	VIN         *string
	Marca       *string
	Modelo      *string
	Anio        *int
	PlacaActual *string
	CustomerID  *uuid.UUID
	Kilometraje *int64
	Combustible *string
	Transmision *string
	Notas       *string
}

// ListParams contains filter and pagination parameters.
type ListParams struct {
	CustomerID *uuid.UUID
	Placa      string
	Limit      int
	Offset     int
}

// Reader provides read operations for vehicles.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Vehicle, error)
	List(ctx context.Context, params ListParams) ([]Vehicle, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Writer provides write operations for vehicles.
type Writer interface {
	Create(ctx context.Context, params CreateParams) (Vehicle, error)
	Update(ctx context.Context, params UpdateParams) (Vehicle, error)
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

// TxOps provides operations scoped to a caller-owned transaction, used by
// the identity resolver during conversion and walk-in intake.
type TxOps interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Vehicle, error)
	CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Vehicle, error)
}

// Repository combines all vehicle repository operations.
type Repository interface {
	Reader
	Writer
	TxOps
}
