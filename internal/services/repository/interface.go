package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taller_backend/internal/services/domain"
)

// Service is the database model for a billable service. Precio is centavos.
type Service struct {
	ID                   uuid.UUID     `db:"id"`
	VehicleID            uuid.UUID     `db:"vehicle_id"`
	CustomerID           uuid.UUID     `db:"customer_id"`
	MecanicoID           *uuid.UUID    `db:"mecanico_id"`
	FechaServicio        time.Time     `db:"fecha_servicio"`
	TipoServicio         string        `db:"tipo_servicio"`
	Descripcion          *string       `db:"descripcion"`
	Kilometraje          *int64        `db:"kilometraje"`
	Precio               int64         `db:"precio"`
	Estado               domain.Estado `db:"estado"`
	Notas                *string       `db:"notas"`
	ProximoServicioKM    *int64        `db:"proximo_servicio_km"`
	ProximoServicioFecha *time.Time    `db:"proximo_servicio_fecha"`
	GarantiaMeses        *int          `db:"garantia_meses"`
	Refacciones          *string       `db:"refacciones"`
	CreatedAt            time.Time     `db:"created_at"`
}

// CreateParams contains parameters for creating a service. Estado defaults to
// cotizado when empty.
type CreateParams struct {
	VehicleID            uuid.UUID
	CustomerID           uuid.UUID
	MecanicoID           *uuid.UUID
	FechaServicio        time.Time
	TipoServicio         string
	Descripcion          *string
	Kilometraje          *int64
	Precio               int64
	Estado               domain.Estado
	Notas                *string
	ProximoServicioKM    *int64
	ProximoServicioFecha *time.Time
	GarantiaMeses        *int
	Refacciones          *string
}

// ListParams contains filter and pagination parameters.
type ListParams struct {
	VehicleID  *uuid.UUID
	CustomerID *uuid.UUID
	Estado     *domain.Estado
	Limit      int
	Offset     int
}

// Reader provides read operations for services.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Service, error)
	List(ctx context.Context, params ListParams) ([]Service, int, error)
}

// Writer provides write operations for services. Services are only created
// through conversion or walk-in intake, so creation lives in TxOps.
type Writer interface {
	UpdateEstado(ctx context.Context, id uuid.UUID, estado domain.Estado) (Service, error)
}

// TxOps provides operations scoped to a caller-owned transaction. The
// conversion engine and walk-in intake create service rows through these so
// the row commits or rolls back with the whole operation.
type TxOps interface {
	CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Service, error)
}

// Repository combines all service repository operations.
type Repository interface {
	Reader
	Writer
	TxOps
}
