package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/domain"
	svcrepo "taller_backend/internal/services/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
)

// CreateParams contains parameters for creating an opportunity. A non-nil
// Cita makes the record an appointment from the start.
type CreateParams struct {
	VehicleID             *uuid.UUID
	CustomerID            *uuid.UUID
	CreadaPor             uuid.UUID
	AsignadaA             *uuid.UUID
	TipoOportunidad       string
	Titulo                string
	Descripcion           *string
	ServicioSugerido      *string
	PrecioSugerido        *int64
	FechaServicioSugerida *time.Time
	FechaContactoSugerida *time.Time
	Estado                domain.Estado
	Prioridad             domain.Prioridad
	Origen                domain.Origen
	KilometrajeReferencia *int64
	Cita                  *domain.Cita
}

// ListParams contains filter and pagination parameters. FechaCita filters
// appointments by calendar day and is always supplied by the caller, never
// read from a process clock.
type ListParams struct {
	Estado    *domain.Estado
	Prioridad *domain.Prioridad
	Origen    *domain.Origen
	AsignadaA *uuid.UUID
	FechaCita *time.Time
	SoloCitas bool
	Limit     int
	Offset    int
}

// Repository provides standalone CRUD and lifecycle writes for opportunities.
// Conversion and walk-in intake go through Store instead.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (domain.Oportunidad, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Oportunidad, error)
	List(ctx context.Context, params ListParams) ([]domain.Oportunidad, int, error)

	// UpdateEstado writes a new estado; motivoPerdida accompanies perdido.
	// Fails with a conflict when the row is already converted.
	UpdateEstado(ctx context.Context, id uuid.UUID, estado domain.Estado, motivoPerdida *string) (domain.Oportunidad, error)
	UpdatePrioridad(ctx context.Context, id uuid.UUID, prioridad domain.Prioridad) (domain.Oportunidad, error)
	UpdateAsignada(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Oportunidad, error)

	// RescheduleCita changes an appointment's date/time in place. Fails with
	// a conflict when the row is already converted.
	RescheduleCita(ctx context.Context, id uuid.UUID, fecha time.Time, hora string) (domain.Oportunidad, error)

	// UpdateIdentidad fills customer/vehicle references on a cita_rapida so
	// it can become receivable. Fails with a conflict once converted.
	UpdateIdentidad(ctx context.Context, id uuid.UUID, customerID, vehicleID *uuid.UUID) (domain.Oportunidad, error)

	// ListDueFollowUps returns open, unconverted opportunities whose
	// fecha_contacto_sugerida falls on or before the given day.
	ListDueFollowUps(ctx context.Context, on time.Time) ([]domain.Oportunidad, error)
}

// Tx is the write surface available inside an intake or conversion
// transaction. Rows created through it are visible only on commit.
type Tx interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (custrepo.Customer, error)
	CreateCustomer(ctx context.Context, params custrepo.CreateParams) (custrepo.Customer, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (vehrepo.Vehicle, error)
	CreateVehicle(ctx context.Context, params vehrepo.CreateParams) (vehrepo.Vehicle, error)
	CreateService(ctx context.Context, params svcrepo.CreateParams) (svcrepo.Service, error)
	CreateOportunidad(ctx context.Context, params CreateParams) (domain.Oportunidad, error)
}

// ConversionTx is the surface of a conversion transaction: the opportunity
// snapshot taken under a row lock, plus the guarded terminal write.
type ConversionTx interface {
	Tx

	// Oportunidad returns the row as loaded under FOR UPDATE.
	Oportunidad() domain.Oportunidad

	// MarkConverted sets convertido_a_servicio_id and advances estado to
	// completado, guarded by a conditional update. A zero-row result means a
	// concurrent conversion won and surfaces as a conflict.
	MarkConverted(ctx context.Context, serviceID uuid.UUID) error
}

// Store runs the transactional operations of the conversion engine and the
// walk-in intake. fn returning an error rolls everything back.
type Store interface {
	WithConversion(ctx context.Context, id uuid.UUID, fn func(ConversionTx) error) error
	WithIntake(ctx context.Context, fn func(Tx) error) error
}
