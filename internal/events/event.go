// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"taller_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Opportunity Domain Events
// =============================================================================

// OportunidadCreada is published when a new opportunity is created,
// whatever the intake path (manual, automatic detection, walk-in scheduling).
type OportunidadCreada struct {
	BaseEvent
	OportunidadID uuid.UUID  `json:"oportunidadId"`
	CustomerID    *uuid.UUID `json:"customerId,omitempty"`
	VehicleID     *uuid.UUID `json:"vehicleId,omitempty"`
	Origen        string     `json:"origen"`
	Estado        string     `json:"estado"`
}

func (e OportunidadCreada) EventName() string { return "oportunidades.creada" }

// OportunidadConvertida is published after a conversion commits. It carries
// the ids of any customer/vehicle rows created inline by the resolver.
type OportunidadConvertida struct {
	BaseEvent
	OportunidadID     uuid.UUID  `json:"oportunidadId"`
	ServicioID        uuid.UUID  `json:"servicioId"`
	CustomerID        uuid.UUID  `json:"customerId"`
	VehicleID         uuid.UUID  `json:"vehicleId"`
	CreatedCustomerID *uuid.UUID `json:"createdCustomerId,omitempty"`
	CreatedVehicleID  *uuid.UUID `json:"createdVehicleId,omitempty"`
	ViaRecepcion      bool       `json:"viaRecepcion"`
}

func (e OportunidadConvertida) EventName() string { return "oportunidades.convertida" }

// WalkInProcesado is published when a walk-in intake commits, on either branch.
type WalkInProcesado struct {
	BaseEvent
	CustomerID    uuid.UUID  `json:"customerId"`
	VehicleID     uuid.UUID  `json:"vehicleId"`
	ServicioID    *uuid.UUID `json:"servicioId,omitempty"`
	OportunidadID *uuid.UUID `json:"oportunidadId,omitempty"`
	Accion        string     `json:"accion"`
}

func (e WalkInProcesado) EventName() string { return "oportunidades.walkin.procesado" }

// CitaReagendada is published when an appointment's date/time changes.
type CitaReagendada struct {
	BaseEvent
	OportunidadID uuid.UUID `json:"oportunidadId"`
	FechaCita     string    `json:"fechaCita"`
	HoraCita      string    `json:"horaCita"`
}

func (e CitaReagendada) EventName() string { return "oportunidades.cita.reagendada" }

// OportunidadCancelada is published when an opportunity moves to perdido.
type OportunidadCancelada struct {
	BaseEvent
	OportunidadID uuid.UUID `json:"oportunidadId"`
	Motivo        string    `json:"motivo"`
}

func (e OportunidadCancelada) EventName() string { return "oportunidades.cancelada" }

// SeguimientoVencido is published by the scheduler worker when an
// opportunity's suggested follow-up contact date arrives and the record is
// still open and unconverted.
type SeguimientoVencido struct {
	BaseEvent
	OportunidadID uuid.UUID  `json:"oportunidadId"`
	AsignadaA     *uuid.UUID `json:"asignadaA,omitempty"`
	Estado        string     `json:"estado"`
}

func (e SeguimientoVencido) EventName() string { return "oportunidades.seguimiento.vencido" }
