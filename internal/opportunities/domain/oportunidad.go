package domain

import (
	"time"

	"github.com/google/uuid"
)

// Oportunidad is the central dual-purpose entity: a sales lead that may also
// carry appointment data (Cita != nil). All money amounts are centavos.
type Oportunidad struct {
	ID                    uuid.UUID
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
	Estado                Estado
	Prioridad             Prioridad
	Origen                Origen
	KilometrajeReferencia *int64
	Cita                  *Cita
	ConvertidoAServicioID *uuid.UUID
	MotivoPerdida         *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Convertida reports whether the opportunity has already produced a service.
// Once true the record is immutable with respect to conversion and its
// appointment fields admit no further writes.
func (o *Oportunidad) Convertida() bool {
	return o.ConvertidoAServicioID != nil
}

// EsCita reports whether the opportunity carries appointment data.
func (o *Oportunidad) EsCita() bool {
	return o.Cita != nil
}

// TipoCita derives the appointment classification. Only meaningful when
// EsCita() is true.
func (o *Oportunidad) TipoCita() TipoCita {
	return ClasificarCita(o.CustomerID, o.VehicleID)
}
