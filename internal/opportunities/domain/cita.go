package domain

import (
	"time"

	"github.com/google/uuid"
)

// TipoCita classifies an appointment by identity completeness.
type TipoCita string

const (
	// TipoCitaCompleta means both customer and vehicle references are set;
	// the appointment can be received into a service.
	TipoCitaCompleta TipoCita = "cita_completa"
	// TipoCitaRapida means identity data is incomplete; reception must be
	// refused until the record is completed.
	TipoCitaRapida TipoCita = "cita_rapida"
)

// Cita is the appointment extension of an opportunity. An opportunity
// without a Cita is a plain lead; attaching one makes it an appointment.
type Cita struct {
	FechaCita        time.Time
	HoraCita         string // "15:04"
	DescripcionBreve *string
	NombreContacto   *string
	TelefonoContacto *string
	OrigenCita       *string
}

// ClasificarCita derives the tipo_cita from the identity references.
func ClasificarCita(customerID, vehicleID *uuid.UUID) TipoCita {
	if customerID != nil && vehicleID != nil {
		return TipoCitaCompleta
	}
	return TipoCitaRapida
}
