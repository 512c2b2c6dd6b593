// Package domain provides core business rules for the opportunities bounded context.
package domain

// Estado is the lifecycle state of an opportunity.
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoContactado Estado = "contactado"
	EstadoAgendado   Estado = "agendado"
	EstadoEnProceso  Estado = "en_proceso"
	EstadoCompletado Estado = "completado"
	EstadoPerdido    Estado = "perdido"
)

// legalTransitions holds the forward edges of the lifecycle. perdido is
// handled separately: it is reachable from any non-terminal state.
var legalTransitions = map[Estado][]Estado{
	EstadoPendiente:  {EstadoContactado, EstadoAgendado},
	EstadoContactado: {EstadoAgendado},
	EstadoAgendado:   {EstadoEnProceso},
	EstadoEnProceso:  {EstadoCompletado},
	EstadoCompletado: {},
	EstadoPerdido:    {},
}

// IsValid reports whether e is a known estado.
func (e Estado) IsValid() bool {
	_, ok := legalTransitions[e]
	return ok
}

// IsTerminal reports whether e admits no further transitions.
func (e Estado) IsTerminal() bool {
	return e == EstadoCompletado || e == EstadoPerdido
}

// CanTransition reports whether from → to is a legal lifecycle transition.
// The conversion engine does not consult this table: its completado write is
// guarded by the converted-to-service check instead.
func CanTransition(from, to Estado) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if to == EstadoPerdido {
		return !from.IsTerminal()
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Prioridad is the follow-up priority of an opportunity.
type Prioridad string

const (
	PrioridadAlta  Prioridad = "alta"
	PrioridadMedia Prioridad = "media"
	PrioridadBaja  Prioridad = "baja"
)

// IsValid reports whether p is a known prioridad.
func (p Prioridad) IsValid() bool {
	switch p {
	case PrioridadAlta, PrioridadMedia, PrioridadBaja:
		return true
	}
	return false
}

// Origen identifies the intake path that produced an opportunity.
type Origen string

const (
	OrigenManual         Origen = "manual"
	OrigenAutomatico     Origen = "automatico"
	OrigenHistorial      Origen = "historial"
	OrigenKilometraje    Origen = "kilometraje"
	OrigenWalkIn         Origen = "walk_in"
	OrigenLlamadaCliente Origen = "llamada_cliente"
	OrigenSeguimiento    Origen = "seguimiento"
)

// IsValid reports whether o is a known origen.
func (o Origen) IsValid() bool {
	switch o {
	case OrigenManual, OrigenAutomatico, OrigenHistorial, OrigenKilometraje,
		OrigenWalkIn, OrigenLlamadaCliente, OrigenSeguimiento:
		return true
	}
	return false
}

// AccionWalkIn is the branch selector for walk-in intake.
type AccionWalkIn string

const (
	AccionServicioInmediato AccionWalkIn = "servicio_inmediato"
	AccionAgendarCita       AccionWalkIn = "agendar_cita"
)

// IsValid reports whether a is a known walk-in accion.
func (a AccionWalkIn) IsValid() bool {
	return a == AccionServicioInmediato || a == AccionAgendarCita
}
