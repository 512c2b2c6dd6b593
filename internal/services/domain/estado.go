// Package domain provides business rules for billable services.
package domain

// Estado is the lifecycle state of a billable service.
type Estado string

const (
	EstadoCotizado   Estado = "cotizado"
	EstadoAutorizado Estado = "autorizado"
	EstadoEnProceso  Estado = "en_proceso"
	EstadoCompletado Estado = "completado"
	EstadoCancelado  Estado = "cancelado"
)

// legalTransitions holds the forward edges of the service lifecycle.
// cancelado is reachable from any non-terminal state.
var legalTransitions = map[Estado][]Estado{
	EstadoCotizado:   {EstadoAutorizado},
	EstadoAutorizado: {EstadoEnProceso},
	EstadoEnProceso:  {EstadoCompletado},
	EstadoCompletado: {},
	EstadoCancelado:  {},
}

// IsValid reports whether e is a known estado.
func (e Estado) IsValid() bool {
	_, ok := legalTransitions[e]
	return ok
}

// IsTerminal reports whether e admits no further transitions.
func (e Estado) IsTerminal() bool {
	return e == EstadoCompletado || e == EstadoCancelado
}

// CanTransition reports whether from → to is a legal service transition.
func CanTransition(from, to Estado) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if to == EstadoCancelado {
		return !from.IsTerminal()
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
