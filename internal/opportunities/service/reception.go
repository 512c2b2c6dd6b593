package service

import (
	"context"

	"github.com/google/uuid"

	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/apperr"
)

const incompleteAppointmentMessage = "appointment identity is incomplete: customer and vehicle must both be set before reception"

// ReceptionAppointment fulfills a scheduled appointment by converting it into
// a service. A cita_rapida (incomplete identity) is refused: the caller must
// complete the record first. Identity is never overridden at reception; the
// conversion uses the references already on the opportunity, so identity can
// only have grown between the gate check and the locked load.
func (s *Service) ReceptionAppointment(ctx context.Context, id uuid.UUID, req transport.ReceptionRequest) (transport.ReceptionResponse, error) {
	opp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReceptionResponse{}, err
	}

	if !opp.EsCita() {
		return transport.ReceptionResponse{}, apperr.Validation("opportunity has no appointment scheduled")
	}
	if opp.TipoCita() == domain.TipoCitaRapida {
		return transport.ReceptionResponse{}, apperr.Conflict(incompleteAppointmentMessage)
	}

	conv, err := s.convert(ctx, id, transport.ConvertRequest{
		TipoServicio: &req.TipoServicio,
		Descripcion:  req.Descripcion,
		Precio:       req.PrecioEstimado,
		Kilometraje:  req.Kilometraje,
		MecanicoID:   req.MecanicoID,
	}, true)
	if err != nil {
		return transport.ReceptionResponse{}, err
	}

	return transport.ReceptionResponse{Servicio: conv.Servicio}, nil
}
