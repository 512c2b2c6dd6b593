package service

import (
	"context"

	"github.com/google/uuid"

	svcrepo "taller_backend/internal/services/repository"
	svcservice "taller_backend/internal/services/service"

	"taller_backend/internal/events"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/repository"
	"taller_backend/internal/opportunities/resolver"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/apperr"
)

// ProcessWalkIn handles a client arriving without a prior record. Identity is
// resolved with no pre-existing opportunity, then the accion branches:
// servicio_inmediato creates a service directly, agendar_cita creates an
// agendado cita_completa opportunity. All writes share one transaction.
func (s *Service) ProcessWalkIn(ctx context.Context, creadaPor uuid.UUID, req transport.WalkInRequest) (transport.WalkInResponse, error) {
	accion := domain.AccionWalkIn(req.Accion)
	if !accion.IsValid() {
		return transport.WalkInResponse{}, apperr.Validation("unknown accion")
	}
	if accion == domain.AccionServicioInmediato && req.ServicioInmediato == nil {
		return transport.WalkInResponse{}, apperr.ValidationFields("walk-in is missing branch details", []string{"servicio_inmediato"})
	}
	if accion == domain.AccionAgendarCita && req.Cita == nil {
		return transport.WalkInResponse{}, apperr.ValidationFields("walk-in is missing branch details", []string{"cita"})
	}

	var resp transport.WalkInResponse
	err := s.store.WithIntake(ctx, func(tx repository.Tx) error {
		cust, _, err := resolver.ResolveCustomer(ctx, tx, resolver.CustomerRef{
			ID:  req.ClienteID,
			New: newCustomerFromPayload(req.ClienteNuevo),
		}, nil)
		if err != nil {
			return err
		}

		veh, _, err := resolver.ResolveVehicle(ctx, tx, resolver.VehicleRef{
			ID:  req.VehiculoID,
			New: newVehicleFromPayload(req.VehiculoNuevo),
		}, nil, cust)
		if err != nil {
			return err
		}

		resp.Cliente = customerToResponse(cust)
		resp.Vehiculo = vehicleToResponse(veh)

		switch accion {
		case domain.AccionServicioInmediato:
			svc, err := tx.CreateService(ctx, svcrepo.CreateParams{
				VehicleID:     veh.ID,
				CustomerID:    cust.ID,
				MecanicoID:    req.ServicioInmediato.MecanicoID,
				FechaServicio: s.now(),
				TipoServicio:  req.ServicioInmediato.TipoServicio,
				Descripcion:   req.ServicioInmediato.Descripcion,
				Kilometraje:   req.ServicioInmediato.Kilometraje,
				Precio:        precioOrZero(req.ServicioInmediato.PrecioEstimado),
			})
			if err != nil {
				return err
			}
			svcResp := svcservice.ToResponse(svc)
			resp.Servicio = &svcResp

		case domain.AccionAgendarCita:
			cita, err := citaFromPayload(req.Cita)
			if err != nil {
				return err
			}
			origenCita := string(domain.OrigenWalkIn)
			if cita.OrigenCita == nil {
				cita.OrigenCita = &origenCita
			}

			titulo := "Cita walk-in"
			if cita.DescripcionBreve != nil && *cita.DescripcionBreve != "" {
				titulo = *cita.DescripcionBreve
			}

			custID, vehID := cust.ID, veh.ID
			opp, err := tx.CreateOportunidad(ctx, repository.CreateParams{
				VehicleID:       &vehID,
				CustomerID:      &custID,
				CreadaPor:       creadaPor,
				TipoOportunidad: "cita",
				Titulo:          titulo,
				Estado:          domain.EstadoAgendado,
				Prioridad:       domain.PrioridadMedia,
				Origen:          domain.OrigenWalkIn,
				Cita:            cita,
			})
			if err != nil {
				return err
			}
			oppResp := toResponse(opp)
			resp.Oportunidad = &oppResp
		}
		return nil
	})
	if err != nil {
		return transport.WalkInResponse{}, err
	}

	event := events.WalkInProcesado{
		BaseEvent:  events.NewBaseEvent(),
		CustomerID: resp.Cliente.ID,
		VehicleID:  resp.Vehiculo.ID,
		Accion:     string(accion),
	}
	if resp.Servicio != nil {
		event.ServicioID = &resp.Servicio.ID
	}
	if resp.Oportunidad != nil {
		event.OportunidadID = &resp.Oportunidad.ID
	}
	s.bus.Publish(ctx, event)

	s.log.Info("walk-in processed", "accion", accion, "customer_id", resp.Cliente.ID, "vehicle_id", resp.Vehiculo.ID)
	return resp, nil
}

func precioOrZero(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
