package service

import (
	"context"

	"github.com/google/uuid"

	svcdomain "taller_backend/internal/services/domain"
	svcrepo "taller_backend/internal/services/repository"
	svcservice "taller_backend/internal/services/service"

	"taller_backend/internal/events"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/repository"
	"taller_backend/internal/opportunities/resolver"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/apperr"
)

// ConvertToService turns an opportunity into a billable service, at most
// once. The whole operation runs in one transaction: identity resolution,
// service insertion and the terminal write commit or roll back together.
func (s *Service) ConvertToService(ctx context.Context, id uuid.UUID, req transport.ConvertRequest) (transport.ConvertResponse, error) {
	return s.convert(ctx, id, req, false)
}

func (s *Service) convert(ctx context.Context, id uuid.UUID, req transport.ConvertRequest, viaRecepcion bool) (transport.ConvertResponse, error) {
	var resp transport.ConvertResponse
	var custID, vehID uuid.UUID

	err := s.store.WithConversion(ctx, id, func(tx repository.ConversionTx) error {
		opp := tx.Oportunidad()
		if opp.Convertida() {
			return apperr.Conflict(alreadyConvertedMessage)
		}
		if opp.Estado == domain.EstadoPerdido {
			return apperr.Conflict(cancelledOpportunityMessage)
		}

		cust, custCreated, err := resolver.ResolveCustomer(ctx, tx, resolver.CustomerRef{
			ID:  req.ClienteID,
			New: newCustomerFromPayload(req.ClienteNuevo),
		}, opp.CustomerID)
		if err != nil {
			return err
		}

		veh, vehCreated, err := resolver.ResolveVehicle(ctx, tx, resolver.VehicleRef{
			ID:  req.VehiculoID,
			New: newVehicleFromPayload(req.VehiculoNuevo),
		}, opp.VehicleID, cust)
		if err != nil {
			return err
		}

		svc, err := tx.CreateService(ctx, s.serviceParamsFor(opp, req, cust.ID, veh.ID))
		if err != nil {
			return err
		}

		if err := tx.MarkConverted(ctx, svc.ID); err != nil {
			return err
		}

		custID, vehID = cust.ID, veh.ID
		resp.Servicio = svcservice.ToResponse(svc)
		if custCreated {
			resp.CreatedCustomerID = &cust.ID
		}
		if vehCreated {
			resp.CreatedVehicleID = &veh.ID
		}
		return nil
	})
	if err != nil {
		return transport.ConvertResponse{}, err
	}

	s.bus.Publish(ctx, events.OportunidadConvertida{
		BaseEvent:         events.NewBaseEvent(),
		OportunidadID:     id,
		ServicioID:        resp.Servicio.ID,
		CustomerID:        custID,
		VehicleID:         vehID,
		CreatedCustomerID: resp.CreatedCustomerID,
		CreatedVehicleID:  resp.CreatedVehicleID,
		ViaRecepcion:      viaRecepcion,
	})

	s.log.Info("opportunity converted", "id", id, "service_id", resp.Servicio.ID, "via_recepcion", viaRecepcion)
	return resp, nil
}

// serviceParamsFor builds the service row from overrides first, falling back
// to the opportunity's suggested values.
func (s *Service) serviceParamsFor(opp domain.Oportunidad, req transport.ConvertRequest, customerID, vehicleID uuid.UUID) svcrepo.CreateParams {
	tipo := opp.Titulo
	if opp.ServicioSugerido != nil && *opp.ServicioSugerido != "" {
		tipo = *opp.ServicioSugerido
	}
	if req.TipoServicio != nil && *req.TipoServicio != "" {
		tipo = *req.TipoServicio
	}

	var precio int64
	if opp.PrecioSugerido != nil {
		precio = *opp.PrecioSugerido
	}
	if req.Precio != nil {
		precio = *req.Precio
	}

	descripcion := opp.Descripcion
	if req.Descripcion != nil {
		descripcion = req.Descripcion
	}

	kilometraje := opp.KilometrajeReferencia
	if req.Kilometraje != nil {
		kilometraje = req.Kilometraje
	}

	estado := svcdomain.EstadoCotizado
	if req.EstadoServicio != nil {
		estado = svcdomain.Estado(*req.EstadoServicio)
	}

	return svcrepo.CreateParams{
		VehicleID:     vehicleID,
		CustomerID:    customerID,
		MecanicoID:    req.MecanicoID,
		FechaServicio: s.now(),
		TipoServicio:  tipo,
		Descripcion:   descripcion,
		Kilometraje:   kilometraje,
		Precio:        precio,
		Estado:        estado,
	}
}

func newCustomerFromPayload(p *transport.NewCustomerPayload) *resolver.NewCustomer {
	if p == nil {
		return nil
	}
	return &resolver.NewCustomer{
		Nombre:   p.Nombre,
		Telefono: p.Telefono,
		Whatsapp: p.Whatsapp,
		Email:    p.Email,
	}
}

func newVehicleFromPayload(p *transport.NewVehiclePayload) *resolver.NewVehicle {
	if p == nil {
		return nil
	}
	return &resolver.NewVehicle{
		VIN:         p.VIN,
		Marca:       p.Marca,
		Modelo:      p.Modelo,
		Anio:        p.Anio,
		PlacaActual: p.PlacaActual,
		Kilometraje: p.Kilometraje,
	}
}
