// Package service implements the opportunity lifecycle, the conversion
// engine, walk-in intake and the reception gate.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	custrepo "taller_backend/internal/customers/repository"
	custtransport "taller_backend/internal/customers/transport"
	"taller_backend/internal/events"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/internal/opportunities/repository"
	"taller_backend/internal/opportunities/transport"
	vehrepo "taller_backend/internal/vehicles/repository"
	vehtransport "taller_backend/internal/vehicles/transport"
	"taller_backend/platform/apperr"
	"taller_backend/platform/logger"
)

const (
	dateLayout = "2006-01-02"

	cannotModifyConvertedMessage = "opportunity already converted: its appointment can no longer be modified"
	cancelledOpportunityMessage  = "opportunity is lost and cannot be converted"
	alreadyConvertedMessage      = "opportunity already converted to a service"
)

// Service provides business logic for opportunities and appointments.
type Service struct {
	repo  repository.Repository
	store repository.Store
	bus   events.Bus
	log   *logger.Logger

	// now supplies the current time for service dates. Injected so tests and
	// daily views never depend on a process-wide clock.
	now func() time.Time
}

// New creates a new opportunities service.
func New(repo repository.Repository, store repository.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, bus: bus, log: log, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a new opportunity. Supplying a cita makes the record an
// appointment and agendado its initial estado.
func (s *Service) Create(ctx context.Context, creadaPor uuid.UUID, req transport.CreateOpportunityRequest) (transport.OpportunityResponse, error) {
	prioridad := domain.Prioridad(req.Prioridad)
	if req.Prioridad == "" {
		prioridad = domain.PrioridadMedia
	}

	estado := domain.EstadoPendiente
	var cita *domain.Cita
	if req.Cita != nil {
		c, err := citaFromPayload(req.Cita)
		if err != nil {
			return transport.OpportunityResponse{}, err
		}
		cita = c
		estado = domain.EstadoAgendado
	}

	fechaServicio, err := parseOptionalDate(req.FechaServicioSugerida)
	if err != nil {
		return transport.OpportunityResponse{}, apperr.Validation("fecha_servicio_sugerida must be YYYY-MM-DD")
	}
	fechaContacto, err := parseOptionalDate(req.FechaContactoSugerida)
	if err != nil {
		return transport.OpportunityResponse{}, apperr.Validation("fecha_contacto_sugerida must be YYYY-MM-DD")
	}

	o, err := s.repo.Create(ctx, repository.CreateParams{
		VehicleID:             req.VehicleID,
		CustomerID:            req.CustomerID,
		CreadaPor:             creadaPor,
		AsignadaA:             req.AsignadaA,
		TipoOportunidad:       req.TipoOportunidad,
		Titulo:                req.Titulo,
		Descripcion:           req.Descripcion,
		ServicioSugerido:      req.ServicioSugerido,
		PrecioSugerido:        req.PrecioSugerido,
		FechaServicioSugerida: fechaServicio,
		FechaContactoSugerida: fechaContacto,
		Estado:                estado,
		Prioridad:             prioridad,
		Origen:                domain.Origen(req.Origen),
		KilometrajeReferencia: req.KilometrajeReferencia,
		Cita:                  cita,
	})
	if err != nil {
		return transport.OpportunityResponse{}, err
	}

	s.bus.Publish(ctx, events.OportunidadCreada{
		BaseEvent:     events.NewBaseEvent(),
		OportunidadID: o.ID,
		CustomerID:    o.CustomerID,
		VehicleID:     o.VehicleID,
		Origen:        string(o.Origen),
		Estado:        string(o.Estado),
	})

	s.log.Info("opportunity created", "id", o.ID, "origen", o.Origen, "estado", o.Estado)
	return toResponse(o), nil
}

// GetByID retrieves an opportunity by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.OpportunityResponse, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(o), nil
}

// List retrieves opportunities with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListOpportunitiesRequest) (transport.OpportunityListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{
		AsignadaA: req.AsignadaA,
		SoloCitas: req.SoloCitas,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}

	if req.Estado != "" {
		e := domain.Estado(req.Estado)
		if !e.IsValid() {
			return transport.OpportunityListResponse{}, apperr.Validation("unknown estado filter")
		}
		params.Estado = &e
	}
	if req.Prioridad != "" {
		p := domain.Prioridad(req.Prioridad)
		if !p.IsValid() {
			return transport.OpportunityListResponse{}, apperr.Validation("unknown prioridad filter")
		}
		params.Prioridad = &p
	}
	if req.Origen != "" {
		o := domain.Origen(req.Origen)
		if !o.IsValid() {
			return transport.OpportunityListResponse{}, apperr.Validation("unknown origen filter")
		}
		params.Origen = &o
	}
	if req.FechaCita != "" {
		day, err := time.Parse(dateLayout, req.FechaCita)
		if err != nil {
			return transport.OpportunityListResponse{}, apperr.Validation("fecha_cita must be YYYY-MM-DD")
		}
		params.FechaCita = &day
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.OpportunityListResponse{}, err
	}

	responses := make([]transport.OpportunityResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}

	return transport.OpportunityListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateEstado moves an opportunity through its lifecycle after validating
// the transition. Moving to perdido requires a motivo.
func (s *Service) UpdateEstado(ctx context.Context, id uuid.UUID, req transport.UpdateEstadoRequest) (transport.OpportunityResponse, error) {
	to := domain.Estado(req.Estado)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	if current.Convertida() {
		return transport.OpportunityResponse{}, apperr.Conflict(cannotModifyConvertedMessage)
	}
	if !domain.CanTransition(current.Estado, to) {
		return transport.OpportunityResponse{}, apperr.Conflict(
			"illegal transition from " + string(current.Estado) + " to " + string(to))
	}
	if to == domain.EstadoPerdido && (req.Motivo == nil || *req.Motivo == "") {
		return transport.OpportunityResponse{}, apperr.Validation("motivo is required when marking an opportunity perdido")
	}

	o, err := s.repo.UpdateEstado(ctx, id, to, req.Motivo)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}

	if to == domain.EstadoPerdido {
		s.bus.Publish(ctx, events.OportunidadCancelada{
			BaseEvent:     events.NewBaseEvent(),
			OportunidadID: o.ID,
			Motivo:        *req.Motivo,
		})
	}

	s.log.Info("opportunity estado updated", "id", id, "from", current.Estado, "to", to)
	return toResponse(o), nil
}

// UpdatePrioridad changes the follow-up priority.
func (s *Service) UpdatePrioridad(ctx context.Context, id uuid.UUID, prioridad string) (transport.OpportunityResponse, error) {
	p := domain.Prioridad(prioridad)
	if !p.IsValid() {
		return transport.OpportunityResponse{}, apperr.Validation("unknown prioridad")
	}

	o, err := s.repo.UpdatePrioridad(ctx, id, p)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(o), nil
}

// Assign sets or clears the assignee.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (transport.OpportunityResponse, error) {
	o, err := s.repo.UpdateAsignada(ctx, id, userID)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(o), nil
}

// Reschedule changes an appointment's date/time in place. It is a same-state
// mutation, not a transition, and is forbidden once converted.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleRequest) (transport.OpportunityResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	if current.Convertida() {
		return transport.OpportunityResponse{}, apperr.Conflict(cannotModifyConvertedMessage)
	}

	fecha, err := time.Parse(dateLayout, req.FechaCita)
	if err != nil {
		return transport.OpportunityResponse{}, apperr.Validation("fecha_cita must be YYYY-MM-DD")
	}

	o, err := s.repo.RescheduleCita(ctx, id, fecha, req.HoraCita)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}

	s.bus.Publish(ctx, events.CitaReagendada{
		BaseEvent:     events.NewBaseEvent(),
		OportunidadID: o.ID,
		FechaCita:     req.FechaCita,
		HoraCita:      req.HoraCita,
	})

	return toResponse(o), nil
}

// CompleteCita fills missing identity references so a cita_rapida becomes
// receivable.
func (s *Service) CompleteCita(ctx context.Context, id uuid.UUID, req transport.CompleteCitaRequest) (transport.OpportunityResponse, error) {
	if req.CustomerID == nil && req.VehicleID == nil {
		return transport.OpportunityResponse{}, apperr.Validation("customer_id or vehicle_id is required")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	if current.Convertida() {
		return transport.OpportunityResponse{}, apperr.Conflict(cannotModifyConvertedMessage)
	}

	o, err := s.repo.UpdateIdentidad(ctx, id, req.CustomerID, req.VehicleID)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(o), nil
}

// Cancel marks an opportunity perdido with a reason. Forbidden once
// converted.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, motivo string) (transport.OpportunityResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	if current.Convertida() {
		return transport.OpportunityResponse{}, apperr.Conflict(cannotModifyConvertedMessage)
	}
	if current.Estado.IsTerminal() {
		return transport.OpportunityResponse{}, apperr.Conflict("opportunity is already in a terminal estado")
	}

	o, err := s.repo.UpdateEstado(ctx, id, domain.EstadoPerdido, &motivo)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}

	s.bus.Publish(ctx, events.OportunidadCancelada{
		BaseEvent:     events.NewBaseEvent(),
		OportunidadID: o.ID,
		Motivo:        motivo,
	})

	s.log.Info("opportunity cancelled", "id", id, "motivo", motivo)
	return toResponse(o), nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func citaFromPayload(p *transport.CitaPayload) (*domain.Cita, error) {
	fecha, err := time.Parse(dateLayout, p.FechaCita)
	if err != nil {
		return nil, apperr.Validation("fecha_cita must be YYYY-MM-DD")
	}
	return &domain.Cita{
		FechaCita:        fecha,
		HoraCita:         p.HoraCita,
		DescripcionBreve: p.DescripcionBreve,
		NombreContacto:   p.NombreContacto,
		TelefonoContacto: p.TelefonoContacto,
		OrigenCita:       p.OrigenCita,
	}, nil
}

func toResponse(o domain.Oportunidad) transport.OpportunityResponse {
	resp := transport.OpportunityResponse{
		ID:                    o.ID,
		VehicleID:             o.VehicleID,
		CustomerID:            o.CustomerID,
		CreadaPor:             o.CreadaPor,
		AsignadaA:             o.AsignadaA,
		TipoOportunidad:       o.TipoOportunidad,
		Titulo:                o.Titulo,
		Descripcion:           o.Descripcion,
		ServicioSugerido:      o.ServicioSugerido,
		PrecioSugerido:        o.PrecioSugerido,
		FechaServicioSugerida: o.FechaServicioSugerida,
		FechaContactoSugerida: o.FechaContactoSugerida,
		Estado:                string(o.Estado),
		Prioridad:             string(o.Prioridad),
		Origen:                string(o.Origen),
		KilometrajeReferencia: o.KilometrajeReferencia,
		ConvertidoAServicioID: o.ConvertidoAServicioID,
		MotivoPerdida:         o.MotivoPerdida,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
	if o.Cita != nil {
		resp.Cita = &transport.CitaResponse{
			FechaCita:        o.Cita.FechaCita.Format(dateLayout),
			HoraCita:         o.Cita.HoraCita,
			DescripcionBreve: o.Cita.DescripcionBreve,
			NombreContacto:   o.Cita.NombreContacto,
			TelefonoContacto: o.Cita.TelefonoContacto,
			OrigenCita:       o.Cita.OrigenCita,
			TipoCita:         string(o.TipoCita()),
		}
	}
	return resp
}

func customerToResponse(c custrepo.Customer) custtransport.CustomerResponse {
	return custtransport.CustomerResponse{
		ID:           c.ID,
		Nombre:       c.Nombre,
		Telefono:     c.Telefono,
		Whatsapp:     c.Whatsapp,
		Email:        c.Email,
		Direccion:    c.Direccion,
		CodigoPostal: c.CodigoPostal,
		RFC:          c.RFC,
		Notas:        c.Notas,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func vehicleToResponse(v vehrepo.Vehicle) vehtransport.VehicleResponse {
	return vehtransport.VehicleResponse{
		ID:          v.ID,
		VIN:         v.VIN,
		Marca:       v.Marca,
		Modelo:      v.Modelo,
		Anio:        v.Anio,
		PlacaActual: v.PlacaActual,
		CustomerID:  v.CustomerID,
		Kilometraje: v.Kilometraje,
		Combustible: v.Combustible,
		Transmision: v.Transmision,
		Activo:      v.Activo,
		Notas:       v.Notas,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
