package service

import (
	"context"

	"github.com/google/uuid"

	"taller_backend/internal/services/domain"
	"taller_backend/internal/services/repository"
	"taller_backend/internal/services/transport"
	"taller_backend/platform/apperr"
	"taller_backend/platform/logger"
)

// Service provides business logic for billable services. Creation is not
// exposed here: service rows come only from conversion or walk-in intake.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new services service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a service by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return ToResponse(svc), nil
}

// List retrieves services with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListServicesRequest) (transport.ServiceListResponse, error) {
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

	var estado *domain.Estado
	if req.Estado != "" {
		e := domain.Estado(req.Estado)
		if !e.IsValid() {
			return transport.ServiceListResponse{}, apperr.Validation("unknown estado filter")
		}
		estado = &e
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		VehicleID:  req.VehicleID,
		CustomerID: req.CustomerID,
		Estado:     estado,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	responses := make([]transport.ServiceResponse, len(items))
	for i, item := range items {
		responses[i] = ToResponse(item)
	}

	return transport.ServiceListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateEstado advances a service through its lifecycle after validating the
// transition.
func (s *Service) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) (transport.ServiceResponse, error) {
	to := domain.Estado(estado)
	if !to.IsValid() {
		return transport.ServiceResponse{}, apperr.Validation("unknown estado")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	if !domain.CanTransition(current.Estado, to) {
		return transport.ServiceResponse{}, apperr.Conflict(
			"illegal service transition from " + string(current.Estado) + " to " + string(to))
	}

	updated, err := s.repo.UpdateEstado(ctx, id, to)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("service estado updated", "id", id, "from", current.Estado, "to", to)
	return ToResponse(updated), nil
}

// ToResponse maps a repository model to its API representation. Exported so
// the opportunities module can shape conversion results the same way.
func ToResponse(svc repository.Service) transport.ServiceResponse {
	return transport.ServiceResponse{
		ID:                   svc.ID,
		VehicleID:            svc.VehicleID,
		CustomerID:           svc.CustomerID,
		MecanicoID:           svc.MecanicoID,
		FechaServicio:        svc.FechaServicio,
		TipoServicio:         svc.TipoServicio,
		Descripcion:          svc.Descripcion,
		Kilometraje:          svc.Kilometraje,
		Precio:               svc.Precio,
		Estado:               string(svc.Estado),
		Notas:                svc.Notas,
		ProximoServicioKM:    svc.ProximoServicioKM,
		ProximoServicioFecha: svc.ProximoServicioFecha,
		GarantiaMeses:        svc.GarantiaMeses,
		Refacciones:          svc.Refacciones,
		CreatedAt:            svc.CreatedAt,
	}
}
