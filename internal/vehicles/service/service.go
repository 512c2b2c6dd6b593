package service

import (
	"context"

	"github.com/google/uuid"

	"taller_backend/internal/vehicles/repository"
	"taller_backend/internal/vehicles/transport"
	"taller_backend/platform/logger"
)

// Service provides business logic for vehicles.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new vehicles service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a vehicle by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.VehicleResponse, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toResponse(v), nil
}

// List retrieves vehicles with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListVehiclesRequest) (transport.VehicleListResponse, error) {
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

	items, total, err := s.repo.List(ctx, repository.ListParams{
		CustomerID: req.CustomerID,
		Placa:      req.Placa,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return transport.VehicleListResponse{}, err
	}

	responses := make([]transport.VehicleResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}

	return transport.VehicleListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create registers a new vehicle, optionally linked to its current owner.
func (s *Service) Create(ctx context.Context, req transport.CreateVehicleRequest) (transport.VehicleResponse, error) {
	v, err := s.repo.Create(ctx, repository.CreateParams{
		VIN:         req.VIN,
		Marca:       req.Marca,
		Modelo:      req.Modelo,
		Anio:        req.Anio,
		PlacaActual: req.PlacaActual,
		CustomerID:  req.CustomerID,
		Kilometraje: req.Kilometraje,
		Combustible: req.Combustible,
		Transmision: req.Transmision,
		Notas:       req.Notas,
	})
	if err != nil {
		return transport.VehicleResponse{}, err
	}

	s.log.Info("vehicle created", "id", v.ID, "placa", v.PlacaActual)
	return toResponse(v), nil
}

// Update applies partial changes to an existing vehicle.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateVehicleRequest) (transport.VehicleResponse, error) {
	v, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:          id,
		VIN:         req.VIN,
		Marca:       req.Marca,
		Modelo:      req.Modelo,
		Anio:        req.Anio,
		PlacaActual: req.PlacaActual,
		CustomerID:  req.CustomerID,
		Kilometraje: req.Kilometraje,
		Combustible: req.Combustible,
		Transmision: req.Transmision,
		Notas:       req.Notas,
	})
	if err != nil {
		return transport.VehicleResponse{}, err
	}

	s.log.Info("vehicle updated", "id", v.ID)
	return toResponse(v), nil
}

// SetActivo toggles a vehicle's active flag.
func (s *Service) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return err
	}
	s.log.Info("vehicle activo set", "id", id, "activo", activo)
	return nil
}

func toResponse(v repository.Vehicle) transport.VehicleResponse {
	return transport.VehicleResponse{
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
