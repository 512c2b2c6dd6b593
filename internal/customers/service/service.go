package service

import (
	"context"

	"github.com/google/uuid"

	"taller_backend/internal/customers/repository"
	"taller_backend/internal/customers/transport"
	"taller_backend/platform/logger"
	"taller_backend/platform/phone"
)

// Service provides business logic for customers.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new customers service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a customer by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CustomerResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(c), nil
}

// List retrieves customers with search and pagination.
func (s *Service) List(ctx context.Context, req transport.ListCustomersRequest) (transport.CustomerListResponse, error) {
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
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.CustomerListResponse{}, err
	}

	responses := make([]transport.CustomerResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}

	return transport.CustomerListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create registers a new customer. Phone fields are normalized to E.164.
func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (transport.CustomerResponse, error) {
	params := repository.CreateParams{
		Nombre:       req.Nombre,
		Telefono:     phone.NormalizeE164(req.Telefono),
		Whatsapp:     normalizeOptional(req.Whatsapp),
		Email:        req.Email,
		Direccion:    req.Direccion,
		CodigoPostal: req.CodigoPostal,
		RFC:          req.RFC,
		Notas:        req.Notas,
	}

	c, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.CustomerResponse{}, err
	}

	s.log.Info("customer created", "id", c.ID, "nombre", c.Nombre)
	return toResponse(c), nil
}

// Update applies partial changes to an existing customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (transport.CustomerResponse, error) {
	var telefono *string
	if req.Telefono != nil {
		normalized := phone.NormalizeE164(*req.Telefono)
		telefono = &normalized
	}

	c, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:           id,
		Nombre:       req.Nombre,
		Telefono:     telefono,
		Whatsapp:     normalizeOptional(req.Whatsapp),
		Email:        req.Email,
		Direccion:    req.Direccion,
		CodigoPostal: req.CodigoPostal,
		RFC:          req.RFC,
		Notas:        req.Notas,
	})
	if err != nil {
		return transport.CustomerResponse{}, err
	}

	s.log.Info("customer updated", "id", c.ID)
	return toResponse(c), nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	normalized := phone.NormalizeE164(*value)
	return &normalized
}

func toResponse(c repository.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
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
