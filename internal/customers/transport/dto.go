package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCustomerRequest contains data for registering a new customer.
type CreateCustomerRequest struct {
	Nombre       string  `json:"nombre" validate:"required,min=1,max=200"`
	Telefono     string  `json:"telefono" validate:"required,min=7,max=20"`
	Whatsapp     *string `json:"whatsapp,omitempty" validate:"omitempty,min=7,max=20"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Direccion    *string `json:"direccion,omitempty" validate:"omitempty,max=300"`
	CodigoPostal *string `json:"codigo_postal,omitempty" validate:"omitempty,max=10"`
	RFC          *string `json:"rfc,omitempty" validate:"omitempty,max=13"`
	Notas        *string `json:"notas,omitempty" validate:"omitempty,max=2000"`
}

// UpdateCustomerRequest contains data for updating an existing customer.
type UpdateCustomerRequest struct {
	Nombre       *string `json:"nombre,omitempty" validate:"omitempty,min=1,max=200"`
	Telefono     *string `json:"telefono,omitempty" validate:"omitempty,min=7,max=20"`
	Whatsapp     *string `json:"whatsapp,omitempty" validate:"omitempty,min=7,max=20"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Direccion    *string `json:"direccion,omitempty" validate:"omitempty,max=300"`
	CodigoPostal *string `json:"codigo_postal,omitempty" validate:"omitempty,max=10"`
	RFC          *string `json:"rfc,omitempty" validate:"omitempty,max=13"`
	Notas        *string `json:"notas,omitempty" validate:"omitempty,max=2000"`
}

// ListCustomersRequest contains search and pagination query parameters.
type ListCustomersRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID           uuid.UUID `json:"id"`
	Nombre       string    `json:"nombre"`
	Telefono     string    `json:"telefono"`
	Whatsapp     *string   `json:"whatsapp,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Direccion    *string   `json:"direccion,omitempty"`
	CodigoPostal *string   `json:"codigo_postal,omitempty"`
	RFC          *string   `json:"rfc,omitempty"`
	Notas        *string   `json:"notas,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CustomerListResponse wraps a paginated list of customers.
type CustomerListResponse struct {
	Items    []CustomerResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
