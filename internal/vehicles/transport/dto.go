package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateVehicleRequest contains data for registering a new vehicle.
type CreateVehicleRequest struct {
	VIN         *string    `json:"vin,omitempty" validate:"omitempty,len=17"`
	Marca       string     `json:"marca" validate:"required,min=1,max=100"`
	Modelo      string     `json:"modelo" validate:"required,min=1,max=100"`
	Anio        int        `json:"anio" validate:"required,anio"`
	PlacaActual string     `json:"placa_actual" validate:"required,placa"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	Kilometraje *int64     `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
	Combustible *string    `json:"combustible,omitempty" validate:"omitempty,oneof=gasolina diesel hibrido electrico gas"`
	Transmision *string    `json:"transmision,omitempty" validate:"omitempty,oneof=manual automatica cvt"`
	Notas       *string    `json:"notas,omitempty" validate:"omitempty,max=2000"`
}

// UpdateVehicleRequest contains data for updating an existing vehicle.
type UpdateVehicleRequest struct {
	VIN         *string    `json:"vin,omitempty" validate:"omitempty,len=17"`
	Marca       *string    `json:"marca,omitempty" validate:"omitempty,min=1,max=100"`
	Modelo      *string    `json:"modelo,omitempty" validate:"omitempty,min=1,max=100"`
	Anio        *int       `json:"anio,omitempty" validate:"omitempty,anio"`
	PlacaActual *string    `json:"placa_actual,omitempty" validate:"omitempty,placa"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	Kilometraje *int64     `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
	Combustible *string    `json:"combustible,omitempty" validate:"omitempty,oneof=gasolina diesel hibrido electrico gas"`
	Transmision *string    `json:"transmision,omitempty" validate:"omitempty,oneof=manual automatica cvt"`
	Notas       *string    `json:"notas,omitempty" validate:"omitempty,max=2000"`
}

// ListVehiclesRequest contains filter and pagination query parameters.
type ListVehiclesRequest struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Placa      string     `form:"placa"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// SetActivoRequest toggles a vehicle's active flag.
type SetActivoRequest struct {
	Activo bool `json:"activo"`
}

// VehicleResponse represents a vehicle in API responses.
type VehicleResponse struct {
	ID          uuid.UUID  `json:"id"`
	VIN         *string    `json:"vin,omitempty"`
	Marca       string     `json:"marca"`
	Modelo      string     `json:"modelo"`
	Anio        int        `json:"anio"`
	PlacaActual string     `json:"placa_actual"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	Kilometraje *int64     `json:"kilometraje,omitempty"`
	Combustible *string    `json:"combustible,omitempty"`
	Transmision *string    `json:"transmision,omitempty"`
	Activo      bool       `json:"activo"`
	Notas       *string    `json:"notas,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VehicleListResponse wraps a paginated list of vehicles.
type VehicleListResponse struct {
	Items    []VehicleResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
