package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListServicesRequest contains filter and pagination query parameters.
type ListServicesRequest struct {
	VehicleID  *uuid.UUID `form:"vehicle_id"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Estado     string     `form:"estado"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// UpdateEstadoRequest changes a service's lifecycle state.
type UpdateEstadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=cotizado autorizado en_proceso completado cancelado"`
}

// ServiceResponse represents a billable service in API responses.
// Precio is centavos.
type ServiceResponse struct {
	ID                   uuid.UUID  `json:"id"`
	VehicleID            uuid.UUID  `json:"vehicle_id"`
	CustomerID           uuid.UUID  `json:"customer_id"`
	MecanicoID           *uuid.UUID `json:"mecanico_id,omitempty"`
	FechaServicio        time.Time  `json:"fecha_servicio"`
	TipoServicio         string     `json:"tipo_servicio"`
	Descripcion          *string    `json:"descripcion,omitempty"`
	Kilometraje          *int64     `json:"kilometraje,omitempty"`
	Precio               int64      `json:"precio"`
	Estado               string     `json:"estado"`
	Notas                *string    `json:"notas,omitempty"`
	ProximoServicioKM    *int64     `json:"proximo_servicio_km,omitempty"`
	ProximoServicioFecha *time.Time `json:"proximo_servicio_fecha,omitempty"`
	GarantiaMeses        *int       `json:"garantia_meses,omitempty"`
	Refacciones          *string    `json:"refacciones,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ServiceListResponse wraps a paginated list of services.
type ServiceListResponse struct {
	Items    []ServiceResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
