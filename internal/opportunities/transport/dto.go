package transport

import (
	"time"

	"github.com/google/uuid"

	custtransport "taller_backend/internal/customers/transport"
	svctransport "taller_backend/internal/services/transport"
	vehtransport "taller_backend/internal/vehicles/transport"
)

// NewCustomerPayload creates a customer inline during conversion or walk-in.
type NewCustomerPayload struct {
	Nombre   string  `json:"nombre" validate:"required,min=1,max=200"`
	Telefono string  `json:"telefono" validate:"required,min=7,max=20"`
	Whatsapp *string `json:"whatsapp,omitempty" validate:"omitempty,min=7,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// NewVehiclePayload creates a vehicle inline, owned by the resolved customer.
type NewVehiclePayload struct {
	VIN         *string `json:"vin,omitempty" validate:"omitempty,len=17"`
	Marca       string  `json:"marca" validate:"required,min=1,max=100"`
	Modelo      string  `json:"modelo" validate:"required,min=1,max=100"`
	Anio        int     `json:"anio" validate:"required,anio"`
	PlacaActual string  `json:"placa_actual" validate:"required,placa"`
	Kilometraje *int64  `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
}

// CitaPayload carries appointment data. Dates are "2006-01-02", times "15:04".
type CitaPayload struct {
	FechaCita        string  `json:"fecha_cita" validate:"required,datetime=2006-01-02"`
	HoraCita         string  `json:"hora_cita" validate:"required,datetime=15:04"`
	DescripcionBreve *string `json:"descripcion_breve,omitempty" validate:"omitempty,max=300"`
	NombreContacto   *string `json:"nombre_contacto,omitempty" validate:"omitempty,max=200"`
	TelefonoContacto *string `json:"telefono_contacto,omitempty" validate:"omitempty,min=7,max=20"`
	OrigenCita       *string `json:"origen_cita,omitempty" validate:"omitempty,max=50"`
}

// CreateOpportunityRequest creates a lead, optionally with an appointment
// attached from the start (which makes agendado the initial estado).
// walk_in is not a legal origen here: that path has its own endpoint.
type CreateOpportunityRequest struct {
	VehicleID             *uuid.UUID   `json:"vehicle_id,omitempty"`
	CustomerID            *uuid.UUID   `json:"customer_id,omitempty"`
	AsignadaA             *uuid.UUID   `json:"asignada_a,omitempty"`
	TipoOportunidad       string       `json:"tipo_oportunidad" validate:"required,min=1,max=100"`
	Titulo                string       `json:"titulo" validate:"required,min=1,max=200"`
	Descripcion           *string      `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
	ServicioSugerido      *string      `json:"servicio_sugerido,omitempty" validate:"omitempty,max=200"`
	PrecioSugerido        *int64       `json:"precio_sugerido,omitempty" validate:"omitempty,min=0"`
	FechaServicioSugerida *string      `json:"fecha_servicio_sugerida,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FechaContactoSugerida *string      `json:"fecha_contacto_sugerida,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Prioridad             string       `json:"prioridad,omitempty" validate:"omitempty,oneof=alta media baja"`
	Origen                string       `json:"origen" validate:"required,oneof=manual automatico historial kilometraje llamada_cliente seguimiento"`
	KilometrajeReferencia *int64       `json:"kilometraje_referencia,omitempty" validate:"omitempty,min=0"`
	Cita                  *CitaPayload `json:"cita,omitempty"`
}

// ListOpportunitiesRequest contains filter and pagination query parameters.
// FechaCita is "2006-01-02" and is always caller-supplied.
type ListOpportunitiesRequest struct {
	Estado    string     `form:"estado"`
	Prioridad string     `form:"prioridad"`
	Origen    string     `form:"origen"`
	AsignadaA *uuid.UUID `form:"asignada_a"`
	FechaCita string     `form:"fecha_cita"`
	SoloCitas bool       `form:"solo_citas"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// UpdateEstadoRequest moves an opportunity through its lifecycle. Motivo is
// required when the target estado is perdido.
type UpdateEstadoRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=pendiente contactado agendado en_proceso completado perdido"`
	Motivo *string `json:"motivo,omitempty" validate:"omitempty,max=500"`
}

// UpdatePrioridadRequest changes the follow-up priority.
type UpdatePrioridadRequest struct {
	Prioridad string `json:"prioridad" validate:"required,oneof=alta media baja"`
}

// AssignRequest sets or clears the assignee.
type AssignRequest struct {
	AsignadaA *uuid.UUID `json:"asignada_a"`
}

// RescheduleRequest changes an appointment's date and time in place.
type RescheduleRequest struct {
	FechaCita string `json:"fecha_cita" validate:"required,datetime=2006-01-02"`
	HoraCita  string `json:"hora_cita" validate:"required,datetime=15:04"`
}

// CompleteCitaRequest fills missing identity references on a cita_rapida.
type CompleteCitaRequest struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	VehicleID  *uuid.UUID `json:"vehicle_id,omitempty"`
}

// CancelRequest cancels an appointment/opportunity with a reason.
type CancelRequest struct {
	Motivo string `json:"motivo" validate:"required,min=1,max=500"`
}

// ConvertRequest carries the conversion overrides. Precio is centavos.
// Identity overrides accept either an existing id or a new payload.
type ConvertRequest struct {
	TipoServicio   *string             `json:"tipo_servicio,omitempty" validate:"omitempty,max=200"`
	Descripcion    *string             `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
	Precio         *int64              `json:"precio,omitempty" validate:"omitempty,min=0"`
	Kilometraje    *int64              `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
	MecanicoID     *uuid.UUID          `json:"mecanico_id,omitempty"`
	EstadoServicio *string             `json:"estado_servicio,omitempty" validate:"omitempty,oneof=cotizado autorizado en_proceso"`
	ClienteID      *uuid.UUID          `json:"cliente_id,omitempty"`
	ClienteNuevo   *NewCustomerPayload `json:"cliente_nuevo,omitempty"`
	VehiculoID     *uuid.UUID          `json:"vehiculo_id,omitempty"`
	VehiculoNuevo  *NewVehiclePayload  `json:"vehiculo_nuevo,omitempty"`
}

// ConvertResponse is the result of a conversion: the created service plus the
// ids of any customer/vehicle rows created inline.
type ConvertResponse struct {
	Servicio          svctransport.ServiceResponse `json:"servicio"`
	CreatedCustomerID *uuid.UUID                   `json:"created_customer_id,omitempty"`
	CreatedVehicleID  *uuid.UUID                   `json:"created_vehicle_id,omitempty"`
}

// ReceptionRequest carries the reception-time service details for fulfilling
// a scheduled appointment. PrecioEstimado is centavos.
type ReceptionRequest struct {
	TipoServicio   string     `json:"tipo_servicio" validate:"required,min=1,max=200"`
	Descripcion    *string    `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
	PrecioEstimado *int64     `json:"precio_estimado,omitempty" validate:"omitempty,min=0"`
	Kilometraje    *int64     `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
	MecanicoID     *uuid.UUID `json:"mecanico_id,omitempty"`
}

// ReceptionResponse is the result of receiving an appointment.
type ReceptionResponse struct {
	Servicio svctransport.ServiceResponse `json:"servicio"`
}

// ServicioInmediatoPayload carries the service details for the immediate
// branch of walk-in intake. PrecioEstimado is centavos.
type ServicioInmediatoPayload struct {
	TipoServicio   string     `json:"tipo_servicio" validate:"required,min=1,max=200"`
	Descripcion    *string    `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
	PrecioEstimado *int64     `json:"precio_estimado,omitempty" validate:"omitempty,min=0"`
	Kilometraje    *int64     `json:"kilometraje,omitempty" validate:"omitempty,min=0"`
	MecanicoID     *uuid.UUID `json:"mecanico_id,omitempty"`
}

// WalkInRequest processes a client arriving without a prior record. The
// accion selects either immediate service creation or appointment scheduling.
type WalkInRequest struct {
	Accion            string                    `json:"accion" validate:"required,oneof=servicio_inmediato agendar_cita"`
	ClienteID         *uuid.UUID                `json:"cliente_id,omitempty"`
	ClienteNuevo      *NewCustomerPayload       `json:"cliente_nuevo,omitempty"`
	VehiculoID        *uuid.UUID                `json:"vehiculo_id,omitempty"`
	VehiculoNuevo     *NewVehiclePayload        `json:"vehiculo_nuevo,omitempty"`
	ServicioInmediato *ServicioInmediatoPayload `json:"servicio_inmediato,omitempty"`
	Cita              *CitaPayload              `json:"cita,omitempty"`
}

// WalkInResponse is the result of walk-in intake. Exactly one of Servicio and
// Oportunidad is set, matching the accion.
type WalkInResponse struct {
	Cliente     custtransport.CustomerResponse `json:"cliente"`
	Vehiculo    vehtransport.VehicleResponse   `json:"vehiculo"`
	Servicio    *svctransport.ServiceResponse  `json:"servicio,omitempty"`
	Oportunidad *OpportunityResponse           `json:"oportunidad,omitempty"`
}

// CitaResponse represents appointment data in API responses.
type CitaResponse struct {
	FechaCita        string  `json:"fecha_cita"`
	HoraCita         string  `json:"hora_cita"`
	DescripcionBreve *string `json:"descripcion_breve,omitempty"`
	NombreContacto   *string `json:"nombre_contacto,omitempty"`
	TelefonoContacto *string `json:"telefono_contacto,omitempty"`
	OrigenCita       *string `json:"origen_cita,omitempty"`
	TipoCita         string  `json:"tipo_cita"`
}

// OpportunityResponse represents an opportunity in API responses.
// PrecioSugerido is centavos.
type OpportunityResponse struct {
	ID                    uuid.UUID     `json:"id"`
	VehicleID             *uuid.UUID    `json:"vehicle_id,omitempty"`
	CustomerID            *uuid.UUID    `json:"customer_id,omitempty"`
	CreadaPor             uuid.UUID     `json:"creada_por"`
	AsignadaA             *uuid.UUID    `json:"asignada_a,omitempty"`
	TipoOportunidad       string        `json:"tipo_oportunidad"`
	Titulo                string        `json:"titulo"`
	Descripcion           *string       `json:"descripcion,omitempty"`
	ServicioSugerido      *string       `json:"servicio_sugerido,omitempty"`
	PrecioSugerido        *int64        `json:"precio_sugerido,omitempty"`
	FechaServicioSugerida *time.Time    `json:"fecha_servicio_sugerida,omitempty"`
	FechaContactoSugerida *time.Time    `json:"fecha_contacto_sugerida,omitempty"`
	Estado                string        `json:"estado"`
	Prioridad             string        `json:"prioridad"`
	Origen                string        `json:"origen"`
	KilometrajeReferencia *int64        `json:"kilometraje_referencia,omitempty"`
	Cita                  *CitaResponse `json:"cita,omitempty"`
	ConvertidoAServicioID *uuid.UUID    `json:"convertido_a_servicio_id,omitempty"`
	MotivoPerdida         *string       `json:"motivo_perdida,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// OpportunityListResponse wraps a paginated list of opportunities.
type OpportunityListResponse struct {
	Items    []OpportunityResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
