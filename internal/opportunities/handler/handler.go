package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taller_backend/internal/opportunities/service"
	"taller_backend/internal/opportunities/transport"
	"taller_backend/platform/httpkit"
	"taller_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid opportunity ID"
)

// Handler handles HTTP requests for opportunities, appointments, conversion
// and walk-in intake.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new opportunities handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create registers a new opportunity.
// POST /api/v1/oportunidades
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// List retrieves opportunities with filters and pagination.
// GET /api/v1/oportunidades
func (h *Handler) List(c *gin.Context) {
	var req transport.ListOpportunitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves an opportunity by ID.
// GET /api/v1/oportunidades/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateEstado moves an opportunity through its lifecycle.
// PATCH /api/v1/oportunidades/:id/estado
func (h *Handler) UpdateEstado(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateEstadoRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.UpdateEstado(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdatePrioridad changes the follow-up priority.
// PATCH /api/v1/oportunidades/:id/prioridad
func (h *Handler) UpdatePrioridad(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.UpdatePrioridadRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.UpdatePrioridad(c.Request.Context(), id, req.Prioridad)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign sets or clears the assignee.
// PATCH /api/v1/oportunidades/:id/asignar
func (h *Handler) Assign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), id, req.AsignadaA)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Reschedule changes an appointment's date and time.
// PATCH /api/v1/oportunidades/:id/cita
func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.RescheduleRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Reschedule(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CompleteCita fills missing identity references on a cita_rapida.
// PATCH /api/v1/oportunidades/:id/cita/identidad
func (h *Handler) CompleteCita(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.CompleteCitaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.CompleteCita(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel marks an opportunity perdido with a reason.
// DELETE /api/v1/oportunidades/:id/cita
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.CancelRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), id, req.Motivo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Convert turns an opportunity into a billable service.
// POST /api/v1/oportunidades/:id/convertir
func (h *Handler) Convert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.ConvertRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ConvertToService(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Reception fulfills a same-day appointment by converting it into a service.
// POST /api/v1/oportunidades/:id/recepcion
func (h *Handler) Reception(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req transport.ReceptionRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ReceptionAppointment(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// WalkIn processes a client arriving without a prior record.
// POST /api/v1/walk-in
func (h *Handler) WalkIn(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.WalkInRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ProcessWalkIn(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
