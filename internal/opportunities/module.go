// Package opportunities provides the opportunity/appointment bounded context:
// lead lifecycle, conversion engine, walk-in intake and reception gate.
package opportunities

import (
	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/events"
	apphttp "taller_backend/internal/http"
	"taller_backend/internal/opportunities/handler"
	"taller_backend/internal/opportunities/repository"
	"taller_backend/internal/opportunities/service"
	svcrepo "taller_backend/internal/services/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/httpkit"
	"taller_backend/platform/logger"
	"taller_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the opportunities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule wires the opportunities module. The customer, vehicle and service
// repositories are shared with their owning modules so identity resolution
// and service creation run on the same transactional surfaces.
func NewModule(
	pool *pgxpool.Pool,
	customers custrepo.Repository,
	vehicles vehrepo.Repository,
	services svcrepo.Repository,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	store := repository.NewStore(pool, customers, vehicles, services)
	svc := service.New(repo, store, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// Service returns the service layer for use by the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for use by the scheduler worker.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts opportunity routes. Creation, conversion, reception
// and walk-in intake require the mecanico or admin role; lifecycle updates
// require seguimiento or admin.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	mecanico := httpkit.RequireAnyRole("mecanico", "admin")
	seguimiento := httpkit.RequireAnyRole("seguimiento", "admin")

	group := ctx.Protected.Group("/oportunidades")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", mecanico, m.handler.Create)
	group.PATCH("/:id/estado", seguimiento, m.handler.UpdateEstado)
	group.PATCH("/:id/prioridad", seguimiento, m.handler.UpdatePrioridad)
	group.PATCH("/:id/asignar", seguimiento, m.handler.Assign)
	group.PATCH("/:id/cita", seguimiento, m.handler.Reschedule)
	group.PATCH("/:id/cita/identidad", seguimiento, m.handler.CompleteCita)
	group.DELETE("/:id/cita", seguimiento, m.handler.Cancel)
	group.POST("/:id/convertir", mecanico, m.handler.Convert)
	group.POST("/:id/recepcion", mecanico, m.handler.Reception)

	ctx.Protected.POST("/walk-in", mecanico, m.handler.WalkIn)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
