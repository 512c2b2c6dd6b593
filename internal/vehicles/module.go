// Package vehicles provides the vehicle bounded context module.
package vehicles

import (
	apphttp "taller_backend/internal/http"
	"taller_backend/internal/vehicles/handler"
	"taller_backend/internal/vehicles/repository"
	"taller_backend/internal/vehicles/service"
	"taller_backend/platform/httpkit"
	"taller_backend/platform/logger"
	"taller_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the vehicles bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the vehicles module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "vehicles"
}

// Repository returns the repository for use by the opportunities module's
// identity resolver.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts vehicle routes on the provided router context.
// Creation requires the mecanico or admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/vehiculos")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", httpkit.RequireAnyRole("mecanico", "admin"), m.handler.Create)
	group.PUT("/:id", httpkit.RequireAnyRole("mecanico", "admin"), m.handler.Update)
	group.PATCH("/:id/activo", httpkit.RequireAnyRole("mecanico", "admin"), m.handler.SetActivo)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
