// Package services provides the billable-service bounded context module.
package services

import (
	apphttp "taller_backend/internal/http"
	"taller_backend/internal/services/handler"
	"taller_backend/internal/services/repository"
	"taller_backend/internal/services/service"
	"taller_backend/platform/httpkit"
	"taller_backend/platform/logger"
	"taller_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the services bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the services module with all its dependencies.
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
	return "services"
}

// Repository returns the repository for use by the opportunities module's
// conversion engine and walk-in intake.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts service routes on the provided router context.
// There is no create route: service rows come only from conversion or walk-in.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/servicios")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.PATCH("/:id/estado", httpkit.RequireAnyRole("mecanico", "admin"), m.handler.UpdateEstado)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
