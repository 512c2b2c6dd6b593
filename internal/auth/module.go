// Package auth provides the authentication bounded context module.
package auth

import (
	"taller_backend/internal/auth/handler"
	"taller_backend/internal/auth/repository"
	"taller_backend/internal/auth/service"
	apphttp "taller_backend/internal/http"
	"taller_backend/platform/config"
	"taller_backend/platform/logger"
	"taller_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes. Login is public but rate limited more
// aggressively than the rest of the API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.Login)

	protected := ctx.Protected.Group("/auth")
	protected.GET("/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
