package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taller_backend/internal/auth/repository"
	"taller_backend/internal/auth/token"
	"taller_backend/internal/auth/transport"
	"taller_backend/platform/apperr"
	"taller_backend/platform/config"
	"taller_backend/platform/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service authenticates staff and issues access tokens.
type Service struct {
	repo repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// New creates a new auth service.
func New(repo repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Login verifies credentials and returns a signed access token. Lookup and
// comparison failures collapse into the same error so the response never
// reveals whether the email exists.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.LoginResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.LoginResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	ttl := s.cfg.GetAccessTokenTTL()
	accessToken, err := token.SignAccess(user.ID, user.Roles, ttl, s.cfg.GetJWTAccessSecret())
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "could not issue access token", err)
	}

	s.log.AuthEvent("login", req.Email, true, "")
	return transport.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(u repository.User) transport.UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return transport.UserResponse{
		ID:     u.ID,
		Nombre: u.Nombre,
		Email:  u.Email,
		Roles:  roles,
	}
}
