package auth

import (
	"context"
	"fmt"
	"time"

	pkgauth "github.com/detoxsabeho/orders-backend/pkg/auth"
	"github.com/detoxsabeho/orders-backend/pkg/auth/session"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
	"github.com/detoxsabeho/orders-backend/pkg/security"
)

// sessions is the slice of the session manager the service needs.
type sessions interface {
	Start(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates the single dashboard operator.
type Service interface {
	Login(ctx context.Context, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

// LoginResult carries the bearer token handed to the dashboard.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type service struct {
	jwtCfg   config.JWTConfig
	adminCfg config.AdminConfig
	sessions sessions
	logg     *logger.Logger
	now      func() time.Time
}

// NewService validates dependencies and builds the auth service.
func NewService(jwtCfg config.JWTConfig, adminCfg config.AdminConfig, sess sessions, logg *logger.Logger) (Service, error) {
	if adminCfg.PasswordHash == "" {
		return nil, fmt.Errorf("admin password hash is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		jwtCfg:   jwtCfg,
		adminCfg: adminCfg,
		sessions: sess,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login checks the password against the stored Argon2id hash and, on a match,
// mints a JWT whose jti is registered as the active session.
func (s *service) Login(ctx context.Context, password string) (*LoginResult, error) {
	if password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	match, err := security.VerifyPassword(password, s.adminCfg.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !match {
		s.logg.Warn(ctx, "admin login rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	accessID := session.NewAccessID()
	now := s.now()
	token, err := pkgauth.MintAdminToken(s.jwtCfg, now, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}
	if err := s.sessions.Start(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start admin session")
	}

	s.logg.Info(ctx, "admin login accepted")
	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.jwtCfg.SessionTTL()),
	}, nil
}

// Logout revokes the session behind the token's jti. Revoking an already
// revoked session is a no-op success.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke admin session")
	}
	s.logg.Info(ctx, "admin logout")
	return nil
}
