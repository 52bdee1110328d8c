package service

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService fronts the identity provider: Google sign-in, session
// refresh and bearer verification. Credential material is never logged.
type AuthService struct {
	provider port.AuthProvider
	logger   *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(provider port.AuthProvider, logger *zap.Logger) *AuthService {
	return &AuthService{provider: provider, logger: logger}
}

// SignInWithGoogle exchanges a Google ID token for a session.
func (s *AuthService) SignInWithGoogle(ctx context.Context, googleIDToken string) (*domain.AuthSession, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SignInWithGoogle")
	defer span.End()

	if googleIDToken == "" {
		return nil, &domain.ErrValidation{Field: "id_token", Message: "id_token is required"}
	}

	session, err := s.provider.SignInWithGoogle(ctx, googleIDToken)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", zap.String("user_id", session.UserID))
	return session, nil
}

// Refresh trades a refresh token for a fresh session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	if refreshToken == "" {
		return nil, &domain.ErrValidation{Field: "refresh_token", Message: "refresh_token is required"}
	}
	return s.provider.Refresh(ctx, refreshToken)
}

// VerifyToken validates a bearer token and returns its user ID.
func (s *AuthService) VerifyToken(ctx context.Context, idToken string) (string, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.VerifyToken")
	defer span.End()

	return s.provider.VerifyToken(ctx, idToken)
}
