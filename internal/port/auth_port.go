package port

import (
	"context"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// AuthProvider exchanges and verifies identity tokens.
type AuthProvider interface {
	// SignInWithGoogle exchanges a Google OAuth ID token for a session.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*domain.AuthSession, error)
	// Refresh trades a refresh token for a fresh session.
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error)
	// VerifyToken validates a bearer token and returns the user ID it
	// belongs to.
	VerifyToken(ctx context.Context, idToken string) (string, error)
}
