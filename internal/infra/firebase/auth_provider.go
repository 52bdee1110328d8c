package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	defaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenURL    = "https://securetoken.googleapis.com/v1"
)

// AuthProvider talks to the Firebase Auth REST API: Google sign-in via
// the identity toolkit, session refresh via the secure token endpoint,
// and bearer verification via accounts:lookup. Verified tokens are
// cached so the hot path does not hit the network per request.
type AuthProvider struct {
	httpClient  *http.Client
	apiKey      string
	identityURL string
	tokenURL    string
	verified    port.Cache[string]
	logger      *zap.Logger
}

// NewAuthProvider creates a Firebase Auth adapter. identityURL and
// tokenURL override the Google endpoints; pass "" for the defaults.
func NewAuthProvider(httpClient *http.Client, apiKey, identityURL, tokenURL string, verified port.Cache[string], logger *zap.Logger) *AuthProvider {
	if identityURL == "" {
		identityURL = defaultIdentityURL
	}
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &AuthProvider{
		httpClient:  httpClient,
		apiKey:      apiKey,
		identityURL: identityURL,
		tokenURL:    tokenURL,
		verified:    verified,
		logger:      logger,
	}
}

func (p *AuthProvider) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.send(req, out)
}

func (p *AuthProvider) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return p.send(req, out)
}

func (p *AuthProvider) send(req *http.Request, out any) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("firebase auth: request failed", zap.Error(err))
		return &domain.ErrExternalService{Service: "firebase/auth", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ErrExternalService{Service: "firebase/auth", Err: err}
	}

	// the auth API reports bad credentials as 400 with an error payload
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		p.logger.Warn("firebase auth: rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ErrExternalService{
			Service: "firebase/auth",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return json.Unmarshal(body, out)
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignInWithGoogle exchanges a Google OAuth ID token for a Firebase
// session.
func (p *AuthProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*domain.AuthSession, error) {
	ctx, span := tracer.Start(ctx, "FirebaseAuth.SignInWithGoogle")
	defer span.End()

	endpoint := fmt.Sprintf("%s/accounts:signInWithIdp?key=%s", p.identityURL, p.apiKey)
	payload := map[string]any{
		"postBody":            fmt.Sprintf("id_token=%s&providerId=google.com", googleIDToken),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}

	var resp signInResponse
	if err := p.postJSON(ctx, endpoint, payload, &resp); err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(resp.ExpiresIn)
	p.logger.Info("google sign-in", zap.String("user_id", resp.LocalID))
	return &domain.AuthSession{
		UserID:       resp.LocalID,
		Email:        resp.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh trades a refresh token for a fresh session.
func (p *AuthProvider) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	ctx, span := tracer.Start(ctx, "FirebaseAuth.Refresh")
	defer span.End()

	endpoint := fmt.Sprintf("%s/token?key=%s", p.tokenURL, p.apiKey)
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var resp refreshResponse
	if err := p.postForm(ctx, endpoint, form, &resp); err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(resp.ExpiresIn)
	return &domain.AuthSession{
		UserID:       resp.UserID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
	} `json:"users"`
}

// VerifyToken validates a bearer ID token and returns the user ID.
// An expired token is rejected locally without a network round trip;
// tokens that pass remote verification are cached for their remaining
// lifetime scope.
func (p *AuthProvider) VerifyToken(ctx context.Context, idToken string) (string, error) {
	ctx, span := tracer.Start(ctx, "FirebaseAuth.VerifyToken")
	defer span.End()

	if idToken == "" {
		return "", &domain.ErrUnauthorized{Message: "missing token"}
	}

	if userID, ok := p.verified.Get(idToken); ok {
		return userID, nil
	}

	// local expiry check; the signature itself is verified remotely
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", &domain.ErrUnauthorized{Message: "malformed token"}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return "", &domain.ErrUnauthorized{Message: "token expired"}
	}

	endpoint := fmt.Sprintf("%s/accounts:lookup?key=%s", p.identityURL, p.apiKey)
	var resp lookupResponse
	if err := p.postJSON(ctx, endpoint, map[string]any{"idToken": idToken}, &resp); err != nil {
		return "", err
	}
	if len(resp.Users) == 0 {
		return "", &domain.ErrUnauthorized{Message: "unknown token"}
	}

	userID := resp.Users[0].LocalID
	p.verified.Set(idToken, userID)
	return userID, nil
}
