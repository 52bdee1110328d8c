package domain

// AuthSession is the result of a Google sign-in exchange or a refresh.
// The ID token is an opaque bearer string as far as the rest of the
// API is concerned; only the auth provider inspects it.
type AuthSession struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email,omitempty"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}
