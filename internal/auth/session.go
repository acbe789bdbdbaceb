package auth

import (
	"context"
	"fmt"
	"net/http"
)

// RefreshCookieName is the HttpOnly cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// Session is an issued access/refresh token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	TokenType    string `json:"token_type"`
}

// IdentityResolver confirms a user still exists when renewing a session.
// Implementations return ErrIdentityNotFound for deleted accounts.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int) (Identity, error)
}

// SessionIssuer mints token pairs at login and renews access tokens
// from refresh tokens.
type SessionIssuer struct {
	codec    *TokenCodec
	resolver IdentityResolver
}

// NewSessionIssuer creates a SessionIssuer.
func NewSessionIssuer(codec *TokenCodec, resolver IdentityResolver) *SessionIssuer {
	return &SessionIssuer{codec: codec, resolver: resolver}
}

// Issue creates a fresh access/refresh pair for an authenticated identity.
func (s *SessionIssuer) Issue(id Identity) (*Session, error) {
	access, err := s.codec.EncodeAccess(id)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refresh, err := s.codec.EncodeRefresh(id)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Refresh validates a refresh token and mints a replacement access token.
//
// The token must decode cleanly (an expired or malformed refresh token
// returns ErrInvalidRefresh) and the account must still exist
// (ErrIdentityNotFound otherwise). The new token carries the account's
// current role, not the role frozen into the refresh token.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	id, err := claims.Identity()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	current, err := s.resolver.ResolveIdentity(ctx, id.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.codec.EncodeAccess(current)
	if err != nil {
		return "", fmt.Errorf("issuing access token: %w", err)
	}
	return access, nil
}

// SetRefreshCookie attaches the refresh token to the response as an
// HttpOnly cookie scoped to the whole site.
func (s *SessionIssuer) SetRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.codec.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie expires the refresh cookie, ending the session.
func (s *SessionIssuer) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
