package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/philatelist/backend/internal/auth"
)

// newAccessTokenHeader carries a renewed access token back to the caller when
// the gate performs an inline refresh. Clients replace their stored token with
// this value whenever the header is present on a response.
const newAccessTokenHeader = "New-Access-Token"

// ctxKeyIdentity is the context key for the authenticated identity.
const ctxKeyIdentity contextKey = "identity"

// withIdentity returns a copy of ctx carrying the authenticated identity.
func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// identityFromContext extracts the authenticated identity set by the auth gate.
func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(auth.Identity)
	return id, ok
}

// bearerToken extracts the access token from the request. A renewed token in
// the New-Access-Token request header takes precedence over the Authorization
// header, so clients mid-renewal are not bounced back to their stale token.
func bearerToken(r *http.Request) (string, bool) {
	if v := r.Header.Get(newAccessTokenHeader); v != "" {
		return v, true
	}

	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// authGateMiddleware enforces authentication on protected routes.
//
// Exempt routes (per the route rule table) pass straight through. Protected
// routes require a bearer access token: a valid token has its identity
// injected into the request context; an expired token triggers an inline
// renewal from the refresh cookie, with the fresh token advertised back via
// the New-Access-Token response header; anything else is rejected with 401.
// Handlers cannot tell a renewed request apart from a normally authenticated
// one.
func (s *Server) authGateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.routes.RequiresAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, "authorization required")
			return
		}

		claims, err := s.codec.Decode(token)
		switch {
		case err == nil:
			id, idErr := claims.Identity()
			if idErr != nil {
				writeUnauthorized(w, "invalid access token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))

		case errors.Is(err, auth.ErrTokenExpired):
			// Only a genuinely expired token earns a renewal attempt.
			// Malformed or tampered tokens never reach this path.
			s.renewAndServe(next, w, r)

		case errors.Is(err, auth.ErrTokenMissingExpiry):
			writeUnauthorized(w, "access token has no expiry")

		default:
			writeUnauthorized(w, "invalid access token")
		}
	})
}

// renewAndServe performs the inline refresh for an expired access token.
// On success the handler runs with the renewed identity and the response
// carries the new token in the New-Access-Token header.
func (s *Server) renewAndServe(next http.Handler, w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.RefreshCookieName)
	if err != nil {
		writeUnauthorized(w, "refresh token missing")
		return
	}

	newAccess, err := s.issuer.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			writeUnauthorized(w, "account no longer exists")
			return
		}
		writeUnauthorized(w, "invalid refresh token")
		return
	}

	claims, err := s.codec.Decode(newAccess)
	if err != nil {
		s.logger.Error("renewed access token failed decode", "error", err)
		writeInternalError(w, "token renewal failed")
		return
	}
	id, err := claims.Identity()
	if err != nil {
		s.logger.Error("renewed access token carries bad subject", "error", err)
		writeInternalError(w, "token renewal failed")
		return
	}

	// Header must be set before the handler writes the response body.
	w.Header().Set(newAccessTokenHeader, newAccess)

	s.logger.Info("access token renewed",
		"user_id", id.UserID,
		"path", r.URL.Path,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
}

// identityFromRequest resolves the caller's identity for handlers on exempt
// routes that still need to know who is calling. The gate-injected context
// identity wins; otherwise the bearer token is decoded directly. Expired
// tokens are not renewed here, the caller gets a plain 401.
func (s *Server) identityFromRequest(r *http.Request) (auth.Identity, error) {
	if id, ok := identityFromContext(r.Context()); ok {
		return id, nil
	}

	token, ok := bearerToken(r)
	if !ok {
		return auth.Identity{}, auth.ErrTokenMalformed
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		return auth.Identity{}, err
	}
	return claims.Identity()
}
