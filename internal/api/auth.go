package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/philatelist/backend/internal/catalog"
)

// minPasswordLength is the minimum accepted password length at registration.
const minPasswordLength = 8

// registerRequest is the request body for POST /api/auth/register.
type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	RePassword string `json:"re_password"`
}

// loginRequest is the request body for POST /api/auth/login.
// Username matches either the account's email or its username.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is the response body for register and login.
// The refresh token travels only in the HttpOnly cookie, never in the body.
type sessionResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}

// handleRegister creates a new user account with its collector profile and
// signs the caller in immediately.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) { //nolint:gocognit // registration: validation + uniqueness + hashing + session issue pipeline
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeBadRequest(w, "email, username, and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeBadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}
	if req.Password != req.RePassword {
		writeBadRequest(w, "passwords do not match")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	user := &catalog.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, catalog.ErrCredentialsTaken) {
			writeBadRequest(w, "email or username already taken")
			return
		}
		s.logger.Error("create user failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	collector := &catalog.Collector{UserID: user.ID}
	if err := s.collectors.Create(r.Context(), collector); err != nil {
		s.logger.Error("create collector profile failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	session, err := s.issuer.Issue(user.Identity())
	if err != nil {
		s.logger.Error("issue session failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to register")
		return
	}
	s.issuer.SetRefreshCookie(w, session.RefreshToken)

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	s.auditLog("register", "user", strconv.Itoa(user.ID), strconv.Itoa(user.ID), map[string]any{
		"username": user.Username,
	})

	writeJSON(w, http.StatusCreated, sessionResponse{
		Message:     "registered and signed in",
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		Username:    user.Username,
		Email:       user.Email,
	})
}

// handleLogin verifies credentials and issues a fresh session.
// Failed lookups and bad passwords both return 400 with distinct messages.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.users.GetByLogin(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			writeBadRequest(w, "user not found")
			return
		}
		s.logger.Error("login lookup failed", "error", err)
		writeInternalError(w, "failed to log in")
		return
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeBadRequest(w, "incorrect password")
		return
	}

	session, err := s.issuer.Issue(user.Identity())
	if err != nil {
		s.logger.Error("issue session failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to log in")
		return
	}
	s.issuer.SetRefreshCookie(w, session.RefreshToken)

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	s.auditLog("login", "user", strconv.Itoa(user.ID), strconv.Itoa(user.ID), nil)

	writeJSON(w, http.StatusOK, sessionResponse{
		Message:     "signed in",
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		Username:    user.Username,
		Email:       user.Email,
	})
}

// handleLogout clears the refresh cookie. There is no server-side session
// state to revoke, so repeated logouts are harmless.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return
	}

	s.issuer.ClearRefreshCookie(w)

	s.logger.Info("user logged out", "user_id", id.UserID)
	s.auditLog("logout", "user", strconv.Itoa(id.UserID), strconv.Itoa(id.UserID), nil)

	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// handleDeleteAccount removes the caller's account. The collector profile,
// collections, and stamps cascade away with it.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return
	}

	if err := s.users.Delete(r.Context(), id.UserID); err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			writeUnauthorized(w, "account no longer exists")
			return
		}
		s.logger.Error("delete account failed", "user_id", id.UserID, "error", err)
		writeInternalError(w, "failed to delete account")
		return
	}

	s.issuer.ClearRefreshCookie(w)

	s.logger.Info("account deleted", "user_id", id.UserID)
	s.auditLog("delete", "user", strconv.Itoa(id.UserID), strconv.Itoa(id.UserID), nil)

	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
