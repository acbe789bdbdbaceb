package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/philatelist/backend/internal/catalog"
)

// profileResponse is the public view of a collector returned by
// GET /api/profiles/{user_id}.
type profileResponse struct {
	ID          int                  `json:"id"`
	Username    string               `json:"username"`
	AvatarURL   string               `json:"avatar_url"`
	Country     string               `json:"country,omitempty"`
	FirstName   string               `json:"first_name,omitempty"`
	LastName    string               `json:"last_name,omitempty"`
	MiddleName  string               `json:"middle_name,omitempty"`
	Collections []catalog.Collection `json:"collections"`
}

// userSettingsResponse is the account view behind the user_settings override.
type userSettingsResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type updateUserSettingsRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// collectorSettingsResponse mirrors the editable collector profile fields.
type collectorSettingsResponse struct {
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	MiddleName  string `json:"middle_name"`
}

type updateCollectorSettingsRequest struct {
	Country     *string `json:"country,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	MiddleName  *string `json:"middle_name,omitempty"`
}

// pathUserID parses the {user_id} URL segment.
func pathUserID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "user_id"))
}

// requireOwnUserID enforces that the path user id belongs to the caller.
// Settings routes are scoped to a numeric user id, but the id is only
// trusted when it matches the authenticated subject.
func (s *Server) requireOwnUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := pathUserID(r)
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return 0, false
	}

	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return 0, false
	}
	if id.UserID != userID {
		writeForbidden(w, "access denied")
		return 0, false
	}

	return userID, true
}

// handleGetProfile returns the public collector profile with its collections.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get profile user failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to get profile")
		return
	}

	collector, err := s.collectors.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectorNotFound) {
			writeNotFound(w, "collector not found")
			return
		}
		s.logger.Error("get profile collector failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to get profile")
		return
	}

	collections, err := s.collections.ListByCollector(r.Context(), userID)
	if err != nil {
		s.logger.Error("get profile collections failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:          user.ID,
		Username:    user.Username,
		AvatarURL:   collector.AvatarURL,
		Country:     collector.Country,
		FirstName:   collector.FirstName,
		LastName:    collector.LastName,
		MiddleName:  collector.MiddleName,
		Collections: collections,
	})
}

// handleGetUserSettings returns the caller's account settings.
func (s *Server) handleGetUserSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireOwnUserID(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get user settings failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to get settings")
		return
	}

	writeJSON(w, http.StatusOK, userSettingsResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// handleUpdateUserSettings patches the caller's username and email.
func (s *Server) handleUpdateUserSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireOwnUserID(w, r)
	if !ok {
		return
	}

	var req updateUserSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get user for settings update failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to update settings")
		return
	}

	if req.Username != nil {
		if *req.Username == "" {
			writeBadRequest(w, "username must not be empty")
			return
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if *req.Email == "" {
			writeBadRequest(w, "email must not be empty")
			return
		}
		user.Email = *req.Email
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		if errors.Is(err, catalog.ErrCredentialsTaken) {
			writeBadRequest(w, "email or username already taken")
			return
		}
		s.logger.Error("update user settings failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to update settings")
		return
	}

	s.auditLog("update", "user", strconv.Itoa(userID), strconv.Itoa(userID), nil)

	writeJSON(w, http.StatusOK, userSettingsResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// handleGetCollectorSettings returns the caller's collector profile fields.
func (s *Server) handleGetCollectorSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireOwnUserID(w, r)
	if !ok {
		return
	}

	collector, err := s.collectors.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectorNotFound) {
			writeNotFound(w, "collector not found")
			return
		}
		s.logger.Error("get collector settings failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to get settings")
		return
	}

	writeJSON(w, http.StatusOK, collectorSettingsResponse{
		Country:     collector.Country,
		PhoneNumber: collector.PhoneNumber,
		FirstName:   collector.FirstName,
		LastName:    collector.LastName,
		MiddleName:  collector.MiddleName,
	})
}

// handleUpdateCollectorSettings patches the caller's collector profile fields.
func (s *Server) handleUpdateCollectorSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireOwnUserID(w, r)
	if !ok {
		return
	}

	var req updateCollectorSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	collector, err := s.collectors.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectorNotFound) {
			writeNotFound(w, "collector not found")
			return
		}
		s.logger.Error("get collector for settings update failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to update settings")
		return
	}

	if req.Country != nil {
		collector.Country = *req.Country
	}
	if req.PhoneNumber != nil {
		collector.PhoneNumber = *req.PhoneNumber
	}
	if req.FirstName != nil {
		collector.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		collector.LastName = *req.LastName
	}
	if req.MiddleName != nil {
		collector.MiddleName = *req.MiddleName
	}

	if err := s.collectors.Update(r.Context(), collector); err != nil {
		s.logger.Error("update collector settings failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to update settings")
		return
	}

	s.auditLog("update", "collector", strconv.Itoa(userID), strconv.Itoa(userID), nil)

	writeJSON(w, http.StatusOK, collectorSettingsResponse{
		Country:     collector.Country,
		PhoneNumber: collector.PhoneNumber,
		FirstName:   collector.FirstName,
		LastName:    collector.LastName,
		MiddleName:  collector.MiddleName,
	})
}

// handleChangeAvatar replaces the caller's avatar with an uploaded image.
func (s *Server) handleChangeAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireOwnUserID(w, r)
	if !ok {
		return
	}

	collector, err := s.collectors.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectorNotFound) {
			writeNotFound(w, "collector not found")
			return
		}
		s.logger.Error("get collector for avatar change failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to change avatar")
		return
	}

	avatarURL, ok := s.saveUpload(w, r, "file", s.cfg.Static.AvatarDir, strconv.Itoa(userID), collector.AvatarURL)
	if !ok {
		return
	}

	if err := s.collectors.UpdateAvatar(r.Context(), userID, avatarURL); err != nil {
		s.logger.Error("update avatar url failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to change avatar")
		return
	}

	s.auditLog("update", "collector", strconv.Itoa(userID), strconv.Itoa(userID), map[string]any{
		"avatar_url": avatarURL,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "avatar updated",
		"avatar_url": avatarURL,
	})
}
