package api

import (
	"net/http"

	"github.com/philatelist/backend/internal/auth"
)

// adminUserView is the admin listing row for a user account.
type adminUserView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// adminCollectorView joins collector profile fields with the owning account.
type adminCollectorView struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	Country     string `json:"country,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	MiddleName  string `json:"middle_name,omitempty"`
}

// requireAdmin rejects non-admin callers with 403.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return auth.Identity{}, false
	}
	if !id.IsAdmin() {
		writeForbidden(w, "access forbidden: admins only")
		return auth.Identity{}, false
	}
	return id, true
}

// handleAdminListUsers returns all user accounts.
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("admin list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	result := make([]adminUserView, 0, len(users))
	for _, u := range users {
		result = append(result, adminUserView{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role.String(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdminListCollectors returns all collector profiles joined with
// their accounts.
func (s *Server) handleAdminListCollectors(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	collectors, err := s.collectors.List(r.Context())
	if err != nil {
		s.logger.Error("admin list collectors failed", "error", err)
		writeInternalError(w, "failed to list collectors")
		return
	}

	result := make([]adminCollectorView, 0, len(collectors))
	for _, c := range collectors {
		view := adminCollectorView{
			ID:          c.UserID,
			AvatarURL:   c.AvatarURL,
			Country:     c.Country,
			PhoneNumber: c.PhoneNumber,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			MiddleName:  c.MiddleName,
		}
		if user, err := s.users.GetByID(r.Context(), c.UserID); err == nil {
			view.Username = user.Username
			view.Email = user.Email
		}
		result = append(result, view)
	}
	writeJSON(w, http.StatusOK, result)
}
