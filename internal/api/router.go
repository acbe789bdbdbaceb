package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Authentication is enforced by the auth gate middleware using the route rule
// table, not by per-group middleware: public and protected routes are mounted
// flat and the gate decides from the request path.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.authGateMiddleware)

	// Uploaded images (avatars, collection and stamp photos)
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(s.cfg.Static.Dir))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Delete("/delete", s.handleDeleteAccount)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Route("/{user_id}", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Get("/user_settings", s.handleGetUserSettings)
				r.Patch("/user_settings", s.handleUpdateUserSettings)
				r.Get("/collector_settings", s.handleGetCollectorSettings)
				r.Patch("/collector_settings", s.handleUpdateCollectorSettings)
				r.Patch("/change_avatar", s.handleChangeAvatar)
			})
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.handleListCollections)
			r.Post("/create", s.handleCreateCollection)
			r.Get("/{id}", s.handleGetCollection)
		})

		r.Route("/stamps", func(r chi.Router) {
			r.Get("/", s.handleListStamps)
			r.Post("/create", s.handleCreateStamp)
			r.Get("/{id}", s.handleGetStamp)
			r.Patch("/update/{id}", s.handleUpdateStamp)
			r.Delete("/delete/{id}", s.handleDeleteStamp)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", s.handleAdminListUsers)
			r.Get("/collectors", s.handleAdminListCollectors)
			r.Get("/audit", s.handleAdminListAuditLogs)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
