package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/philatelist/backend/internal/catalog"
)

// handleListCollections returns every collection. Public.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.collections.List(r.Context())
	if err != nil {
		s.logger.Error("list collections failed", "error", err)
		writeInternalError(w, "failed to list collections")
		return
	}

	writeJSON(w, http.StatusOK, collections)
}

// handleGetCollection returns a single collection by ID. Public.
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid collection id")
		return
	}

	collection, err := s.collections.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectionNotFound) {
			writeNotFound(w, "collection not found")
			return
		}
		s.logger.Error("get collection failed", "collection_id", id, "error", err)
		writeInternalError(w, "failed to get collection")
		return
	}

	writeJSON(w, http.StatusOK, collection)
}

// handleCreateCollection creates a collection from a multipart form
// (name, description, image).
//
// The route sits under an exempt prefix so the gate does not run here;
// the bearer token is checked in-handler instead.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	id, err := s.identityFromRequest(r)
	if err != nil {
		writeUnauthorized(w, "authorization required")
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	if name == "" || description == "" {
		writeBadRequest(w, "name and description are required")
		return
	}

	collector, err := s.collectors.GetByUserID(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectorNotFound) {
			writeUnauthorized(w, "collector not found")
			return
		}
		s.logger.Error("get collector for collection create failed", "user_id", id.UserID, "error", err)
		writeInternalError(w, "failed to create collection")
		return
	}

	collection := &catalog.Collection{
		CollectorID: collector.UserID,
		Name:        name,
		Description: description,
	}
	if err := s.collections.Create(r.Context(), collection); err != nil {
		s.logger.Error("create collection failed", "user_id", id.UserID, "error", err)
		writeInternalError(w, "failed to create collection")
		return
	}

	photoURL, ok := s.saveUpload(w, r, "image", s.cfg.Static.CollectionDir, strconv.Itoa(collection.ID), "")
	if !ok {
		return
	}
	if err := s.collections.UpdatePhotoURL(r.Context(), collection.ID, photoURL); err != nil {
		s.logger.Error("update collection photo failed", "collection_id", collection.ID, "error", err)
		writeInternalError(w, "failed to create collection")
		return
	}
	collection.PhotoURL = photoURL

	s.logger.Info("collection created", "collection_id", collection.ID, "collector_id", collector.UserID)
	s.auditLog("create", "collection", strconv.Itoa(collection.ID), strconv.Itoa(id.UserID), map[string]any{
		"name": collection.Name,
	})

	writeJSON(w, http.StatusCreated, collection)
}
