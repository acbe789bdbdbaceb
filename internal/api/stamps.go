package api

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/philatelist/backend/internal/auth"
	"github.com/philatelist/backend/internal/catalog"
)

// stampResponse is the API view of a stamp, carrying the derived rarity and,
// on single-stamp reads, the owning collector.
type stampResponse struct {
	ID           int    `json:"id"`
	CollectionID int    `json:"collection_id"`
	CollectorID  int    `json:"collector_id,omitempty"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Country      string `json:"country"`
	Year         int    `json:"year"`
	Circulation  int    `json:"circulation"`
	Cost         int    `json:"cost"`
	Perforation  int    `json:"perforation"`
	Topic        string `json:"topic"`
	Features     string `json:"features,omitempty"`
	PhotoURL     string `json:"photo_url"`
	Rarity       string `json:"rarity"`
}

func stampView(stamp *catalog.Stamp, collectorID int) stampResponse {
	return stampResponse{
		ID:           stamp.ID,
		CollectionID: stamp.CollectionID,
		CollectorID:  collectorID,
		Name:         stamp.Name,
		SerialNumber: stamp.SerialNumber,
		Country:      stamp.Country,
		Year:         stamp.Year,
		Circulation:  stamp.Circulation,
		Cost:         stamp.Cost,
		Perforation:  stamp.Perforation,
		Topic:        stamp.Topic,
		Features:     stamp.Features,
		PhotoURL:     stamp.PhotoURL,
		Rarity:       stamp.Rarity(),
	}
}

// handleListStamps returns every stamp with its derived rarity.
func (s *Server) handleListStamps(w http.ResponseWriter, r *http.Request) {
	stamps, err := s.stamps.List(r.Context())
	if err != nil {
		s.logger.Error("list stamps failed", "error", err)
		writeInternalError(w, "failed to list stamps")
		return
	}

	result := make([]stampResponse, 0, len(stamps))
	for i := range stamps {
		result = append(result, stampView(&stamps[i], 0))
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetStamp returns a single stamp with its owning collector.
func (s *Server) handleGetStamp(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid stamp id")
		return
	}

	stamp, err := s.stamps.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrStampNotFound) {
			writeNotFound(w, "stamp not found")
			return
		}
		s.logger.Error("get stamp failed", "stamp_id", id, "error", err)
		writeInternalError(w, "failed to get stamp")
		return
	}

	collection, err := s.collections.GetByID(r.Context(), stamp.CollectionID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectionNotFound) {
			writeNotFound(w, "collection not found")
			return
		}
		s.logger.Error("get stamp collection failed", "stamp_id", id, "error", err)
		writeInternalError(w, "failed to get stamp")
		return
	}

	writeJSON(w, http.StatusOK, stampView(stamp, collection.CollectorID))
}

// requireCollectionOwner loads a collection and verifies the caller owns it.
// A missing collection and a foreign collection both produce errors here;
// ownership failures are 403 per the original contract.
func (s *Server) requireCollectionOwner(w http.ResponseWriter, r *http.Request, collectionID int, id auth.Identity) (*catalog.Collection, bool) {
	collection, err := s.collections.GetByID(r.Context(), collectionID)
	if err != nil {
		if errors.Is(err, catalog.ErrCollectionNotFound) {
			writeForbidden(w, "collection does not exist")
			return nil, false
		}
		s.logger.Error("get collection for ownership check failed", "collection_id", collectionID, "error", err)
		writeInternalError(w, "failed to check collection access")
		return nil, false
	}

	if collection.CollectorID != id.UserID {
		writeForbidden(w, "access denied")
		return nil, false
	}

	return collection, true
}

// stampFormFields parses the multipart form fields shared by stamp create
// and update. All fields are required.
func stampFormFields(r *http.Request, stamp *catalog.Stamp) error {
	stamp.Name = r.FormValue("name")
	stamp.SerialNumber = r.FormValue("serial_number")
	stamp.Country = r.FormValue("country")
	stamp.Topic = r.FormValue("topic")
	stamp.Features = r.FormValue("features")

	if stamp.Name == "" || stamp.SerialNumber == "" || stamp.Country == "" || stamp.Topic == "" {
		return errors.New("name, serial_number, country, and topic are required")
	}

	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"year", &stamp.Year},
		{"circulation", &stamp.Circulation},
		{"cost", &stamp.Cost},
		{"perforation", &stamp.Perforation},
	} {
		v, err := strconv.Atoi(r.FormValue(field.name))
		if err != nil {
			return errors.New(field.name + " must be an integer")
		}
		*field.dst = v
	}

	return nil
}

// handleCreateStamp adds a stamp to one of the caller's collections.
func (s *Server) handleCreateStamp(w http.ResponseWriter, r *http.Request) { //nolint:gocognit // stamp creation: form parsing + ownership + uniqueness + photo store pipeline
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return
	}

	collectionID, err := strconv.Atoi(r.FormValue("collection_id"))
	if err != nil {
		writeBadRequest(w, "collection_id must be an integer")
		return
	}

	if _, ok := s.requireCollectionOwner(w, r, collectionID, id); !ok {
		return
	}

	stamp := &catalog.Stamp{CollectionID: collectionID}
	if err := stampFormFields(r, stamp); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.stamps.Create(r.Context(), stamp); err != nil {
		if errors.Is(err, catalog.ErrSerialNumberTaken) {
			writeBadRequest(w, "a stamp with this serial number already exists")
			return
		}
		s.logger.Error("create stamp failed", "error", err)
		writeInternalError(w, "failed to create stamp")
		return
	}

	photoURL, ok := s.saveUpload(w, r, "image", s.cfg.Static.StampDir, strconv.Itoa(stamp.ID), "")
	if !ok {
		return
	}
	if err := s.stamps.UpdatePhotoURL(r.Context(), stamp.ID, photoURL); err != nil {
		s.logger.Error("update stamp photo failed", "stamp_id", stamp.ID, "error", err)
		writeInternalError(w, "failed to create stamp")
		return
	}
	stamp.PhotoURL = photoURL

	s.logger.Info("stamp created", "stamp_id", stamp.ID, "collection_id", collectionID)
	s.auditLog("create", "stamp", strconv.Itoa(stamp.ID), strconv.Itoa(id.UserID), map[string]any{
		"serial_number": stamp.SerialNumber,
	})

	writeJSON(w, http.StatusCreated, stampView(stamp, id.UserID))
}

// handleUpdateStamp rewrites a stamp's fields and optionally its photo.
func (s *Server) handleUpdateStamp(w http.ResponseWriter, r *http.Request) { //nolint:gocognit,gocyclo // stamp update: ownership + field rewrite + optional photo replacement
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return
	}

	stampID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid stamp id")
		return
	}

	stamp, err := s.stamps.GetByID(r.Context(), stampID)
	if err != nil {
		if errors.Is(err, catalog.ErrStampNotFound) {
			writeNotFound(w, "stamp not found")
			return
		}
		s.logger.Error("get stamp for update failed", "stamp_id", stampID, "error", err)
		writeInternalError(w, "failed to update stamp")
		return
	}

	if _, ok := s.requireCollectionOwner(w, r, stamp.CollectionID, id); !ok {
		return
	}

	if err := stampFormFields(r, stamp); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.stamps.Update(r.Context(), stamp); err != nil {
		if errors.Is(err, catalog.ErrSerialNumberTaken) {
			writeBadRequest(w, "a stamp with this serial number already exists")
			return
		}
		s.logger.Error("update stamp failed", "stamp_id", stampID, "error", err)
		writeInternalError(w, "failed to update stamp")
		return
	}

	// Photo replacement is optional on update.
	if _, _, err := r.FormFile("image"); err == nil {
		photoURL, ok := s.saveUpload(w, r, "image", s.cfg.Static.StampDir, strconv.Itoa(stamp.ID), stamp.PhotoURL)
		if !ok {
			return
		}
		if err := s.stamps.UpdatePhotoURL(r.Context(), stamp.ID, photoURL); err != nil {
			s.logger.Error("update stamp photo failed", "stamp_id", stamp.ID, "error", err)
			writeInternalError(w, "failed to update stamp")
			return
		}
		stamp.PhotoURL = photoURL
	}

	s.auditLog("update", "stamp", strconv.Itoa(stamp.ID), strconv.Itoa(id.UserID), nil)

	writeJSON(w, http.StatusOK, stampView(stamp, id.UserID))
}

// handleDeleteStamp removes a stamp and its stored photo.
func (s *Server) handleDeleteStamp(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authorization required")
		return
	}

	stampID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid stamp id")
		return
	}

	stamp, err := s.stamps.GetByID(r.Context(), stampID)
	if err != nil {
		if errors.Is(err, catalog.ErrStampNotFound) {
			writeNotFound(w, "stamp not found")
			return
		}
		s.logger.Error("get stamp for delete failed", "stamp_id", stampID, "error", err)
		writeInternalError(w, "failed to delete stamp")
		return
	}

	if _, ok := s.requireCollectionOwner(w, r, stamp.CollectionID, id); !ok {
		return
	}

	if err := s.stamps.Delete(r.Context(), stampID); err != nil {
		s.logger.Error("delete stamp failed", "stamp_id", stampID, "error", err)
		writeInternalError(w, "failed to delete stamp")
		return
	}

	// Best-effort removal of the stored photo.
	if stamp.PhotoURL != "" && stamp.PhotoURL != s.cfg.Static.DefaultAvatar {
		photoPath := filepath.Join(s.cfg.Static.Dir, s.cfg.Static.StampDir, path.Base(stamp.PhotoURL))
		if err := os.Remove(photoPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove stamp photo failed", "path", photoPath, "error", err)
		}
	}

	s.auditLog("delete", "stamp", strconv.Itoa(stampID), strconv.Itoa(id.UserID), map[string]any{
		"serial_number": stamp.SerialNumber,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "stamp deleted"})
}
