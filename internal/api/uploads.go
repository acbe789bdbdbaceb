package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// uploadDirPerm is the permission mode for created upload directories.
const uploadDirPerm = 0o755

// saveUpload stores a multipart image upload under the static directory.
//
// The file is named after baseName (an entity id) plus the upload's original
// extension, so re-uploads overwrite in place. A previous file with a
// different extension is removed, except the shared default avatar. Returns
// the public /static/... URL for the stored file. On failure the response has
// already been written and ok is false.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, field, subdir, baseName, oldURL string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeBadRequest(w, "missing file upload")
			return "", false
		}
		writeBadRequest(w, "invalid multipart form")
		return "", false
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeBadRequest(w, "invalid file type, only images are allowed")
		return "", false
	}

	dir := filepath.Join(s.cfg.Static.Dir, subdir)
	if err := os.MkdirAll(dir, uploadDirPerm); err != nil {
		s.logger.Error("create upload dir failed", "dir", dir, "error", err)
		writeInternalError(w, "failed to save file")
		return "", false
	}

	filename := baseName + filepath.Ext(header.Filename)
	dest := filepath.Join(dir, filename)

	s.removeOldUpload(subdir, oldURL, dest)

	out, err := os.Create(dest)
	if err != nil {
		s.logger.Error("create upload file failed", "path", dest, "error", err)
		writeInternalError(w, "failed to save file")
		return "", false
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		s.logger.Error("write upload file failed", "path", dest, "error", err)
		writeInternalError(w, "failed to save file")
		return "", false
	}

	return path.Join("/static", subdir, filename), true
}

// removeOldUpload deletes the previously stored file when a re-upload changes
// the extension. The shared default avatar is never removed.
func (s *Server) removeOldUpload(subdir, oldURL, newPath string) {
	if oldURL == "" || oldURL == s.cfg.Static.DefaultAvatar {
		return
	}

	oldPath := filepath.Join(s.cfg.Static.Dir, subdir, path.Base(oldURL))
	if oldPath == newPath {
		return
	}

	if err := os.Remove(oldPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove old upload failed", "path", oldPath, "error", err)
	}
}
