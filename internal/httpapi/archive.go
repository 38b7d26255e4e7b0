package httpapi

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"codeforge/internal/generate"
	"codeforge/internal/storage"
)

func (s *Server) handleProjectArchive(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error().Err(err).Msg("get project for archive failed")
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	var files []generate.File
	if err := json.Unmarshal([]byte(p.FilesJSON), &files); err != nil || len(files) == 0 {
		writeError(w, http.StatusConflict, "project has no files")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName(p.Name)))

	zw := zip.NewWriter(w)
	for _, f := range files {
		name, ok := safeArchivePath(f.Path)
		if !ok {
			continue
		}
		entry, err := zw.Create(name)
		if err != nil {
			s.logger.Error().Err(err).Str("path", name).Msg("create archive entry failed")
			return
		}
		if _, err := entry.Write([]byte(f.Content)); err != nil {
			s.logger.Error().Err(err).Str("path", name).Msg("write archive entry failed")
			return
		}
	}
	if err := zw.Close(); err != nil {
		s.logger.Error().Err(err).Msg("close archive failed")
	}
}

// safeArchivePath rejects anything that could escape the extraction root:
// absolute paths, drive-relative backslash paths, and dot-dot traversal.
func safeArchivePath(p string) (string, bool) {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", false
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

func archiveName(project string) string {
	name := strings.TrimSpace(project)
	if name == "" {
		name = "project"
	}
	return name + ".zip"
}
