package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"codeforge/internal/generate"
	"codeforge/internal/storage"
)

type projectResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Files       []generate.File `json:"files"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toProjectResponse(p storage.Project) projectResponse {
	files := make([]generate.File, 0)
	// rows written before the files column was populated hold "[]" already;
	// anything unreadable is shown as an empty file set rather than a 500
	_ = json.Unmarshal([]byte(p.FilesJSON), &files)
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Files:       files,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.logger.Error().Err(err).Msg("list projects failed")
		writeError(w, http.StatusInternalServerError, "failed to load projects")
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "project name required")
		return
	}

	p := storage.Project{
		ID:          uuid.NewString(),
		UserID:      userIDFrom(r.Context()),
		Name:        strings.TrimSpace(body.Name),
		Description: strings.TrimSpace(body.Description),
	}
	if err := s.store.CreateProject(r.Context(), p); err != nil {
		s.logger.Error().Err(err).Msg("create project failed")
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	created, err := s.store.GetProject(r.Context(), p.UserID, p.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("read back created project failed")
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, toProjectResponse(created))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error().Err(err).Msg("get project failed")
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Files       *[]generate.File `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.Name == nil && body.Description == nil && body.Files == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		writeError(w, http.StatusBadRequest, "project name required")
		return
	}

	var filesJSON *string
	if body.Files != nil {
		b, err := json.Marshal(body.Files)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid files payload")
			return
		}
		fj := string(b)
		filesJSON = &fj
	}

	userID := userIDFrom(r.Context())
	id := r.PathValue("id")
	if err := s.store.UpdateProject(r.Context(), userID, id, body.Name, body.Description, filesJSON); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error().Err(err).Msg("update project failed")
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	p, err := s.store.GetProject(r.Context(), userID, id)
	if err != nil {
		s.logger.Error().Err(err).Msg("read back updated project failed")
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteProject(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error().Err(err).Msg("delete project failed")
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
