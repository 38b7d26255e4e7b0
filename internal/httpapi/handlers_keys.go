package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"codeforge/internal/storage"
)

// keyResponse never carries the secret, sealed or otherwise.
type keyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	IsActive  bool      `json:"isActive"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toKeyResponse(k storage.APIKey) keyResponse {
	return keyResponse{
		ID:        k.ID,
		Name:      k.Name,
		Provider:  k.Provider,
		IsActive:  k.IsActive,
		CreatedBy: k.CreatedBy,
		CreatedAt: k.CreatedAt,
	}
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.ListAPIKeys(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list api keys failed")
		writeError(w, http.StatusInternalServerError, "failed to load api keys")
		return
	}
	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": out})
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Provider string `json:"provider"`
		Secret   string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "key name required")
		return
	}
	if strings.TrimSpace(body.Secret) == "" {
		writeError(w, http.StatusBadRequest, "secret required")
		return
	}
	provider := strings.TrimSpace(strings.ToLower(body.Provider))
	if provider == "" {
		provider = "gemini"
	}

	encSecret, err := s.crypto.SealString(body.Secret)
	if err != nil {
		s.logger.Error().Err(err).Msg("seal api key secret failed")
		writeError(w, http.StatusInternalServerError, "failed to store api key")
		return
	}

	k := storage.APIKey{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(body.Name),
		Provider:  provider,
		EncSecret: encSecret,
		IsActive:  true,
		CreatedBy: userIDFrom(r.Context()),
	}
	if err := s.store.CreateAPIKey(r.Context(), k); err != nil {
		s.logger.Error().Err(err).Msg("create api key failed")
		writeError(w, http.StatusInternalServerError, "failed to store api key")
		return
	}

	created, err := s.store.GetActiveAPIKey(r.Context(), k.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("read back created api key failed")
		writeError(w, http.StatusInternalServerError, "failed to store api key")
		return
	}
	writeJSON(w, http.StatusCreated, toKeyResponse(created))
}

func (s *Server) handleUpdateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive required")
		return
	}

	if err := s.store.SetAPIKeyActive(r.Context(), r.PathValue("id"), *body.IsActive); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "api key not found")
			return
		}
		s.logger.Error().Err(err).Msg("update api key failed")
		writeError(w, http.StatusInternalServerError, "failed to update api key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "isActive": *body.IsActive})
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAPIKey(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "api key not found")
			return
		}
		s.logger.Error().Err(err).Msg("delete api key failed")
		writeError(w, http.StatusInternalServerError, "failed to delete api key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
