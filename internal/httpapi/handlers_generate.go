package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"codeforge/internal/generate"
	"codeforge/internal/providers"
)

type generateRequest struct {
	Prompt   string `json:"prompt"`
	APIKeyID string `json:"apiKeyId"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if s.limiter != nil {
		allowed, _, resetAt, err := s.limiter.Allow(r.Context(), userID, time.Now())
		if err != nil {
			// fail open: a redis outage must not take generation down
			s.logger.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":   "Rate limit exceeded",
				"resetAt": resetAt.UTC().Format(time.RFC3339),
			})
			return
		}
	}

	res, err := s.generate.Generate(r.Context(), generate.Request{
		UserID:       userID,
		Prompt:       body.Prompt,
		CredentialID: body.APIKeyID,
	})
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}

	if res.Degraded() {
		writeJSON(w, http.StatusOK, map[string]string{
			"rawResponse": res.RawResponse,
			"error":       res.ParseErr,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": res.Files})
}

func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	var ve *generate.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if errors.Is(err, generate.ErrInvalidCredential) {
		writeError(w, http.StatusBadRequest, generate.ErrInvalidCredential.Error())
		return
	}
	var ue *providers.UpstreamError
	if errors.As(err, &ue) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Error from generation provider",
			"status":  ue.Status,
			"details": ue.Body,
		})
		return
	}
	s.logger.Error().Err(err).Msg("generation failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
