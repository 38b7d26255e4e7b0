// Package httpapi exposes the generation proxy and the project/key CRUD
// surface over JSON HTTP. Identity is platform-injected: the edge in front of
// this service authenticates the caller and forwards X-User-Id / X-User-Role.
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"codeforge/internal/crypto"
	"codeforge/internal/generate"
	"codeforge/internal/ratelimit"
	"codeforge/internal/storage"
)

type Config struct {
	Generate *generate.Service
	Store    *storage.Store
	Crypto   *crypto.Manager
	Limiter  *ratelimit.Limiter
	Logger   zerolog.Logger
}

type Server struct {
	generate *generate.Service
	store    *storage.Store
	crypto   *crypto.Manager
	limiter  *ratelimit.Limiter
	logger   zerolog.Logger
}

func New(cfg Config) *Server {
	return &Server{
		generate: cfg.Generate,
		store:    cfg.Store,
		crypto:   cfg.Crypto,
		limiter:  cfg.Limiter,
		logger:   cfg.Logger,
	}
}

// Register mounts the API under /v1 on mux. Health and metrics endpoints are
// the caller's business.
func (s *Server) Register(mux *http.ServeMux) {
	api := http.NewServeMux()

	api.Handle("POST /v1/generate", s.requireUser(http.HandlerFunc(s.handleGenerate)))

	api.Handle("GET /v1/projects", s.requireUser(http.HandlerFunc(s.handleListProjects)))
	api.Handle("POST /v1/projects", s.requireUser(http.HandlerFunc(s.handleCreateProject)))
	api.Handle("GET /v1/projects/{id}", s.requireUser(http.HandlerFunc(s.handleGetProject)))
	api.Handle("PUT /v1/projects/{id}", s.requireUser(http.HandlerFunc(s.handleUpdateProject)))
	api.Handle("DELETE /v1/projects/{id}", s.requireUser(http.HandlerFunc(s.handleDeleteProject)))
	api.Handle("GET /v1/projects/{id}/archive", s.requireUser(http.HandlerFunc(s.handleProjectArchive)))

	api.Handle("GET /v1/keys", s.requireAdmin(http.HandlerFunc(s.handleListKeys)))
	api.Handle("POST /v1/keys", s.requireAdmin(http.HandlerFunc(s.handleCreateKey)))
	api.Handle("PUT /v1/keys/{id}", s.requireAdmin(http.HandlerFunc(s.handleUpdateKey)))
	api.Handle("DELETE /v1/keys/{id}", s.requireAdmin(http.HandlerFunc(s.handleDeleteKey)))

	mux.Handle("/v1/", s.withCORS(s.withRequestLog(api)))
}
