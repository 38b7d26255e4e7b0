package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"codeforge/internal/crypto"
	"codeforge/internal/keycache"
	"codeforge/internal/metrics"
	"codeforge/internal/providers"
	"codeforge/internal/storage"
)

const (
	defaultTimeout  = 30 * time.Second
	temperature     = 0.2
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 8192
)

type KeyStore interface {
	GetActiveAPIKey(ctx context.Context, id string) (storage.APIKey, error)
}

type AuditLog interface {
	LogGeneration(ctx context.Context, e storage.GenerationEntry) error
}

type Request struct {
	UserID       string
	Prompt       string
	CredentialID string
}

// Result is either Files, or on parse degradation RawResponse plus ParseErr.
// Degradation is not an error: the caller still gets the provider text.
type Result struct {
	Files       []File
	RawResponse string
	ParseErr    string
}

func (r Result) Degraded() bool {
	return r.RawResponse != ""
}

type Config struct {
	Keys       KeyStore
	Audit      AuditLog
	Cache      *keycache.Cache
	Crypto     *crypto.Manager
	Generators map[string]providers.Generator
	Timeout    time.Duration
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

type Service struct {
	keys       KeyStore
	audit      AuditLog
	cache      *keycache.Cache
	crypto     *crypto.Manager
	generators map[string]providers.Generator
	timeout    time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func New(cfg Config) *Service {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Global()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		keys:       cfg.Keys,
		audit:      cfg.Audit,
		cache:      cfg.Cache,
		crypto:     cfg.Crypto,
		generators: cfg.Generators,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
		metrics:    m,
		now:        cfg.Now,
	}
}

func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, &ValidationError{msg: "prompt required"}
	}
	if strings.TrimSpace(req.CredentialID) == "" {
		return Result{}, &ValidationError{msg: "credential id required"}
	}

	entry, err := s.resolveCredential(ctx, req.CredentialID)
	if err != nil {
		return Result{}, err
	}

	gen, ok := s.generators[entry.Provider]
	if !ok {
		return Result{}, fmt.Errorf("no generator configured for provider %q", entry.Provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.metrics.Generations.Inc()
	resp, err := gen.Generate(callCtx, providers.Request{
		Secret:          entry.Secret,
		Instruction:     buildInstruction(req.Prompt),
		Temperature:     temperature,
		TopK:            topK,
		TopP:            topP,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		s.metrics.GenerationFailures.Inc()
		s.logAudit(ctx, req, "upstream_error")
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return Result{}, &providers.UpstreamError{Body: "provider timeout"}
		}
		return Result{}, err
	}

	files, perr := extractFiles(resp.Text)
	if perr != nil {
		s.metrics.Degradations.Inc()
		s.logAudit(ctx, req, "degraded")
		return Result{
			RawResponse: resp.Text,
			ParseErr:    "failed to parse generated code as JSON: " + perr.Error(),
		}, nil
	}

	s.logAudit(ctx, req, "ok")
	return Result{Files: files}, nil
}

// resolveCredential consults the TTL cache first and falls back to the
// store. Any store or decrypt failure collapses into ErrInvalidCredential;
// the caller never learns which step failed.
func (s *Service) resolveCredential(ctx context.Context, id string) (keycache.Entry, error) {
	now := s.now()
	if entry, ok := s.cache.Get(id, now); ok {
		s.metrics.KeyCacheHits.Inc()
		return entry, nil
	}
	s.metrics.KeyCacheMisses.Inc()

	rec, err := s.keys.GetActiveAPIKey(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("api key lookup failed")
		}
		return keycache.Entry{}, ErrInvalidCredential
	}

	secret, err := s.crypto.OpenString(rec.EncSecret)
	if err != nil {
		s.logger.Warn().Err(err).Str("api_key_id", id).Msg("failed to decrypt api key secret")
		return keycache.Entry{}, ErrInvalidCredential
	}

	entry := keycache.Entry{Secret: secret, Provider: rec.Provider, FetchedAt: now}
	s.cache.Put(id, entry)
	return entry, nil
}

func (s *Service) logAudit(ctx context.Context, req Request, status string) {
	if s.audit == nil {
		return
	}
	err := s.audit.LogGeneration(ctx, storage.GenerationEntry{
		UserID:      req.UserID,
		APIKeyID:    req.CredentialID,
		Status:      status,
		PromptChars: len(req.Prompt),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to write generation log entry")
	}
}
