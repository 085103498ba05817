package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fairwaylabs/golfpro/internal/coach"
	"github.com/fairwaylabs/golfpro/internal/config"
	"github.com/fairwaylabs/golfpro/internal/httpapi"
	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/llm"
	"github.com/fairwaylabs/golfpro/internal/observability"
	"github.com/fairwaylabs/golfpro/internal/session"
	"github.com/fairwaylabs/golfpro/internal/store"
)

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = ""
)

func BuildInfo() string {
	if Commit == "" {
		return fmt.Sprintf("golfpro %s", Version)
	}
	return fmt.Sprintf("golfpro %s (%s)", Version, Commit)
}

// Runtime bundles everything a front end needs to serve coaching turns.
// Both binaries build one of these and differ only in how they drive it.
type Runtime struct {
	Config    config.Config
	Metrics   *observability.Metrics
	Store     store.Store
	Client    llm.Client
	Sessions  *session.Manager
	Knowledge *knowledge.Base
	Engine    *coach.Engine
	API       *httpapi.Server
}

// Build wires config → metrics → store → model client → sessions →
// knowledge base → engine → HTTP API.
func Build(ctx context.Context, cfg config.Config) (*Runtime, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	st, err := store.New(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("store init: %w", err)
	}
	backend := "file"
	if cfg.DatabaseURL != "" {
		backend = "postgres"
	}

	tips, err := st.LoadKnowledge(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		_ = st.Close()
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	kb := knowledge.NewBase(tips)

	client, err := llm.New(llm.Config{
		Mode:    cfg.LLMMode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("llm client init: %w", err)
	}

	limiter := llm.NewLimiter(cfg.RateInterval, cfg.RateBurst)
	sessions := session.NewManager(cfg.SessionInactivityTimeout)

	// Persist transcripts before the janitor forgets an idle session, so
	// reflection input survives restarts like every other document.
	sessions.SetExpireHook(func(s *session.Session) {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.SaveTranscript(saveCtx, s.ID, s.Turns); err != nil {
			log.Printf("session janitor: transcript save failed for %s: %v", s.ID, err)
		}
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	engine, err := coach.New(st, client, limiter, sessions, kb, metrics, coach.Settings{
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		ReflectionPeriod: cfg.ReflectionPeriod,
		InsightCap:       cfg.InsightCap,
		KnowledgeTips:    cfg.Preset == config.PresetKnowledge,
		ExtractProfiles:  true,
		DefaultPersonaID: cfg.DefaultPersona,
		StoreBackend:     backend,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("engine init: %w", err)
	}

	return &Runtime{
		Config:    cfg,
		Metrics:   metrics,
		Store:     st,
		Client:    client,
		Sessions:  sessions,
		Knowledge: kb,
		Engine:    engine,
		API:       httpapi.New(cfg, sessions, engine, metrics, BuildInfo()),
	}, nil
}

func (rt *Runtime) Close() {
	if rt == nil || rt.Store == nil {
		return
	}
	if err := rt.Store.Close(); err != nil {
		log.Printf("store close: %v", err)
	}
}
