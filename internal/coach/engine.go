package coach

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/llm"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/observability"
	"github.com/fairwaylabs/golfpro/internal/policy"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/reliability"
	"github.com/fairwaylabs/golfpro/internal/session"
	"github.com/fairwaylabs/golfpro/internal/store"
)

var (
	ErrEmptyInput = errors.New("coach: empty input")
	ErrNoGolfer   = errors.New("coach: golfer id is required")
)

// Settings carries the tuning knobs the engine needs beyond its
// collaborators.
type Settings struct {
	Temperature      float64
	MaxTokens        int
	ReflectionPeriod int
	InsightCap       int
	KnowledgeTips    bool
	ExtractProfiles  bool
	DefaultPersonaID string
	StoreBackend     string
}

// Engine is the conversation orchestrator: it owns all per-golfer state
// transitions for a coaching turn and is the only writer to the store.
type Engine struct {
	store    store.Store
	client   llm.Client
	limiter  *llm.Limiter
	sessions *session.Manager
	kb       *knowledge.Base
	metrics  *observability.Metrics
	settings Settings

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	st store.Store,
	client llm.Client,
	limiter *llm.Limiter,
	sessions *session.Manager,
	kb *knowledge.Base,
	metrics *observability.Metrics,
	settings Settings,
) (*Engine, error) {
	if settings.ReflectionPeriod <= 0 {
		return nil, fmt.Errorf("reflection period must be positive, got %d", settings.ReflectionPeriod)
	}
	if settings.InsightCap <= 0 {
		return nil, fmt.Errorf("insight cap must be positive, got %d", settings.InsightCap)
	}
	if strings.TrimSpace(settings.DefaultPersonaID) == "" {
		settings.DefaultPersonaID = DefaultPersonaID
	}
	if _, err := ResolvePersona(settings.DefaultPersonaID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(settings.StoreBackend) == "" {
		settings.StoreBackend = "unknown"
	}
	return &Engine{
		store:    st,
		client:   client,
		limiter:  limiter,
		sessions: sessions,
		kb:       kb,
		metrics:  metrics,
		settings: settings,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// golferState is everything loaded for one turn; the engine mutates it in
// memory and persists it wholesale at the end, like the original
// load-everything/save-everything cycle.
type golferState struct {
	profile  *profile.Profile
	notes    []string
	insights []memory.Insight
}

// Coach runs one complete coaching turn and returns the model's reply.
// Chat-call failures propagate and leave the store untouched; extraction
// and reflection failures are logged and skipped.
func (e *Engine) Coach(ctx context.Context, golferID, sessionID, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(golferID) == "" {
		return "", ErrNoGolfer
	}

	// Turns for the same golfer are serialized; different golfers proceed
	// in parallel.
	lock := e.lockFor(golferID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	if err := e.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	g, err := e.loadState(ctx, golferID)
	if err != nil {
		return "", err
	}

	sess := e.sessions.Ensure(sessionID, golferID, e.settings.DefaultPersonaID)
	persona, err := ResolvePersona(sess.PersonaID)
	if err != nil {
		log.Printf("coach: %v for session %s, using %s", err, sess.ID, e.settings.DefaultPersonaID)
		persona, _ = PersonaByID(e.settings.DefaultPersonaID)
	}

	preview, _ := policy.RedactPII(input)
	log.Printf("coach: turn golfer=%s persona=%s input=%q", golferID, persona.ID, clipForLog(preview))

	// Track before assembling the prompt so the summary already reflects
	// this message, matching the original update order.
	profile.Observe(g.profile, input)
	if e.settings.ExtractProfiles {
		e.extractProfile(ctx, golferID, g, input)
	}

	turns, err := e.sessions.Turns(sess.ID)
	if err != nil {
		return "", err
	}

	temp := e.settings.Temperature
	if persona.Temperature > 0 {
		temp = persona.Temperature
	}

	chatStart := time.Now()
	resp, err := e.client.Complete(ctx, llm.Request{
		Messages:    buildMessages(persona, g.profile, g.notes, g.insights, turns, input),
		Temperature: temp,
		MaxTokens:   e.settings.MaxTokens,
	})
	e.observeLLM("chat", observability.StageLLMChat, time.Since(chatStart), err)
	if err != nil {
		return "", fmt.Errorf("coaching call: %w", err)
	}
	reply := resp.Text

	now := time.Now().UTC()
	if err := e.sessions.Append(sess.ID,
		session.Turn{Role: session.RoleUser, Text: input, At: now},
		session.Turn{Role: session.RoleCoach, Text: reply, At: now},
	); err != nil {
		return "", err
	}

	var added int
	g.notes, added = memory.Curate(g.notes, input, reply)
	if added > 0 {
		e.metrics.MemoryNotes.Add(float64(added))
	}

	if g.profile.InteractionCount%e.settings.ReflectionPeriod == 0 {
		turns, err := e.sessions.Turns(sess.ID)
		if err != nil {
			return "", err
		}
		e.reflect(ctx, golferID, g, turns)
	}

	last := store.Interaction{Timestamp: now, UserInput: input, CoachResponse: reply}
	if err := e.persist(ctx, golferID, sess.ID, g, last); err != nil {
		return "", err
	}

	e.metrics.Turns.WithLabelValues(persona.ID).Inc()
	e.metrics.ObserveTurnLatency(time.Since(started))
	return reply, nil
}

func (e *Engine) lockFor(golferID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[golferID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[golferID] = l
	}
	return l
}

// loadState pulls the golfer's documents, lazily initializing anything the
// store has never seen. Store IO errors (not misses) propagate.
func (e *Engine) loadState(ctx context.Context, golferID string) (*golferState, error) {
	g := &golferState{}

	p, err := e.store.LoadProfile(ctx, golferID)
	switch {
	case err == nil:
		g.profile = p
	case errors.Is(err, store.ErrNotFound):
		g.profile = profile.New()
	default:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	notes, err := e.store.LoadMemory(ctx, golferID)
	switch {
	case err == nil:
		g.notes = notes
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, fmt.Errorf("load memory: %w", err)
	}

	insights, err := e.store.LoadInsights(ctx, golferID)
	switch {
	case err == nil:
		g.insights = insights
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, fmt.Errorf("load insights: %w", err)
	}

	return g, nil
}

// extractProfile runs the model-assisted profile extraction; failures are
// logged with the structured extraction error and skipped.
func (e *Engine) extractProfile(ctx context.Context, golferID string, g *golferState, input string) {
	start := time.Now()
	upd, err := profile.Extract(ctx, e.client, input)
	e.observeLLM("extract", observability.StageLLMExtract, time.Since(start), err)
	if err != nil {
		e.metrics.ObserveIndicator("extraction_skipped")
		log.Printf("coach: profile extraction skipped for golfer %s: %v", golferID, err)
		return
	}
	profile.Merge(g.profile, upd)
}

// persist writes every touched document, mirroring the original
// save-everything semantics.
func (e *Engine) persist(ctx context.Context, golferID, sessionID string, g *golferState, last store.Interaction) error {
	start := time.Now()
	if err := e.store.SaveProfile(ctx, golferID, g.profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := e.store.SaveMemory(ctx, golferID, g.notes); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	if err := e.store.SaveInsights(ctx, golferID, g.insights); err != nil {
		return fmt.Errorf("save insights: %w", err)
	}
	if err := e.store.SaveLastInteraction(ctx, golferID, last); err != nil {
		return fmt.Errorf("save last interaction: %w", err)
	}
	if err := e.store.SaveKnowledge(ctx, e.kb.Tips()); err != nil {
		return fmt.Errorf("save knowledge: %w", err)
	}
	turns, err := e.sessions.Turns(sessionID)
	if err != nil {
		return err
	}
	if err := e.store.SaveTranscript(ctx, sessionID, turns); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	e.metrics.StoreSaves.WithLabelValues(e.settings.StoreBackend).Add(6)
	e.metrics.ObserveStage(observability.StageStoreSave, time.Since(start))
	return nil
}

func (e *Engine) observeLLM(kind, stage string, d time.Duration, err error) {
	e.metrics.ObserveLLMLatency(d)
	e.metrics.ObserveStage(stage, d)
	e.metrics.LLMCalls.WithLabelValues(kind, reliability.Outcome(err)).Inc()
}

// clipForLog keeps logged input previews short.
func clipForLog(s string) string {
	const max = 80
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
