package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/store"
)

// MemoryView is what the Memory tab renders: long-term notes, reflection
// insights, and the last interaction.
type MemoryView struct {
	Notes           []string           `json:"notes"`
	Insights        []memory.Insight   `json:"insights"`
	LastInteraction *store.Interaction `json:"last_interaction,omitempty"`
}

// Profile returns the golfer's profile, or store.ErrNotFound when no
// profile has been built yet.
func (e *Engine) Profile(ctx context.Context, golferID string) (*profile.Profile, error) {
	return e.store.LoadProfile(ctx, golferID)
}

// SetSkill records a self-declared skill level, creating the profile when
// the golfer is new. This backs the skill picker shown to first-time users.
func (e *Engine) SetSkill(ctx context.Context, golferID, level string) (*profile.Profile, error) {
	switch level {
	case profile.SkillBeginner, profile.SkillIntermediate, profile.SkillAdvanced:
	default:
		return nil, fmt.Errorf("unknown skill level %q", level)
	}

	lock := e.lockFor(golferID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.store.LoadProfile(ctx, golferID)
	if errors.Is(err, store.ErrNotFound) {
		p = profile.New()
	} else if err != nil {
		return nil, err
	}
	p.SkillLevel = level
	if err := e.store.SaveProfile(ctx, golferID, p); err != nil {
		return nil, err
	}
	e.metrics.StoreSaves.WithLabelValues(e.settings.StoreBackend).Inc()
	return p, nil
}

// Memory gathers the golfer's memory-tab state. Missing documents are
// empty sections, never errors.
func (e *Engine) Memory(ctx context.Context, golferID string) (MemoryView, error) {
	view := MemoryView{}

	notes, err := e.store.LoadMemory(ctx, golferID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return view, err
	}
	view.Notes = notes

	insights, err := e.store.LoadInsights(ctx, golferID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return view, err
	}
	view.Insights = insights

	last, err := e.store.LoadLastInteraction(ctx, golferID)
	if err == nil {
		view.LastInteraction = &last
	} else if !errors.Is(err, store.ErrNotFound) {
		return view, err
	}

	return view, nil
}

// LastInteraction returns the most recent exchange for the golfer.
func (e *Engine) LastInteraction(ctx context.Context, golferID string) (store.Interaction, error) {
	return e.store.LoadLastInteraction(ctx, golferID)
}

// SearchKnowledge looks up coaching tips by fuzzy keyword match; an empty
// query returns everything collected so far.
func (e *Engine) SearchKnowledge(query string) []knowledge.Tip {
	return e.kb.Search(query)
}

// CommonQuestions are the starter prompts surfaced in the UI sidebar.
func CommonQuestions() []string {
	return []string{
		"How can I improve my swing?",
		"What's the best way to practice putting?",
		"How do I reduce my slice?",
		"Tips for course management?",
	}
}
