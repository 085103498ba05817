package store

import (
	"context"
	"sync"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// MemoryStore is a simple in-process store for tests and ephemeral runs.
type MemoryStore struct {
	mu           sync.RWMutex
	profiles     map[string]*profile.Profile
	memories     map[string][]string
	insights     map[string][]memory.Insight
	interactions map[string]Interaction
	tips         []knowledge.Tip
	transcripts  map[string][]session.Turn
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		profiles:     make(map[string]*profile.Profile),
		memories:     make(map[string][]string),
		insights:     make(map[string][]memory.Insight),
		interactions: make(map[string]Interaction),
		transcripts:  make(map[string][]session.Turn),
	}
}

func (s *MemoryStore) LoadProfile(_ context.Context, golferID string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, golferID string, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[golferID] = p.Clone()
	return nil
}

func (s *MemoryStore) LoadMemory(_ context.Context, golferID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes, ok := s.memories[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), notes...), nil
}

func (s *MemoryStore) SaveMemory(_ context.Context, golferID string, notes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[golferID] = append([]string(nil), notes...)
	return nil
}

func (s *MemoryStore) LoadInsights(_ context.Context, golferID string) ([]memory.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ins, ok := s.insights[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]memory.Insight(nil), ins...), nil
}

func (s *MemoryStore) SaveInsights(_ context.Context, golferID string, insights []memory.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[golferID] = append([]memory.Insight(nil), insights...)
	return nil
}

func (s *MemoryStore) LoadLastInteraction(_ context.Context, golferID string) (Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.interactions[golferID]
	if !ok {
		return Interaction{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) SaveLastInteraction(_ context.Context, golferID string, rec Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions[golferID] = rec
	return nil
}

func (s *MemoryStore) LoadKnowledge(_ context.Context) ([]knowledge.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]knowledge.Tip(nil), s.tips...), nil
}

func (s *MemoryStore) SaveKnowledge(_ context.Context, tips []knowledge.Tip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tips = append([]knowledge.Tip(nil), tips...)
	return nil
}

func (s *MemoryStore) LoadTranscript(_ context.Context, sessionID string) ([]session.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns, ok := s.transcripts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]session.Turn(nil), turns...), nil
}

func (s *MemoryStore) SaveTranscript(_ context.Context, sessionID string, turns []session.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = append([]session.Turn(nil), turns...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
