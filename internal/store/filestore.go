package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// Document filenames inside the data directory, one per store.
const (
	profilesFile     = "profiles.json"
	memoryFile       = "memory.json"
	insightsFile     = "insights.json"
	interactionsFile = "interactions.json"
	knowledgeFile    = "knowledge.json"
	transcriptsFile  = "transcripts.json"
)

// FileStore keeps every document in memory and rewrites the backing JSON
// file wholesale on each save. A malformed or missing file loads as an
// empty document. There is no cross-process locking.
type FileStore struct {
	dir string

	mu           sync.RWMutex
	profiles     map[string]*profile.Profile
	memories     map[string][]string
	insights     map[string][]memory.Insight
	interactions map[string]Interaction
	tips         []knowledge.Tip
	transcripts  map[string][]session.Turn
}

func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		dir:          dir,
		profiles:     make(map[string]*profile.Profile),
		memories:     make(map[string][]string),
		insights:     make(map[string][]memory.Insight),
		interactions: make(map[string]Interaction),
		transcripts:  make(map[string][]session.Turn),
	}

	for _, doc := range []struct {
		name string
		into any
	}{
		{profilesFile, &s.profiles},
		{memoryFile, &s.memories},
		{insightsFile, &s.insights},
		{interactionsFile, &s.interactions},
		{knowledgeFile, &s.tips},
		{transcriptsFile, &s.transcripts},
	} {
		if err := loadDocument(filepath.Join(dir, doc.name), doc.into); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadDocument reads one JSON document. A missing file is fine; a
// malformed one is reset to empty with a warning rather than failing
// startup.
func loadDocument(path string, into any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		log.Printf("store: resetting malformed document %s: %v", path, err)
	}
	return nil
}

func (s *FileStore) writeDocument(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) LoadProfile(_ context.Context, golferID string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *FileStore) SaveProfile(_ context.Context, golferID string, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[golferID] = p.Clone()
	return s.writeDocument(profilesFile, s.profiles)
}

func (s *FileStore) LoadMemory(_ context.Context, golferID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes, ok := s.memories[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), notes...), nil
}

func (s *FileStore) SaveMemory(_ context.Context, golferID string, notes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[golferID] = append([]string(nil), notes...)
	return s.writeDocument(memoryFile, s.memories)
}

func (s *FileStore) LoadInsights(_ context.Context, golferID string) ([]memory.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ins, ok := s.insights[golferID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]memory.Insight(nil), ins...), nil
}

func (s *FileStore) SaveInsights(_ context.Context, golferID string, insights []memory.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[golferID] = append([]memory.Insight(nil), insights...)
	return s.writeDocument(insightsFile, s.insights)
}

func (s *FileStore) LoadLastInteraction(_ context.Context, golferID string) (Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.interactions[golferID]
	if !ok {
		return Interaction{}, ErrNotFound
	}
	return rec, nil
}

func (s *FileStore) SaveLastInteraction(_ context.Context, golferID string, rec Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions[golferID] = rec
	return s.writeDocument(interactionsFile, s.interactions)
}

func (s *FileStore) LoadKnowledge(_ context.Context) ([]knowledge.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]knowledge.Tip(nil), s.tips...), nil
}

func (s *FileStore) SaveKnowledge(_ context.Context, tips []knowledge.Tip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tips = append([]knowledge.Tip(nil), tips...)
	return s.writeDocument(knowledgeFile, s.tips)
}

func (s *FileStore) LoadTranscript(_ context.Context, sessionID string) ([]session.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns, ok := s.transcripts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]session.Turn(nil), turns...), nil
}

func (s *FileStore) SaveTranscript(_ context.Context, sessionID string, turns []session.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = append([]session.Turn(nil), turns...)
	return s.writeDocument(transcriptsFile, s.transcripts)
}

func (s *FileStore) Close() error { return nil }
