package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// ErrNotFound is returned when a document does not exist for a key.
// Callers lazily initialize default records instead of treating it as a
// failure.
var ErrNotFound = errors.New("store: not found")

// Interaction is the single most recent exchange for a golfer,
// overwritten each turn.
type Interaction struct {
	Timestamp     time.Time `json:"timestamp"`
	UserInput     string    `json:"user_input"`
	CoachResponse string    `json:"coach_response"`
}

// Store persists the coach's named documents: profiles, long-term memory,
// insights, last interactions, the shared knowledge base and session
// transcripts. Writes are whole-document overwrites.
type Store interface {
	LoadProfile(ctx context.Context, golferID string) (*profile.Profile, error)
	SaveProfile(ctx context.Context, golferID string, p *profile.Profile) error

	LoadMemory(ctx context.Context, golferID string) ([]string, error)
	SaveMemory(ctx context.Context, golferID string, notes []string) error

	LoadInsights(ctx context.Context, golferID string) ([]memory.Insight, error)
	SaveInsights(ctx context.Context, golferID string, insights []memory.Insight) error

	LoadLastInteraction(ctx context.Context, golferID string) (Interaction, error)
	SaveLastInteraction(ctx context.Context, golferID string, rec Interaction) error

	LoadKnowledge(ctx context.Context) ([]knowledge.Tip, error)
	SaveKnowledge(ctx context.Context, tips []knowledge.Tip) error

	LoadTranscript(ctx context.Context, sessionID string) ([]session.Turn, error)
	SaveTranscript(ctx context.Context, sessionID string, turns []session.Turn) error

	Close() error
}

// New creates a postgres-backed store when configured, otherwise
// file-backed.
func New(ctx context.Context, databaseURL, dataDir string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgres(ctx, databaseURL)
	}
	return NewFile(dataDir)
}
