package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// Document kinds in the shared table.
const (
	kindProfile     = "profile"
	kindMemory      = "memory"
	kindInsights    = "insights"
	kindInteraction = "interaction"
	kindKnowledge   = "knowledge"
	kindTranscript  = "transcript"
)

// knowledgeKey is the fixed key for the single process-wide knowledge
// document.
const knowledgeKey = "global"

// PostgresStore persists coach documents in PostgreSQL, one JSONB payload
// per (kind, key), overwritten wholesale on save.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coach_documents (
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (kind, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_coach_documents_kind ON coach_documents (kind);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, kind, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, key, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO coach_documents (kind, key, payload, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (kind, key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		kind, key, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", kind, key, err)
	}
	return nil
}

func (s *PostgresStore) load(ctx context.Context, kind, key string, into any) error {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM coach_documents WHERE kind=$1 AND key=$2`,
		kind, key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", kind, key, err)
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return fmt.Errorf("decode %s/%s: %w", kind, key, err)
	}
	return nil
}

func (s *PostgresStore) LoadProfile(ctx context.Context, golferID string) (*profile.Profile, error) {
	var p profile.Profile
	if err := s.load(ctx, kindProfile, golferID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, golferID string, p *profile.Profile) error {
	return s.save(ctx, kindProfile, golferID, p)
}

func (s *PostgresStore) LoadMemory(ctx context.Context, golferID string) ([]string, error) {
	var notes []string
	if err := s.load(ctx, kindMemory, golferID, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *PostgresStore) SaveMemory(ctx context.Context, golferID string, notes []string) error {
	return s.save(ctx, kindMemory, golferID, notes)
}

func (s *PostgresStore) LoadInsights(ctx context.Context, golferID string) ([]memory.Insight, error) {
	var insights []memory.Insight
	if err := s.load(ctx, kindInsights, golferID, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

func (s *PostgresStore) SaveInsights(ctx context.Context, golferID string, insights []memory.Insight) error {
	return s.save(ctx, kindInsights, golferID, insights)
}

func (s *PostgresStore) LoadLastInteraction(ctx context.Context, golferID string) (Interaction, error) {
	var rec Interaction
	if err := s.load(ctx, kindInteraction, golferID, &rec); err != nil {
		return Interaction{}, err
	}
	return rec, nil
}

func (s *PostgresStore) SaveLastInteraction(ctx context.Context, golferID string, rec Interaction) error {
	return s.save(ctx, kindInteraction, golferID, rec)
}

func (s *PostgresStore) LoadKnowledge(ctx context.Context) ([]knowledge.Tip, error) {
	var tips []knowledge.Tip
	err := s.load(ctx, kindKnowledge, knowledgeKey, &tips)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tips, nil
}

func (s *PostgresStore) SaveKnowledge(ctx context.Context, tips []knowledge.Tip) error {
	return s.save(ctx, kindKnowledge, knowledgeKey, tips)
}

func (s *PostgresStore) LoadTranscript(ctx context.Context, sessionID string) ([]session.Turn, error) {
	var turns []session.Turn
	if err := s.load(ctx, kindTranscript, sessionID, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *PostgresStore) SaveTranscript(ctx context.Context, sessionID string, turns []session.Turn) error {
	return s.save(ctx, kindTranscript, sessionID, turns)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
