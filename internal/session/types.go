package session

import "time"

// Transcript roles. The coach side is stored under the assistant role so
// turns map directly onto model chat messages.
const (
	RoleUser  = "user"
	RoleCoach = "assistant"
)

// Turn is one transcript entry. Transcripts grow unbounded within a
// session; only long-term memory is capped.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// CreateRequest defines the payload for creating a new coaching session.
type CreateRequest struct {
	GolferID  string `json:"golfer_id"`
	PersonaID string `json:"persona_id"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string    `json:"session_id"`
	GolferID        string    `json:"golfer_id"`
	Status          Status    `json:"status"`
	PersonaID       string    `json:"persona_id"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
