package memory

import (
	"time"

	"github.com/google/uuid"
)

// Insight is one self-reflection result for a golfer.
type Insight struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewInsight(text string) Insight {
	return Insight{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// AppendInsight appends to the bounded insight log, evicting the oldest
// entries beyond limit.
func AppendInsight(log []Insight, ins Insight, limit int) []Insight {
	log = append(log, ins)
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	return log
}
