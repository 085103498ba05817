package coach

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fairwaylabs/golfpro/internal/llm"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/observability"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// reflectionMinTurns is the smallest transcript worth reflecting on.
const reflectionMinTurns = 4

// Reflection is the schema the model must return from a self-reflection
// call. Keywords only matter when the knowledge base collects tips.
type Reflection struct {
	Insight  string   `json:"insight"`
	Keywords []string `json:"keywords"`
}

func validateReflection(r Reflection) error {
	if strings.TrimSpace(r.Insight) == "" {
		return fmt.Errorf("insight is empty")
	}
	return nil
}

// reflect runs one self-reflection pass over the session transcript and
// appends the result to the golfer's insight log. The caller has already
// checked the interaction-count trigger; this enforces the transcript
// precondition and never returns an error because reflection failures must
// not end the turn.
func (e *Engine) reflect(ctx context.Context, golferID string, g *golferState, turns []session.Turn) {
	if len(turns) < reflectionMinTurns {
		e.metrics.Reflections.WithLabelValues("skipped_short").Inc()
		return
	}

	start := time.Now()
	resp, err := e.client.Complete(ctx, llm.Request{
		Messages:    buildReflectionMessages(turns),
		Temperature: e.settings.Temperature,
		MaxTokens:   e.settings.MaxTokens,
	})
	e.observeLLM("reflect", observability.StageLLMReflect, time.Since(start), err)
	if err != nil {
		e.metrics.Reflections.WithLabelValues("call_failed").Inc()
		log.Printf("coach: reflection call failed for golfer %s: %v", golferID, err)
		return
	}

	r, err := llm.ExtractJSON(resp.Text, validateReflection)
	if err != nil {
		e.metrics.Reflections.WithLabelValues("parse_failed").Inc()
		e.metrics.ObserveIndicator("reflection_parse_failed")
		log.Printf("coach: reflection parse failed for golfer %s: %v", golferID, err)
		return
	}

	g.insights = memory.AppendInsight(g.insights, memory.NewInsight(r.Insight), e.settings.InsightCap)
	if e.settings.KnowledgeTips {
		e.kb.Add(r.Insight, r.Keywords)
	}
	e.metrics.Reflections.WithLabelValues("ok").Inc()
}
