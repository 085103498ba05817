package coach

import (
	"fmt"
	"strings"

	"github.com/fairwaylabs/golfpro/internal/llm"
	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
)

// transcriptWindow bounds the turns handed to the reflection prompt.
const transcriptWindow = 10

const reflectionPrompt = `You are reviewing your own recent golf coaching. Read the conversation
below and reflect on how the coaching is going for this golfer.
Respond with ONLY a JSON object, no code fences, in exactly this shape:
{"insight": "one or two sentences on what to adjust or reinforce next time", "keywords": ["topic", "topic"]}`

// buildMessages assembles the full chat request: persona instruction plus
// everything the coach knows, then the session transcript, then the new
// question.
func buildMessages(p Persona, prof *profile.Profile, notes []string, insights []memory.Insight, turns []session.Turn, input string) []llm.Message {
	var sys strings.Builder
	sys.WriteString(p.SystemPrompt)

	sys.WriteString("\n\nWhat you know about this golfer:\n")
	sys.WriteString(prof.Summary())

	if ctx := memorySummary(notes, insights); ctx != "" {
		sys.WriteString("\n\n")
		sys.WriteString(ctx)
	}

	msgs := make([]llm.Message, 0, len(turns)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Text: sys.String()})
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Text: t.Text})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: input})
	return msgs
}

// memorySummary joins long-term notes and reflection insights into one
// context block, or returns "" when there is nothing to say yet.
func memorySummary(notes []string, insights []memory.Insight) string {
	var b strings.Builder
	if len(notes) > 0 {
		b.WriteString("Notes from earlier conversations:\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	if len(insights) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Your own coaching insights about this golfer:\n")
		for _, ins := range insights {
			b.WriteString("- ")
			b.WriteString(ins.Text)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildReflectionMessages frames the last turns of the transcript for the
// self-reflection call.
func buildReflectionMessages(turns []session.Turn) []llm.Message {
	if len(turns) > transcriptWindow {
		turns = turns[len(turns)-transcriptWindow:]
	}
	var convo strings.Builder
	for _, t := range turns {
		role := "golfer"
		if t.Role == session.RoleCoach {
			role = "coach"
		}
		fmt.Fprintf(&convo, "%s: %s\n", role, t.Text)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Text: reflectionPrompt},
		{Role: llm.RoleUser, Text: "Conversation:\n" + convo.String()},
	}
}
