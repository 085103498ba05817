package coach

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fairwaylabs/golfpro/internal/memory"
	"github.com/fairwaylabs/golfpro/internal/session"
)

func TestResolvePersonaDefaultsToPro(t *testing.T) {
	p, err := ResolvePersona("")
	if err != nil {
		t.Fatalf("ResolvePersona(\"\") error = %v", err)
	}
	if p.ID != "pro" {
		t.Fatalf("ID = %q, want pro", p.ID)
	}
	if !strings.Contains(p.SystemPrompt, "GolfPro AI") {
		t.Fatalf("SystemPrompt = %q, want the GolfPro instruction", p.SystemPrompt)
	}
}

func TestResolvePersonaRejectsUnknown(t *testing.T) {
	if _, err := ResolvePersona("caddy-shack"); err == nil {
		t.Fatalf("expected error for unknown persona")
	}
}

func TestPersonasSortedAndComplete(t *testing.T) {
	all := Personas()
	if len(all) != 3 {
		t.Fatalf("len(Personas()) = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("personas not sorted: %q before %q", all[i-1].ID, all[i].ID)
		}
	}
	for _, p := range all {
		if p.SystemPrompt == "" || p.DisplayName == "" {
			t.Fatalf("persona %q incomplete: %+v", p.ID, p)
		}
	}
}

func TestMemorySummaryEmptyWhenNothingKnown(t *testing.T) {
	if got := memorySummary(nil, nil); got != "" {
		t.Fatalf("memorySummary() = %q, want empty", got)
	}
}

func TestMemorySummaryListsNotesAndInsights(t *testing.T) {
	got := memorySummary(
		[]string{"slices off the tee"},
		[]memory.Insight{{Text: "drills are landing well"}},
	)
	if !strings.Contains(got, "- slices off the tee") {
		t.Fatalf("summary missing note:\n%s", got)
	}
	if !strings.Contains(got, "- drills are landing well") {
		t.Fatalf("summary missing insight:\n%s", got)
	}
}

func TestBuildReflectionMessagesWindowsTranscript(t *testing.T) {
	var turns []session.Turn
	for i := 0; i < 14; i++ {
		turns = append(turns, session.Turn{Role: session.RoleUser, Text: fmt.Sprintf("line %d", i)})
	}

	msgs := buildReflectionMessages(turns)
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want system + conversation", len(msgs))
	}
	convo := msgs[1].Text
	if strings.Contains(convo, "line 3") {
		t.Fatalf("conversation includes turns outside the last 10:\n%s", convo)
	}
	if !strings.Contains(convo, "line 4") || !strings.Contains(convo, "line 13") {
		t.Fatalf("conversation missing expected window:\n%s", convo)
	}
}
