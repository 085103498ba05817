package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fairwaylabs/golfpro/internal/llm"
)

func TestMergeUnionsListsWithoutDuplicates(t *testing.T) {
	p := New()
	p.SwingIssues = []string{"slice"}

	Merge(p, Update{
		SwingIssues: []string{"Slice", "hook"},
		Goals:       []string{"break 90"},
	})

	if len(p.SwingIssues) != 2 {
		t.Fatalf("SwingIssues = %v, want slice+hook", p.SwingIssues)
	}
	if !containsTag(p.SwingIssues, "hook") {
		t.Fatalf("SwingIssues = %v, want hook", p.SwingIssues)
	}
	if !containsTag(p.Goals, "break 90") {
		t.Fatalf("Goals = %v, want break 90", p.Goals)
	}
}

func TestMergeSkipsEmptyScalars(t *testing.T) {
	p := New()
	p.SkillLevel = SkillIntermediate
	p.PlayingHistory = "plays weekly"

	Merge(p, Update{SkillLevel: "", PlayingHistory: "  "})

	if p.SkillLevel != SkillIntermediate {
		t.Fatalf("SkillLevel = %q, want intermediate preserved", p.SkillLevel)
	}
	if p.PlayingHistory != "plays weekly" {
		t.Fatalf("PlayingHistory = %q, want preserved", p.PlayingHistory)
	}
}

func TestMergeUpdatesEquipmentKeyByKey(t *testing.T) {
	p := New()
	p.Equipment = map[string]string{"driver": "old 10.5", "putter": "blade"}

	Merge(p, Update{Equipment: map[string]string{"Driver": "new 9 degree", "wedge": "56"}})

	if p.Equipment["driver"] != "new 9 degree" {
		t.Fatalf("driver = %q, want overwritten", p.Equipment["driver"])
	}
	if p.Equipment["putter"] != "blade" {
		t.Fatalf("putter = %q, want untouched", p.Equipment["putter"])
	}
	if p.Equipment["wedge"] != "56" {
		t.Fatalf("wedge = %q, want added", p.Equipment["wedge"])
	}
}

func TestExtractParsesModelJSON(t *testing.T) {
	mock := llm.NewMock(`The profile update:
{"skill_level": "advanced", "swing_issues": ["hook"], "goals": ["break 80"], "equipment": {"driver": "9 degree"}, "playing_history": "club champion twice"}`)

	u, err := Extract(context.Background(), mock, "I'm a plus handicap but my hook costs me")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.SkillLevel != "advanced" {
		t.Fatalf("SkillLevel = %q", u.SkillLevel)
	}
	if len(u.SwingIssues) != 1 || u.SwingIssues[0] != "hook" {
		t.Fatalf("SwingIssues = %v", u.SwingIssues)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if !strings.Contains(reqs[0].Messages[0].Text, "my hook costs me") {
		t.Fatalf("extraction prompt missing user message: %q", reqs[0].Messages[0].Text)
	}
}

func TestExtractFailsClosedOnMalformedJSON(t *testing.T) {
	mock := llm.NewMock("sorry, no JSON today")

	_, err := Extract(context.Background(), mock, "whatever")
	if !errors.Is(err, llm.ErrInvalidOutput) {
		t.Fatalf("error = %v, want ErrInvalidOutput", err)
	}
}

func TestExtractRejectsUnknownSkillLevel(t *testing.T) {
	mock := llm.NewMock(`{"skill_level": "galactic", "swing_issues": [], "goals": [], "equipment": {}, "playing_history": ""}`)

	_, err := Extract(context.Background(), mock, "whatever")
	if !errors.Is(err, llm.ErrInvalidOutput) {
		t.Fatalf("error = %v, want ErrInvalidOutput for bad skill level", err)
	}
}

func TestTagsMergesIssuesAndGoals(t *testing.T) {
	p := New()
	p.SwingIssues = []string{"Slice", "hook"}
	p.Goals = []string{"slice", "break 90"}

	tags := p.Tags()
	if len(tags) != 3 {
		t.Fatalf("Tags() = %v, want 3 distinct", tags)
	}
}
