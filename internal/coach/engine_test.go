package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/llm"
	"github.com/fairwaylabs/golfpro/internal/observability"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/session"
	"github.com/fairwaylabs/golfpro/internal/store"
)

const reflectionJSON = `{"insight": "Needs slower tempo work before adding distance", "keywords": ["tempo"]}`

func newTestEngine(t *testing.T, client llm.Client, settings Settings) (*Engine, *store.MemoryStore) {
	t.Helper()
	if settings.ReflectionPeriod == 0 {
		settings.ReflectionPeriod = 3
	}
	if settings.InsightCap == 0 {
		settings.InsightCap = 3
	}
	if settings.StoreBackend == "" {
		settings.StoreBackend = "memory"
	}
	st := store.NewMemory()
	metrics := observability.NewMetrics(fmt.Sprintf("golfpro_test_coach_%d", time.Now().UnixNano()))
	eng, err := New(st, client, llm.NewLimiter(0, 1), session.NewManager(time.Hour), knowledge.NewBase(nil), metrics, settings)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng, st
}

func TestCoachRepliesAndPersistsState(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock("Keep your grip relaxed and practice tempo drills.")
	eng, st := newTestEngine(t, mock, Settings{})

	input := "I keep slicing my driver off the tee"
	reply, err := eng.Coach(ctx, "g1", "s1", input)
	if err != nil {
		t.Fatalf("Coach() error = %v", err)
	}
	if !strings.Contains(reply, "grip") {
		t.Fatalf("reply = %q, want scripted mock reply", reply)
	}

	p, err := st.LoadProfile(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.InteractionCount != 1 {
		t.Fatalf("InteractionCount = %d, want 1", p.InteractionCount)
	}
	if !containsFold(p.SwingIssues, "slice") {
		t.Fatalf("SwingIssues = %v, want slice", p.SwingIssues)
	}
	if p.LastMessage != input {
		t.Fatalf("LastMessage = %q, want input", p.LastMessage)
	}

	notes, err := st.LoadMemory(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadMemory() error = %v", err)
	}
	if len(notes) == 0 || notes[0] != input {
		t.Fatalf("notes = %v, want verbatim input note", notes)
	}

	last, err := st.LoadLastInteraction(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadLastInteraction() error = %v", err)
	}
	if last.UserInput != input || last.CoachResponse != reply {
		t.Fatalf("last interaction = %+v", last)
	}

	turns, err := st.LoadTranscript(ctx, "s1")
	if err != nil {
		t.Fatalf("LoadTranscript() error = %v", err)
	}
	if len(turns) != 2 || turns[0].Role != session.RoleUser || turns[1].Role != session.RoleCoach {
		t.Fatalf("transcript = %+v, want user then coach turn", turns)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("model calls = %d, want 1", len(reqs))
	}
	sys := reqs[0].Messages[0]
	if sys.Role != llm.RoleSystem || !strings.Contains(sys.Text, "GolfPro AI") {
		t.Fatalf("system message = %+v, want persona instruction", sys)
	}
	if !strings.Contains(sys.Text, "Interactions: 1") {
		t.Fatalf("system message missing profile summary:\n%s", sys.Text)
	}
	lastMsg := reqs[0].Messages[len(reqs[0].Messages)-1]
	if lastMsg.Role != llm.RoleUser || lastMsg.Text != input {
		t.Fatalf("final message = %+v, want the new input", lastMsg)
	}
}

func TestCoachReflectsExactlyOnPeriodMultiples(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock()
	eng, st := newTestEngine(t, mock, Settings{ReflectionPeriod: 3})

	// Chat replies for 7 turns; reflection output consumed after turns 3
	// and 6 only.
	for i := 1; i <= 7; i++ {
		mock.Enqueue(fmt.Sprintf("coaching reply %d with no keywords", i))
		if i%3 == 0 {
			mock.Enqueue(reflectionJSON)
		}
	}

	for i := 1; i <= 7; i++ {
		input := fmt.Sprintf("turn %d: my slice is still haunting me", i)
		if _, err := eng.Coach(ctx, "g1", "s1", input); err != nil {
			t.Fatalf("Coach() turn %d error = %v", i, err)
		}
	}

	reqs := mock.Requests()
	if len(reqs) != 9 {
		t.Fatalf("model calls = %d, want 7 chat + 2 reflection", len(reqs))
	}
	for _, idx := range []int{3, 7} {
		if got := reqs[idx].Messages[0].Text; got != reflectionPrompt {
			t.Fatalf("request %d system = %q, want reflection prompt", idx, got)
		}
	}

	insights, err := st.LoadInsights(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadInsights() error = %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("insights = %d, want 2", len(insights))
	}
	if !strings.Contains(insights[0].Text, "tempo") {
		t.Fatalf("insights[0].Text = %q", insights[0].Text)
	}
}

func TestCoachReflectionSkipsShortTranscript(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock("first reply no keywords")
	eng, st := newTestEngine(t, mock, Settings{ReflectionPeriod: 1})

	// Turn 1 triggers the period but the transcript has only 2 turns.
	if _, err := eng.Coach(ctx, "g1", "s1", "a long enough opening question here"); err != nil {
		t.Fatalf("Coach() error = %v", err)
	}
	if got := len(mock.Requests()); got != 1 {
		t.Fatalf("model calls = %d, want 1 (no reflection yet)", got)
	}

	// Turn 2 reaches 4 transcript turns, so reflection runs.
	mock.Enqueue("second reply no keywords", reflectionJSON)
	if _, err := eng.Coach(ctx, "g1", "s1", "a long enough follow-up question here"); err != nil {
		t.Fatalf("Coach() error = %v", err)
	}
	if got := len(mock.Requests()); got != 3 {
		t.Fatalf("model calls = %d, want 3", got)
	}

	insights, err := st.LoadInsights(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadInsights() error = %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("insights = %d, want 1", len(insights))
	}
}

func TestCoachSkipsMalformedReflectionOutput(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock("reply one no keywords", "reply two no keywords", "sorry, I cannot produce JSON today")
	eng, st := newTestEngine(t, mock, Settings{ReflectionPeriod: 2})

	for i := 1; i <= 2; i++ {
		if _, err := eng.Coach(ctx, "g1", "s1", fmt.Sprintf("turn %d keeps my hook coming back", i)); err != nil {
			t.Fatalf("Coach() turn %d error = %v", i, err)
		}
	}

	insights, err := st.LoadInsights(ctx, "g1")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LoadInsights() error = %v", err)
	}
	if len(insights) != 0 {
		t.Fatalf("insights = %v, want none after malformed reflection", insights)
	}
}

func TestCoachChatFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock()
	mock.FailWith(fmt.Errorf("saturated: %w", llm.ErrUnavailable))
	eng, st := newTestEngine(t, mock, Settings{})

	_, err := eng.Coach(ctx, "g1", "s1", "my wedges are betraying me again")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("Coach() error = %v, want ErrUnavailable", err)
	}
	if _, err := st.LoadProfile(ctx, "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LoadProfile() error = %v, want ErrNotFound (nothing persisted)", err)
	}
}

func TestCoachExtractionMergesProfile(t *testing.T) {
	ctx := context.Background()
	extraction := `{"skill_level": "intermediate", "goals": ["break 90"], "equipment": {"driver": "stiff shaft"}}`
	mock := llm.NewMock(extraction, "Nice, let's build on that with stance work.")
	eng, st := newTestEngine(t, mock, Settings{ExtractProfiles: true})

	if _, err := eng.Coach(ctx, "g1", "s1", "My handicap hovers around fifteen these days"); err != nil {
		t.Fatalf("Coach() error = %v", err)
	}

	p, err := st.LoadProfile(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.SkillLevel != profile.SkillIntermediate {
		t.Fatalf("SkillLevel = %q, want intermediate from extraction", p.SkillLevel)
	}
	if !containsFold(p.Goals, "break 90") {
		t.Fatalf("Goals = %v, want break 90", p.Goals)
	}
	if p.Equipment["driver"] != "stiff shaft" {
		t.Fatalf("Equipment = %v", p.Equipment)
	}
	if got := len(mock.Requests()); got != 2 {
		t.Fatalf("model calls = %d, want extraction + chat", got)
	}
}

func TestCoachExtractionFailureDoesNotBreakTurn(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock("not a json object at all", "Still here to help with that slice.")
	eng, st := newTestEngine(t, mock, Settings{ExtractProfiles: true})

	reply, err := eng.Coach(ctx, "g1", "s1", "I keep slicing my driver off the tee")
	if err != nil {
		t.Fatalf("Coach() error = %v", err)
	}
	if !strings.Contains(reply, "slice") {
		t.Fatalf("reply = %q", reply)
	}

	p, err := st.LoadProfile(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.InteractionCount != 1 || !containsFold(p.SwingIssues, "slice") {
		t.Fatalf("profile = %+v, want keyword tracking despite failed extraction", p)
	}
}

func TestCoachKnowledgePresetCollectsTips(t *testing.T) {
	ctx := context.Background()
	tip := `{"insight": "Short putting ladders sharpen distance control", "keywords": ["putting", "practice"]}`
	mock := llm.NewMock("reply one no keywords", "reply two no keywords", tip)
	eng, st := newTestEngine(t, mock, Settings{ReflectionPeriod: 2, InsightCap: 20, KnowledgeTips: true})

	for i := 1; i <= 2; i++ {
		if _, err := eng.Coach(ctx, "g1", "s1", fmt.Sprintf("turn %d about my three-putt problem", i)); err != nil {
			t.Fatalf("Coach() turn %d error = %v", i, err)
		}
	}

	tips := eng.SearchKnowledge("putting")
	if len(tips) != 1 {
		t.Fatalf("SearchKnowledge() = %v, want 1 tip", tips)
	}
	saved, err := st.LoadKnowledge(ctx)
	if err != nil {
		t.Fatalf("LoadKnowledge() error = %v", err)
	}
	if len(saved) != 1 || !strings.Contains(saved[0].Text, "ladders") {
		t.Fatalf("persisted tips = %+v", saved)
	}
}

func TestCoachValidatesArguments(t *testing.T) {
	eng, _ := newTestEngine(t, llm.NewMock(), Settings{})
	if _, err := eng.Coach(context.Background(), "g1", "s1", "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
	if _, err := eng.Coach(context.Background(), "", "s1", "a real question"); !errors.Is(err, ErrNoGolfer) {
		t.Fatalf("error = %v, want ErrNoGolfer", err)
	}
}

func TestSetSkillCreatesProfile(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t, llm.NewMock(), Settings{})

	p, err := eng.SetSkill(ctx, "fresh", profile.SkillAdvanced)
	if err != nil {
		t.Fatalf("SetSkill() error = %v", err)
	}
	if p.SkillLevel != profile.SkillAdvanced {
		t.Fatalf("SkillLevel = %q, want advanced", p.SkillLevel)
	}
	saved, err := st.LoadProfile(ctx, "fresh")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if saved.SkillLevel != profile.SkillAdvanced {
		t.Fatalf("persisted SkillLevel = %q", saved.SkillLevel)
	}

	if _, err := eng.SetSkill(ctx, "fresh", "tour-pro"); err == nil {
		t.Fatalf("SetSkill() accepted unknown level")
	}
}

func TestMemoryViewAggregates(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMock("Work on your stance width first.")
	eng, _ := newTestEngine(t, mock, Settings{})

	if _, err := eng.Coach(ctx, "g1", "s1", "my stance never feels stable enough"); err != nil {
		t.Fatalf("Coach() error = %v", err)
	}

	view, err := eng.Memory(ctx, "g1")
	if err != nil {
		t.Fatalf("Memory() error = %v", err)
	}
	if len(view.Notes) == 0 {
		t.Fatalf("view.Notes empty, want the curated input")
	}
	if view.LastInteraction == nil || view.LastInteraction.CoachResponse == "" {
		t.Fatalf("view.LastInteraction = %+v", view.LastInteraction)
	}

	// Unknown golfer: empty view, no error.
	empty, err := eng.Memory(ctx, "nobody")
	if err != nil {
		t.Fatalf("Memory() error = %v", err)
	}
	if len(empty.Notes) != 0 || empty.LastInteraction != nil {
		t.Fatalf("empty view = %+v", empty)
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
