package observability

import "testing"

func TestStageWindowSnapshot(t *testing.T) {
	w := newStageWindow(8)
	w.Observe(StageLLMChat, 500)
	w.Observe(StageLLMChat, 700)
	w.Observe(StageLLMChat, 900)
	w.ObserveIndicator("reflection_parse_failed")
	w.ObserveIndicator("reflection_parse_failed")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != StageLLMChat {
		t.Fatalf("Stage = %q, want %q", s.Stage, StageLLMChat)
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 2500 {
		t.Fatalf("TargetP95MS = %.2f, want 2500", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 {
		t.Fatalf("len(Indicators) = %d, want 1", len(snap.Indicators))
	}
	if snap.Indicators[0].Name != "reflection_parse_failed" {
		t.Fatalf("Indicators[0].Name = %q, want %q", snap.Indicators[0].Name, "reflection_parse_failed")
	}
	if snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators[0].Count = %d, want %d", snap.Indicators[0].Count, 2)
	}
}

func TestStageWindowWrapsAtCapacity(t *testing.T) {
	w := newStageWindow(4)
	for i := 0; i < 10; i++ {
		w.Observe(StageStoreSave, float64(i))
	}
	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	if got := snap.Stages[0].Samples; got != 4 {
		t.Fatalf("Samples = %d, want 4", got)
	}
	if got := snap.Stages[0].LastMS; got != 9 {
		t.Fatalf("LastMS = %.2f, want 9", got)
	}
}
