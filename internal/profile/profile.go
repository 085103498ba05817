package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Skill levels recognized by the coach.
const (
	SkillUnknown      = "unknown"
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Profile is the per-golfer coaching record. It is created on the first
// interaction, mutated on every one and never deleted.
type Profile struct {
	SkillLevel       string            `json:"skill_level"`
	SwingIssues      []string          `json:"swing_issues"`
	Goals            []string          `json:"goals"`
	Equipment        map[string]string `json:"equipment,omitempty"`
	PlayingHistory   string            `json:"playing_history,omitempty"`
	InteractionCount int               `json:"interaction_count"`
	LastMessage      string            `json:"last_message,omitempty"`
}

// New returns the default record for a golfer the coach has not met yet.
func New() *Profile {
	return &Profile{
		SkillLevel:  SkillUnknown,
		SwingIssues: []string{},
		Goals:       []string{},
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.SwingIssues = append([]string(nil), p.SwingIssues...)
	out.Goals = append([]string(nil), p.Goals...)
	if p.Equipment != nil {
		out.Equipment = make(map[string]string, len(p.Equipment))
		for k, v := range p.Equipment {
			out.Equipment[k] = v
		}
	}
	return &out
}

// Summary renders the field-by-field textual join used in prompts and by
// the profile command. Empty sections are omitted.
func (p *Profile) Summary() string {
	if p == nil {
		return "No profile recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Skill level: %s\n", p.SkillLevel)
	if len(p.SwingIssues) > 0 {
		fmt.Fprintf(&b, "Swing issues: %s\n", strings.Join(p.SwingIssues, ", "))
	}
	if len(p.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s\n", strings.Join(p.Goals, ", "))
	}
	if len(p.Equipment) > 0 {
		b.WriteString("Equipment:\n")
		for _, k := range sortedKeys(p.Equipment) {
			fmt.Fprintf(&b, "  %s: %s\n", k, p.Equipment[k])
		}
	}
	if p.PlayingHistory != "" {
		fmt.Fprintf(&b, "Playing history: %s\n", p.PlayingHistory)
	}
	fmt.Fprintf(&b, "Interactions: %d", p.InteractionCount)
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
