package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/fairwaylabs/golfpro/internal/llm"
)

// Update is the structured profile delta extracted by the model from a
// user message. Empty fields mean "nothing learned".
type Update struct {
	SkillLevel     string            `json:"skill_level"`
	SwingIssues    []string          `json:"swing_issues"`
	Goals          []string          `json:"goals"`
	Equipment      map[string]string `json:"equipment"`
	PlayingHistory string            `json:"playing_history"`
}

const extractionPrompt = `You maintain a golfer's coaching profile. Extract profile facts from the golfer's message below.

Respond with ONLY a JSON object in exactly this shape, no code fences and no commentary:
{
  "skill_level": "beginner, intermediate, advanced, or empty string",
  "swing_issues": ["short lowercase tags such as slice or hook"],
  "goals": ["short goal tags such as break 90"],
  "equipment": {"item": "detail"},
  "playing_history": "one sentence, or empty string"
}

Leave every field you are not confident about empty.

Golfer's message:
%s`

// Extract asks the model for a structured profile delta. The parse fails
// closed: a malformed or invalid response returns an error and no Update.
func Extract(ctx context.Context, client llm.Client, input string) (Update, error) {
	resp, err := client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Text: fmt.Sprintf(extractionPrompt, input)},
		},
		Temperature: 0,
	})
	if err != nil {
		return Update{}, fmt.Errorf("profile extraction call: %w", err)
	}
	return llm.ExtractJSON[Update](resp.Text, validateUpdate)
}

func validateUpdate(u Update) error {
	switch strings.ToLower(strings.TrimSpace(u.SkillLevel)) {
	case "", SkillUnknown, SkillBeginner, SkillIntermediate, SkillAdvanced:
	default:
		return fmt.Errorf("unknown skill level %q", u.SkillLevel)
	}
	return nil
}

// Merge folds an extracted update into the profile: list fields are
// unioned, map fields updated key-by-key, scalar fields overwritten only
// when the incoming value is non-empty.
func Merge(p *Profile, u Update) {
	if lvl := strings.ToLower(strings.TrimSpace(u.SkillLevel)); lvl != "" && lvl != SkillUnknown {
		p.SkillLevel = lvl
	}
	for _, tag := range u.SwingIssues {
		p.SwingIssues = appendTag(p.SwingIssues, normalizeTag(tag))
	}
	for _, tag := range u.Goals {
		p.Goals = appendTag(p.Goals, normalizeTag(tag))
	}
	if len(u.Equipment) > 0 {
		if p.Equipment == nil {
			p.Equipment = make(map[string]string, len(u.Equipment))
		}
		for k, v := range u.Equipment {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			p.Equipment[strings.ToLower(k)] = v
		}
	}
	if hist := strings.TrimSpace(u.PlayingHistory); hist != "" {
		p.PlayingHistory = hist
	}
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Tags returns the distinct lowercase union of swing issues and goals,
// used for knowledge-base lookups.
func (p *Profile) Tags() []string {
	all := append(append([]string{}, p.SwingIssues...), p.Goals...)
	return lo.Uniq(lo.Map(all, func(t string, _ int) string {
		return normalizeTag(t)
	}))
}
