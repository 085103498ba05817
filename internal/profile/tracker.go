package profile

import (
	"strings"

	"github.com/samber/lo"
)

// Keyword tables for the cheap, offline profile pass. Matching is
// case-insensitive substring search; the first skill phrase found wins.
var skillPhrases = []struct {
	phrase string
	level  string
}{
	{"beginner", SkillBeginner},
	{"new to golf", SkillBeginner},
	{"just started", SkillBeginner},
	{"never played", SkillBeginner},
	{"intermediate", SkillIntermediate},
	{"played for a few years", SkillIntermediate},
	{"advanced", SkillAdvanced},
	{"scratch", SkillAdvanced},
	{"low handicap", SkillAdvanced},
	{"single digit", SkillAdvanced},
}

var swingIssueTags = []string{
	"slice",
	"hook",
	"shank",
	"chunk",
	"thin",
	"topping",
	"pull",
	"push",
	"sway",
	"yips",
}

var goalTags = []string{
	"break 100",
	"break 90",
	"break 80",
	"more distance",
	"consistency",
	"accuracy",
	"lower my handicap",
	"putting",
	"short game",
	"course management",
}

// Observe applies one user message to the profile: bumps the interaction
// counter, remembers the message and runs the keyword pass. Tag insertion
// is idempotent.
func Observe(p *Profile, input string) {
	p.InteractionCount++
	p.LastMessage = input

	lower := strings.ToLower(input)
	for _, s := range skillPhrases {
		if strings.Contains(lower, s.phrase) {
			p.SkillLevel = s.level
			break
		}
	}
	for _, tag := range swingIssueTags {
		if strings.Contains(lower, tag) {
			p.SwingIssues = appendTag(p.SwingIssues, tag)
		}
	}
	for _, tag := range goalTags {
		if strings.Contains(lower, tag) {
			p.Goals = appendTag(p.Goals, tag)
		}
	}
}

// appendTag adds tag unless an equal entry (case-insensitive) exists.
func appendTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	exists := lo.ContainsBy(tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
	if exists {
		return tags
	}
	return append(tags, tag)
}
