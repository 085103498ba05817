package memory

import (
	"strings"
	"unicode/utf8"
)

// NoteCap bounds the long-term notes kept per golfer; the oldest entry is
// evicted first.
const NoteCap = 10

// snippetLen clips stored response excerpts.
const snippetLen = 100

// Responses are only remembered when they carry actual coaching content.
var coachingKeywords = []string{
	"grip",
	"stance",
	"swing",
	"drill",
	"practice",
	"tempo",
	"alignment",
	"posture",
	"follow-through",
	"backswing",
}

// Curate appends the qualifying parts of one exchange to the golfer's
// notes: the input verbatim when it is longer than 20 characters, and a
// clipped excerpt of the response when it mentions a coaching keyword.
// The list is trimmed to NoteCap after each append. The count of notes
// written is returned alongside the updated list; at the cap the list
// length no longer reflects it.
func Curate(notes []string, input, response string) ([]string, int) {
	appended := 0
	if len(input) > 20 {
		notes = trim(append(notes, input))
		appended++
	}
	if hasCoachingKeyword(response) {
		notes = trim(append(notes, "Coach advised: "+clip(response, snippetLen)))
		appended++
	}
	return notes, appended
}

func hasCoachingKeyword(response string) bool {
	lower := strings.ToLower(response)
	for _, kw := range coachingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func trim(notes []string) []string {
	if len(notes) > NoteCap {
		notes = notes[len(notes)-NoteCap:]
	}
	return notes
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
