package knowledge

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Tip is one coaching tip accumulated by self-reflection, shared across
// all golfers.
type Tip struct {
	ID       string   `json:"id"`
	Text     string   `json:"tip"`
	Keywords []string `json:"keywords"`
	Date     string   `json:"date"`
}

// CommonMistakes maps frequent fault tags to a one-line description. The
// set is static; reflection adds tips, not mistakes.
var CommonMistakes = map[string]string{
	"slice":      "Ball curves hard toward the trail side; usually an open club face with an out-to-in path.",
	"hook":       "Ball curves hard toward the lead side; often a closed face with an overly strong grip.",
	"shank":      "Contact off the hosel; commonly standing too close or swaying onto the toes.",
	"chunk":      "Club strikes the ground before the ball; weight hanging back through impact.",
	"thin":       "Contact low on the face; early extension or lifting out of posture.",
	"topping":    "Club catches the top half of the ball; usually straightening up mid-swing.",
	"pull":       "Ball starts left of target with an out-to-in path and square face.",
	"push":       "Ball starts right of target; path in-to-out with the face matching.",
	"sway":       "Hips slide instead of turning, costing strike consistency and power.",
	"three-putt": "Distance control on the first putt is the usual culprit, not the short one.",
}

// MistakesFor returns the known fault descriptions for the given tags.
func MistakesFor(tags []string) []string {
	return lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		desc, ok := CommonMistakes[strings.ToLower(strings.TrimSpace(tag))]
		if !ok {
			return "", false
		}
		return tag + ": " + desc, true
	})
}

// Base holds the accumulating tip log. Reads and writes arrive from both
// coaching turns and API handlers.
type Base struct {
	mu   sync.RWMutex
	tips []Tip
}

func NewBase(tips []Tip) *Base {
	return &Base{tips: append([]Tip(nil), tips...)}
}

// Add appends a reflection-contributed tip stamped with today's date.
func (b *Base) Add(text string, keywords []string) Tip {
	tip := Tip{
		ID:   uuid.NewString(),
		Text: strings.TrimSpace(text),
		Keywords: lo.Uniq(lo.FilterMap(keywords, func(kw string, _ int) (string, bool) {
			kw = strings.ToLower(strings.TrimSpace(kw))
			return kw, kw != ""
		})),
		Date: time.Now().UTC().Format("2006-01-02"),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tips = append(b.tips, tip)
	return tip
}

// Tips returns a copy of every stored tip.
func (b *Base) Tips() []Tip {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Tip(nil), b.tips...)
}

func (b *Base) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tips)
}

// Search fuzzy-matches the query against tip keywords and text and
// returns tips ordered best match first. An empty query returns
// everything.
func (b *Base) Search(query string) []Tip {
	query = strings.TrimSpace(query)
	if query == "" {
		return b.Tips()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	type scored struct {
		tip  Tip
		rank int
	}
	matches := make([]scored, 0, len(b.tips))
	for _, tip := range b.tips {
		if rank := bestRank(query, tip); rank >= 0 {
			matches = append(matches, scored{tip: tip, rank: rank})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	return lo.Map(matches, func(s scored, _ int) Tip { return s.tip })
}

// bestRank returns the lowest fuzzy rank across keywords and text,
// or -1 when nothing matches.
func bestRank(query string, tip Tip) int {
	best := -1
	consider := func(target string) {
		r := fuzzy.RankMatchFold(query, target)
		if r >= 0 && (best < 0 || r < best) {
			best = r
		}
	}
	for _, kw := range tip.Keywords {
		consider(kw)
	}
	consider(tip.Text)
	return best
}
