package coach

import (
	"fmt"
	"sort"
	"strings"
)

// Persona selects the coaching voice for a session.
type Persona struct {
	ID           string  `json:"id"`
	DisplayName  string  `json:"display_name"`
	Tagline      string  `json:"tagline"`
	SystemPrompt string  `json:"-"`
	Temperature  float64 `json:"-"`
}

const proSystemPrompt = `You are GolfPro AI, an expert golf coach with decades of experience.
Provide actionable golf advice to help players improve their game.
Be encouraging but honest, and give clear instructions.`

var personas = map[string]Persona{
	"pro": {
		ID:           "pro",
		DisplayName:  "GolfPro",
		Tagline:      "Your personal AI golf instructor",
		SystemPrompt: proSystemPrompt,
		Temperature:  0.2,
	},
	"mechanic": {
		ID:          "mechanic",
		DisplayName: "Swing Mechanic",
		Tagline:     "Technical swing analysis and drills",
		SystemPrompt: `You are a technical golf swing coach. Break every answer down into
swing mechanics: grip, stance, takeaway, transition, impact, follow-through.
Always prescribe one concrete drill the player can do at the range.`,
		Temperature: 0.1,
	},
	"mental": {
		ID:          "mental",
		DisplayName: "Course Strategist",
		Tagline:     "Course management and the mental game",
		SystemPrompt: `You are a golf course-management and mental-game coach. Focus on shot
selection, scoring strategy, pre-shot routine, and staying composed under
pressure. Avoid detailed swing mechanics; redirect the player to smart
decisions instead.`,
		Temperature: 0.4,
	},
}

// DefaultPersonaID matches the original single-voice coach.
const DefaultPersonaID = "pro"

func PersonaByID(id string) (Persona, bool) {
	p, ok := personas[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// ResolvePersona falls back to the default for an empty id and errors on an
// unknown one.
func ResolvePersona(id string) (Persona, error) {
	if strings.TrimSpace(id) == "" {
		id = DefaultPersonaID
	}
	p, ok := PersonaByID(id)
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q", id)
	}
	return p, nil
}

func Personas() []Persona {
	out := make([]Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
