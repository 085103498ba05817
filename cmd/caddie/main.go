package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fairwaylabs/golfpro/internal/app"
	"github.com/fairwaylabs/golfpro/internal/coach"
	"github.com/fairwaylabs/golfpro/internal/config"
	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/store"
)

// coachEngine is the slice of the engine the terminal loop needs.
type coachEngine interface {
	Coach(ctx context.Context, golferID, sessionID, input string) (string, error)
	Profile(ctx context.Context, golferID string) (*profile.Profile, error)
	LastInteraction(ctx context.Context, golferID string) (store.Interaction, error)
	SearchKnowledge(query string) []knowledge.Tip
}

func main() {
	_ = godotenv.Load()

	golfer := flag.String("golfer", "default", "golfer id the coach remembers you by")
	persona := flag.String("persona", "", "coaching persona (pro, mechanic, mental)")
	dataDir := flag.String("data", "", "data directory override")
	flag.Parse()

	// Flags win over environment so `caddie -data /tmp/x` behaves as typed.
	if *dataDir != "" {
		os.Setenv("DATA_DIR", *dataDir)
	}
	if *persona != "" {
		os.Setenv("COACH_PERSONA", *persona)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	rt, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer rt.Close()

	sess := rt.Sessions.Create(*golfer, cfg.DefaultPersona)
	p, _ := coach.ResolvePersona(cfg.DefaultPersona)

	fmt.Printf("%s | preset=%s | persona=%s (%s)\n", app.BuildInfo(), cfg.Preset, p.DisplayName, p.Tagline)
	fmt.Println("Ask your golf coach anything. Commands: profile, knowledge [term], summary, quit")

	repl(ctx, rt.Engine, *golfer, sess.ID, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, eng coachEngine, golferID, sessionID string, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for {
		fmt.Fprint(out, "\nyou> ")
		if !scanner.Scan() {
			return
		}
		reply, quit := handleLine(ctx, eng, golferID, sessionID, scanner.Text())
		if reply != "" {
			fmt.Fprintf(out, "%s\n", reply)
		}
		if quit {
			return
		}
	}
}

// handleLine dispatches one REPL line: the literal commands first, anything
// else is a coaching question.
func handleLine(ctx context.Context, eng coachEngine, golferID, sessionID, line string) (reply string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	cmd := strings.ToLower(line)
	switch {
	case cmd == "quit" || cmd == "exit" || cmd == "bye":
		return "coach> Great session. See you on the course!", true

	case cmd == "profile":
		p, err := eng.Profile(ctx, golferID)
		if errors.Is(err, store.ErrNotFound) {
			return "coach> I don't know you yet. Tell me about your game!", false
		}
		if err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		return "Your profile:\n" + p.Summary(), false

	case cmd == "knowledge" || strings.HasPrefix(cmd, "knowledge "):
		return renderKnowledge(eng, strings.TrimSpace(strings.TrimPrefix(line, "knowledge"))), false

	case cmd == "summary" || cmd == "last":
		rec, err := eng.LastInteraction(ctx, golferID)
		if errors.Is(err, store.ErrNotFound) {
			return "coach> We haven't talked yet. Ask me something!", false
		}
		if err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		return fmt.Sprintf("Last interaction (%s):\n  you: %s\n  coach: %s",
			rec.Timestamp.Format("2006-01-02 15:04"), rec.UserInput, rec.CoachResponse), false
	}

	answer, err := eng.Coach(ctx, golferID, sessionID, line)
	if err != nil {
		return fmt.Sprintf("coach error: %v", err), false
	}
	return "coach> " + answer, false
}

// renderKnowledge lists accumulated tips (optionally filtered) and, with no
// tips yet, falls back to the static common-mistake catalog.
func renderKnowledge(eng coachEngine, term string) string {
	tips := eng.SearchKnowledge(term)

	var b strings.Builder
	if len(tips) > 0 {
		if term != "" {
			fmt.Fprintf(&b, "Tips matching %q:\n", term)
		} else {
			b.WriteString("Coaching tips collected so far:\n")
		}
		for _, tip := range tips {
			fmt.Fprintf(&b, "  [%s] %s", tip.Date, tip.Text)
			if len(tip.Keywords) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(tip.Keywords, ", "))
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if term != "" {
		return fmt.Sprintf("No tips match %q yet.", term)
	}

	b.WriteString("No tips collected yet. Common mistakes I watch for:\n")
	tags := make([]string, 0, len(knowledge.CommonMistakes))
	for tag := range knowledge.CommonMistakes {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(&b, "  %s: %s\n", tag, knowledge.CommonMistakes[tag])
	}
	return strings.TrimRight(b.String(), "\n")
}
