package game

import (
	"log"

	"github.com/balalek/Masters-Thesis-sub000/internal"
	"github.com/balalek/Masters-Thesis-sub000/internal/dictionary"
)

// =============================================================================
// QUESTION SCHEDULE
// =============================================================================

const wordsPerDrawingRound = 3

// WordBudget is how many random words a game needs before it can start:
// three choices per scheduled drawing round plus one seed word per word
// chain. The caller fetches them in a single request.
func WordBudget(questions []internal.Question, playerCount int, teamMode bool) int {
	total := 0
	for i := range questions {
		switch questions[i].Type {
		case internal.QuestionDrawing:
			total += drawingSlots(playerCount, teamMode) * wordsPerDrawingRound
		case internal.QuestionWordChain:
			total++
		}
	}
	return total
}

// drawingSlots is the number of rounds one drawing entry expands into:
// everyone draws once in free-for-all; team mode balances both rotations to
// twice the larger roster.
func drawingSlots(playerCount int, teamMode bool) int {
	if !teamMode {
		return playerCount
	}
	larger := (playerCount + 1) / 2
	return 2 * larger
}

// buildSchedule expands the stored quiz into the played question list:
// drawing entries become one round per drawer, word chains get their seed
// word and opening letter. Must run after teams are assigned.
func (g *Dispatcher) buildSchedule(questions []internal.Question, words []string) []internal.Question {
	next := func() string {
		if len(words) == 0 {
			return ""
		}
		w := words[0]
		words = words[1:]
		return w
	}

	// drawer rotation cursors survive across the game's drawing entries so
	// repeat entries start where the previous one left off
	rotation := map[string]int{}

	out := make([]internal.Question, 0, len(questions))
	for i := range questions {
		q := questions[i]
		switch q.Type {
		case internal.QuestionDrawing:
			out = append(out, g.drawingRounds(&q, next, rotation)...)
		case internal.QuestionWordChain:
			if q.FirstWord == "" {
				q.FirstWord = next()
			}
			if q.FirstLetter == "" {
				q.FirstLetter = dictionary.NextLetter(q.FirstWord, g.rng)
			}
			if q.FirstLetter == "" {
				q.FirstLetter = dictionary.RandomLetter(g.rng)
			}
			out = append(out, q)
		default:
			out = append(out, q)
		}
	}
	return out
}

// drawingRounds schedules the drawers for one drawing entry. Team mode
// alternates teams starting with the smaller one, each team rotating through
// its roster via the shared cursors; free-for-all walks the join order.
func (g *Dispatcher) drawingRounds(base *internal.Question, next func() string, rotation map[string]int) []internal.Question {
	round := func(drawer, team string) internal.Question {
		q := *base
		q.Category = "Kreslení"
		q.Player = drawer
		q.Team = team
		q.Words = make([]string, 0, wordsPerDrawingRound)
		for i := 0; i < wordsPerDrawingRound; i++ {
			if w := next(); w != "" {
				q.Words = append(q.Words, w)
			}
		}
		return q
	}

	if !g.s.IsTeamMode {
		rounds := make([]internal.Question, 0, len(g.s.JoinOrder))
		for _, name := range g.s.JoinOrder {
			rounds = append(rounds, round(name, ""))
		}
		return rounds
	}

	first, second := internal.TeamBlue, internal.TeamRed
	if len(g.s.RedTeam) < len(g.s.BlueTeam) {
		first, second = internal.TeamRed, internal.TeamBlue
	}

	slots := drawingSlots(len(g.s.Players), true)
	rounds := make([]internal.Question, 0, slots)
	for i := 0; i < slots; i++ {
		team := first
		if i%2 == 1 {
			team = second
		}
		members := g.s.TeamMembers(team)
		if len(members) == 0 {
			continue
		}
		drawer := members[rotation[team]%len(members)]
		rotation[team]++
		rounds = append(rounds, round(drawer, team))
	}

	log.Printf("[drawingRounds] scheduled %d rounds starting with team=%s", len(rounds), first)
	return rounds
}

// bombDurationMs draws the team-mode bomb fuse, shared by every word chain
// of the game, uniformly from two to four minutes.
func (g *Dispatcher) bombDurationMs() int64 {
	const low, high = 120, 240
	return (low + g.rng.Int63n(high-low+1)) * 1000
}
