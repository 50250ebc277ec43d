package game

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// MATH_QUIZ
// =============================================================================

// MathState tracks the survival run through the equation sequences: who is
// still alive, who answered the current sequence, and when each sequence's
// window opened.
type MathState struct {
	CurrentSeq int
	Eliminated map[string]bool

	Answered    map[int]map[string]bool
	TeamsScored map[int]map[string]bool
	SeqStartMs  map[int]int64

	FastForwarded bool
}

type mathQuizHandler struct{}

func (h *mathQuizHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Math = &MathState{
		Eliminated:  make(map[string]bool),
		Answered:    map[int]map[string]bool{0: {}},
		TeamsScored: map[int]map[string]bool{0: {}},
		SeqStartMs:  map[int]int64{0: g.s.QuestionStartMs},
	}
}

// Submit grades one answer against the current sequence. A wrong answer
// eliminates the player for the rest of the quiz; a correct one pays points
// decaying to half base over the sequence window.
func (h *mathQuizHandler) Submit(g *Dispatcher, q *internal.Question, p submitTextPayload) {
	st := g.s.Math
	if st == nil || g.s.CompletionFired {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}
	if st.Eliminated[p.PlayerName] {
		return
	}
	cur := st.CurrentSeq
	if cur >= len(q.Sequences) {
		return
	}
	if st.Answered[cur][p.PlayerName] {
		// re-submit on a solved sequence reads as correct so the client locks
		g.sendToPlayer(p.PlayerName, "math_feedback", map[string]any{
			"correct":          true,
			"already_answered": true,
		})
		return
	}

	seq := q.Sequences[cur]
	value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(p.Answer), ",", "."), 64)
	correct := err == nil && math.Abs(value-seq.Answer) < 1e-3

	if !correct {
		st.Eliminated[p.PlayerName] = true
		g.sendToPlayer(p.PlayerName, "math_feedback", map[string]any{
			"correct":    false,
			"eliminated": true,
			"answer":     p.Answer,
		})
		log.Printf("[math.Submit] player=%s eliminated on seq=%d", p.PlayerName, cur)
		h.afterUpdate(g, q)
		return
	}

	st.Answered[cur][p.PlayerName] = true
	seqStart := st.SeqStartMs[cur]
	earned := mathPoints(p.AnswerTime, seqStart, int64(seq.Length)*1000)

	team := g.s.TeamOf(p.PlayerName)
	if g.s.IsTeamMode {
		if !st.TeamsScored[cur][team] {
			st.TeamsScored[cur][team] = true
			g.s.AddTeamScore(team, earned)
			g.s.MathPoints[team] += earned
		}
	} else {
		g.s.AddPlayerScore(p.PlayerName, earned)
		g.s.MathPoints[p.PlayerName] += earned
	}

	g.sendToPlayer(p.PlayerName, "math_feedback", map[string]any{
		"correct": true,
		"points":  earned,
	})
	log.Printf("[math.Submit] player=%s seq=%d earned=%d", p.PlayerName, cur, earned)
	h.afterUpdate(g, q)
}

// afterUpdate broadcasts the live status board and runs the two shortcuts:
// everyone eliminated ends the quiz early, and in team mode one scored team
// against a dead team fast-forwards the clock.
func (h *mathQuizHandler) afterUpdate(g *Dispatcher, q *internal.Question) {
	st := g.s.Math
	cur := st.CurrentSeq

	statuses := make(map[string]internal.MathPlayerStatus, len(g.s.Players))
	for name := range g.s.Players {
		answered := st.Answered[cur][name]
		if g.s.IsTeamMode && !answered {
			answered = st.TeamsScored[cur][g.s.TeamOf(name)]
		}
		statuses[name] = internal.MathPlayerStatus{
			HasAnswered:  answered,
			IsEliminated: st.Eliminated[name],
		}
	}
	g.broadcast("math_quiz_update", map[string]any{
		"sequence_index": cur,
		"players":        statuses,
	})

	if h.allEliminated(g) {
		log.Printf("[math.afterUpdate] all players eliminated")
		h.finish(g, q)
		return
	}

	if g.s.IsTeamMode && !st.FastForwarded {
		for _, team := range []string{internal.TeamBlue, internal.TeamRed} {
			other := OtherTeam(team)
			if st.TeamsScored[cur][team] && h.teamEliminated(g, other) {
				const remainder = 5 * time.Second
				st.FastForwarded = true
				g.fastForwardTimer(remainder)
				g.broadcast("fast_forward_timer", map[string]any{"remaining_ms": remainder.Milliseconds()})
				return
			}
		}
	}
}

func (h *mathQuizHandler) allEliminated(g *Dispatcher) bool {
	st := g.s.Math
	for name := range g.s.Players {
		if !st.Eliminated[name] {
			return false
		}
	}
	return len(g.s.Players) > 0
}

func (h *mathQuizHandler) teamEliminated(g *Dispatcher, team string) bool {
	members := g.s.TeamMembers(team)
	for _, name := range members {
		if !g.s.Math.Eliminated[name] {
			return false
		}
	}
	return len(members) > 0
}

// SequenceCompleted advances the survival run to the next sequence: everyone
// who never answered the finished sequence is eliminated first.
func (h *mathQuizHandler) SequenceCompleted(g *Dispatcher, q *internal.Question, p mathSequencePayload) {
	st := g.s.Math
	if st == nil || g.s.CompletionFired {
		return
	}
	if p.CurrentIndex != st.CurrentSeq {
		log.Printf("[math.SequenceCompleted] stale index=%d current=%d", p.CurrentIndex, st.CurrentSeq)
		return
	}

	cur := st.CurrentSeq
	if g.s.IsTeamMode {
		for _, team := range []string{internal.TeamBlue, internal.TeamRed} {
			if !st.TeamsScored[cur][team] {
				for _, name := range g.s.TeamMembers(team) {
					st.Eliminated[name] = true
				}
			}
		}
	} else {
		for name := range g.s.Players {
			if !st.Answered[cur][name] {
				st.Eliminated[name] = true
			}
		}
	}

	if p.NextIndex >= len(q.Sequences) || h.allEliminated(g) {
		h.finish(g, q)
		return
	}

	st.CurrentSeq = p.NextIndex
	st.Answered[p.NextIndex] = map[string]bool{}
	st.TeamsScored[p.NextIndex] = map[string]bool{}
	st.SeqStartMs[p.NextIndex] = g.nowMs()

	log.Printf("[math.SequenceCompleted] advancing to seq=%d", p.NextIndex)
	g.broadcast("math_sequence_change", map[string]any{"sequence_index": p.NextIndex})
	h.afterUpdate(g, q)
}

func (h *mathQuizHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	h.finish(g, q)
}

func (h *mathQuizHandler) finish(g *Dispatcher, q *internal.Question) {
	st := g.s.Math

	sequences := make([]map[string]any, 0, len(q.Sequences))
	for i, seq := range q.Sequences {
		sequences = append(sequences, map[string]any{
			"equation": seq.Equation,
			"answer":   seq.Answer,
			"solved":   len(st.Answered[i]),
		})
	}
	eliminated := make([]string, 0, len(st.Eliminated))
	for name := range st.Eliminated {
		eliminated = append(eliminated, name)
	}

	g.completeQuestion(map[string]any{
		"sequences":   sequences,
		"eliminated":  eliminated,
		"math_points": g.s.MathPoints,
	})
}
