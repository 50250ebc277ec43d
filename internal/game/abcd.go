package game

import (
	"log"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// ABCD / TRUE_FALSE
// =============================================================================

// AbcdState tracks who may still submit for the current choice question.
type AbcdState struct {
	Answered  map[string]bool
	TeamsDone map[string]bool
}

type abcdHandler struct{}

func (h *abcdHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Abcd = &AbcdState{
		Answered:  make(map[string]bool),
		TeamsDone: make(map[string]bool),
	}
}

// Submit resolves one choice answer. A correct answer pays the base plus a
// speed bonus that decays over the answering window; in team mode the whole
// team is locked by the first member to answer.
func (h *abcdHandler) Submit(g *Dispatcher, q *internal.Question, p submitAnswerPayload) {
	st := g.s.Abcd
	if st == nil || g.s.CompletionFired {
		return
	}
	if st.Answered[p.PlayerName] {
		return // idempotent: re-sends never move scores or counters
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}

	team := g.s.TeamOf(p.PlayerName)
	if g.s.IsTeamMode {
		if team == "" || st.TeamsDone[team] {
			return
		}
	}

	correct := p.Answer == q.Answer
	earned := 0
	if correct {
		timeTaken := clampTimeTaken(p.AnswerTime, g.s.QuestionStartMs, q.LengthMs())
		earned = internal.PointsForCorrectAnswer +
			speedPoints(internal.PointsForCorrectAnswer, timeTaken, q.LengthMs())
	}

	if g.s.IsTeamMode {
		st.TeamsDone[team] = true
		for _, member := range g.s.TeamMembers(team) {
			st.Answered[member] = true
		}
		g.s.AddTeamScore(team, earned)
		g.sendToTeam(team, "answer_correctness", internal.AnswerCorrectness{
			Correct:      correct,
			PointsEarned: earned,
			IsTeamScore:  true,
			TotalScore:   g.s.TeamScores[team],
		})
	} else {
		st.Answered[p.PlayerName] = true
		g.s.AddPlayerScore(p.PlayerName, earned)
		g.sendToPlayer(p.PlayerName, "answer_correctness", internal.AnswerCorrectness{
			Correct:      correct,
			PointsEarned: earned,
			TotalScore:   g.s.Players[p.PlayerName].Score,
		})
	}

	g.s.AnswersReceived++
	if p.Answer >= 0 && p.Answer < len(g.s.AnswerCounts) {
		g.s.AnswerCounts[p.Answer]++
	}
	g.broadcast("answer_submitted", map[string]any{
		"answers_received": g.s.AnswersReceived,
	})

	log.Printf("[abcd.Submit] player=%s answer=%d correct=%v earned=%d",
		p.PlayerName, p.Answer, correct, earned)

	if h.isComplete(g) {
		h.finish(g, q)
	}
}

func (h *abcdHandler) isComplete(g *Dispatcher) bool {
	st := g.s.Abcd
	if g.s.IsTeamMode {
		return len(st.TeamsDone) >= 2
	}
	return len(st.Answered) >= len(g.s.Players)
}

func (h *abcdHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	h.finish(g, q)
}

func (h *abcdHandler) finish(g *Dispatcher, q *internal.Question) {
	g.completeQuestion(map[string]any{
		"correct_answer": q.Answer,
	})
}
