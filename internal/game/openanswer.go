package game

import (
	"log"
	"strings"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// OPEN_ANSWER
// =============================================================================

// OpenAnswerState records who already hit the answer and which letters the
// host revealed as hints.
type OpenAnswerState struct {
	Correct     map[string]bool
	TeamCorrect map[string]bool
	Revealed    map[int]bool
	Attempts    []internal.PlayerAnswer
}

type openAnswerHandler struct{}

func (h *openAnswerHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Open = &OpenAnswerState{
		Correct:     make(map[string]bool),
		TeamCorrect: make(map[string]bool),
		Revealed:    make(map[int]bool),
	}
}

// Submit grades a free-text attempt. Wrong attempts never block the player,
// they only get a private similarity hint back.
func (h *openAnswerHandler) Submit(g *Dispatcher, q *internal.Question, p submitTextPayload) {
	st := g.s.Open
	if st == nil || g.s.CompletionFired {
		return
	}
	if st.Correct[p.PlayerName] {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}
	team := g.s.TeamOf(p.PlayerName)
	if g.s.IsTeamMode && st.TeamCorrect[team] {
		return
	}

	guess := strings.TrimSpace(p.Answer)
	target := strings.TrimSpace(q.OpenAnswer)

	if !strings.EqualFold(guess, target) {
		feedback := answerFeedback(guess, target)
		st.Attempts = append(st.Attempts, internal.PlayerAnswer{
			Name:       p.PlayerName,
			Answer:     guess,
			IsCorrect:  false,
			Similarity: similarity(guess, target),
		})
		g.sendToPlayer(p.PlayerName, "open_answer_feedback", map[string]any{
			"feedback": feedback,
			"answer":   guess,
		})
		return
	}

	timeTaken := clampTimeTaken(p.AnswerTime, g.s.QuestionStartMs, q.LengthMs())
	earned := internal.PointsForCorrectAnswer +
		speedPoints(internal.PointsForCorrectAnswer, timeTaken, q.LengthMs())

	st.Correct[p.PlayerName] = true
	st.Attempts = append(st.Attempts, internal.PlayerAnswer{
		Name:       p.PlayerName,
		Answer:     guess,
		IsCorrect:  true,
		Similarity: 1,
	})

	if g.s.IsTeamMode {
		st.TeamCorrect[team] = true
		g.s.AddTeamScore(team, earned)
		g.sendToTeam(team, "answer_correctness", internal.AnswerCorrectness{
			Correct:      true,
			PointsEarned: earned,
			IsTeamScore:  true,
			TotalScore:   g.s.TeamScores[team],
		})
	} else {
		g.s.AddPlayerScore(p.PlayerName, earned)
		g.sendToPlayer(p.PlayerName, "answer_correctness", internal.AnswerCorrectness{
			Correct:      true,
			PointsEarned: earned,
			TotalScore:   g.s.Players[p.PlayerName].Score,
		})
	}

	g.s.AnswersReceived++
	g.broadcast("answer_submitted", map[string]any{
		"answers_received": g.s.AnswersReceived,
		"correct_count":    len(st.Correct),
	})

	log.Printf("[openAnswer.Submit] player=%s correct earned=%d", p.PlayerName, earned)

	if h.isComplete(g) {
		h.finish(g, q)
	}
}

func (h *openAnswerHandler) isComplete(g *Dispatcher) bool {
	st := g.s.Open
	if g.s.IsTeamMode {
		return len(st.TeamCorrect) >= 2
	}
	return len(st.Correct) >= len(g.s.Players)
}

// RevealLetter uncovers one hidden letter chosen at random, up to half of the
// answer's non-space letters, and broadcasts the updated mask.
func (h *openAnswerHandler) RevealLetter(g *Dispatcher, q *internal.Question) {
	st := g.s.Open
	if st == nil || g.s.CompletionFired {
		return
	}

	runes := []rune(q.OpenAnswer)
	var hidden []int
	total := 0
	for i, r := range runes {
		if r == ' ' {
			continue
		}
		total++
		if !st.Revealed[i] {
			hidden = append(hidden, i)
		}
	}
	if total == 0 || len(st.Revealed) >= total/2 || len(hidden) == 0 {
		return
	}

	idx := hidden[g.rng.Intn(len(hidden))]
	st.Revealed[idx] = true

	log.Printf("[openAnswer.RevealLetter] revealed=%d/%d", len(st.Revealed), total)
	g.broadcast("open_answer_letter_revealed", map[string]any{
		"mask": maskWord(q.OpenAnswer, st.Revealed),
	})
}

func (h *openAnswerHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	h.finish(g, q)
}

func (h *openAnswerHandler) finish(g *Dispatcher, q *internal.Question) {
	st := g.s.Open
	g.completeQuestion(map[string]any{
		"correct_answer": q.OpenAnswer,
		"player_answers": sortAttempts(st.Attempts),
		"correct_count":  len(st.Correct),
	})
}

// maskWord renders a word with unrevealed letters replaced by underscores.
// Spaces always stay visible.
func maskWord(word string, revealed map[int]bool) string {
	runes := []rune(word)
	masked := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case r == ' ':
			masked[i] = ' '
		case revealed[i]:
			masked[i] = r
		default:
			masked[i] = '_'
		}
	}
	return string(masked)
}
