package game

import (
	"log"
	"slices"
	"strings"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// DRAWING
// =============================================================================

// DrawState tracks the guessing progress for one drawing round. Canvas data
// itself is an opaque relay: the server never interprets strokes, it only
// fans them out to the displays.
type DrawState struct {
	Correct  map[string]bool
	Attempts []internal.PlayerAnswer
	Revealed map[int]bool

	DrawerPoints int
}

type drawingHandler struct{}

func (h *drawingHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Draw = &DrawState{
		Correct:  make(map[string]bool),
		Revealed: make(map[int]bool),
	}
	// the drawer privately receives the three word choices
	g.sendToPlayer(q.Player, "drawing_word_response", map[string]any{
		"words":     q.Words,
		"is_drawer": true,
	})
}

// SelectWord locks the drawer's word in, full word to the drawer, masked to
// everyone else. A late selection halves the drawer's rewards for the round.
func (h *drawingHandler) SelectWord(g *Dispatcher, q *internal.Question, p selectWordPayload) {
	st := g.s.Draw
	if st == nil || g.s.CompletionFired {
		return
	}
	if p.PlayerName != q.Player {
		log.Printf("[draw.SelectWord] player=%s is not the drawer", p.PlayerName)
		return
	}
	if !slices.Contains(q.Words, p.SelectedWord) {
		log.Printf("[draw.SelectWord] word=%q not offered", p.SelectedWord)
		return
	}

	q.SelectedWord = p.SelectedWord
	q.IsLateSelection = p.IsLateSelection
	st.Correct = make(map[string]bool)
	st.Attempts = nil
	st.Revealed = make(map[int]bool)

	log.Printf("[draw.SelectWord] drawer=%s word=%q late=%v", q.Player, p.SelectedWord, p.IsLateSelection)
	g.sendToPlayer(q.Player, "word_selected", map[string]any{
		"word":              p.SelectedWord,
		"is_late_selection": p.IsLateSelection,
	})
	g.broadcast("word_selected", map[string]any{
		"masked_word": maskWord(p.SelectedWord, st.Revealed),
	})
}

// Update relays a canvas frame from the drawer to the displays.
func (h *drawingHandler) Update(g *Dispatcher, q *internal.Question, p drawingUpdatePayload) {
	if g.s.CompletionFired {
		return
	}
	if p.PlayerName != "" && p.PlayerName != q.Player {
		return
	}
	g.sendToMain("drawing_update_broadcast", map[string]any{
		"drawingData": p.DrawingData,
		"action":      p.Action,
	})
}

// Submit grades one guess against the selected word. Correct guessers earn
// speed points and feed the drawer's per-guesser share.
func (h *drawingHandler) Submit(g *Dispatcher, q *internal.Question, p submitTextPayload) {
	st := g.s.Draw
	if st == nil || g.s.CompletionFired || q.SelectedWord == "" {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}
	if p.PlayerName == q.Player {
		g.sendToPlayer(p.PlayerName, "drawing_answer_feedback", map[string]any{
			"feedback": "own_drawing",
		})
		return
	}
	if g.s.IsTeamMode && g.s.TeamOf(p.PlayerName) != g.s.ActiveTeam {
		g.sendToPlayer(p.PlayerName, "drawing_answer_feedback", map[string]any{
			"feedback": "other_team_drawing",
		})
		return
	}
	if st.Correct[p.PlayerName] {
		return
	}

	guess := strings.TrimSpace(p.Answer)
	if !strings.EqualFold(guess, q.SelectedWord) {
		st.Attempts = append(st.Attempts, internal.PlayerAnswer{
			Name:       p.PlayerName,
			Answer:     guess,
			IsCorrect:  false,
			Similarity: similarity(guess, q.SelectedWord),
		})
		g.sendToPlayer(p.PlayerName, "drawing_answer_feedback", map[string]any{
			"feedback": answerFeedback(guess, q.SelectedWord),
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
		g.s.AddTeamScore(g.s.ActiveTeam, earned)
		g.sendToTeam(g.s.ActiveTeam, "answer_correctness", internal.AnswerCorrectness{
			Correct:      true,
			PointsEarned: earned,
			IsTeamScore:  true,
			TotalScore:   g.s.TeamScores[g.s.ActiveTeam],
		})
	} else {
		g.s.AddPlayerScore(p.PlayerName, earned)
		g.sendToPlayer(p.PlayerName, "answer_correctness", internal.AnswerCorrectness{
			Correct:      true,
			PointsEarned: earned,
			TotalScore:   g.s.Players[p.PlayerName].Score,
		})
		share := h.drawerShare(g, q, 1)
		st.DrawerPoints += share
		g.s.AddPlayerScore(q.Player, share)
	}

	log.Printf("[draw.Submit] player=%s guessed %q earned=%d", p.PlayerName, guess, earned)
	g.broadcast("drawing_answer_submitted", map[string]any{
		"player_name":   p.PlayerName,
		"correct_count": len(st.Correct),
	})

	if h.isComplete(g, q) {
		h.finish(g, q)
	}
}

// drawerShare is the drawer's cut per correct guesser: the reward pool split
// across potential guessers, halved when the word was picked late.
func (h *drawingHandler) drawerShare(g *Dispatcher, q *internal.Question, guessers int) int {
	total := h.totalGuessers(g, q)
	if total == 0 {
		return 0
	}
	pool := internal.PointsForCorrectAnswer
	if q.IsLateSelection {
		pool /= 2
	}
	return pool / total * guessers
}

func (h *drawingHandler) totalGuessers(g *Dispatcher, q *internal.Question) int {
	if g.s.IsTeamMode {
		return len(g.s.TeamMembers(g.s.ActiveTeam)) - 1
	}
	return len(g.s.Players) - 1
}

func (h *drawingHandler) isComplete(g *Dispatcher, q *internal.Question) bool {
	st := g.s.Draw
	if g.s.IsTeamMode {
		return len(st.Correct) >= 1
	}
	return len(st.Correct) >= h.totalGuessers(g, q)
}

// RevealLetter uncovers a random hidden letter of the selected word, capped
// at half its letters.
func (h *drawingHandler) RevealLetter(g *Dispatcher, q *internal.Question) {
	st := g.s.Draw
	if st == nil || g.s.CompletionFired || q.SelectedWord == "" {
		return
	}

	runes := []rune(q.SelectedWord)
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
	g.broadcast("drawing_letter_revealed", map[string]any{
		"mask": maskWord(q.SelectedWord, st.Revealed),
	})
}

// ResendWord answers a reconnecting client: full word to the drawer, the
// current mask to the displays.
func (h *drawingHandler) ResendWord(g *Dispatcher, q *internal.Question) {
	st := g.s.Draw
	if st == nil {
		return
	}
	if q.SelectedWord == "" {
		g.sendToPlayer(q.Player, "drawing_word_response", map[string]any{
			"words":     q.Words,
			"is_drawer": true,
		})
		return
	}
	g.sendToPlayer(q.Player, "drawing_word_response", map[string]any{
		"word":      q.SelectedWord,
		"is_drawer": true,
	})
	g.sendToMain("drawing_word_response", map[string]any{
		"masked_word": maskWord(q.SelectedWord, st.Revealed),
	})
}

func (h *drawingHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	h.finish(g, q)
}

// finish pays the drawer's completion bonus when every guesser got the word,
// then closes the question with the recap and the drawer's tally.
func (h *drawingHandler) finish(g *Dispatcher, q *internal.Question) {
	st := g.s.Draw
	if st == nil || g.s.CompletionFired {
		return
	}

	// everyone guessing the word earns the drawer a flat bonus
	const completionBonus = 50

	total := h.totalGuessers(g, q)
	if !g.s.IsTeamMode && total > 0 && len(st.Correct) >= total {
		bonus := completionBonus
		if q.IsLateSelection {
			bonus /= 2
		}
		st.DrawerPoints += bonus
		g.s.AddPlayerScore(q.Player, bonus)
	}

	var drawerTotal int
	if p, ok := g.s.Players[q.Player]; ok {
		drawerTotal = p.Score
	}

	g.completeQuestion(map[string]any{
		"selected_word":  q.SelectedWord,
		"player_answers": sortAttempts(st.Attempts),
		"drawer_stats": internal.DrawerStats{
			PointsEarned:    st.DrawerPoints,
			TotalPoints:     drawerTotal,
			CorrectCount:    len(st.Correct),
			TotalGuessers:   total,
			IsLateSelection: q.IsLateSelection,
		},
	})
}
