package game

import (
	"log"
	"math"
	"slices"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// GUESS_A_NUMBER
// =============================================================================

// GuessNumberState carries both rulesets: free-for-all closest-guess ranking
// and the two-phase team duel (first team estimates, second team votes
// more/less against the captain's final answer).
type GuessNumberState struct {
	Phase int

	Guesses    map[string]float64
	GuessOrder []string

	FirstTeam   string
	FinalAnswer float64
	Votes       map[string]string
}

type guessNumberHandler struct{}

func (h *guessNumberHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Guess = &GuessNumberState{
		Phase:     1,
		Guesses:   make(map[string]float64),
		Votes:     make(map[string]string),
		FirstTeam: g.s.ActiveTeam,
	}
}

// Submit records one numeric guess. In team mode only the active team's
// members may guess, and their running list is mirrored to teammates and the
// main screen so the captain can pick a final answer.
func (h *guessNumberHandler) Submit(g *Dispatcher, q *internal.Question, p numberGuessPayload) {
	st := g.s.Guess
	if st == nil || g.s.CompletionFired {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}

	if g.s.IsTeamMode {
		if st.Phase != 1 || g.s.TeamOf(p.PlayerName) != st.FirstTeam {
			return
		}
		if _, dup := st.Guesses[p.PlayerName]; !dup {
			st.GuessOrder = append(st.GuessOrder, p.PlayerName)
		}
		st.Guesses[p.PlayerName] = p.Value

		update := map[string]any{"guesses": h.teamGuesses(st)}
		g.sendToTeam(st.FirstTeam, "team_guesses_update", update)
		g.sendToMain("team_guesses_update", update)
		return
	}

	if _, dup := st.Guesses[p.PlayerName]; dup {
		return
	}
	st.Guesses[p.PlayerName] = p.Value
	st.GuessOrder = append(st.GuessOrder, p.PlayerName)

	g.s.AnswersReceived++
	g.broadcast("answer_submitted", map[string]any{
		"answers_received": g.s.AnswersReceived,
	})

	if len(st.Guesses) >= len(g.s.Players) {
		h.finishFreeForAll(g, q)
	}
}

func (h *guessNumberHandler) teamGuesses(st *GuessNumberState) []map[string]any {
	out := make([]map[string]any, 0, len(st.GuessOrder))
	for _, name := range st.GuessOrder {
		out = append(out, map[string]any{"player_name": name, "value": st.Guesses[name]})
	}
	return out
}

// CaptainChoice locks the first team's final answer. An exact hit ends the
// question with the double reward; otherwise the duel moves to phase two and
// the other team votes whether the real answer is higher or lower.
func (h *guessNumberHandler) CaptainChoice(g *Dispatcher, q *internal.Question, p captainChoicePayload) {
	st := g.s.Guess
	if st == nil || g.s.CompletionFired || !g.s.IsTeamMode || st.Phase != 1 {
		return
	}
	if p.PlayerName != g.s.CaptainOf(st.FirstTeam) {
		log.Printf("[guess.CaptainChoice] player=%s is not the captain of %s", p.PlayerName, st.FirstTeam)
		return
	}

	st.FinalAnswer = p.FinalAnswer
	h.resolveFirstPhase(g, q, p.FinalAnswer)
}

func (h *guessNumberHandler) resolveFirstPhase(g *Dispatcher, q *internal.Question, final float64) {
	st := g.s.Guess
	st.FinalAnswer = final

	if math.Abs(final-q.NumberAnswer) < 1e-4 {
		g.s.AddTeamScore(st.FirstTeam, internal.PointsForCorrectAnswerGuessANumberFirstTurn)
		h.notifyTeams(g, st.FirstTeam, internal.PointsForCorrectAnswerGuessANumberFirstTurn)
		log.Printf("[guess.resolveFirstPhase] team=%s exact hit", st.FirstTeam)
		g.completeQuestion(map[string]any{
			"correct_answer":  q.NumberAnswer,
			"winning_team":    st.FirstTeam,
			"first_team_answer": final,
			"exact_guess":     true,
		})
		return
	}

	st.Phase = 2
	g.s.ActiveTeam = OtherTeam(st.FirstTeam)
	log.Printf("[guess.resolveFirstPhase] team=%s answered %v, voting moves to %s",
		st.FirstTeam, final, g.s.ActiveTeam)
	g.broadcast("second_team_vote", map[string]any{
		"phase":             2,
		"first_team_answer": final,
		"active_team":       g.s.ActiveTeam,
	})
	// the voting team gets a fresh answering window
	g.armTimer(time.Duration(q.Length)*time.Second, evTimeUp)
}

// MoreLessVote records a second-phase vote. The duel resolves as soon as one
// direction holds a strict majority of the team, or when everyone has voted.
func (h *guessNumberHandler) MoreLessVote(g *Dispatcher, q *internal.Question, p moreLessVotePayload) {
	st := g.s.Guess
	if st == nil || g.s.CompletionFired || st.Phase != 2 {
		return
	}
	second := OtherTeam(st.FirstTeam)
	if g.s.TeamOf(p.PlayerName) != second {
		return
	}
	if p.Vote != "more" && p.Vote != "less" {
		return
	}

	st.Votes[p.PlayerName] = p.Vote
	members := len(g.s.TeamMembers(second))
	g.sendToTeam(second, "team_guesses_update", map[string]any{
		"votes_received": len(st.Votes),
		"votes_total":    members,
	})

	more, less := h.tallyVotes(st)
	if more*2 > members || less*2 > members || len(st.Votes) >= members {
		h.resolveSecondPhase(g, q)
	}
}

func (h *guessNumberHandler) tallyVotes(st *GuessNumberState) (more, less int) {
	for _, v := range st.Votes {
		if v == "more" {
			more++
		} else {
			less++
		}
	}
	return more, less
}

// resolveSecondPhase settles the duel from the collected votes. Ties fall to
// the captain's vote; a tie without a captain vote counts as the wrong
// direction, handing the win to the first team.
func (h *guessNumberHandler) resolveSecondPhase(g *Dispatcher, q *internal.Question) {
	st := g.s.Guess
	second := OtherTeam(st.FirstTeam)
	more, less := h.tallyVotes(st)

	correctDir := "less"
	if q.NumberAnswer > st.FinalAnswer {
		correctDir = "more"
	}

	var finalDir string
	switch {
	case more > less:
		finalDir = "more"
	case less > more:
		finalDir = "less"
	default:
		if captainVote, ok := st.Votes[g.s.CaptainOf(second)]; ok {
			finalDir = captainVote
		} else {
			// unresolved tie loses the duel
			if correctDir == "more" {
				finalDir = "less"
			} else {
				finalDir = "more"
			}
		}
	}

	winner := st.FirstTeam
	if finalDir == correctDir {
		winner = second
	}
	g.s.AddTeamScore(winner, internal.PointsForCorrectAnswerGuessANumber)
	h.notifyTeams(g, winner, internal.PointsForCorrectAnswerGuessANumber)

	log.Printf("[guess.resolveSecondPhase] votes more=%d less=%d dir=%s winner=%s",
		more, less, finalDir, winner)
	g.completeQuestion(map[string]any{
		"correct_answer":    q.NumberAnswer,
		"winning_team":      winner,
		"first_team_answer": st.FinalAnswer,
		"final_vote":        finalDir,
	})
}

func (h *guessNumberHandler) notifyTeams(g *Dispatcher, winner string, points int) {
	for _, team := range []string{internal.TeamBlue, internal.TeamRed} {
		won := team == winner
		earned := 0
		if won {
			earned = points
		}
		g.sendToTeam(team, "answer_correctness", internal.AnswerCorrectness{
			Correct:      won,
			PointsEarned: earned,
			IsTeamScore:  true,
			TotalScore:   g.s.TeamScores[team],
		})
	}
}

// finishFreeForAll ranks guesses by distance, submit order breaking ties, and
// pays placement plus an accuracy bonus.
func (h *guessNumberHandler) finishFreeForAll(g *Dispatcher, q *internal.Question) {
	st := g.s.Guess
	type ranked struct {
		name  string
		guess float64
		diff  float64
	}

	entries := make([]ranked, 0, len(st.GuessOrder))
	for _, name := range st.GuessOrder {
		guess := st.Guesses[name]
		entries = append(entries, ranked{name: name, guess: guess, diff: math.Abs(guess - q.NumberAnswer)})
	}
	slices.SortStableFunc(entries, func(a, b ranked) int {
		switch {
		case a.diff < b.diff:
			return -1
		case a.diff > b.diff:
			return 1
		default:
			return 0
		}
	})

	n := len(g.s.Players)
	results := make([]map[string]any, 0, n)
	for i, e := range entries {
		placement := i + 1
		bonus, accuracy := accuracyBonus(e.guess, q.NumberAnswer)
		earned := placementPoints(placement, n) + bonus
		g.s.AddPlayerScore(e.name, earned)
		g.sendToPlayer(e.name, "answer_correctness", internal.AnswerCorrectness{
			Correct:       bonus > 0,
			PointsEarned:  earned,
			TotalScore:    g.s.Players[e.name].Score,
			Placement:     placement,
			Accuracy:      accuracy,
			OwnGuess:      e.guess,
			CorrectAnswer: q.NumberAnswer,
		})
		results = append(results, map[string]any{
			"player_name": e.name,
			"guess":       e.guess,
			"placement":   placement,
			"points":      earned,
		})
	}

	// players who never guessed rank behind everyone with no points
	for name := range g.s.Players {
		if _, ok := st.Guesses[name]; ok {
			continue
		}
		g.sendToPlayer(name, "answer_correctness", internal.AnswerCorrectness{
			Correct:       false,
			Placement:     n + 1,
			Accuracy:      "none",
			CorrectAnswer: q.NumberAnswer,
			Message:       "too late",
		})
	}

	g.completeQuestion(map[string]any{
		"correct_answer": q.NumberAnswer,
		"results":        results,
	})
}

// TimeUp settles whatever phase is live: phase one falls back to the average
// of the team guesses when the captain never confirmed, phase two resolves
// from the votes cast so far.
func (h *guessNumberHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	st := g.s.Guess
	if st == nil || g.s.CompletionFired {
		return
	}

	if !g.s.IsTeamMode {
		h.finishFreeForAll(g, q)
		return
	}

	if st.Phase == 1 {
		final := 0.0
		if len(st.Guesses) > 0 {
			for _, v := range st.Guesses {
				final += v
			}
			final /= float64(len(st.Guesses))
		}
		log.Printf("[guess.TimeUp] phase=1 averaging %d guesses -> %v", len(st.Guesses), final)
		h.resolveFirstPhase(g, q, final)
		return
	}
	h.resolveSecondPhase(g, q)
}
