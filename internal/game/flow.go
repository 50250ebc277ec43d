package game

import (
	"log"
	"slices"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// GAME FLOW
// =============================================================================

// startGame validates lobby preconditions, assigns teams, and opens the
// first question. The quiz read and word fetch already happened in the
// caller; from here on the game is offline-only.
func (g *Dispatcher) startGame(cmd startGameCmd) error {
	if g.s.IsGameRunning {
		return internal.ErrGameInProgress
	}
	if !g.s.IsQuizActive {
		return internal.ErrLobbyClosed
	}
	if len(g.s.Players) < internal.MinPlayersToStart {
		return internal.ErrNotEnoughPlayers
	}
	if len(cmd.Questions) == 0 {
		return internal.ErrInvalidArgs
	}

	g.s.IsTeamMode = cmd.TeamMode
	if cmd.TeamMode {
		g.assignTeams()
		if len(g.s.BlueTeam) < internal.MinPlayersPerTeam || len(g.s.RedTeam) < internal.MinPlayersPerTeam {
			g.s.BlueTeam, g.s.RedTeam = nil, nil
			return internal.ErrNotEnoughPlayers
		}
	}

	g.s.Questions = g.buildSchedule(cmd.Questions, cmd.Words)
	if len(g.s.Questions) == 0 {
		g.s.BlueTeam, g.s.RedTeam = nil, nil
		return internal.ErrInvalidArgs
	}
	g.s.BombDurationMs = cmd.BombDurationMs
	if g.s.BombDurationMs <= 0 {
		g.s.BombDurationMs = g.bombDurationMs()
	}
	g.s.IsGameRunning = true
	g.s.CurrentIdx = 0
	g.s.ResetQuestionState()

	q := g.s.Current()
	preview := previewFor(q)
	g.s.QuestionStartMs = g.nowMs() + internal.StartGameTime.Milliseconds() + preview.Milliseconds()

	log.Printf("[startGame] questions=%d team_mode=%v first_type=%s",
		len(cmd.Questions), cmd.TeamMode, q.Type)

	started := map[string]any{
		"question":          publicQuestion(q),
		"question_index":    0,
		"question_count":    len(g.s.Questions),
		"question_start_ms": g.s.QuestionStartMs,
		"preview_time_ms":   preview.Milliseconds(),
		"is_team_mode":      g.s.IsTeamMode,
	}
	if g.s.IsRemote {
		g.bus.Send(internal.RoomRemote, internal.Message[any]{Type: "game_started_remote", Data: started})
	}
	g.bus.Send(internal.RoomMain, internal.Message[any]{Type: "game_started", Data: started})

	for name := range g.s.Players {
		team := g.s.TeamOf(name)
		role := "player"
		if g.s.CaptainOf(team) == name {
			role = "captain"
		}
		g.sendToPlayer(name, "game_started_mobile", map[string]any{
			"team":      team,
			"role":      role,
			"is_drawer": q.Type == internal.QuestionDrawing && q.Player == name,
			"quizPhase": 1,
		})
	}

	g.initCurrentQuestion(nil)
	g.armQuestionTimer(q, internal.StartGameTime+preview)
	return nil
}

// assignTeams splits the lobby alternately by join order; the first member
// of each team is its captain.
func (g *Dispatcher) assignTeams() {
	g.s.BlueTeam, g.s.RedTeam = nil, nil
	for i, name := range g.s.JoinOrder {
		if i%2 == 0 {
			g.s.BlueTeam = append(g.s.BlueTeam, name)
		} else {
			g.s.RedTeam = append(g.s.RedTeam, name)
		}
	}
	g.s.BlueCaptainIdx, g.s.RedCaptainIdx = 0, 0
}

// nextQuestion advances the current-question pointer. Reached from the
// post-scoreboard timer; at the end of the list it routes to the final
// score instead.
func (g *Dispatcher) nextQuestion() {
	if !g.s.IsGameRunning {
		return
	}
	if g.s.CurrentIdx+1 >= len(g.s.Questions) {
		log.Printf("[nextQuestion] no more questions")
		g.broadcast("navigate_to_final_score", nil)
		return
	}

	prev := g.s.Current()
	var carry *ChainState
	if prev != nil && prev.Type == internal.QuestionWordChain &&
		g.s.Questions[g.s.CurrentIdx+1].Type == internal.QuestionWordChain {
		carry = g.s.Chain // consecutive word chains keep their turn order
	}

	g.s.ResetQuestionState()
	g.s.CurrentIdx++
	q := g.s.Current()
	preview := previewFor(q)
	g.s.QuestionStartMs = g.nowMs() + preview.Milliseconds()

	log.Printf("[nextQuestion] index=%d type=%s", g.s.CurrentIdx, q.Type)

	g.broadcast("next_question", map[string]any{
		"question":          publicQuestion(q),
		"question_index":    g.s.CurrentIdx,
		"question_count":    len(g.s.Questions),
		"question_start_ms": g.s.QuestionStartMs,
		"preview_time_ms":   preview.Milliseconds(),
	})

	g.initCurrentQuestion(carry)
	g.armQuestionTimer(q, preview)
}

// initCurrentQuestion runs the per-type Init and fixes the active team for
// the types that depend on it.
func (g *Dispatcher) initCurrentQuestion(carry *ChainState) {
	q := g.s.Current()
	switch q.Type {
	case internal.QuestionGuess:
		if g.s.IsTeamMode {
			if g.s.ActiveTeam == "" {
				g.s.ActiveTeam = internal.TeamBlue
			} else {
				g.s.ActiveTeam = OtherTeam(g.s.ActiveTeam)
			}
		}
	case internal.QuestionDrawing:
		if team := g.s.TeamOf(q.Player); team != "" {
			g.s.ActiveTeam = team
		}
	}

	if carry != nil {
		g.chain.InitCarried(g, q, carry)
		return
	}
	if h, ok := g.handlers[q.Type]; ok {
		h.Init(g, q)
	} else {
		log.Printf("[initCurrentQuestion] no handler for type=%s", q.Type)
	}
}

// armQuestionTimer arms the primary timer: lead time (preview, and the
// start-game delay on the first question) plus the answering window. Word
// chain questions are excluded; their clock starts with start_word_chain.
func (g *Dispatcher) armQuestionTimer(q *internal.Question, lead time.Duration) {
	if q.Type == internal.QuestionWordChain {
		return
	}
	g.armTimer(lead+time.Duration(q.Length)*time.Second, evTimeUp)
}

// handleTimeUp routes the primary timer expiry to the live type handler.
func (g *Dispatcher) handleTimeUp() {
	q := g.s.Current()
	if q == nil {
		log.Printf("[handleTimeUp] no active question")
		return
	}
	if h, ok := g.handlers[q.Type]; ok {
		h.TimeUp(g, q)
	}
}

// completeQuestion emits all_answers_received exactly once per question,
// cancels the primary timer, and schedules the advance past the
// scoreboard window.
func (g *Dispatcher) completeQuestion(extra map[string]any) {
	if g.s.CompletionFired {
		return
	}
	g.s.CompletionFired = true
	g.cancelTimer()

	payload := g.s.ScoreSnapshot()
	for k, v := range extra {
		payload[k] = v
	}
	payload["answer_counts"] = g.s.AnswerCounts

	log.Printf("[completeQuestion] index=%d", g.s.CurrentIdx)
	g.broadcast("all_answers_received", payload)

	if g.s.CurrentIdx+1 < len(g.s.Questions) {
		g.armTimer(internal.ScoreboardTime, evAdvanceQuestion)
	} else {
		g.armTimer(internal.ScoreboardTime, evNavigateFinal)
	}
}

// showFinalScore emits each player's ending: team total and team name in
// team mode, placement and individual score otherwise.
func (g *Dispatcher) showFinalScore() {
	if g.s.IsTeamMode {
		for name := range g.s.Players {
			team := g.s.TeamOf(name)
			g.sendToPlayer(name, "final_score", internal.FinalScoreEntry{
				Name:      name,
				TeamName:  team,
				TeamScore: g.s.TeamScores[team],
			})
		}
		g.sendToMain("final_score", g.s.ScoreSnapshot())
		return
	}

	ranking := make([]internal.FinalScoreEntry, 0, len(g.s.Players))
	for _, p := range g.s.Players {
		ranking = append(ranking, internal.FinalScoreEntry{Name: p.Name, Score: p.Score})
	}
	slices.SortStableFunc(ranking, func(a, b internal.FinalScoreEntry) int {
		return b.Score - a.Score
	})
	for i := range ranking {
		ranking[i].Placement = i + 1
		g.sendToPlayer(ranking[i].Name, "final_score", ranking[i])
	}
	g.sendToMain("final_score", map[string]any{"ranking": ranking})
}

func previewFor(q *internal.Question) time.Duration {
	if q.Type == internal.QuestionDrawing {
		return internal.PreviewTimeDrawing
	}
	return internal.PreviewTime
}

// publicQuestion strips answer material before a question record goes on
// the wire.
func publicQuestion(q *internal.Question) map[string]any {
	pub := map[string]any{
		"type":     q.Type,
		"question": q.Question,
		"category": q.Category,
		"length":   q.Length,
	}
	switch q.Type {
	case internal.QuestionABCD, internal.QuestionTrueFalse:
		pub["options"] = q.Options
	case internal.QuestionOpen:
		if q.MediaType != "" {
			pub["media_type"] = q.MediaType
			pub["media_url"] = q.MediaURL
		}
	case internal.QuestionMath:
		equations := make([]map[string]any, 0, len(q.Sequences))
		for _, seq := range q.Sequences {
			equations = append(equations, map[string]any{
				"equation": seq.Equation,
				"length":   seq.Length,
			})
		}
		pub["sequences"] = equations
	case internal.QuestionWordChain:
		pub["first_word"] = q.FirstWord
		pub["first_letter"] = q.FirstLetter
	case internal.QuestionDrawing:
		pub["player"] = q.Player
		if q.Team != "" {
			pub["team"] = q.Team
		}
	case internal.QuestionBlindMap:
		pub["anagram"] = q.Anagram
		pub["map_type"] = q.MapType
		pub["radius_preset"] = q.RadiusPreset
	}
	return pub
}
