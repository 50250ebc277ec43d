package game

import (
	"log"
	"math"
	"strings"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// BLIND_MAP
// =============================================================================

// BlindMapState runs the two-stage city hunt: phase one is the anagram race,
// phase two (and three, in team mode) is placing the city on the map. Team
// mode gives the anagram-winning team the first map attempt; missing hands
// the other team a counter-attempt.
type BlindMapState struct {
	Phase int

	Solved     map[string]bool
	SolveOrder []string
	AnagramPts map[string]int

	Locations     map[string][2]float64
	LocationOrder []string

	CaptainLoc map[string]*[2]float64
	ClueIdx    int
}

type blindMapHandler struct{}

func (h *blindMapHandler) Init(g *Dispatcher, q *internal.Question) {
	g.s.Map = &BlindMapState{
		Phase:      1,
		Solved:     make(map[string]bool),
		AnagramPts: make(map[string]int),
		Locations:  make(map[string][2]float64),
		CaptainLoc: make(map[string]*[2]float64),
	}
	g.s.ActiveTeam = ""
}

// SubmitAnagram grades one anagram attempt. Solvers are ranked by order; in
// team mode the first solve also decides which team gets the map first.
func (h *blindMapHandler) SubmitAnagram(g *Dispatcher, q *internal.Question, p anagramPayload) {
	st := g.s.Map
	if st == nil || g.s.CompletionFired || st.Phase != 1 {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}
	if st.Solved[p.PlayerName] {
		return
	}

	guess := strings.TrimSpace(p.Answer)
	if !strings.EqualFold(guess, q.CityName) {
		g.sendToPlayer(p.PlayerName, "blind_map_feedback", map[string]any{
			"feedback": answerFeedback(guess, q.CityName),
			"answer":   guess,
		})
		return
	}

	st.Solved[p.PlayerName] = true
	st.SolveOrder = append(st.SolveOrder, p.PlayerName)
	if !g.s.IsTeamMode {
		st.AnagramPts[p.PlayerName] = anagramPoints(len(st.SolveOrder), len(g.s.Players))
	}

	log.Printf("[blindMap.SubmitAnagram] player=%s solved order=%d", p.PlayerName, len(st.SolveOrder))
	g.broadcast("blind_map_anagram_solved", map[string]any{
		"player_name":  p.PlayerName,
		"solved_order": len(st.SolveOrder),
		"solved_count": len(st.SolveOrder),
	})
	g.sendToPlayer(p.PlayerName, "blind_map_feedback", map[string]any{
		"feedback": "correct",
		"order":    len(st.SolveOrder),
	})

	if g.s.IsTeamMode {
		// first solver's team takes the map
		g.s.ActiveTeam = g.s.TeamOf(p.PlayerName)
		h.transition(g, q, 2)
		return
	}
	if len(st.Solved) >= len(g.s.Players) {
		h.transition(g, q, 2)
	}
}

// transition announces the next phase and schedules the new answering window
// behind the short transition screen.
func (h *blindMapHandler) transition(g *Dispatcher, q *internal.Question, phase int) {
	st := g.s.Map
	st.Phase = phase
	startMs := g.nowMs() + internal.PhaseTransitionTime.Milliseconds()

	payload := map[string]any{
		"phase":             phase,
		"question_start_ms": startMs,
		"city_name":         q.CityName,
	}
	if g.s.IsTeamMode {
		payload["active_team"] = g.s.ActiveTeam
		payload["captain"] = g.s.CaptainOf(g.s.ActiveTeam)
	}

	log.Printf("[blindMap.transition] phase=%d active_team=%q", phase, g.s.ActiveTeam)
	g.broadcast("blind_map_phase_transition", payload)
	g.armTimer(internal.PhaseTransitionTime, evPhaseAdvance)
}

// PhaseAdvance is the end of the transition screen: the map window opens.
func (h *blindMapHandler) PhaseAdvance(g *Dispatcher, q *internal.Question) {
	if g.s.Map == nil || g.s.CompletionFired {
		return
	}
	g.s.QuestionStartMs = g.nowMs()
	g.armTimer(time.Duration(q.Length)*time.Second, evTimeUp)
}

// SubmitLocation records one map placement. In free-for-all everyone places
// once; in team mode only the active team's members place, and the captain's
// placement is the binding attempt.
func (h *blindMapHandler) SubmitLocation(g *Dispatcher, q *internal.Question, p locationPayload) {
	st := g.s.Map
	if st == nil || g.s.CompletionFired || st.Phase < 2 {
		return
	}
	if _, ok := g.s.Players[p.PlayerName]; !ok {
		return
	}

	if !g.s.IsTeamMode {
		if _, dup := st.Locations[p.PlayerName]; dup {
			return
		}
		st.Locations[p.PlayerName] = [2]float64{p.X, p.Y}
		st.LocationOrder = append(st.LocationOrder, p.PlayerName)
		g.broadcast("blind_map_location_submitted", map[string]any{
			"player_name":     p.PlayerName,
			"locations_count": len(st.Locations),
		})
		if len(st.Locations) >= len(g.s.Players) {
			h.finishFreeForAll(g, q)
		}
		return
	}

	team := g.s.TeamOf(p.PlayerName)
	if team != g.s.ActiveTeam {
		return
	}
	st.Locations[p.PlayerName] = [2]float64{p.X, p.Y}
	g.broadcast("blind_map_location_submitted", map[string]any{
		"player_name": p.PlayerName,
		"team":        team,
	})

	if p.PlayerName != g.s.CaptainOf(team) {
		return
	}

	loc := [2]float64{p.X, p.Y}
	st.CaptainLoc[team] = &loc
	if distance(p.X, p.Y, q.LocationX, q.LocationY) <= q.RadiusPreset.ExactRadius() {
		h.finishTeamHit(g, q, team)
		return
	}
	if st.Phase == 2 {
		g.s.ActiveTeam = OtherTeam(team)
		h.transition(g, q, 3)
		return
	}
	h.finishTeamMiss(g, q)
}

// CaptainPreview mirrors the captain's crosshair to teammates and the main
// screen so the team can advise before the placement is locked.
func (h *blindMapHandler) CaptainPreview(g *Dispatcher, q *internal.Question, p captainPreviewPayload) {
	if g.s.Map == nil || g.s.CompletionFired {
		return
	}
	preview := map[string]any{"team": p.Team, "x": p.X, "y": p.Y}
	g.sendToTeam(p.Team, "captain_preview_update", preview)
	g.sendToMain("captain_preview_update", preview)
}

// NextClue reveals the requested clue for the active map phase.
func (h *blindMapHandler) NextClue(g *Dispatcher, q *internal.Question, idx int) {
	st := g.s.Map
	if st == nil || g.s.CompletionFired || st.Phase < 2 {
		return
	}
	clues := q.Clues()
	if idx < 0 || idx >= len(clues) || idx > st.ClueIdx {
		return
	}
	if idx == st.ClueIdx {
		st.ClueIdx++
	}
	g.broadcast("blind_map_clue_revealed", map[string]any{
		"clue":       clues[idx],
		"clue_index": idx,
	})
}

func (h *blindMapHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	st := g.s.Map
	if st == nil || g.s.CompletionFired {
		return
	}

	switch {
	case st.Phase == 1 && !g.s.IsTeamMode:
		// anagram window over, solvers move to the map
		h.transition(g, q, 2)
	case st.Phase == 1:
		// neither team solved the anagram
		g.completeQuestion(map[string]any{
			"correct_answer": q.CityName,
			"location":       map[string]float64{"x": q.LocationX, "y": q.LocationY},
			"winning_team":   "",
		})
	case !g.s.IsTeamMode:
		h.finishFreeForAll(g, q)
	case st.Phase == 2:
		// captain never committed, counter-attempt goes to the other team
		g.s.ActiveTeam = OtherTeam(g.s.ActiveTeam)
		h.transition(g, q, 3)
	default:
		h.finishTeamMiss(g, q)
	}
}

// finishFreeForAll totals anagram points plus the map hit reward for every
// player who placed inside the radius.
func (h *blindMapHandler) finishFreeForAll(g *Dispatcher, q *internal.Question) {
	st := g.s.Map
	radius := q.RadiusPreset.ExactRadius()

	results := make([]map[string]any, 0, len(g.s.Players))
	for name := range g.s.Players {
		earned := st.AnagramPts[name]
		hit := false
		loc, placed := st.Locations[name]
		if placed && distance(loc[0], loc[1], q.LocationX, q.LocationY) <= radius {
			hit = true
			earned += internal.MapPhasePoints
		}
		g.s.AddPlayerScore(name, earned)
		g.sendToPlayer(name, "answer_correctness", internal.AnswerCorrectness{
			Correct:       hit,
			PointsEarned:  earned,
			TotalScore:    g.s.Players[name].Score,
			CorrectAnswer: q.CityName,
		})
		entry := map[string]any{
			"player_name": name,
			"points":      earned,
			"hit":         hit,
		}
		if placed {
			entry["x"], entry["y"] = loc[0], loc[1]
		}
		results = append(results, entry)
	}

	g.completeQuestion(map[string]any{
		"correct_answer": q.CityName,
		"location":       map[string]float64{"x": q.LocationX, "y": q.LocationY},
		"results":        results,
	})
}

// finishTeamHit ends the round on a captain placing inside the radius.
func (h *blindMapHandler) finishTeamHit(g *Dispatcher, q *internal.Question, team string) {
	g.s.AddTeamScore(team, internal.BlindMapTeamModePoints)
	h.notifyTeams(g, team, internal.BlindMapTeamModePoints)
	log.Printf("[blindMap.finishTeamHit] team=%s hit", team)
	g.completeQuestion(map[string]any{
		"correct_answer": q.CityName,
		"location":       map[string]float64{"x": q.LocationX, "y": q.LocationY},
		"winning_team":   team,
		"exact_hit":      true,
	})
}

// finishTeamMiss settles a round where no captain hit: the closer captain
// takes the consolation reward. With no captain placements at all the round
// ends scoreless.
func (h *blindMapHandler) finishTeamMiss(g *Dispatcher, q *internal.Question) {
	st := g.s.Map

	winner := ""
	best := math.Inf(1)
	for _, team := range []string{internal.TeamBlue, internal.TeamRed} {
		loc := st.CaptainLoc[team]
		if loc == nil {
			continue
		}
		if d := distance(loc[0], loc[1], q.LocationX, q.LocationY); d < best {
			best = d
			winner = team
		}
	}

	if winner != "" {
		g.s.AddTeamScore(winner, internal.MapPhasePoints)
		h.notifyTeams(g, winner, internal.MapPhasePoints)
	} else {
		// no captain ever placed: everyone sees the same scoreless verdict
		g.broadcast("blind_map_no_winner", map[string]any{
			"message":        "nobody got it",
			"correct_answer": q.CityName,
		})
	}

	log.Printf("[blindMap.finishTeamMiss] winner=%q distance=%v", winner, best)
	g.completeQuestion(map[string]any{
		"correct_answer": q.CityName,
		"location":       map[string]float64{"x": q.LocationX, "y": q.LocationY},
		"winning_team":   winner,
		"exact_hit":      false,
	})
}

func (h *blindMapHandler) notifyTeams(g *Dispatcher, winner string, points int) {
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

// distance is the euclidean distance in normalized map coordinates.
func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
