package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

func blindMapQuestion(preset internal.RadiusPreset) internal.Question {
	return internal.Question{
		Type:         internal.QuestionBlindMap,
		CityName:     "Brno",
		Anagram:      "ONRB",
		LocationX:    0.5,
		LocationY:    0.5,
		MapType:      "cz",
		RadiusPreset: preset,
		Clue1:        "Moravská metropole",
		Clue2:        "Veletrhy",
		Length:       30,
	}
}

func TestBlindMapAnagramRace(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, false)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Alice", Answer: "brno"})
	require.True(t, g.s.Map.Solved["Alice"])
	assert.Equal(t, 100, g.s.Map.AnagramPts["Alice"])
	assert.Equal(t, 1, g.s.Map.Phase)

	solved, ok := bus.lastOfType("blind_map_anagram_solved")
	require.True(t, ok)
	assert.EqualValues(t, 1, payload(t, solved)["solved_order"])

	// wrong guess only gets private feedback
	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "bron"})
	assert.False(t, g.s.Map.Solved["Bob"])

	// the last solve moves everyone to the map phase
	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	assert.Equal(t, 50, g.s.Map.AnagramPts["Bob"])
	assert.Equal(t, 2, g.s.Map.Phase)
	_, ok = bus.lastOfType("blind_map_phase_transition")
	assert.True(t, ok)
}

func TestBlindMapFreeForAllScoring(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, false)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Alice", Answer: "Brno"})
	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	g.bmap.PhaseAdvance(g, q)

	// Alice lands 0.02 away, inside the HARD radius of 0.03; Bob misses
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Alice", X: 0.52, Y: 0.5})
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Bob", X: 0.6, Y: 0.6})

	require.True(t, g.s.CompletionFired)
	assert.Equal(t, 100+100, g.s.Players["Alice"].Score)
	assert.Equal(t, 50, g.s.Players["Bob"].Score)
}

func TestBlindMapEasyRadiusIsWider(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusEasy)}, nil, false)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Alice", Answer: "Brno"})
	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	g.bmap.PhaseAdvance(g, q)

	// 0.04 away misses HARD but hits EASY (0.045)
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Alice", X: 0.54, Y: 0.5})
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Bob", X: 0.9, Y: 0.9})

	assert.Equal(t, 100+100, g.s.Players["Alice"].Score)
}

func TestBlindMapTeamFirstSolveTakesMap(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, true)
	q := g.s.Current()

	// Bob (red) solves first: red gets the map
	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	assert.Equal(t, internal.TeamRed, g.s.ActiveTeam)
	assert.Equal(t, 2, g.s.Map.Phase)

	transition, ok := bus.lastOfType("blind_map_phase_transition")
	require.True(t, ok)
	assert.Equal(t, internal.TeamRed, payload(t, transition)["active_team"])
	assert.Equal(t, "Bob", payload(t, transition)["captain"])
}

func TestBlindMapTeamCaptainHitEndsRound(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, true)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	g.bmap.PhaseAdvance(g, q)

	// non-captain placements advise but never settle
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Dave", X: 0.51, Y: 0.5})
	assert.False(t, g.s.CompletionFired)

	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Bob", X: 0.51, Y: 0.5})
	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.BlindMapTeamModePoints, g.s.TeamScores[internal.TeamRed])
}

func TestBlindMapTeamMissHandsCounterAttempt(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, true)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	g.bmap.PhaseAdvance(g, q)

	// red captain misses by 0.2
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Bob", X: 0.7, Y: 0.5})
	assert.False(t, g.s.CompletionFired)
	assert.Equal(t, 3, g.s.Map.Phase)
	assert.Equal(t, internal.TeamBlue, g.s.ActiveTeam)
	g.bmap.PhaseAdvance(g, q)

	// blue captain misses too, but lands closer
	g.bmap.SubmitLocation(g, q, locationPayload{PlayerName: "Alice", X: 0.6, Y: 0.5})

	require.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.MapPhasePoints, g.s.TeamScores[internal.TeamBlue])
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamRed])
}

func TestBlindMapNoCaptainPlacementEndsNeutral(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, true)
	q := g.s.Current()

	g.bmap.SubmitAnagram(g, q, anagramPayload{PlayerName: "Bob", Answer: "Brno"})
	g.bmap.PhaseAdvance(g, q)

	// red's window expires without a captain placement, then blue's does too
	g.bmap.TimeUp(g, q)
	require.Equal(t, 3, g.s.Map.Phase)
	g.bmap.PhaseAdvance(g, q)
	g.bmap.TimeUp(g, q)

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamBlue])
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamRed])
	neutral, ok := bus.lastOfType("blind_map_no_winner")
	require.True(t, ok)
	assert.Equal(t, "nobody got it", payload(t, neutral)["message"])
}

func TestBlindMapCluesRevealInOrder(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, false)
	q := g.s.Current()
	g.s.Map.Phase = 2

	// skipping ahead is refused
	g.bmap.NextClue(g, q, 1)
	assert.Empty(t, bus.byType("blind_map_clue_revealed"))

	g.bmap.NextClue(g, q, 0)
	g.bmap.NextClue(g, q, 1)
	msgs := bus.byType("blind_map_clue_revealed")
	require.Len(t, msgs, 2)
	assert.Equal(t, "Moravská metropole", payload(t, msgs[0])["clue"])
	assert.Equal(t, "Veletrhy", payload(t, msgs[1])["clue"])

	// only two clues exist
	g.bmap.NextClue(g, q, 2)
	assert.Len(t, bus.byType("blind_map_clue_revealed"), 2)
}

func TestBlindMapPhaseOneTimeoutTeamModeEndsScoreless(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{blindMapQuestion(internal.RadiusHard)}, nil, true)
	q := g.s.Current()

	g.bmap.TimeUp(g, q)

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamBlue])
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamRed])
	recap, ok := bus.lastOfType("all_answers_received")
	require.True(t, ok)
	assert.Equal(t, "", payload(t, recap)["winning_team"])
}
