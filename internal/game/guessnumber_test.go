package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

func guessQuestion(answer float64) internal.Question {
	return internal.Question{
		Type:         internal.QuestionGuess,
		NumberAnswer: answer,
		Length:       60,
	}
}

func TestGuessNumberFreeForAllRanking(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(1000)}, nil, false)
	q := g.s.Current()

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Alice", Value: 1000}) // exact
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Bob", Value: 1040})   // close
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Carol", Value: 1500}) // far
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Dave", Value: 9000})  // far

	require.True(t, g.s.CompletionFired)
	// first place + exact bonus
	assert.Equal(t, 100+200, g.s.Players["Alice"].Score)
	// second place + close bonus
	assert.Equal(t, 75+100, g.s.Players["Bob"].Score)
	assert.Equal(t, 50, g.s.Players["Carol"].Score)
	assert.Equal(t, 25, g.s.Players["Dave"].Score)

	msgs := bus.byType("answer_correctness")
	require.Len(t, msgs, 4)
	first, ok := msgs[0].Msg.Data.(internal.AnswerCorrectness)
	require.True(t, ok)
	assert.Equal(t, 1, first.Placement)
	assert.Equal(t, "exact", first.Accuracy)
}

func TestGuessNumberTieBrokenBySubmissionOrder(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{guessQuestion(100)}, nil, false)
	q := g.s.Current()

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Bob", Value: 90})
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Alice", Value: 110})

	// equal distance: Bob guessed first and takes first place
	assert.Greater(t, g.s.Players["Bob"].Score, g.s.Players["Alice"].Score)
}

func TestGuessNumberTeamExactFirstPhase(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()
	require.Equal(t, internal.TeamBlue, g.s.ActiveTeam)

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Alice", Value: 480})
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Carol", Value: 520})
	updates := bus.byType("team_guesses_update")
	require.NotEmpty(t, updates)

	g.guess.CaptainChoice(g, q, captainChoicePayload{PlayerName: "Alice", FinalAnswer: 500})

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumberFirstTurn, g.s.TeamScores[internal.TeamBlue])
	recap, ok := bus.lastOfType("all_answers_received")
	require.True(t, ok)
	assert.Equal(t, true, payload(t, recap)["exact_guess"])
}

func TestGuessNumberCaptainNearHitWithinEpsilon(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(42)}, nil, true)
	q := g.s.Current()

	// within the 1e-4 tolerance: counts as the phase-one win
	g.guess.CaptainChoice(g, q, captainChoicePayload{PlayerName: "Alice", FinalAnswer: 42.00005})

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumberFirstTurn, g.s.TeamScores[internal.TeamBlue])
}

func TestGuessNumberNonSubmittersRankLast(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol")
	startTestGame(t, g, []internal.Question{guessQuestion(100)}, nil, false)
	q := g.s.Current()

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Alice", Value: 100})
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Bob", Value: 120})
	g.guess.TimeUp(g, q)

	var carol internal.AnswerCorrectness
	for _, m := range bus.byType("answer_correctness") {
		if m.Room == "Carol" {
			verdict, ok := m.Msg.Data.(internal.AnswerCorrectness)
			require.True(t, ok)
			carol = verdict
		}
	}
	// one slot behind the full field, no points
	assert.Equal(t, 4, carol.Placement)
	assert.Equal(t, 0, carol.PointsEarned)
	assert.Equal(t, "too late", carol.Message)
}

func TestGuessNumberTeamSecondPhaseVote(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()

	// captain commits a miss below the answer
	g.guess.CaptainChoice(g, q, captainChoicePayload{PlayerName: "Alice", FinalAnswer: 400})
	assert.False(t, g.s.CompletionFired)
	assert.Equal(t, internal.TeamRed, g.s.ActiveTeam)

	vote, ok := bus.lastOfType("second_team_vote")
	require.True(t, ok)
	assert.EqualValues(t, 400, payload(t, vote)["first_team_answer"])

	// red votes "more", which is correct
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Bob", Vote: "more"})
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Dave", Vote: "more"})

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumber, g.s.TeamScores[internal.TeamRed])
	assert.Equal(t, 0, g.s.TeamScores[internal.TeamBlue])
}

func TestGuessNumberVoteMajorityResolvesEarly(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave", "Eve", "Frank")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()

	g.guess.CaptainChoice(g, q, captainChoicePayload{PlayerName: "Alice", FinalAnswer: 400})

	// red = Bob, Dave, Frank; two "more" votes already carry the team
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Bob", Vote: "more"})
	assert.False(t, g.s.CompletionFired)
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Dave", Vote: "more"})

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumber, g.s.TeamScores[internal.TeamRed])
}

func TestGuessNumberVoteTieFallsToCaptain(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave", "Eve", "Frank")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()

	g.guess.CaptainChoice(g, q, captainChoicePayload{PlayerName: "Alice", FinalAnswer: 600})

	// red = Bob (captain), Dave, Frank; correct direction is "less".
	// Frank never votes, so the window expires on a 1-1 tie and the
	// captain's vote decides.
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Dave", Vote: "more"})
	g.guess.MoreLessVote(g, q, moreLessVotePayload{PlayerName: "Bob", Vote: "less"})
	assert.False(t, g.s.CompletionFired)
	g.guess.TimeUp(g, q)

	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumber, g.s.TeamScores[internal.TeamRed])
}

func TestGuessNumberPhaseOneTimeoutAveragesGuesses(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Alice", Value: 400})
	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Carol", Value: 600})

	g.guess.TimeUp(g, q)

	// average is exactly 500: the first team wins outright
	assert.True(t, g.s.CompletionFired)
	assert.Equal(t, internal.PointsForCorrectAnswerGuessANumberFirstTurn, g.s.TeamScores[internal.TeamBlue])
}

func TestGuessNumberOnlyActiveTeamMayGuess(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{guessQuestion(500)}, nil, true)
	q := g.s.Current()

	g.guess.Submit(g, q, numberGuessPayload{PlayerName: "Bob", Value: 450})
	assert.Empty(t, g.s.Guess.Guesses)
}
