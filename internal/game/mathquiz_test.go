package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

func mathQuestion() internal.Question {
	return internal.Question{
		Type:   internal.QuestionMath,
		Length: 60,
		Sequences: []internal.MathSequence{
			{Equation: "2+2", Answer: 4, Length: 20},
			{Equation: "10/4", Answer: 2.5, Length: 20},
		},
	}
}

func TestMathCorrectAnswerScores(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	// instant answer pays the full base
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})

	assert.Equal(t, 75, g.s.Players["Alice"].Score)
	fb, ok := bus.lastOfType("math_feedback")
	require.True(t, ok)
	assert.Equal(t, "Alice", fb.Room)
	assert.Equal(t, true, payload(t, fb)["correct"])

	update, ok := bus.lastOfType("math_quiz_update")
	require.True(t, ok)
	statuses, ok := payload(t, update)["players"].(map[string]internal.MathPlayerStatus)
	require.True(t, ok)
	assert.True(t, statuses["Alice"].HasAnswered)
	assert.False(t, statuses["Bob"].HasAnswered)
}

func TestMathDecimalCommaAccepted(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()
	g.s.Math.CurrentSeq = 1
	g.s.Math.Answered[1] = map[string]bool{}
	g.s.Math.TeamsScored[1] = map[string]bool{}
	g.s.Math.SeqStartMs[1] = g.s.QuestionStartMs

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "2,5", AnswerTime: g.s.QuestionStartMs})

	assert.False(t, g.s.Math.Eliminated["Alice"])
	assert.Equal(t, 75, g.s.Players["Alice"].Score)
}

func TestMathRepeatSubmitLocksAsCorrect(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	score := g.s.Players["Alice"].Score
	bus.reset()

	// a second submit on the solved sequence cannot rescore or eliminate
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "999", AnswerTime: g.s.QuestionStartMs})

	assert.Equal(t, score, g.s.Players["Alice"].Score)
	assert.False(t, g.s.Math.Eliminated["Alice"])
	fb, ok := bus.lastOfType("math_feedback")
	require.True(t, ok)
	data := payload(t, fb)
	assert.Equal(t, true, data["correct"])
	assert.Equal(t, true, data["already_answered"])
}

func TestMathWrongAnswerEliminates(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "5", AnswerTime: g.s.QuestionStartMs})

	assert.True(t, g.s.Math.Eliminated["Alice"])
	assert.Equal(t, 0, g.s.Players["Alice"].Score)
	fb, ok := bus.lastOfType("math_feedback")
	require.True(t, ok)
	assert.Equal(t, true, payload(t, fb)["eliminated"])

	// eliminated players cannot answer later sequences
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	assert.Equal(t, 0, g.s.Players["Alice"].Score)
}

func TestMathAllEliminatedEndsQuiz(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "wrong", AnswerTime: g.s.QuestionStartMs})
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Bob", Answer: "0", AnswerTime: g.s.QuestionStartMs})

	assert.True(t, g.s.CompletionFired)
}

func TestMathSequenceAdvanceEliminatesSilent(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	g.math.SequenceCompleted(g, q, mathSequencePayload{CurrentIndex: 0, NextIndex: 1})

	// Bob never answered sequence 0
	assert.True(t, g.s.Math.Eliminated["Bob"])
	assert.False(t, g.s.Math.Eliminated["Alice"])
	assert.Equal(t, 1, g.s.Math.CurrentSeq)

	change, ok := bus.lastOfType("math_sequence_change")
	require.True(t, ok)
	assert.EqualValues(t, 1, payload(t, change)["sequence_index"])

	// a stale repeat of the same advance is ignored
	g.math.SequenceCompleted(g, q, mathSequencePayload{CurrentIndex: 0, NextIndex: 1})
	assert.Equal(t, 1, g.s.Math.CurrentSeq)
}

func TestMathPastLastSequenceEndsQuiz(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, false)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	g.math.SequenceCompleted(g, q, mathSequencePayload{CurrentIndex: 0, NextIndex: 1})
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "2.5", AnswerTime: g.s.QuestionStartMs})
	g.math.SequenceCompleted(g, q, mathSequencePayload{CurrentIndex: 1, NextIndex: 2})

	assert.True(t, g.s.CompletionFired)
	recap, ok := bus.lastOfType("all_answers_received")
	require.True(t, ok)
	data := payload(t, recap)
	sequences, ok := data["sequences"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, sequences, 2)
	assert.EqualValues(t, 4, sequences[0]["answer"])
}

func TestMathTeamModeScoresOncePerSequence(t *testing.T) {
	g, _ := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, true)
	q := g.s.Current()

	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	blue := g.s.TeamScores[internal.TeamBlue]
	assert.Equal(t, 75, blue)

	// Carol's correct answer cannot double-pay the team
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Carol", Answer: "4", AnswerTime: g.s.QuestionStartMs})
	assert.Equal(t, blue, g.s.TeamScores[internal.TeamBlue])
}

func TestMathFastForwardWhenOtherTeamDead(t *testing.T) {
	g, bus := newTestDispatcher(t)
	joinPlayers(t, g, "Alice", "Bob", "Carol", "Dave")
	startTestGame(t, g, []internal.Question{mathQuestion()}, nil, true)
	q := g.s.Current()

	// red team dies
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Bob", Answer: "1", AnswerTime: g.s.QuestionStartMs})
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Dave", Answer: "1", AnswerTime: g.s.QuestionStartMs})
	// blue scores
	g.math.Submit(g, q, submitTextPayload{PlayerName: "Alice", Answer: "4", AnswerTime: g.s.QuestionStartMs})

	msg, ok := bus.lastOfType("fast_forward_timer")
	require.True(t, ok)
	assert.EqualValues(t, 5000, payload(t, msg)["remaining_ms"])
}
