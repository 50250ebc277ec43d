package game

import (
	"encoding/json"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// Event is one item on the dispatcher mailbox: either a decoded client
// message, a control command carrying a reply channel, or a synthetic
// timer firing.
type Event struct {
	Type string
	Data json.RawMessage

	cmd      any
	reply    chan error
	timerGen uint64
}

// Synthetic event names posted by timers; they share the mailbox with
// client events so handlers never run off the dispatcher goroutine.
const (
	evTimeUp          = "time_up"
	evAdvanceQuestion = "advance_question"
	evPhaseAdvance    = "phase_advance"
	evNavigateFinal   = "navigate_final"
)

// Control commands issued by the HTTP layer.
type activateQuizCmd struct{}

type resetCmd struct{}

type startGameCmd struct {
	Questions      []internal.Question
	Words          []string
	TeamMode       bool
	BombDurationMs int64 // 0 = pick randomly
}

// ------------------------------------------------------------------
// Inbound payloads (client -> server), decoded by the dispatcher.
// ------------------------------------------------------------------

type joinPayload struct {
	PlayerName string `json:"player_name"`
	Color      string `json:"color"`
}

type renamePayload struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type leavePayload struct {
	PlayerName string `json:"player_name"`
}

type submitAnswerPayload struct {
	PlayerName string `json:"player_name"`
	Answer     int    `json:"answer"`
	AnswerTime int64  `json:"answer_time"`
}

type submitTextPayload struct {
	PlayerName string `json:"player_name"`
	Answer     string `json:"answer"`
	AnswerTime int64  `json:"answer_time"`
}

type numberGuessPayload struct {
	PlayerName string  `json:"player_name"`
	Value      float64 `json:"value"`
}

type captainChoicePayload struct {
	PlayerName  string  `json:"player_name"`
	Team        string  `json:"team"`
	FinalAnswer float64 `json:"final_answer"`
}

type moreLessVotePayload struct {
	PlayerName string `json:"player_name"`
	Team       string `json:"team"`
	Vote       string `json:"vote"` // "more" | "less"
}

type mathSequencePayload struct {
	CurrentIndex int `json:"current_index"`
	NextIndex    int `json:"next_index"`
}

type wordChainPayload struct {
	PlayerName string `json:"player_name"`
	Word       string `json:"word"`
}

type wordChainTimeoutPayload struct {
	Player string `json:"player"`
}

type selectWordPayload struct {
	PlayerName      string `json:"player_name"`
	SelectedWord    string `json:"selected_word"`
	IsLateSelection bool   `json:"is_late_selection"`
}

type drawingUpdatePayload struct {
	PlayerName  string          `json:"player_name"`
	DrawingData json.RawMessage `json:"drawingData"`
	Action      string          `json:"action"`
}

type anagramPayload struct {
	PlayerName string `json:"player_name"`
	Answer     string `json:"answer"`
}

type locationPayload struct {
	PlayerName string  `json:"player_name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	QuestionID int64   `json:"questionId"`
}

type captainPreviewPayload struct {
	Team string  `json:"team"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type cluePayload struct {
	ClueIndex int `json:"clueIndex"`
}
