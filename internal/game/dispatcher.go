package game

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
	"github.com/balalek/Masters-Thesis-sub000/internal/dictionary"
)

// Bus is the slice of the hub the engine needs: targeted sends, broadcast
// fan-out, and room moves on rename.
type Bus interface {
	Send(room string, msg internal.Message[any])
	Broadcast(msg internal.Message[any])
	Rename(oldRoom, newRoom string)
}

// Dispatcher owns the session. All state mutation happens on the single
// goroutine draining the mailbox; network readers and timers only enqueue.
type Dispatcher struct {
	bus  Bus
	dict *dictionary.Dictionary

	s      *Session
	events chan Event
	done   chan struct{}

	abcd  abcdHandler
	open  openAnswerHandler
	guess guessNumberHandler
	math  mathQuizHandler
	chain wordChainHandler
	draw  drawingHandler
	bmap  blindMapHandler

	handlers map[internal.QuestionType]typeHandler

	timerGen      uint64
	timerCancel   context.CancelFunc
	timerEvent    string
	timerDeadline time.Time

	now func() time.Time
	rng *rand.Rand
}

// typeHandler is the common surface of the eight per-type state machines.
// Submissions have type-specific signatures and are routed by event name.
type typeHandler interface {
	Init(g *Dispatcher, q *internal.Question)
	TimeUp(g *Dispatcher, q *internal.Question)
}

func NewDispatcher(bus Bus, dict *dictionary.Dictionary) *Dispatcher {
	g := &Dispatcher{
		bus:    bus,
		dict:   dict,
		s:      NewSession(),
		events: make(chan Event, 256),
		done:   make(chan struct{}),
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.handlers = map[internal.QuestionType]typeHandler{
		internal.QuestionABCD:      &g.abcd,
		internal.QuestionTrueFalse: &g.abcd,
		internal.QuestionOpen:      &g.open,
		internal.QuestionGuess:     &g.guess,
		internal.QuestionMath:      &g.math,
		internal.QuestionWordChain: &g.chain,
		internal.QuestionDrawing:   &g.draw,
		internal.QuestionBlindMap:  &g.bmap,
	}
	return g
}

// Run drains the mailbox until ctx is cancelled.
func (g *Dispatcher) Run(ctx context.Context) {
	defer close(g.done)
	for {
		select {
		case <-ctx.Done():
			g.cancelTimer()
			return
		case ev := <-g.events:
			g.handle(ev)
		}
	}
}

// Enqueue posts a raw client event onto the mailbox, preserving per-client
// arrival order.
func (g *Dispatcher) Enqueue(eventType string, data json.RawMessage) {
	g.post(Event{Type: eventType, Data: data})
}

// do runs a control command on the dispatcher goroutine and waits for it.
func (g *Dispatcher) do(ctx context.Context, cmd any) error {
	reply := make(chan error, 1)
	select {
	case g.events <- Event{Type: "command", cmd: cmd, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-g.done:
		return context.Canceled
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActivateQuiz opens the lobby. Idempotent.
func (g *Dispatcher) ActivateQuiz(ctx context.Context) error {
	return g.do(ctx, activateQuizCmd{})
}

// StartGame starts the stored quiz. The caller has already completed the
// quiz read and fetched WordBudget random words.
func (g *Dispatcher) StartGame(ctx context.Context, questions []internal.Question, words []string, teamMode bool) error {
	return g.do(ctx, startGameCmd{Questions: questions, Words: words, TeamMode: teamMode})
}

// ResetGame wipes the session.
func (g *Dispatcher) ResetGame(ctx context.Context) error {
	return g.do(ctx, resetCmd{})
}

// handle routes one event. Unrecognized events are ignored; a type-scoped
// event that does not match the live question's type is dropped with a log
// line and never aborts the question.
func (g *Dispatcher) handle(ev Event) {
	if ev.timerGen != 0 && ev.timerGen != g.timerGen {
		log.Printf("[handle] dropping stale timer event=%s gen=%d", ev.Type, ev.timerGen)
		return
	}

	switch ev.Type {
	case "command":
		g.handleCommand(ev)

	// --- lobby ---
	case "join_room":
		var p joinPayload
		if decode(ev.Data, &p) {
			g.handleJoin(p)
		}
	case "player_name_changed":
		var p renamePayload
		if decode(ev.Data, &p) {
			g.handleRename(p)
		}
	case "player_leaving":
		var p leavePayload
		if decode(ev.Data, &p) {
			g.handleLeave(p.PlayerName)
		}

	// --- displays ---
	case "remote_display_connected":
		g.s.IsRemote = true
		g.broadcast("remote_display_connected", map[string]any{"is_remote": true})
	case "is_remote_connected":
		g.sendToMain("is_remote_connected", map[string]any{"is_remote": g.s.IsRemote})

	// --- flow ---
	case evTimeUp:
		g.handleTimeUp()
	case evAdvanceQuestion:
		g.nextQuestion()
	case evNavigateFinal:
		g.broadcast("navigate_to_final_score", nil)
	case "show_final_score":
		g.showFinalScore()

	// --- ABCD / TRUE_FALSE ---
	case "submit_answer":
		var p submitAnswerPayload
		if q := g.requireType(ev.Type, internal.QuestionABCD, internal.QuestionTrueFalse); q != nil && decode(ev.Data, &p) {
			g.abcd.Submit(g, q, p)
		}

	// --- OPEN_ANSWER ---
	case "submit_open_answer":
		var p submitTextPayload
		if q := g.requireType(ev.Type, internal.QuestionOpen); q != nil && decode(ev.Data, &p) {
			g.open.Submit(g, q, p)
		}
	case "reveal_open_answer_letter":
		if q := g.requireType(ev.Type, internal.QuestionOpen); q != nil {
			g.open.RevealLetter(g, q)
		}

	// --- GUESS_A_NUMBER ---
	case "submit_number_guess":
		var p numberGuessPayload
		if q := g.requireType(ev.Type, internal.QuestionGuess); q != nil && decode(ev.Data, &p) {
			g.guess.Submit(g, q, p)
		}
	case "submit_captain_choice":
		var p captainChoicePayload
		if q := g.requireType(ev.Type, internal.QuestionGuess); q != nil && decode(ev.Data, &p) {
			g.guess.CaptainChoice(g, q, p)
		}
	case "submit_more_less_vote":
		var p moreLessVotePayload
		if q := g.requireType(ev.Type, internal.QuestionGuess); q != nil && decode(ev.Data, &p) {
			g.guess.MoreLessVote(g, q, p)
		}

	// --- MATH_QUIZ ---
	case "submit_math_answer":
		var p submitTextPayload
		if q := g.requireType(ev.Type, internal.QuestionMath); q != nil && decode(ev.Data, &p) {
			g.math.Submit(g, q, p)
		}
	case "math_sequence_completed":
		var p mathSequencePayload
		if q := g.requireType(ev.Type, internal.QuestionMath); q != nil && decode(ev.Data, &p) {
			g.math.SequenceCompleted(g, q, p)
		}

	// --- WORD_CHAIN ---
	case "start_word_chain":
		if q := g.requireType(ev.Type, internal.QuestionWordChain); q != nil {
			g.chain.Start(g, q)
		}
	case "submit_word_chain_word":
		var p wordChainPayload
		if q := g.requireType(ev.Type, internal.QuestionWordChain); q != nil && decode(ev.Data, &p) {
			g.chain.Submit(g, q, p)
		}
	case "word_chain_timeout":
		var p wordChainTimeoutPayload
		if q := g.requireType(ev.Type, internal.QuestionWordChain); q != nil && decode(ev.Data, &p) {
			g.chain.Timeout(g, q, p.Player)
		}

	// --- DRAWING ---
	case "select_drawing_word":
		var p selectWordPayload
		if q := g.requireType(ev.Type, internal.QuestionDrawing); q != nil && decode(ev.Data, &p) {
			g.draw.SelectWord(g, q, p)
		}
	case "drawing_update":
		var p drawingUpdatePayload
		if q := g.requireType(ev.Type, internal.QuestionDrawing); q != nil && decode(ev.Data, &p) {
			g.draw.Update(g, q, p)
		}
	case "submit_drawing_answer":
		var p submitTextPayload
		if q := g.requireType(ev.Type, internal.QuestionDrawing); q != nil && decode(ev.Data, &p) {
			g.draw.Submit(g, q, p)
		}
	case "reveal_drawing_letter":
		if q := g.requireType(ev.Type, internal.QuestionDrawing); q != nil {
			g.draw.RevealLetter(g, q)
		}
	case "get_current_drawing_word":
		if q := g.requireType(ev.Type, internal.QuestionDrawing); q != nil {
			g.draw.ResendWord(g, q)
		}

	// --- BLIND_MAP ---
	case "submit_blind_map_anagram":
		var p anagramPayload
		if q := g.requireType(ev.Type, internal.QuestionBlindMap); q != nil && decode(ev.Data, &p) {
			g.bmap.SubmitAnagram(g, q, p)
		}
	case "submit_blind_map_location":
		var p locationPayload
		if q := g.requireType(ev.Type, internal.QuestionBlindMap); q != nil && decode(ev.Data, &p) {
			g.bmap.SubmitLocation(g, q, p)
		}
	case "captain_location_preview":
		var p captainPreviewPayload
		if q := g.requireType(ev.Type, internal.QuestionBlindMap); q != nil && decode(ev.Data, &p) {
			g.bmap.CaptainPreview(g, q, p)
		}
	case "request_next_clue":
		var p cluePayload
		if q := g.requireType(ev.Type, internal.QuestionBlindMap); q != nil && decode(ev.Data, &p) {
			g.bmap.NextClue(g, q, p.ClueIndex)
		}
	case evPhaseAdvance:
		if q := g.requireType(ev.Type, internal.QuestionBlindMap); q != nil {
			g.bmap.PhaseAdvance(g, q)
		}

	default:
		log.Printf("[handle] ignoring unknown event type=%q", ev.Type)
	}
}

func (g *Dispatcher) handleCommand(ev Event) {
	var err error
	switch cmd := ev.cmd.(type) {
	case activateQuizCmd:
		err = g.activateQuiz()
	case startGameCmd:
		err = g.startGame(cmd)
	case resetCmd:
		g.resetGame()
	default:
		log.Printf("[handleCommand] unknown command %T", ev.cmd)
		err = internal.ErrInvalidArgs
	}
	if ev.reply != nil {
		ev.reply <- err
	}
}

// requireType returns the live question when its type matches, else nil.
func (g *Dispatcher) requireType(event string, types ...internal.QuestionType) *internal.Question {
	q := g.s.Current()
	if q == nil {
		log.Printf("[requireType] event=%s: no active question", event)
		return nil
	}
	for _, t := range types {
		if q.Type == t {
			return q
		}
	}
	log.Printf("[requireType] event=%s: question type=%s does not match", event, q.Type)
	return nil
}

func decode[T any](raw json.RawMessage, out *T) bool {
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("[decode] malformed payload: %v", err)
		return false
	}
	return true
}

// nowMs is the dispatcher's monotonic-enough wall clock in milliseconds.
func (g *Dispatcher) nowMs() int64 {
	return g.now().UnixMilli()
}

// --- emission helpers -------------------------------------------------------

func (g *Dispatcher) broadcast(event string, data any) {
	g.bus.Broadcast(internal.Message[any]{Type: event, Data: data})
}

func (g *Dispatcher) sendToPlayer(name, event string, data any) {
	g.bus.Send(name, internal.Message[any]{Type: event, Data: data})
}

func (g *Dispatcher) sendToMain(event string, data any) {
	g.bus.Send(internal.RoomMain, internal.Message[any]{Type: event, Data: data})
	if g.s.IsRemote {
		g.bus.Send(internal.RoomRemote, internal.Message[any]{Type: event, Data: data})
	}
}

// sendToTeam delivers a private message to every member of a team.
func (g *Dispatcher) sendToTeam(team, event string, data any) {
	for _, name := range g.s.TeamMembers(team) {
		g.sendToPlayer(name, event, data)
	}
}
