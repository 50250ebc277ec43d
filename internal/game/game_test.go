package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// recordingBus captures everything the dispatcher emits so tests can assert
// on rooms and payloads without sockets.
type recordingBus struct {
	mu      sync.Mutex
	sends   []recordedMsg
	renames [][2]string
}

type recordedMsg struct {
	Room string // "" for broadcast
	Msg  internal.Message[any]
}

func (b *recordingBus) Send(room string, msg internal.Message[any]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends = append(b.sends, recordedMsg{Room: room, Msg: msg})
}

func (b *recordingBus) Broadcast(msg internal.Message[any]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends = append(b.sends, recordedMsg{Room: "", Msg: msg})
}

func (b *recordingBus) Rename(oldRoom, newRoom string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renames = append(b.renames, [2]string{oldRoom, newRoom})
}

func (b *recordingBus) byType(eventType string) []recordedMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedMsg
	for _, m := range b.sends {
		if m.Msg.Type == eventType {
			out = append(out, m)
		}
	}
	return out
}

func (b *recordingBus) lastOfType(eventType string) (recordedMsg, bool) {
	msgs := b.byType(eventType)
	if len(msgs) == 0 {
		return recordedMsg{}, false
	}
	return msgs[len(msgs)-1], true
}

func (b *recordingBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends = nil
	b.renames = nil
}

// newTestDispatcher wires a dispatcher with a frozen clock, a seeded rng,
// and a permissive dictionary. Handlers are driven synchronously; Run is
// never started.
func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingBus) {
	t.Helper()
	bus := &recordingBus{}
	g := NewDispatcher(bus, nil)
	base := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return base }
	g.rng = rand.New(rand.NewSource(1))
	t.Cleanup(g.cancelTimer)
	return g, bus
}

// joinPlayers opens the lobby and admits the named players in order.
func joinPlayers(t *testing.T, g *Dispatcher, names ...string) {
	t.Helper()
	require.NoError(t, g.activateQuiz())
	for i, name := range names {
		require.NoError(t, g.join(name, internal.ColorPalette[i]))
	}
}

// startTestGame drives the start command directly on the test goroutine.
func startTestGame(t *testing.T, g *Dispatcher, questions []internal.Question, words []string, teamMode bool) {
	t.Helper()
	require.NoError(t, g.startGame(startGameCmd{
		Questions:      questions,
		Words:          words,
		TeamMode:       teamMode,
		BombDurationMs: 180_000,
	}))
}

// payload pulls the map payload out of a recorded message.
func payload(t *testing.T, m recordedMsg) map[string]any {
	t.Helper()
	data, ok := m.Msg.Data.(map[string]any)
	require.True(t, ok, "payload of %q is not a map", m.Msg.Type)
	return data
}

func answerAt(g *Dispatcher, secondsIn int64) int64 {
	return g.s.QuestionStartMs + secondsIn*1000
}
