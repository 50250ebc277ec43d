package game

import (
	"log"
	"strings"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
	"github.com/balalek/Masters-Thesis-sub000/internal/dictionary"
)

// =============================================================================
// WORD_CHAIN
// =============================================================================

// ChainState is the live chain: whose turn it is, which words are burned, and
// who has already dropped out. In team mode turns alternate between teams
// with each team rotating through its own roster; free-for-all rotates over
// the join order and eliminates players on timeout.
type ChainState struct {
	CurrentLetter string
	CurrentTeam   string
	CurrentPlayer string

	UsedWords map[string]bool
	Chain     []string
	Submitter []string

	PlayerOrder []string
	OrderIdx    int
	TeamIdx     map[string]int

	Eliminated map[string]bool
	Started    bool
}

type wordChainHandler struct{}

func (h *wordChainHandler) Init(g *Dispatcher, q *internal.Question) {
	st := &ChainState{
		UsedWords:  make(map[string]bool),
		TeamIdx:    map[string]int{internal.TeamBlue: 0, internal.TeamRed: 0},
		Eliminated: make(map[string]bool),
	}
	st.PlayerOrder = append(st.PlayerOrder, g.s.JoinOrder...)

	if g.s.IsTeamMode {
		st.CurrentTeam = internal.TeamBlue
		st.CurrentPlayer = h.nextTeamPlayer(g, st, st.CurrentTeam)
	} else if len(st.PlayerOrder) > 0 {
		st.CurrentPlayer = st.PlayerOrder[0]
	}

	h.seed(st, q)
	g.s.Chain = st
	h.broadcastUpdate(g, st, "")
}

// InitCarried keeps the rotation of the previous chain so back-to-back chain
// questions continue where the turn order left off.
func (h *wordChainHandler) InitCarried(g *Dispatcher, q *internal.Question, carry *ChainState) {
	st := &ChainState{
		UsedWords:     make(map[string]bool),
		TeamIdx:       carry.TeamIdx,
		Eliminated:    make(map[string]bool),
		PlayerOrder:   carry.PlayerOrder,
		OrderIdx:      carry.OrderIdx,
		CurrentTeam:   carry.CurrentTeam,
		CurrentPlayer: carry.CurrentPlayer,
	}
	h.seed(st, q)
	g.s.Chain = st
	h.broadcastUpdate(g, st, "")
}

func (h *wordChainHandler) seed(st *ChainState, q *internal.Question) {
	st.CurrentLetter = strings.ToLower(q.FirstLetter)
	if q.FirstWord != "" {
		st.UsedWords[dictionary.FoldWord(q.FirstWord)] = true
		st.Chain = append(st.Chain, q.FirstWord)
		st.Submitter = append(st.Submitter, "")
	}
}

// Start opens the chain clock. In team mode this arms the shared bomb; in
// free-for-all the per-turn countdowns run on the clients, which report
// expiries as timeout events.
func (h *wordChainHandler) Start(g *Dispatcher, q *internal.Question) {
	st := g.s.Chain
	if st == nil || st.Started || g.s.CompletionFired {
		return
	}
	st.Started = true
	g.s.QuestionStartMs = g.nowMs()

	if g.s.IsTeamMode {
		g.armTimer(time.Duration(g.s.BombDurationMs)*time.Millisecond, evTimeUp)
		log.Printf("[chain.Start] bomb armed for %dms", g.s.BombDurationMs)
	} else {
		log.Printf("[chain.Start] free-for-all chain started")
	}
	h.broadcastUpdate(g, st, "")
}

// Submit validates one word against the chain rules and advances the turn.
// Every rejection goes back privately so the current player can retry within
// their window.
func (h *wordChainHandler) Submit(g *Dispatcher, q *internal.Question, p wordChainPayload) {
	st := g.s.Chain
	if st == nil || !st.Started || g.s.CompletionFired {
		return
	}
	if p.PlayerName != st.CurrentPlayer {
		h.reject(g, p.PlayerName, "wrong_turn", p.Word)
		return
	}
	if st.Eliminated[p.PlayerName] {
		return
	}

	word := strings.TrimSpace(strings.ToLower(p.Word))
	folded := dictionary.FoldWord(word)
	switch {
	case len([]rune(word)) < 3:
		h.reject(g, p.PlayerName, "too_short", p.Word)
		return
	case !dictionary.StartsWithLetter(word, st.CurrentLetter):
		h.reject(g, p.PlayerName, "wrong_letter", p.Word)
		return
	case st.UsedWords[folded]:
		h.reject(g, p.PlayerName, "already_used", p.Word)
		return
	case !g.dict.Contains(word):
		h.reject(g, p.PlayerName, "not_in_dictionary", p.Word)
		return
	}

	st.UsedWords[folded] = true
	st.Chain = append(st.Chain, word)
	st.Submitter = append(st.Submitter, p.PlayerName)
	st.CurrentLetter = dictionary.NextLetter(word, g.rng)

	if !g.s.IsTeamMode {
		earned := len([]rune(word)) * internal.PointsForLetter
		g.s.AddPlayerScore(p.PlayerName, earned)
		g.s.ChainPoints[p.PlayerName] += earned
	}

	log.Printf("[chain.Submit] player=%s word=%q next_letter=%s", p.PlayerName, word, st.CurrentLetter)
	h.advanceTurn(g, st)
	h.broadcastUpdate(g, st, word)
}

func (h *wordChainHandler) reject(g *Dispatcher, player, reason, word string) {
	g.sendToPlayer(player, "word_chain_feedback", map[string]any{
		"accepted": false,
		"reason":   reason,
		"word":     word,
	})
}

// advanceTurn moves to the next eligible player: the other team's next
// rotating member in team mode, the next surviving player otherwise.
func (h *wordChainHandler) advanceTurn(g *Dispatcher, st *ChainState) {
	if g.s.IsTeamMode {
		st.CurrentTeam = OtherTeam(st.CurrentTeam)
		st.CurrentPlayer = h.nextTeamPlayer(g, st, st.CurrentTeam)
		return
	}

	n := len(st.PlayerOrder)
	for i := 1; i <= n; i++ {
		idx := (st.OrderIdx + i) % n
		if !st.Eliminated[st.PlayerOrder[idx]] {
			st.OrderIdx = idx
			st.CurrentPlayer = st.PlayerOrder[idx]
			return
		}
	}
}

// nextTeamPlayer takes the team's next rotating member and advances its
// cursor.
func (h *wordChainHandler) nextTeamPlayer(g *Dispatcher, st *ChainState, team string) string {
	members := g.s.TeamMembers(team)
	if len(members) == 0 {
		return ""
	}
	p := members[st.TeamIdx[team]%len(members)]
	st.TeamIdx[team]++
	return p
}

// Timeout eliminates a free-for-all player whose turn clock ran out. The
// last survivor collects the survival bonus and ends the question.
func (h *wordChainHandler) Timeout(g *Dispatcher, q *internal.Question, player string) {
	st := g.s.Chain
	if st == nil || !st.Started || g.s.CompletionFired || g.s.IsTeamMode {
		return
	}
	if st.Eliminated[player] {
		return
	}
	if _, ok := g.s.Players[player]; !ok {
		return
	}

	st.Eliminated[player] = true
	log.Printf("[chain.Timeout] player=%s eliminated", player)

	var survivors []string
	for _, name := range st.PlayerOrder {
		if !st.Eliminated[name] {
			survivors = append(survivors, name)
		}
	}

	if len(survivors) <= 1 {
		winner := ""
		if len(survivors) == 1 {
			winner = survivors[0]
			g.s.AddPlayerScore(winner, internal.PointsForSurvivingBomb)
			g.s.ChainPoints[winner] += internal.PointsForSurvivingBomb
		}
		g.completeQuestion(map[string]any{
			"winner":       winner,
			"word_chain":   st.Chain,
			"chain_points": g.s.ChainPoints,
		})
		return
	}

	if player == st.CurrentPlayer {
		h.advanceTurn(g, st)
	}
	h.broadcastUpdate(g, st, "")
}

// TimeUp is the team-mode bomb going off: the team holding the turn loses,
// the other team banks the survival bonus.
func (h *wordChainHandler) TimeUp(g *Dispatcher, q *internal.Question) {
	st := g.s.Chain
	if st == nil || g.s.CompletionFired {
		return
	}
	if !g.s.IsTeamMode {
		// free-for-all has no server-side chain clock
		return
	}

	winner := OtherTeam(st.CurrentTeam)
	g.s.AddTeamScore(winner, internal.PointsForSurvivingBomb)

	log.Printf("[chain.TimeUp] bomb exploded on team=%s player=%s", st.CurrentTeam, st.CurrentPlayer)
	for _, team := range []string{internal.TeamBlue, internal.TeamRed} {
		won := team == winner
		earned := 0
		if won {
			earned = internal.PointsForSurvivingBomb
		}
		g.sendToTeam(team, "answer_correctness", internal.AnswerCorrectness{
			Correct:      won,
			PointsEarned: earned,
			IsTeamScore:  true,
			TotalScore:   g.s.TeamScores[team],
		})
	}

	g.completeQuestion(map[string]any{
		"winning_team":    winner,
		"exploded_team":   st.CurrentTeam,
		"exploded_player": st.CurrentPlayer,
		"word_chain":      st.Chain,
	})
}

// broadcastUpdate pushes the shared chain picture: the accepted word, the
// current letter, whose turn it is, and the short turn horizon around it.
func (h *wordChainHandler) broadcastUpdate(g *Dispatcher, st *ChainState, acceptedWord string) {
	prev := make([]string, 0, 2)
	for i := len(st.Submitter) - 1; i >= 0 && len(prev) < 2; i-- {
		if st.Submitter[i] != "" {
			prev = append(prev, st.Submitter[i])
		}
	}

	g.broadcast("word_chain_update", map[string]any{
		"word":             acceptedWord,
		"chain":            st.Chain,
		"current_letter":   st.CurrentLetter,
		"current_player":   st.CurrentPlayer,
		"current_team":     st.CurrentTeam,
		"previous_players": prev,
		"next_players":     h.upcoming(g, st, 2),
		"eliminated":       h.eliminatedList(st),
	})
}

// upcoming simulates the next n turns without mutating the live state.
func (h *wordChainHandler) upcoming(g *Dispatcher, st *ChainState, n int) []string {
	names := make([]string, 0, n)
	if g.s.IsTeamMode {
		team := st.CurrentTeam
		idx := map[string]int{
			internal.TeamBlue: st.TeamIdx[internal.TeamBlue],
			internal.TeamRed:  st.TeamIdx[internal.TeamRed],
		}
		for i := 0; i < n; i++ {
			team = OtherTeam(team)
			members := g.s.TeamMembers(team)
			if len(members) == 0 {
				continue
			}
			names = append(names, members[idx[team]%len(members)])
			idx[team]++
		}
		return names
	}

	total := len(st.PlayerOrder)
	pos := st.OrderIdx
	for i := 1; i <= total && len(names) < n; i++ {
		candidate := st.PlayerOrder[(pos+i)%total]
		if !st.Eliminated[candidate] {
			names = append(names, candidate)
		}
	}
	return names
}

func (h *wordChainHandler) eliminatedList(st *ChainState) []string {
	out := make([]string, 0, len(st.Eliminated))
	for _, name := range st.PlayerOrder {
		if st.Eliminated[name] {
			out = append(out, name)
		}
	}
	return out
}
