package game

import (
	"slices"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// Player is one connected participant's lobby identity and running score.
type Player struct {
	Name  string `json:"player_name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// Session is the single process-wide game. It is created at startup and
// mutated only by the dispatcher goroutine; Reset returns it to the initial
// empty state.
type Session struct {
	Players   map[string]*Player
	JoinOrder []string

	BlueTeam       []string
	RedTeam        []string
	BlueCaptainIdx int
	RedCaptainIdx  int
	TeamScores     map[string]int

	IsTeamMode    bool
	IsRemote      bool
	IsQuizActive  bool // lobby open
	IsGameRunning bool

	Questions       []internal.Question
	CurrentIdx      int
	QuestionStartMs int64
	ActiveTeam      string

	// Generic per-question counters, reset at every advance.
	AnswersReceived int
	AnswerCounts    [4]int
	CompletionFired bool

	// Per-type sub-state, reset at every advance (word-chain order survives
	// consecutive word-chain questions).
	Abcd  *AbcdState
	Open  *OpenAnswerState
	Guess *GuessNumberState
	Math  *MathState
	Chain *ChainState
	Draw  *DrawState
	Map   *BlindMapState

	// Game-scoped display ledgers.
	MathPoints  map[string]int
	ChainPoints map[string]int

	// Shared team-mode bomb length, picked once per game.
	BombDurationMs int64
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset wipes the session back to its initial values.
func (s *Session) Reset() {
	s.Players = make(map[string]*Player)
	s.JoinOrder = nil
	s.BlueTeam = nil
	s.RedTeam = nil
	s.BlueCaptainIdx = 0
	s.RedCaptainIdx = 0
	s.TeamScores = map[string]int{internal.TeamBlue: 0, internal.TeamRed: 0}
	s.IsTeamMode = false
	s.IsRemote = false
	s.IsQuizActive = false
	s.IsGameRunning = false
	s.Questions = nil
	s.CurrentIdx = 0
	s.QuestionStartMs = 0
	s.ActiveTeam = ""
	s.MathPoints = make(map[string]int)
	s.ChainPoints = make(map[string]int)
	s.BombDurationMs = 0
	s.ResetQuestionState()
}

// ResetQuestionState clears everything scoped to a single question.
func (s *Session) ResetQuestionState() {
	s.AnswersReceived = 0
	s.AnswerCounts = [4]int{}
	s.CompletionFired = false
	s.Abcd = nil
	s.Open = nil
	s.Guess = nil
	s.Math = nil
	s.Chain = nil
	s.Draw = nil
	s.Map = nil
}

// Current returns the live question, or nil when none is active.
func (s *Session) Current() *internal.Question {
	if !s.IsGameRunning || s.CurrentIdx < 0 || s.CurrentIdx >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIdx]
}

// TeamOf returns "blue", "red", or "" for a player name.
func (s *Session) TeamOf(name string) string {
	if slices.Contains(s.BlueTeam, name) {
		return internal.TeamBlue
	}
	if slices.Contains(s.RedTeam, name) {
		return internal.TeamRed
	}
	return ""
}

// TeamMembers returns the ordered roster of a team.
func (s *Session) TeamMembers(team string) []string {
	if team == internal.TeamBlue {
		return s.BlueTeam
	}
	if team == internal.TeamRed {
		return s.RedTeam
	}
	return nil
}

// CaptainOf returns the captain's name for a team, or "".
func (s *Session) CaptainOf(team string) string {
	switch team {
	case internal.TeamBlue:
		if s.BlueCaptainIdx >= 0 && s.BlueCaptainIdx < len(s.BlueTeam) {
			return s.BlueTeam[s.BlueCaptainIdx]
		}
	case internal.TeamRed:
		if s.RedCaptainIdx >= 0 && s.RedCaptainIdx < len(s.RedTeam) {
			return s.RedTeam[s.RedCaptainIdx]
		}
	}
	return ""
}

// OtherTeam flips blue and red.
func OtherTeam(team string) string {
	if team == internal.TeamBlue {
		return internal.TeamRed
	}
	return internal.TeamBlue
}

// AvailableColors returns the palette minus colors already in use.
func (s *Session) AvailableColors() []string {
	used := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		used[p.Color] = true
	}
	free := make([]string, 0, len(internal.ColorPalette))
	for _, c := range internal.ColorPalette {
		if !used[c] {
			free = append(free, c)
		}
	}
	return free
}

// ScoreSnapshot builds the score listing broadcast with question results:
// players sorted by score descending, plus team totals.
func (s *Session) ScoreSnapshot() map[string]any {
	players := make([]internal.PlayerScore, 0, len(s.Players))
	for _, name := range s.JoinOrder {
		if p, ok := s.Players[name]; ok {
			players = append(players, internal.PlayerScore{Name: p.Name, Color: p.Color, Score: p.Score})
		}
	}
	slices.SortStableFunc(players, func(a, b internal.PlayerScore) int {
		return b.Score - a.Score
	})
	return map[string]any{
		"players": players,
		"team_scores": internal.TeamScores{
			Blue: s.TeamScores[internal.TeamBlue],
			Red:  s.TeamScores[internal.TeamRed],
		},
		"is_team_mode": s.IsTeamMode,
	}
}

// AddTeamScore adds a non-negative delta to a team total.
func (s *Session) AddTeamScore(team string, points int) {
	if points > 0 {
		s.TeamScores[team] += points
	}
}

// AddPlayerScore adds a non-negative delta to a player's score.
func (s *Session) AddPlayerScore(name string, points int) {
	if p, ok := s.Players[name]; ok && points > 0 {
		p.Score += points
	}
}
