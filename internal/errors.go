package internal

import "errors"

// Error kinds surfaced to the HTTP caller or converted into targeted
// feedback events. Protocol errors never abort a running question.
var (
	ErrLobbyClosed         = errors.New("lobby is not open")
	ErrGameInProgress      = errors.New("game is already running")
	ErrFull                = errors.New("lobby is full")
	ErrNameTaken           = errors.New("player name is taken")
	ErrColorTaken          = errors.New("color is taken")
	ErrNotFound            = errors.New("not found")
	ErrInvalidLength       = errors.New("name length out of range")
	ErrInvalidArgs         = errors.New("invalid arguments")
	ErrWrongTurn           = errors.New("not this player's turn")
	ErrAlreadyAnswered     = errors.New("already answered")
	ErrNotYourQuestion     = errors.New("not this player's question")
	ErrNoActiveQuestion    = errors.New("no active question")
	ErrNoMoreQuestions     = errors.New("no more questions")
	ErrNotEnoughPlayers    = errors.New("not enough players to start")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
