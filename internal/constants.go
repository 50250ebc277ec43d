package internal

import "time"

const (
	MaxPlayers        = 10
	MinPlayersToStart = 2
	MinPlayersPerTeam = 2

	MinNameLength = 3
	MaxNameLength = 16
)

// Scoring tunables. PointsForWordChain is carried for display layers only;
// the survival path pays PointsForSurvivingBomb.
const (
	PointsForCorrectAnswer                      = 100
	PointsForWordChain                          = 50
	PointsForMathCorrectAnswer                  = 75
	PointsForLetter                             = 3
	PointsForSurvivingBomb                      = 200
	PointsForCorrectAnswerGuessANumber          = 150
	PointsForCorrectAnswerGuessANumberFirstTurn = 300
	PointsForExactAnswer                        = 200
	PointsForPlacement                          = 100
	AnagramPhasePoints                          = 100
	MapPhasePoints                              = 100
	BlindMapTeamModePoints                      = 200
)

// Phase pacing. WaitingTime is the scoreboard window plus the next
// question's preview; drawing questions get a longer preview.
const (
	StartGameTime       = 2 * time.Second
	PreviewTime         = 5 * time.Second
	PreviewTimeDrawing  = 8 * time.Second
	WaitingTime         = 17 * time.Second
	WaitingTimeDrawing  = 20 * time.Second
	PhaseTransitionTime = 5 * time.Second

	ScoreboardTime = WaitingTime - PreviewTime
)

const (
	TeamBlue = "blue"
	TeamRed  = "red"
)

// Normalized-coordinate hit radii for the blind map.
const (
	RadiusExactHard = 0.03
	RadiusExactEasy = 0.045
)

const (
	RoomMain   = "main"
	RoomRemote = "remote"
)

// ColorPalette is the fixed set of player colors handed out in the lobby.
var ColorPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
}
