package internal

// Message is the JSON envelope for every event on the wire, in both
// directions: {"type": "...", "data": ...}.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type PlayerScore struct {
	Name  string `json:"player_name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

type TeamScores struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

// AnswerCorrectness is the private verdict sent to a player (or to every
// member of a team) after their answer is resolved.
type AnswerCorrectness struct {
	Correct       bool    `json:"correct"`
	PointsEarned  int     `json:"points_earned"`
	IsTeamScore   bool    `json:"is_team_score,omitempty"`
	TotalScore    int     `json:"total_score"`
	Placement     int     `json:"placement,omitempty"`
	Accuracy      string  `json:"accuracy,omitempty"`
	OwnGuess      float64 `json:"own_guess,omitempty"`
	CorrectAnswer any     `json:"correct_answer,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// PlayerAnswer is one recorded attempt, kept for the end-of-question recap.
type PlayerAnswer struct {
	Name       string  `json:"player_name"`
	Answer     string  `json:"answer"`
	IsCorrect  bool    `json:"is_correct"`
	Similarity float64 `json:"similarity"`
}

type DrawerStats struct {
	PointsEarned    int  `json:"pointsEarned"`
	TotalPoints     int  `json:"totalPoints"`
	CorrectCount    int  `json:"correct_count"`
	TotalGuessers   int  `json:"total_guessers"`
	IsLateSelection bool `json:"is_late_selection"`
}

type MathPlayerStatus struct {
	HasAnswered  bool `json:"hasAnswered"`
	IsEliminated bool `json:"isEliminated"`
}

type FinalScoreEntry struct {
	Name      string `json:"player_name"`
	Score     int    `json:"score"`
	Placement int    `json:"placement,omitempty"`
	TeamName  string `json:"team_name,omitempty"`
	TeamScore int    `json:"team_score,omitempty"`
}
