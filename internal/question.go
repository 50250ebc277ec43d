package internal

type QuestionType string

const (
	QuestionABCD      QuestionType = "ABCD"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
	QuestionOpen      QuestionType = "OPEN_ANSWER"
	QuestionGuess     QuestionType = "GUESS_A_NUMBER"
	QuestionMath      QuestionType = "MATH_QUIZ"
	QuestionWordChain QuestionType = "WORD_CHAIN"
	QuestionDrawing   QuestionType = "DRAWING"
	QuestionBlindMap  QuestionType = "BLIND_MAP"
)

type RadiusPreset string

const (
	RadiusEasy RadiusPreset = "EASY"
	RadiusHard RadiusPreset = "HARD"
)

// ExactRadius returns the normalized hit distance for the preset.
func (p RadiusPreset) ExactRadius() float64 {
	if p == RadiusHard {
		return RadiusExactHard
	}
	return RadiusExactEasy
}

type MathSequence struct {
	Equation string  `json:"equation"`
	Answer   float64 `json:"answer"`
	Length   int     `json:"length"`
}

// Question is the tagged polymorphic question record. Type selects which of
// the per-type field groups is meaningful; the engine treats loaded
// questions as immutable except for the fields it fills in at runtime
// (SelectedWord, IsLateSelection, CurrentPlayer).
type Question struct {
	ID       int64        `json:"id,omitempty"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question,omitempty"`
	Category string       `json:"category,omitempty"`
	Length   int          `json:"length"` // answering window, seconds

	// ABCD / TRUE_FALSE
	Options []string `json:"options,omitempty"`
	Answer  int      `json:"answer,omitempty"`

	// OPEN_ANSWER
	OpenAnswer string `json:"open_answer,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	MediaURL   string `json:"media_url,omitempty"`

	// GUESS_A_NUMBER
	NumberAnswer float64 `json:"number_answer,omitempty"`

	// MATH_QUIZ
	Sequences []MathSequence `json:"sequences,omitempty"`

	// DRAWING
	Player          string   `json:"player,omitempty"` // scheduled drawer
	Team            string   `json:"team,omitempty"`
	Words           []string `json:"words,omitempty"` // 3 choices
	SelectedWord    string   `json:"selected_word,omitempty"`
	IsLateSelection bool     `json:"is_late_selection,omitempty"`

	// WORD_CHAIN
	FirstWord     string `json:"first_word,omitempty"`
	FirstLetter   string `json:"first_letter,omitempty"`
	CurrentPlayer string `json:"current_player,omitempty"`

	// BLIND_MAP
	CityName     string       `json:"city_name,omitempty"`
	Anagram      string       `json:"anagram,omitempty"`
	LocationX    float64      `json:"location_x,omitempty"`
	LocationY    float64      `json:"location_y,omitempty"`
	MapType      string       `json:"map_type,omitempty"`
	RadiusPreset RadiusPreset `json:"radius_preset,omitempty"`
	Clue1        string       `json:"clue1,omitempty"`
	Clue2        string       `json:"clue2,omitempty"`
	Clue3        string       `json:"clue3,omitempty"`
}

// LengthMs is the answering window in milliseconds.
func (q *Question) LengthMs() int64 {
	return int64(q.Length) * 1000
}

// Clues returns the non-empty clues in reveal order.
func (q *Question) Clues() []string {
	clues := make([]string, 0, 3)
	for _, c := range []string{q.Clue1, q.Clue2, q.Clue3} {
		if c != "" {
			clues = append(clues, c)
		}
	}
	return clues
}

type Quiz struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}
