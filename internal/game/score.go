package game

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// SCORING HELPERS
// =============================================================================

// clampTimeTaken guards against client clock skew: the client timestamp is
// trusted only inside the answering window.
func clampTimeTaken(answerMs, startMs, lengthMs int64) int64 {
	taken := answerMs - startMs
	if taken < 0 {
		return 0
	}
	if taken > lengthMs {
		return lengthMs
	}
	return taken
}

// speedPoints decays base points linearly over the answering window:
// full base at t=0, zero at t>=length.
func speedPoints(base int, timeTakenMs, lengthMs int64) int {
	if lengthMs <= 0 {
		return 0
	}
	p := base - int(math.Floor(float64(timeTakenMs)/float64(lengthMs)*float64(base)))
	if p < 0 {
		return 0
	}
	return p
}

// placementPoints scores a ranked finish among n players.
func placementPoints(placement, n int) int {
	if n <= 0 {
		return 0
	}
	p := internal.PointsForPlacement - (placement-1)*(internal.PointsForPlacement/n)
	if p < 10 {
		return 10
	}
	return p
}

// accuracyBonus maps the normalized distance of a guess to the bonus tier.
func accuracyBonus(guess, answer float64) (int, string) {
	const epsilon = 1e-9
	diff := math.Abs(guess - answer)
	if diff == 0 {
		return internal.PointsForExactAnswer, "exact"
	}
	scale := math.Max(math.Abs(answer), epsilon)
	normalized := math.Min(diff/scale, 1) * 100
	switch {
	case normalized <= 1:
		return 150, "very close"
	case normalized <= 5:
		return 100, "close"
	case normalized <= 25:
		return 50, "near"
	default:
		return 0, "far"
	}
}

// anagramPoints rewards solve order in the blind map's first phase.
func anagramPoints(order, n int) int {
	if n <= 0 {
		return 0
	}
	p := int(math.Round(float64(internal.AnagramPhasePoints) - float64(order-1)*(float64(internal.AnagramPhasePoints)/float64(n))))
	if p < 10 {
		return 10
	}
	return p
}

// mathPoints decays the math-quiz reward to half base over the sequence.
func mathPoints(answerMs, seqStartMs, seqLengthMs int64) int {
	ratio := 1.0
	if seqLengthMs > 0 {
		ratio = math.Min(1, float64(answerMs-seqStartMs)/float64(seqLengthMs))
		if ratio < 0 {
			ratio = 0
		}
	}
	return int(math.Round(float64(internal.PointsForMathCorrectAnswer) * (1 - 0.5*ratio)))
}

// similarity rates two strings in [0,1], 1 meaning equal. Case-insensitive.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// answerFeedback grades a wrong textual answer for the private feedback
// event: length hints first, then similarity tiers.
func answerFeedback(guess, target string) string {
	guessLen := len([]rune(strings.TrimSpace(guess)))
	targetLen := len([]rune(strings.TrimSpace(target)))
	switch {
	case targetLen > 0 && float64(guessLen) < 0.5*float64(targetLen):
		return "too_short"
	case targetLen > 0 && float64(guessLen) > 1.5*float64(targetLen):
		return "too_long"
	}
	switch sim := similarity(guess, target); {
	case sim >= 0.8:
		return "almost"
	case sim >= 0.5:
		return "close"
	default:
		return "wrong"
	}
}

// sortAttempts orders recorded attempts for the end-of-question recap:
// correct answers first, then incorrect ones ascending by similarity.
func sortAttempts(attempts []internal.PlayerAnswer) []internal.PlayerAnswer {
	sorted := make([]internal.PlayerAnswer, len(attempts))
	copy(sorted, attempts)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0; j-- {
			a, b := sorted[j-1], sorted[j]
			swap := false
			if !a.IsCorrect && b.IsCorrect {
				swap = true
			} else if !a.IsCorrect && !b.IsCorrect && a.Similarity > b.Similarity {
				swap = true
			}
			if !swap {
				break
			}
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}
