package sentiment

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/seenimoa/newspulse/pkg/models"
)

const (
	// Alpha approximates the largest expected raw sum and controls how
	// quickly the compound score saturates.
	Alpha = 15.0

	// ExclamationEmphasis is added per '!' up to MaxExclamations marks.
	ExclamationEmphasis = 0.292
	MaxExclamations     = 4

	// QuestionEmphasis is added per '?' when two or three are present;
	// more than three add MaxQuestionEmphasis.
	QuestionEmphasis    = 0.18
	MaxQuestionEmphasis = 0.96

	// NeutralTokenWeight is the weight of one non-polar token in the proportions.
	NeutralTokenWeight = 1.0

	proportionPrecision = 3
	compoundPrecision   = 4
)

// Normalize maps a raw sum onto (-1, 1) with x/sqrt(x²+Alpha), clamped.
func Normalize(x float64) float64 {
	n := x / math.Sqrt(x*x+Alpha)
	return math.Max(-1, math.Min(1, n))
}

// Emphasis returns the punctuation bonus for the marks carried by the tokens.
func Emphasis(tokens []ScoredToken) float64 {
	var ex, qu int
	for _, t := range tokens {
		ex += t.Exclamations
		qu += t.Questions
	}
	return exclamationEmphasis(ex) + questionEmphasis(qu)
}

func exclamationEmphasis(n int) float64 {
	if n > MaxExclamations {
		n = MaxExclamations
	}
	return float64(n) * ExclamationEmphasis
}

func questionEmphasis(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n <= 3:
		return float64(n) * QuestionEmphasis
	default:
		return MaxQuestionEmphasis
	}
}

// Aggregate combines adjusted intensities into SentimentScores. Text with
// no polar tokens scores {neg 0, neu 1, pos 0, compound 0}.
func Aggregate(tokens []ScoredToken) models.SentimentScores {
	var pos, neg []float64
	neutral := 0.0
	for _, t := range tokens {
		switch {
		case t.Adjusted > 0:
			pos = append(pos, t.Adjusted)
		case t.Adjusted < 0:
			neg = append(neg, -t.Adjusted)
		default:
			neutral += NeutralTokenWeight
		}
	}
	if len(pos) == 0 && len(neg) == 0 {
		return models.NeutralScores
	}

	posSum, negSum := floats.Sum(pos), floats.Sum(neg)
	emphasis := Emphasis(tokens)

	// The punctuation bonus goes to whichever direction dominates.
	switch {
	case posSum > negSum:
		posSum += emphasis
	case negSum > posSum:
		negSum += emphasis
	}

	total := posSum + negSum + neutral
	p, n := roundShares(posSum/total, negSum/total)
	// Neutral takes the rounding remainder so the three proportions sum to 1.
	u := math.Max(0, scalar.Round(1-p-n, proportionPrecision))

	return models.SentimentScores{
		Negative: n,
		Neutral:  u,
		Positive: p,
		Compound: scalar.Round(Normalize(posSum-negSum), compoundPrecision),
	}
}

// roundShares rounds the positive and negative shares to proportionPrecision.
// When both round up past 1 together, the excess comes off the share that
// was rounded up the most.
func roundShares(pos, neg float64) (float64, float64) {
	p := scalar.Round(pos, proportionPrecision)
	n := scalar.Round(neg, proportionPrecision)
	excess := scalar.Round(p+n-1, proportionPrecision)
	if excess <= 0 {
		return p, n
	}
	if p-pos >= n-neg {
		p = scalar.Round(p-excess, proportionPrecision)
	} else {
		n = scalar.Round(n-excess, proportionPrecision)
	}
	return p, n
}
