package sentiment

import "github.com/seenimoa/newspulse/pkg/models"

// Compound thresholds. Both boundaries are inclusive.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify maps a compound score to a polarity label.
func Classify(compound float64) models.Polarity {
	switch {
	case compound >= PositiveThreshold:
		return models.PolarityPositive
	case compound <= NegativeThreshold:
		return models.PolarityNegative
	default:
		return models.PolarityNeutral
	}
}
