package sentiment

import (
	"testing"

	"github.com/seenimoa/newspulse/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		compound float64
		want     models.Polarity
	}{
		{1, models.PolarityPositive},
		{0.05, models.PolarityPositive},
		{0.0499, models.PolarityNeutral},
		{0, models.PolarityNeutral},
		{-0.0499, models.PolarityNeutral},
		{-0.05, models.PolarityNegative},
		{-1, models.PolarityNegative},
	}
	for _, tt := range tests {
		if got := Classify(tt.compound); got != tt.want {
			t.Errorf("Classify(%v): got %v, want %v", tt.compound, got, tt.want)
		}
	}
}
