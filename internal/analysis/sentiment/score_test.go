package sentiment

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/seenimoa/newspulse/pkg/models"
)

func polar(vals ...float64) []ScoredToken {
	out := make([]ScoredToken, len(vals))
	for i, v := range vals {
		out[i] = ScoredToken{Token: Token{Index: i}, Base: v, Adjusted: v}
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.9, 0.4404},
		{-1.9, -0.4404},
		{1000, 1},
		{-1000, -1},
	}
	for _, tt := range tests {
		if got := scalar.Round(Normalize(tt.in), 4); got != tt.want {
			t.Errorf("Normalize(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
	if Normalize(math.MaxFloat64/2) > 1 {
		t.Error("Normalize must stay within [-1, 1]")
	}
}

func TestAggregateNoPolarTokens(t *testing.T) {
	for _, tokens := range [][]ScoredToken{nil, polar(0, 0, 0)} {
		if got := Aggregate(tokens); got != models.NeutralScores {
			t.Errorf("got %+v, want %+v", got, models.NeutralScores)
		}
	}
}

func TestAggregateSingleWord(t *testing.T) {
	got := Aggregate(polar(1.9))
	want := models.SentimentScores{Negative: 0, Neutral: 0, Positive: 1, Compound: 0.4404}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAggregateProportions(t *testing.T) {
	tests := []struct {
		name   string
		tokens []ScoredToken
		want   models.SentimentScores
	}{
		{
			name:   "positive with neutral",
			tokens: polar(0, 1.9, 0),
			want:   models.SentimentScores{Negative: 0, Neutral: 0.513, Positive: 0.487, Compound: 0.4404},
		},
		{
			name:   "mixed",
			tokens: polar(1.9, -2.5),
			want:   models.SentimentScores{Negative: 0.568, Neutral: 0, Positive: 0.432, Compound: scalar.Round(Normalize(-0.6), 4)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.tokens)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAggregateBounds(t *testing.T) {
	cases := [][]ScoredToken{
		polar(4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4),
		polar(-4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4),
		polar(0.1, -0.1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		polar(1, -1, 1, -1, 0.3),
		polar(9, -7),
		polar(7.625, -2.375),
		polar(1.9, 2.8, 1.9, 3.2, -2.5, -1.3),
	}
	for i, tokens := range cases {
		s := Aggregate(tokens)
		if s.Compound < -1 || s.Compound > 1 {
			t.Errorf("case %d: compound %v out of range", i, s.Compound)
		}
		for _, p := range []float64{s.Negative, s.Neutral, s.Positive} {
			if p < 0 || p > 1 {
				t.Errorf("case %d: proportion %v out of range", i, p)
			}
		}
		if sum := s.Negative + s.Neutral + s.Positive; math.Abs(sum-1) > 1e-9 {
			t.Errorf("case %d: proportions sum to %v", i, sum)
		}
	}
}

func TestRoundShares(t *testing.T) {
	tests := []struct {
		name     string
		pos, neg float64
		wantSum  float64
	}{
		{"no overshoot", 0.4, 0.3, 0.7},
		{"both halves round up", 0.5625, 0.4375, 1},
		{"uneven halves", 0.7625, 0.2375, 1},
		{"neutral left over", 0.3335, 0.3335, 0.668},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, n := roundShares(tt.pos, tt.neg)
			if !approx(p+n, tt.wantSum) {
				t.Errorf("sum: got %v, want %v (p=%v n=%v)", p+n, tt.wantSum, p, n)
			}
			if math.Abs(p-tt.pos) > 0.001 || math.Abs(n-tt.neg) > 0.001 {
				t.Errorf("got (%v, %v), too far from (%v, %v)", p, n, tt.pos, tt.neg)
			}
		})
	}
}

func TestAggregateExclamationCap(t *testing.T) {
	withMarks := func(n int) models.SentimentScores {
		tokens := polar(1.9)
		tokens[0].Exclamations = n
		return Aggregate(tokens)
	}
	plain, one, four, eight := withMarks(0), withMarks(1), withMarks(4), withMarks(8)

	if !(one.Compound > plain.Compound) {
		t.Errorf("one '!': compound %v not above %v", one.Compound, plain.Compound)
	}
	if !(four.Compound > one.Compound) {
		t.Errorf("four '!': compound %v not above %v", four.Compound, one.Compound)
	}
	if eight != four {
		t.Errorf("marks beyond %d should not count: got %+v, want %+v", MaxExclamations, eight, four)
	}
	want := scalar.Round(Normalize(1.9+4*ExclamationEmphasis), 4)
	if four.Compound != want {
		t.Errorf("compound: got %v, want %v", four.Compound, want)
	}
}

func TestAggregateEmphasisFollowsDominantSide(t *testing.T) {
	tokens := polar(-2.5)
	tokens[0].Exclamations = 2
	got := Aggregate(tokens)
	want := scalar.Round(Normalize(-2.5-2*ExclamationEmphasis), 4)
	if got.Compound != want {
		t.Errorf("compound: got %v, want %v", got.Compound, want)
	}
}

func TestEmphasisQuestions(t *testing.T) {
	tests := []struct {
		questions int
		want      float64
	}{
		{0, 0},
		{1, 0},
		{2, 2 * QuestionEmphasis},
		{3, 3 * QuestionEmphasis},
		{7, MaxQuestionEmphasis},
	}
	for _, tt := range tests {
		tokens := polar(1)
		tokens[0].Questions = tt.questions
		if got := Emphasis(tokens); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Emphasis(%d '?'): got %v, want %v", tt.questions, got, tt.want)
		}
	}
}
