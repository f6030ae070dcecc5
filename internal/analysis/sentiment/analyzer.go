// Package sentiment implements a lexicon-and-rules sentiment scorer for
// short news text. Text is tokenized, each token is looked up in an
// immutable Lexicon, negation, degree modifiers, ALL-CAPS and contrast
// rules adjust the intensities, and the result is aggregated into
// negative/neutral/positive proportions plus a compound score in [-1, 1].
//
// An Analyzer holds no mutable state and is safe for concurrent use.
package sentiment

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/seenimoa/newspulse/pkg/models"
)

// Analyzer scores text against a shared, read-only lexicon.
type Analyzer struct {
	lexicon   *Lexicon
	tokenizer *Tokenizer
}

// NewAnalyzer returns an analyzer over lex. A nil lex uses DefaultLexicon.
func NewAnalyzer(lex *Lexicon) *Analyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Analyzer{lexicon: lex, tokenizer: DefaultTokenizer()}
}

// Lexicon returns the analyzer's lexicon.
func (a *Analyzer) Lexicon() *Lexicon { return a.lexicon }

// Analyze scores text. Empty text scores neutral; invalid UTF-8 fails
// with ErrInvalidInput.
func (a *Analyzer) Analyze(text string) (models.SentimentScores, error) {
	scored, err := a.score(text)
	if err != nil {
		return models.SentimentScores{}, err
	}
	return Aggregate(scored), nil
}

// Classify scores text and labels it.
func (a *Analyzer) Classify(text string) (models.SentimentScores, models.Polarity, error) {
	scores, err := a.Analyze(text)
	if err != nil {
		return scores, "", err
	}
	return scores, Classify(scores.Compound), nil
}

func (a *Analyzer) score(text string) ([]ScoredToken, error) {
	tokens, err := a.tokenizer.TokenizeKeeping(text, a.lexicon.Contains)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return Apply(a.lexicon, tokens), nil
}

// SentenceScore is the score of one sentence scored on its own.
type SentenceScore struct {
	Text   string                 `json:"text"`
	Scores models.SentimentScores `json:"scores"`
	Label  models.Polarity        `json:"label"`
}

// Explanation breaks a score down by token and by sentence.
type Explanation struct {
	Text      string                 `json:"text"`
	Scores    models.SentimentScores `json:"scores"`
	Label     models.Polarity        `json:"label"`
	Emphasis  float64                `json:"emphasis"`
	RawSum    float64                `json:"raw_sum"`
	Tokens    []ScoredToken          `json:"tokens"`
	Sentences []SentenceScore        `json:"sentences,omitempty"`
}

// Explain scores text and returns the annotated tokens together with the
// score of each sentence taken in isolation.
func (a *Analyzer) Explain(text string) (*Explanation, error) {
	scored, err := a.score(text)
	if err != nil {
		return nil, err
	}
	scores := Aggregate(scored)

	adjusted := make([]float64, len(scored))
	for i, t := range scored {
		adjusted[i] = t.Adjusted
	}

	ex := &Explanation{
		Text:     text,
		Scores:   scores,
		Label:    Classify(scores.Compound),
		Emphasis: Emphasis(scored),
		RawSum:   floats.Sum(adjusted),
		Tokens:   scored,
	}

	sents := a.tokenizer.Sentences(text)
	if len(sents) > 1 {
		for _, s := range sents {
			ss, label, err := a.Classify(s)
			if err != nil {
				return nil, err
			}
			ex.Sentences = append(ex.Sentences, SentenceScore{Text: s, Scores: ss, Label: label})
		}
	}
	return ex, nil
}
