package models

import "time"

// Polarity is the discrete sentiment label derived from a compound score.
type Polarity string

const (
	PolarityPositive Polarity = "Positive"
	PolarityNegative Polarity = "Negative"
	PolarityNeutral  Polarity = "Neutral"
)

// Polarities returns all labels in report order.
func Polarities() []Polarity {
	return []Polarity{PolarityPositive, PolarityNegative, PolarityNeutral}
}

// SentimentScores is the result of scoring one piece of text.
// Negative, Neutral and Positive are proportions that sum to 1.0
// (to three decimal places); Compound is the normalized overall score in [-1, 1].
type SentimentScores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// NeutralScores is the score of text that carries no polarity.
var NeutralScores = SentimentScores{Neutral: 1}

// AnalyzedArticle pairs an article with its scores and label.
type AnalyzedArticle struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Source      string          `json:"source,omitempty"`
	PublishedAt time.Time       `json:"published_at,omitempty"`
	Scores      SentimentScores `json:"scores"`
	Label       Polarity        `json:"label"`
}
