// Package report groups analysed articles by sentiment label and renders the
// result as plain text, Markdown, JSON or a standalone HTML page with SVG charts.
package report

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bbalet/stopwords"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// ErrEmptyBatch is returned when there is nothing to report on.
var ErrEmptyBatch = errors.New("empty batch: no analysed articles")

// TermCount is a word and how many article titles in a group use it.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// LabelSummary describes one sentiment group.
type LabelSummary struct {
	Label        models.Polarity `json:"label"`
	Count        int             `json:"count"`
	Percentage   float64         `json:"percentage"`
	MeanCompound float64         `json:"mean_compound"`
	TopTerms     []TermCount     `json:"top_terms,omitempty"`
}

// Report is the aggregate view of one analysis run.
type Report struct {
	Query        string                   `json:"query"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Total        int                      `json:"total"`
	MeanCompound float64                  `json:"mean_compound"`
	Summary      []LabelSummary           `json:"summary"`
	Positive     []models.AnalyzedArticle `json:"positive"`
	Negative     []models.AnalyzedArticle `json:"negative"`
	Neutral      []models.AnalyzedArticle `json:"neutral"`
}

// Option customises Aggregate.
type Option func(*options)

type options struct {
	topTerms int
	now      func() time.Time
}

// WithTopTerms extracts the n most frequent non-stopword title terms per group.
func WithTopTerms(n int) Option {
	return func(o *options) { o.topTerms = n }
}

// WithClock overrides the time stamped on the report.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Aggregate groups articles by label, keeping input order within each group,
// and computes counts and percentages. An empty slice yields ErrEmptyBatch.
func Aggregate(query string, articles []models.AnalyzedArticle, opts ...Option) (*Report, error) {
	if len(articles) == 0 {
		return nil, ErrEmptyBatch
	}
	o := options{now: utils.NowIST}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Report{
		Query:       query,
		GeneratedAt: o.now(),
		Total:       len(articles),
	}

	all := make([]float64, len(articles))
	for i, a := range articles {
		all[i] = a.Scores.Compound
		switch a.Label {
		case models.PolarityPositive:
			r.Positive = append(r.Positive, a)
		case models.PolarityNegative:
			r.Negative = append(r.Negative, a)
		default:
			r.Neutral = append(r.Neutral, a)
		}
	}
	r.MeanCompound = stat.Mean(all, nil)

	for _, label := range models.Polarities() {
		group := r.Articles(label)
		s := LabelSummary{
			Label:      label,
			Count:      len(group),
			Percentage: float64(len(group)) / float64(r.Total) * 100,
		}
		if len(group) > 0 {
			compounds := make([]float64, len(group))
			for i, a := range group {
				compounds[i] = a.Scores.Compound
			}
			s.MeanCompound = stat.Mean(compounds, nil)
		}
		if o.topTerms > 0 {
			s.TopTerms = TopTerms(group, o.topTerms)
		}
		r.Summary = append(r.Summary, s)
	}
	return r, nil
}

// Articles returns the group for label.
func (r *Report) Articles(label models.Polarity) []models.AnalyzedArticle {
	switch label {
	case models.PolarityPositive:
		return r.Positive
	case models.PolarityNegative:
		return r.Negative
	default:
		return r.Neutral
	}
}

// Count returns the number of articles labelled label.
func (r *Report) Count(label models.Polarity) int {
	return len(r.Articles(label))
}

// Percentage returns the share of articles labelled label, in [0, 100].
func (r *Report) Percentage(label models.Polarity) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Count(label)) / float64(r.Total) * 100
}

// Overall returns the label of the mean compound score.
func (r *Report) Overall() models.Polarity {
	return sentiment.Classify(r.MeanCompound)
}

// TopTerms returns the n most frequent title words across articles after
// English stop words are removed. Each title counts a word at most once.
// Ties are broken alphabetically.
func TopTerms(articles []models.AnalyzedArticle, n int) []TermCount {
	if n <= 0 || len(articles) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, a := range articles {
		seen := make(map[string]bool)
		for _, w := range strings.Fields(stopwords.CleanString(a.Title, "en", true)) {
			w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			}))
			if len([]rune(w)) < 3 || seen[w] || isNumber(w) {
				continue
			}
			seen[w] = true
			counts[w]++
		}
	}

	terms := make([]TermCount, 0, len(counts))
	for t, c := range counts {
		terms = append(terms, TermCount{Term: t, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
