package sentiment

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newspulse/pkg/models"
)

// BatchOptions controls AnalyzeArticles.
type BatchOptions struct {
	// Workers bounds the number of articles scored concurrently.
	// Zero or less means runtime.NumCPU().
	Workers int
	// Logger receives a warning for every skipped article. Optional.
	Logger logrus.FieldLogger
	// OnResult, if set, receives each article as soon as it is scored, in
	// completion order. It is called from worker goroutines.
	OnResult func(models.AnalyzedArticle)
}

// AnalyzeArticles scores articles concurrently and returns the results in
// input order. Articles without a title or description, and articles whose
// text is not valid UTF-8, are skipped and left out of the result.
func AnalyzeArticles(ctx context.Context, a *Analyzer, articles []models.Article, opts BatchOptions) ([]models.AnalyzedArticle, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	slots := make([]*models.AnalyzedArticle, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, art := range articles {
		if art.IsEmpty() {
			log.WithField("url", art.URL).Debug("skipping article without text")
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores, label, err := a.Classify(art.Text())
			if err != nil {
				log.WithError(err).WithField("url", art.URL).Warn("skipping article")
				return nil
			}
			slots[i] = &models.AnalyzedArticle{
				Title:       art.Title,
				URL:         art.URL,
				Source:      art.Source,
				PublishedAt: art.PublishedAt,
				Scores:      scores,
				Label:       label,
			}
			if opts.OnResult != nil {
				opts.OnResult(*slots[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.AnalyzedArticle, 0, len(articles))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}
