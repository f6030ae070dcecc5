package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/pkg/models"
)

// MultiSource fetches from several sources concurrently and merges the results.
type MultiSource struct {
	sources []ArticleSource
	log     logrus.FieldLogger
}

// NewMultiSource wraps sources. A nil logger uses the standard logger.
func NewMultiSource(log logrus.FieldLogger, sources ...ArticleSource) *MultiSource {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MultiSource{sources: sources, log: log}
}

// Name returns the source name.
func (m *MultiSource) Name() string { return "Multi" }

// Sources returns the wrapped sources.
func (m *MultiSource) Sources() []ArticleSource { return m.sources }

// FetchArticles queries every source concurrently. Articles are merged,
// de-duplicated by URL (first source wins), sorted newest first and cut to
// limit. A failing source is logged and skipped; the call fails only when
// every source fails.
func (m *MultiSource) FetchArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	if len(m.sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([][]models.Article, len(m.sources))
	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		g.Go(func() error {
			articles, err := src.FetchArticles(gctx, query, limit)
			if err != nil {
				m.log.WithError(err).WithField("source", src.Name()).Warn("source failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				mu.Unlock()
				return nil // non-fatal
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) == len(m.sources) {
		return nil, fmt.Errorf("all sources failed: %w", errors.Join(errs...))
	}

	seen := make(map[string]struct{})
	var merged []models.Article
	for _, articles := range results {
		for _, a := range articles {
			if a.URL != "" {
				if _, dup := seen[a.URL]; dup {
					continue
				}
				seen[a.URL] = struct{}{}
			}
			merged = append(merged, a)
		}
	}

	sortArticlesByDate(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// FromConfig builds the source selected by cfg.Provider: "newsapi", "rss",
// or "all" for both behind a MultiSource.
func FromConfig(cfg config.NewsConfig, log logrus.FieldLogger) (ArticleSource, error) {
	newsAPI := func() *NewsAPI {
		return NewNewsAPI(NewsAPIOptions{
			APIKey:         cfg.NewsAPIKey,
			BaseURL:        cfg.NewsAPIURL,
			SortBy:         cfg.SortBy,
			Language:       cfg.Language,
			PageSize:       cfg.PageSize,
			Timeout:        cfg.Timeout(),
			RequestsPerSec: cfg.RequestsPerSec,
			CacheTTL:       cfg.CacheDuration(),
			Logger:         log,
		})
	}
	rss := func() *RSS {
		var feeds []Feed
		for _, f := range cfg.Feeds {
			feeds = append(feeds, Feed{Name: f.Name, URL: f.URL})
		}
		return NewRSS(RSSOptions{
			Feeds:          feeds,
			Timeout:        cfg.Timeout(),
			RequestsPerSec: cfg.RequestsPerSec,
			CacheTTL:       cfg.CacheDuration(),
			Logger:         log,
		})
	}

	switch cfg.Provider {
	case "", "newsapi":
		return newsAPI(), nil
	case "rss":
		return rss(), nil
	case "all":
		return NewMultiSource(log, newsAPI(), rss()), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}
