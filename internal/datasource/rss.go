package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/seenimoa/newspulse/pkg/models"
)

// Feed names one RSS or Atom feed.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds lists regional and national feeds likely to cover Himachal Pradesh.
var DefaultFeeds = []Feed{
	{Name: "The Tribune Himachal", URL: "https://www.tribuneindia.com/rss/feed?catId=22"},
	{Name: "Hindustan Times Education", URL: "https://www.hindustantimes.com/feeds/rss/education/rssfeed.xml"},
	{Name: "The Hindu National", URL: "https://www.thehindu.com/news/national/feeder/default.rss"},
	{Name: "Times of India Shimla", URL: "https://timesofindia.indiatimes.com/rssfeeds/3942695.cms"},
}

// RSSOptions configures an RSS source.
type RSSOptions struct {
	Feeds          []Feed // defaults to DefaultFeeds
	Timeout        time.Duration
	RequestsPerSec float64
	CacheTTL       time.Duration
	Logger         logrus.FieldLogger
}

// RSS fetches articles from RSS and Atom feeds and keeps those matching the query.
type RSS struct {
	feeds   []Feed
	client  *http.Client
	limiter *rate.Limiter
	cache   *Cache[[]models.Article]
	parser  *gofeed.Parser
	log     logrus.FieldLogger
}

// NewRSS creates an RSS source.
func NewRSS(opts RSSOptions) *RSS {
	feeds := opts.Feeds
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RSS{
		feeds:   feeds,
		client:  newHTTPClient(opts.Timeout),
		limiter: newLimiter(opts.RequestsPerSec),
		cache:   NewCache[[]models.Article](opts.CacheTTL),
		parser:  gofeed.NewParser(),
		log:     log.WithField("source", "rss"),
	}
}

// Name returns the source name.
func (r *RSS) Name() string { return "RSS" }

// FetchArticles reads every feed and returns the items that mention the
// query's keywords, newest first. Feeds that fail are skipped; an error is
// returned only if all of them fail.
func (r *RSS) FetchArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	keywords := QueryKeywords(query)

	var (
		all  []models.Article
		errs []error
	)
	for _, feed := range r.feeds {
		items, err := r.fetchFeed(ctx, feed)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.WithError(err).WithField("feed", feed.Name).Warn("skipping feed")
			errs = append(errs, err)
			continue
		}
		for _, a := range items {
			if len(keywords) == 0 || matchesAny(a.Title+" "+a.Description, keywords) {
				all = append(all, a)
			}
		}
	}
	if len(errs) == len(r.feeds) {
		return nil, errors.Join(errs...)
	}

	sortArticlesByDate(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// fetchFeed downloads and parses a single feed. Parsed feeds are cached by URL.
func (r *RSS) fetchFeed(ctx context.Context, feed Feed) ([]models.Article, error) {
	if cached, ok := r.cache.Get(feed.URL); ok {
		return cloneArticles(cached), nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, r.client, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.Name, err)
	}
	defer body.Close()

	parsed, err := r.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feed.Name, err)
	}

	articles := make([]models.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		a := models.Article{
			Title:       strings.TrimSpace(item.Title),
			Description: cleanHTML(item.Description),
			URL:         item.Link,
			Source:      feed.Name,
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}

	r.cache.Set(feed.URL, articles)
	return cloneArticles(articles), nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// QueryKeywords extracts lower-cased search terms from a NewsAPI-style query.
// Quoted phrases are kept whole; the operators AND, OR and NOT are dropped.
//
//	`"IIT Mandi" OR "Mandi Himachal Pradesh"` → ["iit mandi", "mandi himachal pradesh"]
func QueryKeywords(query string) []string {
	var (
		out    []string
		phrase strings.Builder
		quoted bool
	)
	flush := func() {
		term := strings.Trim(strings.ToLower(strings.TrimSpace(phrase.String())), "+-()")
		phrase.Reset()
		switch term {
		case "", "and", "or", "not":
			return
		}
		out = append(out, term)
	}
	for _, r := range query {
		switch {
		case r == '"':
			flush()
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			phrase.WriteRune(r)
		}
	}
	flush()
	return out
}

// matchesAny checks if text contains any of the keywords (case-insensitive).
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// sortArticlesByDate sorts articles by published date (newest first).
// Insertion sort keeps equal dates in their original order.
func sortArticlesByDate(articles []models.Article) {
	for i := 1; i < len(articles); i++ {
		key := articles[i]
		j := i - 1
		for j >= 0 && articles[j].PublishedAt.Before(key.PublishedAt) {
			articles[j+1] = articles[j]
			j--
		}
		articles[j+1] = key
	}
}
