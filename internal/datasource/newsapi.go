package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/seenimoa/newspulse/pkg/models"
)

// DefaultNewsAPIURL is the NewsAPI "everything" endpoint.
const DefaultNewsAPIURL = "https://newsapi.org/v2/everything"

// MaxNewsAPIPageSize is the largest page NewsAPI serves.
const MaxNewsAPIPageSize = 100

// ErrAPI is an error reported by NewsAPI in its response body.
type ErrAPI struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ErrAPI) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("newsapi: %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("newsapi: %s: %s", e.Code, e.Message)
}

// NewsAPIOptions configures a NewsAPI client.
type NewsAPIOptions struct {
	APIKey         string
	BaseURL        string // defaults to DefaultNewsAPIURL
	SortBy         string // "relevancy", "popularity" or "publishedAt"
	Language       string
	PageSize       int
	Timeout        time.Duration
	RequestsPerSec float64
	CacheTTL       time.Duration
	Logger         logrus.FieldLogger
}

// NewsAPI fetches articles from newsapi.org.
type NewsAPI struct {
	opts    NewsAPIOptions
	client  *http.Client
	limiter *rate.Limiter
	cache   *Cache[[]models.Article]
	log     logrus.FieldLogger
}

// NewNewsAPI creates a NewsAPI source.
func NewNewsAPI(opts NewsAPIOptions) *NewsAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNewsAPIURL
	}
	if opts.SortBy == "" {
		opts.SortBy = "relevancy"
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.PageSize <= 0 || opts.PageSize > MaxNewsAPIPageSize {
		opts.PageSize = MaxNewsAPIPageSize
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NewsAPI{
		opts:    opts,
		client:  newHTTPClient(opts.Timeout),
		limiter: newLimiter(opts.RequestsPerSec),
		cache:   NewCache[[]models.Article](opts.CacheTTL),
		log:     log.WithField("source", "newsapi"),
	}
}

// Name returns the source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (a newsAPIArticle) toModel() models.Article {
	art := models.Article{
		Title:       strings.TrimSpace(a.Title),
		Description: strings.TrimSpace(a.Description),
		URL:         a.URL,
		Source:      a.Source.Name,
		Author:      a.Author,
	}
	if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		art.PublishedAt = ts
	}
	return art
}

// FetchArticles queries the everything endpoint. Results are cached per
// (query, limit) for the configured TTL.
func (n *NewsAPI) FetchArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	if n.opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("newsapi: empty query")
	}

	pageSize := n.opts.PageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	cacheKey := fmt.Sprintf("newsapi:%s:%d", query, pageSize)
	if cached, ok := n.cache.Get(cacheKey); ok {
		n.log.WithField("query", query).Debug("cache hit")
		return cloneArticles(cached), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", n.opts.SortBy)
	params.Set("language", n.opts.Language)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", n.opts.APIKey)

	n.log.WithFields(logrus.Fields{"query": query, "page_size": pageSize}).Info("fetching news")

	body, err := doGet(ctx, n.client, n.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		var httpErr *ErrHTTP
		if errors.As(err, &httpErr) {
			return nil, apiError(httpErr)
		}
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer body.Close()

	var resp newsAPIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, &ErrAPI{StatusCode: http.StatusOK, Code: resp.Code, Message: resp.Message}
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.toModel())
	}
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.log.WithFields(logrus.Fields{"query": query, "found": len(articles), "total": resp.TotalResults}).Info("news fetched")
	n.cache.Set(cacheKey, articles)
	return cloneArticles(articles), nil
}

// apiError turns an HTTP error into an *ErrAPI, using the message NewsAPI
// puts in its error body when there is one.
func apiError(httpErr *ErrHTTP) error {
	e := &ErrAPI{StatusCode: httpErr.StatusCode, Code: "http_error", Message: httpErr.Status}
	var body newsAPIResponse
	if err := json.Unmarshal([]byte(httpErr.Body), &body); err == nil && body.Status == "error" {
		e.Code = body.Code
		e.Message = body.Message
	}
	return e
}
