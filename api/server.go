// Package api provides the HTTP REST API server for NewsPulse.
//
// It exposes endpoints for scoring text, explaining a score token by token,
// and building sentiment reports over caller-supplied or fetched articles.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/report"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Options configures a Server.
type Options struct {
	Config   *config.Config
	Analyzer *sentiment.Analyzer
	// Source backs GET /api/v1/report. Without it that route answers 503.
	Source  datasource.ArticleSource
	Logger  logrus.FieldLogger
	Version string
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer *sentiment.Analyzer
	source   datasource.ArticleSource
	log      logrus.FieldLogger
	version  string
	started  time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(opts Options) *Server {
	s := &Server{
		cfg:      opts.Config,
		analyzer: opts.Analyzer,
		source:   opts.Source,
		log:      opts.Logger,
		version:  opts.Version,
		started:  time.Now(),
	}
	if s.cfg == nil {
		s.cfg = &config.Config{}
	}
	if s.analyzer == nil {
		s.analyzer = sentiment.NewAnalyzer(nil)
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves HTTP on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/score", s.handleScore)
		r.Post("/explain", s.handleExplain)

		r.Post("/report", s.handleBuildReport)
		r.Get("/report", s.handleFetchReport)
		r.Get("/ws/report", s.handleReportStream)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request through log.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   utils.FormatDuration(time.Since(start)),
					"request_id": middleware.GetReqID(r.Context()),
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// ============================================================
// Request/Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TextRequest is the body of POST /api/v1/score and /api/v1/explain.
type TextRequest struct {
	Text string `json:"text"`
}

// ScoreResponse is the result of scoring one text.
type ScoreResponse struct {
	Text   string                 `json:"text"`
	Scores models.SentimentScores `json:"scores"`
	Label  models.Polarity        `json:"label"`
}

// ReportRequest is the body of POST /api/v1/report.
type ReportRequest struct {
	Query    string           `json:"query,omitempty"`
	Articles []models.Article `json:"articles"`
}

// HealthResponse describes the running server.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Uptime      string `json:"uptime"`
	LexiconSize int    `json:"lexicon_size"`
	Source      string `json:"source,omitempty"`
	Time        string `json:"time"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Version:     s.version,
		Uptime:      utils.FormatDuration(time.Since(s.started)),
		LexiconSize: s.analyzer.Lexicon().Len(),
		Time:        utils.FormatDateTimeIST(utils.NowIST()),
	}
	if s.source != nil {
		resp.Source = s.source.Name()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	scores, label, err := s.analyzer.Classify(req.Text)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ScoreResponse{Text: req.Text, Scores: scores, Label: label},
	})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	exp, err := s.analyzer.Explain(req.Text)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: exp})
}

// handleBuildReport analyses the articles in the request body.
func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondWithReport(w, r, req.Query, req.Articles)
}

// handleFetchReport fetches articles for ?q= from the configured source and
// analyses them. q and limit default to the configured query and page size;
// since (YYYY-MM-DD, IST) drops older articles.
func (s *Server) handleFetchReport(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusServiceUnavailable, "no article source configured")
		return
	}
	p, msg := s.parseFetchParams(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	articles, status, err := s.fetch(r.Context(), p)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	s.respondWithReport(w, r, p.query, articles)
}

// fetchParams are the query parameters of the fetched-report routes.
type fetchParams struct {
	query string
	limit int
	since time.Time
}

// parseFetchParams reads q, limit and since. A non-empty message describes
// why the request is invalid.
func (s *Server) parseFetchParams(r *http.Request) (fetchParams, string) {
	p := fetchParams{
		query: strings.TrimSpace(r.URL.Query().Get("q")),
		limit: s.cfg.News.PageSize,
	}
	if p.query == "" {
		p.query = s.cfg.News.Query
	}
	if p.query == "" {
		return p, "q is required"
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, "limit must be a positive integer"
		}
		p.limit = n
	}

	if v := r.URL.Query().Get("since"); v != "" {
		t, err := utils.ParseDateIST(v)
		if err != nil {
			return p, "since must be a date in YYYY-MM-DD format"
		}
		p.since = t
	}
	return p, ""
}

// fetch pulls articles from the source and applies the since filter. On
// failure it also returns the HTTP status that describes it.
func (s *Server) fetch(ctx context.Context, p fetchParams) ([]models.Article, int, error) {
	articles, err := s.source.FetchArticles(ctx, p.query, p.limit)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"source": s.source.Name(), "query": p.query}).Warn("fetch failed")
		status := http.StatusBadGateway
		if errors.Is(err, datasource.ErrMissingAPIKey) {
			status = http.StatusServiceUnavailable
		}
		return nil, status, fmt.Errorf("fetching articles: %w", err)
	}
	return datasource.PublishedSince(articles, p.since), http.StatusOK, nil
}

// respondWithReport scores articles, aggregates them and writes the report
// as JSON, or in the format named by ?format=.
func (s *Server) respondWithReport(w http.ResponseWriter, r *http.Request, query string, articles []models.Article) {
	format := report.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	analyzed, err := sentiment.AnalyzeArticles(r.Context(), s.analyzer, articles, sentiment.BatchOptions{
		Workers: s.cfg.Analysis.Workers,
		Logger:  s.log,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "analysis interrupted: "+err.Error())
		return
	}

	rep, err := report.Aggregate(query, analyzed, report.WithTopTerms(s.cfg.Report.TopTerms))
	if errors.Is(err, report.ErrEmptyBatch) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if format == report.FormatJSON {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, rep, format); err != nil {
		s.log.WithError(err).Warn("failed to render report")
	}
}

// ============================================================
// Helpers
// ============================================================

func contentType(f report.Format) string {
	switch f {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// decodeBody decodes the JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, sentiment.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
