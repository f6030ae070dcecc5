// NewsPulse: lexicon and rule based sentiment analysis for news headlines.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seenimoa/newspulse/api"
	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/report"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg *config.Config
	log *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newspulse",
	Short: "NewsPulse: sentiment analysis for news headlines",
	Long: `NewsPulse fetches news articles for a query, scores each one with a
lexicon and rule based sentiment analyzer, and reports how coverage splits
into positive, negative and neutral.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log = logger.New(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// buildAnalyzer loads the configured lexicon. Words in a custom lexicon file
// override the built-in ratings; everything else falls back to them.
func buildAnalyzer(c *config.Config) (*sentiment.Analyzer, error) {
	if c.Analysis.LexiconPath == "" {
		return sentiment.NewAnalyzer(nil), nil
	}
	custom, err := sentiment.LoadLexiconFile(c.Analysis.LexiconPath)
	if err != nil {
		return nil, err
	}
	return sentiment.NewAnalyzer(custom.Extend(sentiment.DefaultLexicon())), nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "NewsPulse %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Fetch news for a query and report its sentiment",
	Long: `Fetch articles from the configured provider, score them in parallel and
print a sentiment report. The query defaults to news.query from the config.

Examples:
  newspulse analyze
  newspulse analyze '"IIT Mandi"' --limit 50 --format markdown
  newspulse analyze mandi --provider rss --pdf reports/mandi.pdf
  newspulse analyze --since 2024-05-01 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			query = cfg.News.Query
		}
		formatName, _ := cmd.Flags().GetString("format")
		if formatName == "" {
			formatName = cfg.Report.Format
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.News.PageSize
		}
		var since time.Time
		if v, _ := cmd.Flags().GetString("since"); v != "" {
			if since, err = utils.ParseDateIST(v); err != nil {
				return fmt.Errorf("invalid --since date %q (want YYYY-MM-DD): %w", v, err)
			}
		}
		topTerms, _ := cmd.Flags().GetInt("top-terms")
		if !cmd.Flags().Changed("top-terms") {
			topTerms = cfg.Report.TopTerms
		}

		newsCfg := cfg.News
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			newsCfg.Provider = p
		}
		source, err := datasource.FromConfig(newsCfg, logger.Component(log, "datasource"))
		if err != nil {
			return err
		}
		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		start := time.Now()
		articles, err := source.FetchArticles(ctx, query, limit)
		if err != nil {
			if errors.Is(err, datasource.ErrMissingAPIKey) {
				return fmt.Errorf("%w: set NEWSAPI_KEY or news.newsapi_key, or use --provider rss", err)
			}
			return fmt.Errorf("fetching articles: %w", err)
		}
		articles = datasource.PublishedSince(articles, since)
		log.WithFields(logrus.Fields{
			"source":   source.Name(),
			"query":    query,
			"articles": len(articles),
			"took":     utils.FormatDuration(time.Since(start)),
		}).Info("fetched articles")

		analyzed, err := sentiment.AnalyzeArticles(ctx, analyzer, articles, sentiment.BatchOptions{
			Workers: cfg.Analysis.Workers,
			Logger:  logger.Component(log, "analysis"),
		})
		if err != nil {
			return err
		}

		rep, err := report.Aggregate(query, analyzed, report.WithTopTerms(topTerms))
		if errors.Is(err, report.ErrEmptyBatch) {
			return fmt.Errorf("no articles to analyze for %q: %w", query, err)
		}
		if err != nil {
			return err
		}
		log.WithField("took", utils.FormatDuration(time.Since(start))).Debug("analysis complete")

		if err := report.Render(cmd.OutOrStdout(), rep, format); err != nil {
			return err
		}

		if pdfPath, _ := cmd.Flags().GetString("pdf"); pdfPath != "" {
			written, err := report.ExportPDF(ctx, rep, report.PDFOptions{OutputPath: pdfPath})
			if err != nil {
				return fmt.Errorf("exporting PDF: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 Report written to %s\n", written)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "", "output format: text, markdown, json, html (default from config)")
	analyzeCmd.Flags().IntP("limit", "n", 0, "maximum number of articles (default news.page_size)")
	analyzeCmd.Flags().String("provider", "", "article source: newsapi, rss, all (default from config)")
	analyzeCmd.Flags().String("since", "", "only analyze articles published on or after this IST date (YYYY-MM-DD)")
	analyzeCmd.Flags().Int("top-terms", 0, "frequent title terms to list per label")
	analyzeCmd.Flags().String("pdf", "", "also export the report as PDF to this path")
}

// --- Score Command ---

var scoreCmd = &cobra.Command{
	Use:   "score [text]",
	Short: "Score text given as arguments, or each line of stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		texts := args
		if len(args) > 0 {
			texts = []string{strings.Join(args, " ")}
		} else {
			texts, err = readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		return writeScores(cmd.OutOrStdout(), analyzer, texts, asJSON)
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "emit one JSON object per line")
}

// scoreLine is one line of `score --json` output.
type scoreLine struct {
	Text     string  `json:"text"`
	Label    string  `json:"label"`
	Compound float64 `json:"compound"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
}

func writeScores(w io.Writer, a *sentiment.Analyzer, texts []string, asJSON bool) error {
	enc := json.NewEncoder(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if !asJSON {
		fmt.Fprintln(tw, "COMPOUND\tLABEL\tNEG\tNEU\tPOS\tTEXT")
	}
	for _, text := range texts {
		scores, label, err := a.Classify(text)
		if err != nil {
			return fmt.Errorf("scoring %q: %w", text, err)
		}
		if asJSON {
			if err := enc.Encode(scoreLine{
				Text: text, Label: string(label), Compound: scores.Compound,
				Negative: scores.Negative, Neutral: scores.Neutral, Positive: scores.Positive,
			}); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(tw, "%+.4f\t%s\t%.3f\t%.3f\t%.3f\t%s\n",
			scores.Compound, label, scores.Negative, scores.Neutral, scores.Positive, text)
	}
	if asJSON {
		return nil
	}
	return tw.Flush()
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

// --- Explain Command ---

var explainCmd = &cobra.Command{
	Use:   "explain [text]",
	Short: "Show how each token contributes to a score",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}
		exp, err := analyzer.Explain(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(exp)
		}
		return writeExplanation(cmd.OutOrStdout(), exp)
	},
}

func init() {
	explainCmd.Flags().Bool("json", false, "emit the explanation as JSON")
}

func writeExplanation(w io.Writer, exp *sentiment.Explanation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tBASE\tADJUSTED\tRULES")
	for _, st := range exp.Tokens {
		rules := make([]string, len(st.Rules))
		for i, r := range st.Rules {
			rules[i] = string(r)
		}
		fmt.Fprintf(tw, "%s\t%+.3f\t%+.3f\t%s\n", st.Raw, st.Base, st.Adjusted, strings.Join(rules, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRaw sum: %+.4f  Emphasis: %+.3f\n", exp.RawSum, exp.Emphasis)
	fmt.Fprintf(w, "Scores:  neg %.3f  neu %.3f  pos %.3f  compound %+.4f  => %s\n",
		exp.Scores.Negative, exp.Scores.Neutral, exp.Scores.Positive, exp.Scores.Compound, exp.Label)

	if len(exp.Sentences) > 1 {
		fmt.Fprintln(w, "\nSentences:")
		for _, s := range exp.Sentences {
			fmt.Fprintf(w, "  %+.4f  %-8s  %s\n", s.Scores.Compound, s.Label, s.Text)
		}
	}
	return nil
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}
		source, err := datasource.FromConfig(cfg.News, logger.Component(log, "datasource"))
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		srv := api.NewServer(api.Options{
			Config:   cfg,
			Analyzer: analyzer,
			Source:   source,
			Logger:   logger.Component(log, "api"),
			Version:  version,
		})

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(cmd.ErrOrStderr(), "🌐 Starting NewsPulse API server on %s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "port override (default api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}
		writeStatus(cmd.OutOrStdout(), cfg, analyzer)
		return nil
	},
}

func writeStatus(w io.Writer, c *config.Config, a *sentiment.Analyzer) {
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintln(w, "  NewsPulse System Status")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintf(w, "  Version:       %s (%s)\n", version, commit)
	fmt.Fprintf(w, "  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
	fmt.Fprintln(w)

	lexicon := "built-in"
	if c.Analysis.LexiconPath != "" {
		lexicon = c.Analysis.LexiconPath
	}
	fmt.Fprintln(w, "  Configuration:")
	fmt.Fprintf(w, "    Provider:      %s\n", c.News.Provider)
	fmt.Fprintf(w, "    Query:         %s\n", c.News.Query)
	fmt.Fprintf(w, "    Page Size:     %d\n", c.News.PageSize)
	fmt.Fprintf(w, "    RSS Feeds:     %d configured\n", len(c.News.Feeds))
	fmt.Fprintf(w, "    Lexicon:       %s (%d words)\n", lexicon, a.Lexicon().Len())
	fmt.Fprintf(w, "    Report Format: %s\n", c.Report.Format)
	fmt.Fprintf(w, "    API Server:    %s:%d\n", c.API.Host, c.API.Port)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  API Keys:")
	for _, k := range config.CheckAPIKeys(c) {
		status := "❌ not set"
		if k.IsSet {
			status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
		}
		fmt.Fprintf(w, "    %-25s %s\n", k.Name+":", status)
	}

	fmt.Fprintln(w, "═══════════════════════════════════════")
}
