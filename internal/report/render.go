package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"

	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatHTML}
}

// ParseFormat resolves a format name; "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatText, "":
		_, err := io.WriteString(w, renderText(r))
		return err
	case FormatMarkdown:
		return markdownTemplate.Execute(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatHTML:
		return renderHTML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

var labelHeadings = map[models.Polarity]struct{ summary, list, empty string }{
	models.PolarityPositive: {"📈 Positive Sentiment", "👍 POSITIVE NEWS", "No positive news found."},
	models.PolarityNegative: {"📉 Negative Sentiment", "👎 NEGATIVE NEWS", "No negative news found."},
	models.PolarityNeutral:  {"⚖️ Neutral Sentiment", "😐 NEUTRAL NEWS", "No neutral news found."},
}

func renderText(r *Report) string {
	var sb strings.Builder
	line := strings.Repeat("=", 50)
	thinLine := strings.Repeat("-", 50)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("      SENTIMENT ANALYSIS REPORT\n")
	sb.WriteString(line + "\n")
	if r.Query != "" {
		fmt.Fprintf(&sb, "   Query: %s\n", r.Query)
	}
	fmt.Fprintf(&sb, "   Generated: %s\n\n", utils.FormatDateTimeIST(r.GeneratedAt))

	sb.WriteString("📊 Overall Summary:\n")
	fmt.Fprintf(&sb, "   Total Articles Analyzed: %d\n", r.Total)
	for _, s := range r.Summary {
		fmt.Fprintf(&sb, "   %s: %.2f%% (%d articles)\n", labelHeadings[s.Label].summary, s.Percentage, s.Count)
	}
	fmt.Fprintf(&sb, "   Mean Compound: %+.4f (%s)\n", r.MeanCompound, r.Overall())

	for _, label := range models.Polarities() {
		h := labelHeadings[label]
		group := r.Articles(label)

		sb.WriteString("\n" + thinLine + "\n")
		fmt.Fprintf(&sb, "\n%s (%d articles):\n\n", h.list, len(group))
		if len(group) == 0 {
			fmt.Fprintf(&sb, "   %s\n", h.empty)
			continue
		}
		for _, a := range group {
			fmt.Fprintf(&sb, "   - %s\n", a.Title)
			fmt.Fprintf(&sb, "     URL: %s\n", a.URL)
			fmt.Fprintf(&sb, "     Compound: %+.4f", a.Scores.Compound)
			if !a.PublishedAt.IsZero() {
				fmt.Fprintf(&sb, " | Published: %s", utils.FormatDateIST(a.PublishedAt))
			}
			sb.WriteString("\n\n")
		}
		if terms := summaryFor(r, label).TopTerms; len(terms) > 0 {
			fmt.Fprintf(&sb, "   Top terms: %s\n", joinTerms(terms))
		}
	}
	return sb.String()
}

func summaryFor(r *Report, label models.Polarity) LabelSummary {
	for _, s := range r.Summary {
		if s.Label == label {
			return s
		}
	}
	return LabelSummary{Label: label}
}

func joinTerms(terms []TermCount) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s (%d)", t.Term, t.Count)
	}
	return strings.Join(parts, ", ")
}

// ════════════════════════════════════════════════════════════════════
// Markdown and HTML renderers
// ════════════════════════════════════════════════════════════════════

var funcs = template.FuncMap{
	"articles":  func(r *Report, l models.Polarity) []models.AnalyzedArticle { return r.Articles(l) },
	"terms":     joinTerms,
	"date":      utils.FormatDateIST,
	"datetime":  utils.FormatDateTimeIST,
	"mdEscape":  markdownEscaper.Replace,
	"lower":     func(l models.Polarity) string { return strings.ToLower(string(l)) },
	"labelIcon": func(l models.Polarity) string { return labelHeadings[l].list },
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `|`, `\|`, `*`, `\*`, `_`, `\_`)

var markdownTemplate = template.Must(template.New("markdown").Funcs(funcs).Parse(MarkdownTemplate))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap(funcs)).Parse(HTMLTemplate))

// htmlData wraps a report with its pre-rendered charts.
type htmlData struct {
	*Report
	DistributionChart htmltemplate.HTML
	Gauge             htmltemplate.HTML
}

func renderHTML(w io.Writer, r *Report) error {
	data := htmlData{
		Report:            r,
		DistributionChart: htmltemplate.HTML(DistributionChart(r, DefaultChartConfig())),
		Gauge:             htmltemplate.HTML(CompoundGauge(r.MeanCompound, "Mean compound", 220)),
	}
	return htmlTemplate.Execute(w, data)
}
