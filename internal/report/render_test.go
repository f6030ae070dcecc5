package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/newspulse/pkg/models"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	articles := []models.AnalyzedArticle{
		{
			Title:       "IIT Mandi wins national award",
			URL:         "https://example.com/award",
			Source:      "The Tribune",
			PublishedAt: time.Date(2024, 5, 9, 12, 0, 0, 0, time.UTC),
			Scores:      models.SentimentScores{Positive: 0.4, Neutral: 0.6, Compound: 0.6249},
			Label:       models.PolarityPositive,
		},
		{
			Title:  "Landslide blocks [Mandi] highway",
			URL:    "https://example.com/landslide",
			Scores: models.SentimentScores{Negative: 0.3, Neutral: 0.7, Compound: -0.4019},
			Label:  models.PolarityNegative,
		},
	}
	r, err := Aggregate("mandi", articles, fixedClock)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return r
}

func render(t *testing.T, r *Report, f Format) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, r, f); err != nil {
		t.Fatalf("Render(%s): %v", f, err)
	}
	return buf.String()
}

func TestRenderText(t *testing.T) {
	out := render(t, sampleReport(t), FormatText)

	for _, want := range []string{
		"SENTIMENT ANALYSIS REPORT",
		"Query: mandi",
		"Generated: 10 May 2024, 12:00 PM IST",
		"📊 Overall Summary:",
		"Total Articles Analyzed: 2",
		"📈 Positive Sentiment: 50.00% (1 articles)",
		"📉 Negative Sentiment: 50.00% (1 articles)",
		"⚖️ Neutral Sentiment: 0.00% (0 articles)",
		"👍 POSITIVE NEWS (1 articles):",
		"   - IIT Mandi wins national award\n     URL: https://example.com/award",
		"Published: 09 May 2024",
		"👎 NEGATIVE NEWS (1 articles):",
		"😐 NEUTRAL NEWS (0 articles):",
		"No neutral news found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q", want)
		}
	}

	// Groups appear in positive, negative, neutral order.
	pos := strings.Index(out, "POSITIVE NEWS")
	neg := strings.Index(out, "NEGATIVE NEWS")
	neu := strings.Index(out, "NEUTRAL NEWS")
	if !(pos < neg && neg < neu) {
		t.Errorf("group order: positive %d, negative %d, neutral %d", pos, neg, neu)
	}
}

func TestRenderTextTopTerms(t *testing.T) {
	r, err := Aggregate("", []models.AnalyzedArticle{
		{Title: "Research park opens", Label: models.PolarityPositive},
		{Title: "Research grant awarded", Label: models.PolarityPositive},
	}, WithTopTerms(1), fixedClock)
	if err != nil {
		t.Fatal(err)
	}
	if out := render(t, r, FormatText); !strings.Contains(out, "Top terms: research (2)") {
		t.Errorf("missing top terms line:\n%s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := render(t, sampleReport(t), FormatMarkdown)

	for _, want := range []string{
		"# Sentiment Analysis Report",
		"**Query:** `mandi`",
		"| Positive | 1 | 50.00% | +0.6249 |",
		"- [IIT Mandi wins national award](https://example.com/award) · compound +0.6249 · 09 May 2024",
		`Landslide blocks \[Mandi\] highway`,
		"_No neutral news found._",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out := render(t, sampleReport(t), FormatJSON)

	var got Report
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 2 || got.Query != "mandi" {
		t.Errorf("got total %d query %q", got.Total, got.Query)
	}
	if len(got.Positive) != 1 || got.Positive[0].Scores.Compound != 0.6249 {
		t.Errorf("positive: got %+v", got.Positive)
	}
	if len(got.Summary) != 3 || got.Summary[2].Label != models.PolarityNeutral {
		t.Errorf("summary: got %+v", got.Summary)
	}
	if !strings.Contains(out, `"compound": -0.4019`) {
		t.Error("expected wire names for scores")
	}
}

func TestRenderHTML(t *testing.T) {
	out := render(t, sampleReport(t), FormatHTML)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<svg",
		"Sentiment distribution (%)",
		`<a href="https://example.com/award">IIT Mandi wins national award</a>`,
		"The Tribune",
		`class="badge negative"`,
		"No neutral news found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html output missing %q", want)
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	r, err := Aggregate("<script>", []models.AnalyzedArticle{
		{Title: `<b>bold</b> & "quoted"`, URL: "https://example.com", Label: models.PolarityNeutral},
	}, fixedClock)
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, r, FormatHTML)
	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>bold</b>") {
		t.Error("user content must be escaped")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(t), Format("pdf")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"TXT", FormatText, false},
		{"md", FormatMarkdown, false},
		{" Markdown ", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"html", FormatHTML, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q): err %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
	if len(Formats()) != 4 {
		t.Errorf("Formats: got %v", Formats())
	}
}
