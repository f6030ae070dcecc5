package report

// MarkdownTemplate renders a Report as Markdown.
const MarkdownTemplate = `# Sentiment Analysis Report
{{if .Query}}
**Query:** ` + "`{{.Query}}`" + `
{{end}}
_Generated {{datetime .GeneratedAt}}_

## Overall Summary

| Label | Articles | Share | Mean compound |
|---|---:|---:|---:|
{{- range .Summary}}
| {{.Label}} | {{.Count}} | {{printf "%.2f" .Percentage}}% | {{printf "%+.4f" .MeanCompound}} |
{{- end}}

**Total articles analyzed:** {{.Total}} · **Mean compound:** {{printf "%+.4f" .MeanCompound}} ({{.Overall}})
{{range .Summary}}
## {{labelIcon .Label}} ({{.Count}} articles)
{{with articles $ .Label}}
{{range .}}- [{{mdEscape .Title}}]({{.URL}}) · compound {{printf "%+.4f" .Scores.Compound}}{{if not .PublishedAt.IsZero}} · {{date .PublishedAt}}{{end}}
{{end}}{{else}}
_No {{lower .Label}} news found._
{{end}}{{if .TopTerms}}
Top terms: {{terms .TopTerms}}
{{end}}{{end}}`

// HTMLTemplate renders a Report as a standalone HTML page.
const HTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Sentiment Analysis Report</title>
<style>
  :root {
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --positive: #16a34a;
    --negative: #dc2626;
    --neutral: #6b7280;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  .charts { display: flex; gap: 16px; align-items: center; flex-wrap: wrap; }
  table { width: 100%; border-collapse: collapse; margin: 8px 0; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--border); }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }
  .badge { display: inline-block; padding: 1px 8px; border-radius: 4px; color: white; font-size: 0.8rem; }
  .positive { background: var(--positive); }
  .negative { background: var(--negative); }
  .neutral { background: var(--neutral); }
  ul { list-style: none; }
  li { margin: 8px 0; }
</style>
</head>
<body>
<div class="header">
  <h1>Sentiment Analysis Report</h1>
  {{if .Query}}<p>Query: <code>{{.Query}}</code></p>{{end}}
  <p class="muted">Generated {{datetime .GeneratedAt}} · {{.Total}} articles analyzed</p>
</div>

<div class="charts">
  {{.DistributionChart}}
  {{.Gauge}}
</div>

<h2>Overall Summary</h2>
<table>
  <tr><th>Label</th><th>Articles</th><th>Share</th><th>Mean compound</th></tr>
  {{range .Summary}}
  <tr>
    <td><span class="badge {{lower .Label}}">{{.Label}}</span></td>
    <td class="num">{{.Count}}</td>
    <td class="num">{{printf "%.2f" .Percentage}}%</td>
    <td class="num">{{printf "%+.4f" .MeanCompound}}</td>
  </tr>
  {{end}}
</table>

{{range .Summary}}
<h2>{{labelIcon .Label}} ({{.Count}} articles)</h2>
{{with articles $.Report .Label}}
<ul>
  {{range .}}
  <li>
    <a href="{{.URL}}">{{.Title}}</a><br>
    <span class="muted">compound {{printf "%+.4f" .Scores.Compound}}{{if .Source}} · {{.Source}}{{end}}{{if not .PublishedAt.IsZero}} · {{date .PublishedAt}}{{end}}</span>
  </li>
  {{end}}
</ul>
{{else}}
<p class="muted">No {{lower .Label}} news found.</p>
{{end}}
{{if .TopTerms}}<p class="muted">Top terms: {{terms .TopTerms}}</p>{{end}}
{{end}}
</body>
</html>
`
