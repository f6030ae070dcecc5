package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG Charts
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 640)
	Height       int    // SVG height in pixels (default: 220)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 20)
	MarginLeft   int    // left margin, room for bar labels (default: 100)
	BgColor      string // background color (default: "#ffffff")
	TextColor    string // label color (default: "#333333")
	FontSize     int    // label font size (default: 12)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        640,
		Height:       220,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 20,
		MarginLeft:   100,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		FontSize:     12,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// labelColors maps each sentiment label to its bar and badge color.
var labelColors = map[models.Polarity]string{
	models.PolarityPositive: "#16a34a",
	models.PolarityNegative: "#dc2626",
	models.PolarityNeutral:  "#6b7280",
}

// BarItem represents a single bar in a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional
}

// DistributionChart draws the share of each label as horizontal bars.
func DistributionChart(r *Report, cfg ChartConfig) string {
	items := make([]BarItem, 0, len(r.Summary))
	for _, s := range r.Summary {
		items = append(items, BarItem{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Count),
			Value: s.Percentage,
			Color: labelColors[s.Label],
		})
	}
	if cfg.Title == "" {
		cfg.Title = "Sentiment distribution (%)"
	}
	return HorizontalBarChart(items, cfg)
}

// HorizontalBarChart generates an SVG horizontal bar chart of non-negative values.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal := 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
	}
	if maxVal < 0.001 {
		maxVal = 1
	}

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 30)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(&sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			color = "#2563eb"
		}
		bw := math.Max(item.Value, 0) / maxVal * float64(pw)

		fmt.Fprintf(&sb, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			px, by, bw, barH, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%.1f</text>`,
			float64(px)+bw+5, by+barH/2+4, cfg.FontSize, cfg.TextColor, item.Value)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CompoundGauge draws a semicircular gauge for a compound score in [-1, 1].
func CompoundGauge(compound float64, label string, width int) string {
	if width == 0 {
		width = 220
	}
	height := width/2 + 30

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	radius := float64(width)/2 - 20

	compound = math.Max(-1, math.Min(1, compound))
	// -1 maps to 180° (left), +1 to 0° (right).
	frac := (compound + 1) / 2
	angle := math.Pi - frac*math.Pi
	needleX := cx + radius*0.85*math.Cos(angle)
	needleY := cy - radius*0.85*math.Sin(angle)

	color := labelColors[models.PolarityNeutral]
	switch {
	case compound >= 0.05:
		color = labelColors[models.PolarityPositive]
	case compound <= -0.05:
		color = labelColors[models.PolarityNegative]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`, width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="white"/>`, width, height)

	// Background arc
	fmt.Fprintf(&sb, `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, cx+radius, cy)

	// Filled arc up to the value
	endX := cx + radius*math.Cos(angle)
	endY := cy - radius*math.Sin(angle)
	fmt.Fprintf(&sb, `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, endX, endY, color)

	// Needle
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
		cx, cy, needleX, needleY)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy)

	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="20" font-weight="bold" fill="%s" text-anchor="middle">%+.3f</text>`,
		cx, cy+25, color, compound)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label))

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
