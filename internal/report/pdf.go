package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// PDF export: HTML report → PDF via wkhtmltopdf / chromium headless
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine to use for HTML→PDF conversion.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // no engine: the HTML is written instead
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// PDFOptions holds configuration for PDF export.
type PDFOptions struct {
	Engine     PDFEngine // "" auto-detects
	PageSize   string    // default: "A4"
	OutputPath string    // required
}

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	for _, name := range chromiumBinaries {
		if _, err := exec.LookPath(name); err == nil {
			return EngineChromium
		}
	}
	return EngineNone
}

// ExportPDF renders r as HTML and converts it to a PDF at opts.OutputPath.
// When no engine is installed the HTML is written next to it (same name,
// .html extension). The path actually written is returned.
func ExportPDF(ctx context.Context, r *Report, opts PDFOptions) (string, error) {
	if opts.OutputPath == "" {
		return "", fmt.Errorf("output path is required")
	}
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}

	var html bytes.Buffer
	if err := Render(&html, r, FormatHTML); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	engine := opts.Engine
	if engine == "" {
		engine = DetectPDFEngine()
	}

	switch engine {
	case EngineWKHTML:
		return opts.OutputPath, convertWithWKHTML(ctx, html.Bytes(), opts)
	case EngineChromium:
		return opts.OutputPath, convertWithChromium(ctx, html.Bytes(), opts)
	case EngineNone:
		return writeHTMLFallback(html.Bytes(), opts.OutputPath)
	default:
		return "", fmt.Errorf("unsupported PDF engine: %s", engine)
	}
}

func convertWithWKHTML(ctx context.Context, html []byte, opts PDFOptions) error {
	tmpFile, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	args := []string{
		"--page-size", opts.PageSize,
		"--encoding", "UTF-8",
		"--enable-local-file-access",
		"--quiet",
		tmpFile,
		opts.OutputPath,
	}
	if output, err := exec.CommandContext(ctx, "wkhtmltopdf", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w\nOutput: %s", err, output)
	}
	return nil
}

func convertWithChromium(ctx context.Context, html []byte, opts PDFOptions) error {
	tmpFile, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	var bin string
	for _, name := range chromiumBinaries {
		if path, err := exec.LookPath(name); err == nil {
			bin = path
			break
		}
	}
	if bin == "" {
		return fmt.Errorf("chromium not found in PATH")
	}

	absOutput, err := filepath.Abs(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + absOutput,
		"--print-to-pdf-no-header",
		"file://" + tmpFile,
	}
	if output, err := exec.CommandContext(ctx, bin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("chromium PDF export failed: %w\nOutput: %s", err, output)
	}
	return nil
}

func writeTempHTML(html []byte) (string, error) {
	f, err := os.CreateTemp("", "newspulse-report-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp HTML: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(html); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp HTML: %w", err)
	}
	return f.Name(), nil
}

func writeHTMLFallback(html []byte, outputPath string) (string, error) {
	if strings.EqualFold(filepath.Ext(outputPath), ".pdf") {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".html"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, html, 0644); err != nil {
		return "", fmt.Errorf("writing HTML fallback: %w", err)
	}
	return outputPath, nil
}
