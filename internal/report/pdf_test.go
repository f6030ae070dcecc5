package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportPDFWithoutEngineWritesHTML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "mandi.pdf")

	path, err := ExportPDF(context.Background(), sampleReport(t), PDFOptions{
		Engine:     EngineNone,
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	if want := strings.TrimSuffix(out, ".pdf") + ".html"; path != want {
		t.Errorf("path: got %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("fallback HTML should embed charts")
	}
}

func TestExportPDFErrors(t *testing.T) {
	r := sampleReport(t)
	if _, err := ExportPDF(context.Background(), r, PDFOptions{Engine: EngineNone}); err == nil {
		t.Error("expected error for missing output path")
	}
	_, err := ExportPDF(context.Background(), r, PDFOptions{
		Engine:     PDFEngine("prince"),
		OutputPath: filepath.Join(t.TempDir(), "x.pdf"),
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("got %v, want unsupported engine error", err)
	}
}

func TestDetectPDFEngine(t *testing.T) {
	switch e := DetectPDFEngine(); e {
	case EngineWKHTML, EngineChromium, EngineNone:
	default:
		t.Errorf("unexpected engine %q", e)
	}
}
