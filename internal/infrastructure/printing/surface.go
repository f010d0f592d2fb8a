package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
)

// Document is a printable page holding a single label
type Document struct {
	JobID uuid.UUID
	Title string
	HTML  string
	// Markup is the bare symbol the page was built around
	Markup   string
	WidthMM  float64
	HeightMM float64
}

// SurfaceResult describes what the fallback surface produced
type SurfaceResult struct {
	// ArchiveURL is set when the surface stored a rendered copy
	ArchiveURL string
}

// Surface shows a document to the user so it can be printed by hand
type Surface interface {
	Open(ctx context.Context, doc *Document) (*SurfaceResult, error)
}

// BuildDocument wraps the symbol markup in a page sized to the label
func BuildDocument(jobID uuid.UUID, symbol printing.Symbol) (*Document, error) {
	html, err := buildLabelHTML(symbol)
	if err != nil {
		return nil, err
	}
	return &Document{
		JobID:    jobID,
		Title:    labelTitle(symbol),
		HTML:     html,
		Markup:   symbol.Markup,
		WidthMM:  symbol.WidthMM,
		HeightMM: symbol.HeightMM,
	}, nil
}

var labelPage = template.Must(template.New("label").Parse(`<!DOCTYPE html><html><head>` +
	`<meta charset="UTF-8"><title>{{.Title}}</title>` +
	`<style>{{.PageRule}}html,body{margin:0;padding:0}svg{display:block}</style>` +
	`</head><body>{{.SVG}}</body></html>`))

type labelPageData struct {
	Title    string
	PageRule template.CSS
	SVG      template.HTML
}

func labelTitle(symbol printing.Symbol) string {
	return symbol.Format.DisplayName() + " " + symbol.Text
}

// buildLabelHTML builds a complete HTML page around the SVG.
// The XML prolog is dropped because it is not valid inside HTML.
func buildLabelHTML(symbol printing.Symbol) (string, error) {
	svg := strings.TrimSpace(symbol.Markup)
	if strings.HasPrefix(svg, "<?xml") {
		if end := strings.Index(svg, "?>"); end != -1 {
			svg = strings.TrimSpace(svg[end+2:])
		}
	}

	rule := "@page{margin:0}"
	if symbol.WidthMM > 0 && symbol.HeightMM > 0 {
		rule = fmt.Sprintf("@page{size:%.2fmm %.2fmm;margin:0}", symbol.WidthMM, symbol.HeightMM)
	}

	var buf bytes.Buffer
	err := labelPage.Execute(&buf, labelPageData{
		Title:    labelTitle(symbol),
		PageRule: template.CSS(rule),
		// produced by the barcode encoder, which escapes its own text
		SVG: template.HTML(svg),
	})
	if err != nil {
		return "", fmt.Errorf("render label page: %w", err)
	}
	return buf.String(), nil
}
