package barcode

import (
	"strconv"
	"text/template"
)

// pointToMM converts typographic points to millimeters
const pointToMM = 0.3527777778

// bar is one run of adjacent dark modules
type bar struct {
	X     float64
	Width float64
}

type svgData struct {
	Width      float64
	Height     float64
	BarHeight  float64
	Bars       []bar
	Text       string
	TextX      float64
	TextY      float64
	FontSize   float64
	Foreground string
	Background string
}

var svgTemplate = template.Must(template.New("barcode").Funcs(template.FuncMap{
	"mm": formatMM,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="{{mm .Width}}mm" height="{{mm .Height}}mm" viewBox="0 0 {{mm .Width}} {{mm .Height}}">
<rect x="0" y="0" width="{{mm .Width}}" height="{{mm .Height}}" style="fill:{{.Background}}"/>
<g style="fill:{{.Foreground}}">
{{- range .Bars}}
<rect x="{{mm .X}}" y="0" width="{{mm .Width}}" height="{{mm $.BarHeight}}"/>
{{- end}}
</g>
{{- if .Text}}
<text x="{{mm .TextX}}" y="{{mm .TextY}}" style="fill:{{.Foreground}};font-size:{{mm .FontSize}}px;text-anchor:middle;font-family:monospace">{{html .Text}}</text>
{{- end}}
</svg>
`))

// formatMM prints a length with at most three decimals
func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
