package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

//go:embed templates/*.html
var viewsFS embed.FS

var chartTmpl *template.Template

var ErrNoData = errors.New("chart has no data")

// loadTemplatesFromFS loads chart templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	chartTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded chart templates. Call during startup
// before rendering any HTML chart.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Bar is one labelled value of a chart.
type Bar struct {
	Label string
	Value float64
}

// WriteBarChart draws a horizontal text bar chart. Bar length is
// proportional to the magnitude of the value; width is the longest bar.
func WriteBarChart(w io.Writer, title string, bars []Bar, width int) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	if width < 1 {
		width = 1
	}

	labelWidth := 0
	maxAbs := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(b.Label))
		maxAbs = max(maxAbs, math.Abs(b.Value))
	}

	var sb strings.Builder
	sb.WriteString("\n" + title + "\n")
	for _, b := range bars {
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(b.Value) / maxAbs * float64(width)))
		}
		fill := "█"
		if b.Value < 0 {
			fill = "░"
		}
		sb.WriteString(runewidth.FillRight(b.Label, labelWidth))
		sb.WriteString(" | ")
		sb.WriteString(runewidth.FillRight(strings.Repeat(fill, n), width))
		fmt.Fprintf(&sb, " %6.2f°C\n", b.Value)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

const (
	svgWidth     = 960
	svgHeight    = 420
	svgMarginX   = 60
	svgMarginTop = 30
	svgMarginBot = 70
)

// ChartData is the input of RenderChartHTML.
type ChartData struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
}

type barView struct {
	Label   string
	Value   string
	X, Y    float64
	Width   float64
	Height  float64
	LabelX  float64
	LabelY  float64
	ValueY  float64
	Negated bool
}

type chartView struct {
	Title     string
	XLabel    string
	YLabel    string
	Width     int
	Height    int
	BaselineY float64
	PlotLeft  float64
	PlotRight float64
	Bars      []barView
}

// RenderChartHTML executes the chart page into w as an inline SVG bar chart.
func RenderChartHTML(w io.Writer, data *ChartData) error {
	if chartTmpl == nil {
		return errors.New("chart template not loaded: call views.LoadTemplates during startup")
	}
	if data == nil || len(data.Bars) == 0 {
		return ErrNoData
	}
	return chartTmpl.ExecuteTemplate(w, "chart.html", layout(data))
}

func layout(data *ChartData) chartView {
	maxPos, maxNeg := 0.0, 0.0
	for _, b := range data.Bars {
		maxPos = max(maxPos, b.Value)
		maxNeg = max(maxNeg, -b.Value)
	}
	span := maxPos + maxNeg
	if span == 0 {
		span = 1
	}

	plotH := float64(svgHeight - svgMarginTop - svgMarginBot)
	plotW := float64(svgWidth - 2*svgMarginX)
	baseline := float64(svgMarginTop) + plotH*maxPos/span
	slot := plotW / float64(len(data.Bars))

	v := chartView{
		Title:     data.Title,
		XLabel:    data.XLabel,
		YLabel:    data.YLabel,
		Width:     svgWidth,
		Height:    svgHeight,
		BaselineY: baseline,
		PlotLeft:  svgMarginX,
		PlotRight: svgWidth - svgMarginX,
	}
	for i, b := range data.Bars {
		h := plotH * math.Abs(b.Value) / span
		x := float64(svgMarginX) + float64(i)*slot + slot*0.1
		y := baseline - h
		valueY := y - 4
		if b.Value < 0 {
			y = baseline
			valueY = baseline + h + 12
		}
		v.Bars = append(v.Bars, barView{
			Label:   b.Label,
			Value:   fmt.Sprintf("%.2f", b.Value),
			X:       x,
			Y:       y,
			Width:   slot * 0.8,
			Height:  h,
			LabelX:  x + slot*0.4,
			LabelY:  float64(svgHeight - svgMarginBot + 20),
			ValueY:  valueY,
			Negated: b.Value < 0,
		})
	}
	return v
}
