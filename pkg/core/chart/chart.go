// Package chart builds the two-bar "expected vs actual" comparison shown for each measure.
package chart

import (
	"math"
	"strconv"
	"strings"
)

// Fixed presentation of the two bars. Estimate is always first.
const (
	EstimateCategory = "Est."
	EstimateName     = "Expected"
	EstimateColor    = "#cfcfcf"
	EstimateText     = "black"

	ActualCategory = "Act."
	ActualName     = "Actual"
	ActualColor    = "#004e82"
	ActualText     = "white"

	GridColor   = "#f0f0f0"
	Transparent = "rgba(0,0,0,0)"
	Height      = 200
)

// Bar is one categorical bar with its on-bar label.
type Bar struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Text      string  `json:"text"`
	Color     string  `json:"color"`
	TextColor string  `json:"text_color"`
}

// Margin in pixels.
type Margin struct {
	Left   int `json:"l"`
	Right  int `json:"r"`
	Top    int `json:"t"`
	Bottom int `json:"b"`
}

// Layout carries the figure-level settings.
type Layout struct {
	Height     int    `json:"height"`
	Margin     Margin `json:"margin"`
	ShowLegend bool   `json:"showlegend"`
	XGrid      bool   `json:"xaxis_showgrid"`
	YGrid      bool   `json:"yaxis_showgrid"`
	GridColor  string `json:"yaxis_gridcolor"`
	PaperColor string `json:"paper_bgcolor"`
	PlotColor  string `json:"plot_bgcolor"`
}

// Chart is a render-ready comparison of an expected and an actual value.
type Chart struct {
	Bars   []Bar  `json:"bars"`
	Layout Layout `json:"layout"`
}

// Build returns the comparison chart for one measure. The result depends only on
// the two inputs; colours and ordering never change with the data.
func Build(actual, estimated float64) *Chart {
	return &Chart{
		Bars: []Bar{
			{
				Category:  EstimateCategory,
				Name:      EstimateName,
				Value:     estimated,
				Text:      FormatValue(estimated),
				Color:     EstimateColor,
				TextColor: EstimateText,
			},
			{
				Category:  ActualCategory,
				Name:      ActualName,
				Value:     actual,
				Text:      FormatValue(actual),
				Color:     ActualColor,
				TextColor: ActualText,
			},
		},
		Layout: Layout{
			Height:     Height,
			Margin:     Margin{Left: 0, Right: 0, Top: 10, Bottom: 10},
			ShowLegend: false,
			XGrid:      false,
			YGrid:      true,
			GridColor:  GridColor,
			PaperColor: Transparent,
			PlotColor:  Transparent,
		},
	}
}

// FormatValue renders a number the way it is labelled on a bar: shortest decimal
// form, with integral values keeping a trailing ".0" (72 -> "72.0").
func FormatValue(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
