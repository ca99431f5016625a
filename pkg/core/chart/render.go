package chart

import (
	"html/template"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ScriptURL is the ECharts bundle a page must load before embedding charts.
const ScriptURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

const (
	defaultWidth = 320
	axisBand     = 30 // left room for value-axis labels
	labelBand    = 20 // bottom room for category labels
)

// Bar converts c into an ECharts bar chart. id becomes the DOM id of the chart
// element and must be unique on the page.
func (c *Chart) Bar(id string, width int) *charts.Bar {
	if width <= 0 {
		width = defaultWidth
	}
	height := c.Layout.Height
	if height <= 0 {
		height = Height
	}
	m := c.Layout.Margin

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:         id,
			Width:           px(width),
			Height:          px(height),
			BackgroundColor: c.Layout.PaperColor,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(c.Layout.ShowLegend)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{
			Left:   strconv.Itoa(m.Left + axisBand),
			Right:  strconv.Itoa(m.Right),
			Top:    strconv.Itoa(m.Top),
			Bottom: strconv.Itoa(m.Bottom + labelBand),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitLine: &opts.SplitLine{Show: opts.Bool(c.Layout.XGrid)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(c.Layout.YGrid),
				LineStyle: &opts.LineStyle{Color: c.Layout.GridColor},
			},
		}),
	)

	categories := make([]string, 0, len(c.Bars))
	data := make([]opts.BarData, 0, len(c.Bars))
	for _, b := range c.Bars {
		categories = append(categories, b.Category)
		// The item name carries the label text so "{b}" prints 72 as "72.0".
		data = append(data, opts.BarData{
			Name:      b.Text,
			Value:     finite(b.Value),
			ItemStyle: &opts.ItemStyle{Color: b.Color},
			Label: &opts.Label{
				Show:      opts.Bool(true),
				Position:  "inside",
				Color:     b.TextColor,
				Formatter: "{b}",
			},
		})
	}
	bar.SetXAxis(categories).AddSeries("values", data)
	return bar
}

// HTML renders the chart as an element plus its init script, ready to embed in a
// page that loads ScriptURL.
func (c *Chart) HTML(id string, width int) template.HTML {
	s := c.Bar(id, width).RenderSnippet()
	return template.HTML(s.Element + s.Script)
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
