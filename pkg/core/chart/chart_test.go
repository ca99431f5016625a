package chart

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestBuild_BarOrderAndLabels(t *testing.T) {
	tests := []struct {
		name      string
		actual    float64
		estimated float64
		wantText  [2]string
	}{
		{name: "revenue", actual: 25.18, estimated: 25.37, wantText: [2]string{"25.37", "25.18"}},
		{name: "eps in cents", actual: 72, estimated: 58, wantText: [2]string{"58.0", "72.0"}},
		{name: "zeros", actual: 0, estimated: 0, wantText: [2]string{"0.0", "0.0"}},
		{name: "negative", actual: -1.5, estimated: 2, wantText: [2]string{"2.0", "-1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Build(tt.actual, tt.estimated)

			if len(c.Bars) != 2 {
				t.Fatalf("expected 2 bars, got %d", len(c.Bars))
			}

			est, act := c.Bars[0], c.Bars[1]
			if est.Category != EstimateCategory || act.Category != ActualCategory {
				t.Errorf("bar order = [%s, %s], want [%s, %s]", est.Category, act.Category, EstimateCategory, ActualCategory)
			}
			if est.Value != tt.estimated || act.Value != tt.actual {
				t.Errorf("bar values = [%v, %v], want [%v, %v]", est.Value, act.Value, tt.estimated, tt.actual)
			}
			if est.Text != tt.wantText[0] || act.Text != tt.wantText[1] {
				t.Errorf("bar text = [%s, %s], want %v", est.Text, act.Text, tt.wantText)
			}
			if est.Color != EstimateColor || act.Color != ActualColor {
				t.Errorf("colours = [%s, %s]", est.Color, act.Color)
			}
		})
	}
}

func TestBuild_Layout(t *testing.T) {
	l := Build(1, 2).Layout

	if l.ShowLegend {
		t.Error("legend should be hidden")
	}
	if l.XGrid {
		t.Error("category axis grid should be hidden")
	}
	if !l.YGrid || l.GridColor != GridColor {
		t.Errorf("value axis grid = %v %s, want light gridlines", l.YGrid, l.GridColor)
	}
	if l.PaperColor != Transparent || l.PlotColor != Transparent {
		t.Errorf("backgrounds = %s/%s, want transparent", l.PaperColor, l.PlotColor)
	}
	if l.Height != 200 {
		t.Errorf("height = %d, want 200", l.Height)
	}
	if l.Margin != (Margin{Left: 0, Right: 0, Top: 10, Bottom: 10}) {
		t.Errorf("margin = %+v", l.Margin)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(25.18, 25.37)
	b := Build(25.18, 25.37)
	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs produced different charts")
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Error("same inputs produced different JSON")
	}
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		25.18: "25.18",
		72:    "72.0",
		0:     "0.0",
		-3:    "-3.0",
		0.5:   "0.5",
	}
	for in, want := range cases {
		if got := FormatValue(in); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestChart_Bar(t *testing.T) {
	bar := Build(72, 58).Bar("eps_chart", 320)

	if bar.Initialization.ChartID != "eps_chart" {
		t.Errorf("chart id = %q", bar.Initialization.ChartID)
	}
	if bar.Initialization.Width != "320px" || bar.Initialization.Height != "200px" {
		t.Errorf("size = %s x %s", bar.Initialization.Width, bar.Initialization.Height)
	}
	if bar.Initialization.BackgroundColor != Transparent {
		t.Errorf("background = %q, want transparent", bar.Initialization.BackgroundColor)
	}
}

func TestChart_HTML(t *testing.T) {
	out := string(Build(72, 58).HTML("eps_chart", 320))

	if !strings.Contains(out, `id="eps_chart"`) {
		t.Errorf("chart element missing: %s", out)
	}
	est := strings.Index(out, `"58.0"`)
	act := strings.Index(out, `"72.0"`)
	if est < 0 || act < 0 {
		t.Fatalf("bar labels missing: %s", out)
	}
	if est > act {
		t.Error("estimate bar should come before the actual bar")
	}
	for _, want := range []string{`"Est."`, `"Act."`, EstimateColor, ActualColor, GridColor} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %s", want)
		}
	}
}

func TestChart_HTMLZeroAndNegative(t *testing.T) {
	out := string(Build(-5, 0).HTML("odd_chart", 0))

	if !strings.Contains(out, `"-5.0"`) || !strings.Contains(out, `"0.0"`) {
		t.Errorf("labels missing: %s", out)
	}
	if !strings.Contains(out, "320px") {
		t.Error("zero width should fall back to the default")
	}
}

func TestFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := finite(v); got != 0 {
			t.Errorf("finite(%v) = %v, want 0", v, got)
		}
	}
	if got := finite(2.5); got != 2.5 {
		t.Errorf("finite(2.5) = %v", got)
	}
}
